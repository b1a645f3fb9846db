package commands

import (
	"context"
	"encoding/base64"
	"fmt"
)

// ScreenshotOptions configures Screenshot. The zero value takes a PNG of
// the viewport.
type ScreenshotOptions struct {
	FullPage bool
	Format   string // png or jpeg
	Quality  int    // jpeg only, 1-100, zero means 80
}

// Screenshot captures the page and returns the decoded image
func Screenshot(ctx context.Context, inv Invoker, opts ScreenshotOptions) ([]byte, error) {
	format := opts.Format
	if format == "" {
		format = "png"
	}
	quality := opts.Quality
	if quality == 0 {
		quality = 80
	}

	result, err := inv.Invoke(ctx, "screenshot", params{
		"fullPage": opts.FullPage,
		"format":   format,
		"quality":  quality,
	})
	if err != nil {
		return nil, err
	}

	data, ok := result.String("data")
	if !ok {
		return nil, fmt.Errorf("screenshot response without data")
	}
	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	return image, nil
}
