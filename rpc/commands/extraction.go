package commands

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

func ExtractMetadata(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "extract_metadata", nil)
}

// ExtractLinks returns the links of the page, optionally only internal ones
func ExtractLinks(ctx context.Context, inv Invoker, includeExternal bool) (common.Result, error) {
	return inv.Invoke(ctx, "extract_links", params{"includeExternal": includeExternal})
}

func ExtractForms(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "extract_forms", nil)
}

// ExtractImages returns the images of the page, optionally with lazy-loaded ones
func ExtractImages(ctx context.Context, inv Invoker, includeLazy bool) (common.Result, error) {
	return inv.Invoke(ctx, "extract_images", params{"includeLazy": includeLazy})
}

// ExtractAll runs every extractor at once
func ExtractAll(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "extract_all", nil)
}

// GetContent returns the content of the page or of the element matched by
// selector. contentType is "html", "text" or "outerHTML"; empty means html.
func GetContent(ctx context.Context, inv Invoker, selector, contentType string) (common.Result, error) {
	if contentType == "" {
		contentType = "html"
	}
	p := params{"content_type": contentType}
	return inv.Invoke(ctx, "get_content", p.setString("selector", selector))
}

func DetectTechnologies(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "detect_technologies", nil)
}
