package commands

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

// DefaultTypeDelay is the delay between keystrokes in milliseconds
const DefaultTypeDelay = 50

func Click(ctx context.Context, inv Invoker, selector string) (common.Result, error) {
	return inv.Invoke(ctx, "click", params{"selector": selector})
}

// Fill types text into an input, clearing its content first if clearFirst is set
func Fill(ctx context.Context, inv Invoker, selector, text string, clearFirst bool) (common.Result, error) {
	return inv.Invoke(ctx, "fill", params{"selector": selector, "text": text, "clear_first": clearFirst})
}

// TypeText types text key by key with delayMs between keystrokes.
// A delay <= 0 uses DefaultTypeDelay.
func TypeText(ctx context.Context, inv Invoker, selector, text string, delayMs int) (common.Result, error) {
	if delayMs <= 0 {
		delayMs = DefaultTypeDelay
	}
	return inv.Invoke(ctx, "type", params{"selector": selector, "text": text, "delay": delayMs})
}

// Scroll scrolls the page, or the element matched by selector if not empty
func Scroll(ctx context.Context, inv Invoker, x, y int, selector string) (common.Result, error) {
	p := params{"x": x, "y": y}
	return inv.Invoke(ctx, "scroll", p.setString("selector", selector))
}

func Hover(ctx context.Context, inv Invoker, selector string) (common.Result, error) {
	return inv.Invoke(ctx, "hover", params{"selector": selector})
}

// ExecuteScript runs script in the page and returns its result
func ExecuteScript(ctx context.Context, inv Invoker, script string) (common.Result, error) {
	return inv.Invoke(ctx, "execute_script", params{"script": script})
}
