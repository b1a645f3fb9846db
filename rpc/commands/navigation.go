package commands

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

// Wait conditions for Navigate
const (
	WaitLoad             = "load"
	WaitDOMContentLoaded = "domcontentloaded"
	WaitNetworkIdle      = "networkidle"
)

// Navigate opens url. waitUntil is one of the Wait* constants, empty means WaitLoad.
func Navigate(ctx context.Context, inv Invoker, url, waitUntil string) (common.Result, error) {
	if waitUntil == "" {
		waitUntil = WaitLoad
	}
	return inv.Invoke(ctx, "navigate", params{"url": url, "waitUntil": waitUntil})
}

func GoBack(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "go_back", nil)
}

func GoForward(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "go_forward", nil)
}

// Reload reloads the current page, optionally bypassing the cache
func Reload(ctx context.Context, inv Invoker, ignoreCache bool) (common.Result, error) {
	return inv.Invoke(ctx, "reload", params{"ignoreCache": ignoreCache})
}

// GetURL returns the URL of the current page
func GetURL(ctx context.Context, inv Invoker) (string, error) {
	return stringField(ctx, inv, "get_url", "url")
}

// GetTitle returns the title of the current page
func GetTitle(ctx context.Context, inv Invoker) (string, error) {
	return stringField(ctx, inv, "get_title", "title")
}

// WaitForElement waits until selector reaches state ("visible", "hidden",
// "attached" or "detached"; empty means visible). timeoutMs is enforced by
// the engine, zero uses its default; the client side timeout still applies.
func WaitForElement(ctx context.Context, inv Invoker, selector, state string, timeoutMs int) (common.Result, error) {
	if state == "" {
		state = "visible"
	}
	p := params{"selector": selector, "state": state}
	return inv.Invoke(ctx, "wait_for_element", p.setInt("timeout", timeoutMs))
}

// WaitForNavigation waits for a running navigation to complete
func WaitForNavigation(ctx context.Context, inv Invoker, timeoutMs int) (common.Result, error) {
	return inv.Invoke(ctx, "wait_for_navigation", params{}.setInt("timeout", timeoutMs))
}
