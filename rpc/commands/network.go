package commands

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

// StartNetworkCapture starts recording traffic, optionally only of the given
// resource types
func StartNetworkCapture(ctx context.Context, inv Invoker, filterTypes []string) (common.Result, error) {
	return inv.Invoke(ctx, "start_network_capture", params{}.setStrings("filterTypes", filterTypes))
}

func StopNetworkCapture(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "stop_network_capture", nil)
}

// GetNetworkRequests returns the captured requests. Empty filters match everything.
func GetNetworkRequests(ctx context.Context, inv Invoker, filterType, filterDomain string) (common.Result, error) {
	p := params{}.setString("filterType", filterType).setString("filterDomain", filterDomain)
	return inv.Invoke(ctx, "get_network_requests", p)
}

// ExportNetworkCapture exports the capture as "har" (default) or "json"
func ExportNetworkCapture(ctx context.Context, inv Invoker, format string) (common.Result, error) {
	if format == "" {
		format = "har"
	}
	return inv.Invoke(ctx, "export_network_capture", params{"format": format})
}
