package commands

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

func GetTabs(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "get_tabs", nil)
}

// NewTab opens a tab, with url if not empty
func NewTab(ctx context.Context, inv Invoker, url string) (common.Result, error) {
	return inv.Invoke(ctx, "new_tab", params{}.setString("url", url))
}

// CloseTab closes tabID, or the current tab if empty
func CloseTab(ctx context.Context, inv Invoker, tabID string) (common.Result, error) {
	return inv.Invoke(ctx, "close_tab", params{}.setString("tabId", tabID))
}

func SwitchTab(ctx context.Context, inv Invoker, tabID string) (common.Result, error) {
	return inv.Invoke(ctx, "switch_tab", params{"tabId": tabID})
}
