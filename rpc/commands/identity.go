package commands

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

// Proxy describes an upstream proxy. Protocol defaults to "http".
type Proxy struct {
	Host     string
	Port     int
	Protocol string // http, https or socks5
	Username string
	Password string
}

func SetProxy(ctx context.Context, inv Invoker, proxy Proxy) (common.Result, error) {
	protocol := proxy.Protocol
	if protocol == "" {
		protocol = "http"
	}
	p := params{"host": proxy.Host, "port": proxy.Port, "protocol": protocol}
	p.setString("username", proxy.Username).setString("password", proxy.Password)
	return inv.Invoke(ctx, "set_proxy", p)
}

func ClearProxy(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "clear_proxy", nil)
}

func SetUserAgent(ctx context.Context, inv Invoker, userAgent string) (common.Result, error) {
	return inv.Invoke(ctx, "set_user_agent", params{"userAgent": userAgent})
}

func SetViewport(ctx context.Context, inv Invoker, width, height int) (common.Result, error) {
	return inv.Invoke(ctx, "set_viewport", params{"width": width, "height": height})
}

func GetFingerprint(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "get_fingerprint", nil)
}

func RandomizeFingerprint(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "randomize_fingerprint", nil)
}
