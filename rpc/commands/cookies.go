package commands

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

// Cookie describes a cookie to set. Path defaults to "/".
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
}

// GetCookies returns all cookies, or only those for url if not empty
func GetCookies(ctx context.Context, inv Invoker, url string) (common.Result, error) {
	return inv.Invoke(ctx, "get_cookies", params{}.setString("url", url))
}

func SetCookie(ctx context.Context, inv Invoker, cookie Cookie) (common.Result, error) {
	path := cookie.Path
	if path == "" {
		path = "/"
	}
	p := params{
		"name":     cookie.Name,
		"value":    cookie.Value,
		"path":     path,
		"secure":   cookie.Secure,
		"httpOnly": cookie.HTTPOnly,
	}
	return inv.Invoke(ctx, "set_cookie", p.setString("domain", cookie.Domain))
}

// DeleteCookies deletes cookies by url and/or name; without both all cookies go
func DeleteCookies(ctx context.Context, inv Invoker, url, name string) (common.Result, error) {
	p := params{}.setString("url", url).setString("name", name)
	return inv.Invoke(ctx, "delete_cookies", p)
}
