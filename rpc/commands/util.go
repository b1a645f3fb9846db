package commands

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

// Invoker sends one command and waits for its result.
// *client.Client implements it.
type Invoker interface {
	Invoke(ctx context.Context, command string, params map[string]any) (common.Result, error)
}

// params collects command parameters. The set* helpers skip zero values,
// so optional parameters the caller did not set are not sent and the
// engine applies its own defaults.
type params map[string]any

func (p params) setString(key, value string) params {
	if value != "" {
		p[key] = value
	}
	return p
}

func (p params) setInt(key string, value int) params {
	if value != 0 {
		p[key] = value
	}
	return p
}

func (p params) setStrings(key string, values []string) params {
	if len(values) > 0 {
		p[key] = values
	}
	return p
}

// stringField invokes command and returns the string field key of the result
func stringField(ctx context.Context, inv Invoker, command, key string) (string, error) {
	result, err := inv.Invoke(ctx, command, nil)
	if err != nil {
		return "", err
	}
	value, _ := result.String(key)
	return value, nil
}
