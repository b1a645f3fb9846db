package client

import (
	"context"
	"fmt"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var (
	Logger = logger.GetLogger("rpc")
)

// invokeRPCRequest is the one path every command takes to the engine.
// It checks the removal table, makes sure there is a connection, waits for
// the rate limiter and then hands the request to the correlator.
func invokeRPCRequest(ctx context.Context, c *Client, command string, params map[string]any, timeout time.Duration) (common.Result, error) {
	// Removed commands are rejected before anything is built
	if notice, removed := IsRemoved(command); removed {
		return nil, &common.RemovedCommandError{Command: command, Notice: notice}
	}

	if command == "" {
		return nil, fmt.Errorf("command name must not be empty")
	}

	if err := ensureConnected(ctx, c); err != nil {
		return nil, err
	}

	// Throttle, never drop
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait for %q: %w", command, err)
		}
	}

	return c.correlator.Issue(ctx, command, params, timeout)
}

// ensureConnected connects on demand if auto reconnect is enabled
func ensureConnected(ctx context.Context, c *Client) error {
	if c.transport.State() == transport.StateConnected {
		return nil
	}

	if !c.config.AutoReconnect {
		return &common.ConnectionError{
			Endpoint: c.config.Endpoint.URL(),
			Op:       "invoke",
			Err:      common.ErrNotConnected,
		}
	}

	Logger.Infof("Not connected to %s, connecting", c.config.Endpoint.URL())
	return c.transport.Connect(ctx, c.config)
}
