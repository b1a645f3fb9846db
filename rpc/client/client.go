package client

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/correlator"
	"github.com/basset-hound/houndctl/rpc/serializer"
	"github.com/basset-hound/houndctl/rpc/transport"
	"github.com/basset-hound/houndctl/rpc/transport/ws"
	"golang.org/x/time/rate"
	"io"
	"time"
)

// Client is the entry point for remote controlling the browser engine.
// It owns one connection; create as many clients as needed, they share nothing.
type Client struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
	correlator *correlator.Correlator
	limiter    *rate.Limiter // nil if requests are not throttled
	metrics    *clientMetrics
}

// NewClient creates a new client. It does not connect, call Connect or set
// AutoReconnect to connect on the first invocation.
func NewClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) *Client {
	config = config.WithDefaults()

	c := &Client{
		config:     config,
		transport:  transport,
		serializer: serializer,
		correlator: correlator.New(transport, serializer),
	}
	if config.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst)
	}
	c.metrics = newClientMetrics(c.correlator.Pending)

	// All inbound messages go straight to the correlator
	transport.RegisterHandler(c.correlator)
	return c
}

// New creates a client speaking JSON over WebSocket
func New(config common.ClientConfig) *Client {
	return NewClient(config, ws.NewClientTransport(), serializer.NewJSONSerializer())
}

// WithSession connects a new client, runs fn with it and always disconnects
// afterwards, also if fn fails or panics.
func WithSession(ctx context.Context, config common.ClientConfig, fn func(c *Client) error) error {
	c := New(config)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Disconnect()
	return fn(c)
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Connect connects to the engine. Calling it while connected does nothing.
func (c *Client) Connect(ctx context.Context) error {
	return c.transport.Connect(ctx, c.config)
}

// Disconnect closes the connection. Requests still waiting fail with a
// *common.ConnectionError. It always succeeds.
func (c *Client) Disconnect() {
	if err := c.transport.Close(); err != nil {
		Logger.Debugf("Error while disconnecting: %v", err)
	}
}

// IsConnected reports whether the connection is currently open
func (c *Client) IsConnected() bool {
	return c.transport.State() == transport.StateConnected
}

// URL returns the WebSocket URL of the engine
func (c *Client) URL() string {
	return c.config.Endpoint.URL()
}

// Config returns the effective configuration
func (c *Client) Config() common.ClientConfig {
	return c.config
}

// Pending returns the number of requests waiting for a response
func (c *Client) Pending() int {
	return c.correlator.Pending()
}

// WriteMetrics writes the client's metrics in Prometheus text format
func (c *Client) WriteMetrics(w io.Writer) {
	c.metrics.write(w)
}

// --------------------------------------------------------------------------
// Invocation
// --------------------------------------------------------------------------

// Invoke sends command with params and waits for the response using the
// configured command timeout. See InvokeWithTimeout.
func (c *Client) Invoke(ctx context.Context, command string, params map[string]any) (common.Result, error) {
	return c.InvokeWithTimeout(ctx, command, params, c.config.CommandTimeout)
}

// InvokeWithTimeout sends command with params and waits at most timeout for
// the response. Failed commands are never retried.
//
// Errors:
//   - *common.RemovedCommandError: the command was removed, nothing was sent
//   - *common.ConnectionError: not connected, or the connection was lost
//   - *common.CommandError: the engine reported failure
//   - *common.TimeoutError: no response within timeout
func (c *Client) InvokeWithTimeout(ctx context.Context, command string, params map[string]any, timeout time.Duration) (common.Result, error) {
	start := time.Now()
	result, err := invokeRPCRequest(ctx, c, command, params, timeout)
	c.metrics.observe(start, err)

	if err != nil {
		Logger.Debugf("Command %s failed after %s: %v", command, time.Since(start), err)
	}
	return result, err
}
