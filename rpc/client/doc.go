// Package client implements the client for the browser engine's WebSocket API.
// It ties a client transport, the JSON serializer and the correlator together
// behind a single operation, Invoke.
//
// The package focuses on:
//   - One explicit Client per connection instead of a process wide instance
//   - A single dispatch path for every command (see package commands for the
//     typed wrappers)
//   - Distinct errors for remote failures and infrastructure failures
//
// Key Components:
//
//   - Client: Connect, Disconnect, Invoke and InvokeWithTimeout. Commands that
//     were removed from the engine are rejected locally with a
//     *common.RemovedCommandError. If AutoReconnect is set, an invocation
//     while disconnected first tries to connect once.
//
//   - WithSession: connects, runs a function and always disconnects.
//
//   - Metrics: every client counts its invocations by outcome, records their
//     latency and exposes the number of pending requests. WriteMetrics
//     writes them in Prometheus text format.
//
// Usage Example:
//
//	config := common.DefaultClientConfig()
//	config.Endpoint = common.NewEndpoint("localhost", 8765)
//
//	err := client.WithSession(ctx, config, func(c *client.Client) error {
//		if _, err := c.Invoke(ctx, "navigate", map[string]any{"url": "https://example.com"}); err != nil {
//			return err
//		}
//		result, err := c.Invoke(ctx, "get_title", nil)
//		if err != nil {
//			return err
//		}
//		title, _ := result.String("title")
//		fmt.Println(title)
//		return nil
//	})
//
//	switch common.KindOf(err) {
//	case common.KindCommand:
//		// the engine refused, e.g. an element was not found
//	case common.KindConnection, common.KindTimeout:
//		// the engine is gone or hangs
//	}
//
// Thread Safety:
//
//	A Client is safe for concurrent use. Any number of invocations may be
//	outstanding at the same time, each resolves independently.
package client
