// Package server implements a mock of the browser engine's WebSocket API.
// It speaks the same protocol as the engine (one JSON object per message,
// correlated by id) but answers from registered handlers instead of a browser.
// It backs the integration tests, `houndctl serve` and `houndctl perf`.
//
// Key Components:
//
//   - MockEngine: a command name to HandlerFunc registry. Handle decodes one
//     envelope, runs the handler and encodes the response. Unknown commands
//     are answered with "Unknown command: <name>".
//
//   - Built-in handlers:
//     ping, echo, sleep (answers after `ms` milliseconds), fail (fails with
//     the `error` parameter), drop (never answers), screenshot, and
//     navigate, get_url, get_title, go_back, go_forward, reload on top of an
//     in-memory history of a single tab.
//
// Usage Example:
//
//	t := ws.NewServerTransport()
//	e := server.NewMockEngine()
//
//	// Either listen on an address ...
//	go e.Serve(common.ServerConfig{Endpoint: "127.0.0.1:8765"}, t)
//
//	// ... or mount the transport on any http server
//	e.Bind(t)
//	srv := httptest.NewServer(t)
//
// Thread Safety:
//
//	The transport handles every message of a connection in its own
//	goroutine, so handlers run concurrently and responses may be sent in a
//	different order than the requests arrived. Handlers must be safe for
//	concurrent use; RegisterHandler may be called at any time.
package server
