// Package rpc provides the client side of the browser engine's remote control
// protocol. Commands are JSON objects sent over a single WebSocket connection
// and answered asynchronously; responses are matched to their requests by id.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the system,
//     including the Envelope/Response protocol types, the error taxonomy,
//     configuration structures and logging.
//
//   - transport: Connection abstractions. base holds the protocol independent
//     connection manager, ws the WebSocket implementation.
//
//   - serializer: JSON encoding of envelopes and responses.
//
//   - correlator: Pending request bookkeeping; resolves every request exactly
//     once with its response, a timeout or a connection error.
//
//   - client: The dispatch facade. One Client per connection.
//
//   - commands: Typed wrappers for the engine's command groups.
//
//   - server: A mock engine speaking the same protocol, used for tests and
//     local experiments.
package rpc
