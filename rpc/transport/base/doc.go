// Package base provides the protocol independent core of the transport layer.
// It implements the connection manager used by every client transport and the
// per-connection serving loop of the mock engine. Protocol specific code (the
// WebSocket handshake and framing) plugs in through IClientConnector and Conn.
//
// The package focuses on:
//   - Owning exactly one live connection per client transport
//   - Explicit connection states (disconnected, connecting, connected, closing)
//   - Delivering inbound messages and connection loss to one InboundHandler
//   - A single passive reconnect attempt after an unsolicited close
//
// Key Components:
//
//   - IClientConnector / Conn: the extension points for a concrete protocol.
//
//   - clientTransport: the connection manager. Connect is idempotent and
//     waits for a concurrent attempt instead of starting a second one. One
//     reader goroutine per connection reads messages and hands them to the
//     handler as soon as they arrive; writes are serialized by a mutex.
//     When the connection ends, the handler's OnConnectionLost is called
//     exactly once, before a reconnect is scheduled.
//
//   - ServeConnection: server side loop; handles every inbound message in
//     a bounded worker goroutine so responses can overtake each other.
//
// Thread Safety:
//
//	All public methods are thread-safe. Connection state is guarded by one
//	mutex, writes to the connection by another.
package base
