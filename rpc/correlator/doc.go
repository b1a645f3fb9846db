// Package correlator matches responses on a shared connection to the requests
// that caused them.
//
// Every request gets a fresh UUID and a pending entry holding a channel with
// room for exactly one outcome. The entry is stored before the request is
// sent. Whoever removes the entry from the pending map first (the matching
// response, the request's timeout, the caller's context or the connection
// loss sweep) resolves it; everybody else finds nothing and backs off. This
// gives each request exactly one outcome without a global lock, and responses
// can arrive in any order.
//
// A Correlator implements transport.InboundHandler, so it is registered with a
// client transport directly.
package correlator
