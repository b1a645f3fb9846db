// Package transport defines the interfaces and abstractions for talking to
// the browser engine. It provides a common contract that all transport
// implementations must fulfill, keeping the correlation logic independent of
// the network protocol.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Describing the connection lifecycle (ConnState)
//   - Delivering inbound messages and connection loss to one handler
//
// Key Components:
//
//   - IRPCClientTransport: client side; owns exactly one connection and
//     serializes writes to it.
//
//   - InboundHandler: receiver of inbound messages and connection loss,
//     implemented by the correlator.
//
//   - IRPCServerTransport / ServerHandleFunc: server side, used by the mock
//     engine.
package transport
