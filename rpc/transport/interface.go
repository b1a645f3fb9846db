package transport

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

// --------------------------------------------------------------------------
// Connection state
// --------------------------------------------------------------------------

// ConnState is the lifecycle state of a client transport's connection
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateClosing
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc handles one inbound message and returns the message to
// send back. A nil response means nothing is sent.
// The transport may call it concurrently for messages of the same connection.
type ServerHandleFunc func(ctx context.Context, req []byte) (resp []byte)

// IRPCServerTransport is the interface for the server side of the transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler is called for every message received on any connection
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and blocks until it is shut down
	Listen(config common.ServerConfig) error
	// Shutdown stops listening and drops all open connections
	Shutdown(ctx context.Context) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// InboundHandler receives everything a client transport reads from its
// connection. Both methods are called from the transport's reader goroutine
// and must not block.
type InboundHandler interface {
	// OnInbound is called once for every message read from the connection
	OnInbound(frame []byte)
	// OnConnectionLost is called exactly once per established connection
	// when it ends, whether on purpose or not. err is a *common.ConnectionError.
	OnConnectionLost(err error)
}

// IRPCClientTransport is the interface for the RPC client transport. It owns
// a single connection to one endpoint.
type IRPCClientTransport interface {
	// RegisterHandler sets the receiver of inbound messages and connection loss
	RegisterHandler(handler InboundHandler)
	// Connect establishes the connection, waiting at most config.ConnectTimeout.
	// Calling it while connected is a no-op.
	Connect(ctx context.Context, config common.ClientConfig) error
	// Send writes one message. It fails with a *common.ConnectionError when
	// not connected. Concurrent calls are serialized.
	Send(ctx context.Context, frame []byte) error
	// State returns the current connection state
	State() ConnState
	// Close closes the connection if open and cancels a scheduled reconnect.
	// It always succeeds.
	Close() error
}
