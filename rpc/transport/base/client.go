package base

import (
	"context"
	"errors"
	"fmt"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
	"time"
)

var Logger = logger.GetLogger("transport/base")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint. The context
	// bounds the handshake only.
	Connect(ctx context.Context, endpoint common.Endpoint, config common.ClientConfig) (Conn, error)

	// GetName returns the name of the transport type (e.g., "websocket")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientConnection represents one established connection and its reader
type clientConnection struct {
	conn   Conn
	cancel context.CancelFunc // stops the reader goroutine
	done   chan struct{}      // closed when the reader goroutine returned
	parent *clientTransport
}

// clientTransport implements the connection manager independent of the
// specific transport medium. It owns at most one live connection.
type clientTransport struct {
	connector IClientConnector

	// stateMu protects everything below up to connMu
	stateMu        sync.Mutex
	config         common.ClientConfig
	handler        transport.InboundHandler
	state          transport.ConnState
	current        *clientConnection
	connecting     chan struct{} // closed when the running connect attempt finished
	connectErr     error         // result of the last connect attempt
	reconnectTimer *time.Timer
	closeGen       uint64 // incremented by every Close

	writeSem chan struct{} // Serializes writes to the connection, capacity 1
}

// -----------------------------------------------------------
// Transport Factory Method
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
		state:     transport.StateDisconnected,
		writeSem:  make(chan struct{}, 1),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) RegisterHandler(handler transport.InboundHandler) {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	t.handler = handler
}

func (t *clientTransport) Connect(ctx context.Context, config common.ClientConfig) error {
	config = config.WithDefaults()
	endpoint := config.Endpoint.URL()

	t.stateMu.Lock()
	for {
		switch t.state {
		case transport.StateConnected:
			t.stateMu.Unlock()
			return nil

		case transport.StateConnecting, transport.StateClosing:
			// Another connect (or close) is running, wait for it to finish
			// and look again
			wait := t.connecting
			t.stateMu.Unlock()
			select {
			case <-wait:
			case <-ctx.Done():
				return &common.ConnectionError{Endpoint: endpoint, Op: "connect", Err: ctx.Err()}
			}
			t.stateMu.Lock()
			if t.state == transport.StateDisconnected && t.connectErr != nil {
				err := t.connectErr
				t.stateMu.Unlock()
				return err
			}
			continue
		}
		break
	}

	// Disconnected: this call performs the attempt
	t.config = config
	t.state = transport.StateConnecting
	t.connectErr = nil
	t.connecting = make(chan struct{})
	t.stateMu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	conn, err := t.connector.Connect(dialCtx, config.Endpoint, config)
	cancel()

	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	defer close(t.connecting)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("connection timeout after %s: %w", config.ConnectTimeout, err)
		}
		t.state = transport.StateDisconnected
		t.connectErr = &common.ConnectionError{Endpoint: endpoint, Op: "connect", Err: err}
		Logger.Warningf("Failed to connect to %s: %v", endpoint, err)
		return t.connectErr
	}

	readCtx, readCancel := context.WithCancel(context.Background())
	clientConn := &clientConnection{
		conn:   conn,
		cancel: readCancel,
		done:   make(chan struct{}),
		parent: t,
	}
	t.current = clientConn
	t.state = transport.StateConnected

	// Start the message reader
	go clientConn.readMessages(readCtx)

	Logger.Infof("Connected to %s using %s transport", endpoint, t.connector.GetName())
	return nil
}

func (t *clientTransport) Send(ctx context.Context, frame []byte) error {
	t.stateMu.Lock()
	clientConn, state, endpoint := t.current, t.state, t.config.Endpoint.URL()
	t.stateMu.Unlock()

	// Test if connection is still valid
	if state != transport.StateConnected || clientConn == nil {
		return &common.ConnectionError{Endpoint: endpoint, Op: "send", Err: common.ErrNotConnected}
	}

	// Lock the connection only for writing. Waiting for the lock honors ctx.
	select {
	case t.writeSem <- struct{}{}:
	case <-ctx.Done():
		return &common.ConnectionError{Endpoint: endpoint, Op: "send", Err: ctx.Err()}
	}
	err := clientConn.conn.WriteFrame(ctx, frame)
	<-t.writeSem

	if err != nil {
		return &common.ConnectionError{Endpoint: endpoint, Op: "send", Err: err}
	}
	return nil
}

func (t *clientTransport) State() transport.ConnState {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	return t.state
}

func (t *clientTransport) Close() error {
	t.stateMu.Lock()
	t.closeGen++
	t.stopReconnectLocked()

	// Let a running connect attempt or close finish first
	for t.state == transport.StateConnecting || t.state == transport.StateClosing {
		wait := t.connecting
		t.stateMu.Unlock()
		<-wait
		t.stateMu.Lock()
	}

	clientConn := t.current
	if t.state != transport.StateConnected || clientConn == nil {
		t.stateMu.Unlock()
		return nil
	}
	t.state = transport.StateClosing
	t.connecting = make(chan struct{})
	closing := t.connecting
	endpoint := t.config.Endpoint.URL()
	t.stateMu.Unlock()

	// Best effort: the reader goroutine notices the close either way
	if err := clientConn.conn.Close("client disconnect"); err != nil {
		Logger.Debugf("Closing connection to %s: %v", endpoint, err)
	}
	clientConn.cancel()
	<-clientConn.done

	t.stateMu.Lock()
	close(closing)
	t.stateMu.Unlock()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// readMessages reads messages in a loop and hands them to the inbound handler
func (c *clientConnection) readMessages(ctx context.Context) {
	defer close(c.done)

	for {
		frame, err := c.conn.ReadFrame(ctx)
		if err != nil {
			c.parent.connectionLost(c, err)
			return
		}

		if handler := c.parent.inboundHandler(); handler != nil {
			handler.OnInbound(frame)
		}
	}
}

// connectionLost fails everything that is still waiting, moves the transport
// to Disconnected and, for connections the client did not close itself,
// schedules a reconnect if configured.
// The transport stays in StateClosing until the handler has been notified, so
// no new connection (and no request sent on it) can be caught by the cleanup
// of the old one.
func (t *clientTransport) connectionLost(c *clientConnection, cause error) {
	t.stateMu.Lock()
	if t.current != c {
		t.stateMu.Unlock()
		return
	}
	intentional := t.state == transport.StateClosing
	gen := t.closeGen
	t.current = nil
	var lost chan struct{}
	if !intentional {
		// Close owns the channel of an intentional close
		t.state = transport.StateClosing
		lost = make(chan struct{})
		t.connecting = lost
	}
	config := t.config
	handler := t.handler
	t.stateMu.Unlock()

	_ = c.conn.Abort()

	endpoint := config.Endpoint.URL()
	if intentional {
		cause = common.ErrConnectionClosed
		Logger.Infof("Disconnected from %s", endpoint)
	} else if isClosedErr(cause) {
		Logger.Warningf("Connection to %s closed by remote: %v", endpoint, cause)
	} else {
		Logger.Errorf("Connection to %s failed: %v", endpoint, cause)
	}

	if handler != nil {
		handler.OnConnectionLost(&common.ConnectionError{Endpoint: endpoint, Op: "receive", Err: cause})
	}

	t.stateMu.Lock()
	t.state = transport.StateDisconnected
	if lost != nil {
		close(lost)
	}
	t.stateMu.Unlock()

	if !intentional && config.AutoReconnect {
		t.scheduleReconnect(config, gen)
	}
}

// scheduleReconnect performs one reconnect attempt after the configured delay.
// A failed attempt is only logged, the next Invoke tries again.
// Nothing is scheduled if Close was called since the connection was lost.
func (t *clientTransport) scheduleReconnect(config common.ClientConfig, gen uint64) {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()

	if gen != t.closeGen {
		return
	}
	t.stopReconnectLocked()

	Logger.Infof("Reconnecting to %s in %s", config.Endpoint.URL(), config.ReconnectDelay)
	t.reconnectTimer = time.AfterFunc(config.ReconnectDelay, func() {
		if err := t.Connect(context.Background(), config); err != nil {
			Logger.Warningf("Reconnect to %s failed: %v", config.Endpoint.URL(), err)
		}
	})
}

// stopReconnectLocked cancels a scheduled reconnect. stateMu must be held.
func (t *clientTransport) stopReconnectLocked() {
	if t.reconnectTimer != nil {
		t.reconnectTimer.Stop()
		t.reconnectTimer = nil
	}
}

func (t *clientTransport) inboundHandler() transport.InboundHandler {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	return t.handler
}
