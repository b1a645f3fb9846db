package ws

import (
	"context"
	"errors"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/transport"
	"github.com/basset-hound/houndctl/rpc/transport/base"
	"github.com/coder/websocket"
	"github.com/puzpuzpuz/xsync/v3"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// ServerTransport accepts WebSocket connections and serves every message
// with the registered handler. Besides Listen it can be mounted on any
// http server (e.g. httptest) since it implements http.Handler.
type ServerTransport struct {
	handler transport.ServerHandleFunc
	config  common.ServerConfig

	// ctx is cancelled on Shutdown and ends all connection loops
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	server *http.Server

	nextID atomic.Uint64
	conns  *xsync.MapOf[uint64, *conn]
}

// NewServerTransport creates a new WebSocket server transport
func NewServerTransport() *ServerTransport {
	ctx, cancel := context.WithCancel(context.Background())
	return &ServerTransport{
		ctx:    ctx,
		cancel: cancel,
		conns:  xsync.NewMapOf[uint64, *conn](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *ServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *ServerTransport) Listen(config common.ServerConfig) error {
	t.config = config
	if t.config.Endpoint == "" {
		t.config.Endpoint = common.DefaultServerEndpoint
	}

	// Create a new HTTP server
	mux := http.NewServeMux()

	// Register handler
	if t.config.LogLevel == "debug" {
		mux.Handle("/", loggerMiddleware(t))
	} else {
		mux.Handle("/", t)
	}

	server := &http.Server{
		Addr:              t.config.Endpoint,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	t.mu.Lock()
	if t.ctx.Err() != nil {
		// shut down before it started
		t.mu.Unlock()
		return nil
	}
	t.server = server
	t.mu.Unlock()

	Logger.Infof("Starting WebSocket server on %s", t.config.Endpoint)

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (t *ServerTransport) Shutdown(ctx context.Context) error {
	t.cancel()
	t.CloseConnections()

	t.mu.Lock()
	server := t.server
	t.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// --------------------------------------------------------------------------
// Connection handling
// --------------------------------------------------------------------------

// ServeHTTP upgrades the request and serves the connection until it ends
func (t *ServerTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// the engine is a local tool, any origin may connect
		InsecureSkipVerify: true,
	})
	if err != nil {
		Logger.Warningf("Failed to accept connection from %s: %v", r.RemoteAddr, err)
		return
	}

	limit := t.config.MaxMessageBytes
	if limit <= 0 {
		limit = common.DefaultMaxMessageBytes
	}
	wsConn.SetReadLimit(limit)

	c := &conn{ws: wsConn}
	id := t.nextID.Add(1)
	t.conns.Store(id, c)
	defer t.conns.Delete(id)

	Logger.Infof("Accepted connection %d from %s", id, r.RemoteAddr)
	base.ServeConnection(t.ctx, c, t.handler, base.DefaultMaxWorkersPerConn)
}

// CloseConnections drops all open connections without a closing handshake.
// Clients see this like a crashed engine.
func (t *ServerTransport) CloseConnections() {
	t.conns.Range(func(id uint64, c *conn) bool {
		_ = c.Abort()
		return true
	})
}

// ConnectionCount returns the number of open connections
func (t *ServerTransport) ConnectionCount() int {
	return t.conns.Size()
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// loggerMiddleware logs every connection and how long it stayed open.
// The writer is passed through untouched, the upgrade needs to hijack it.
func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		Logger.Debugf("Upgrade %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		next.ServeHTTP(w, r)

		Logger.Debugf("Connection %s from %s closed after %v", r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}
