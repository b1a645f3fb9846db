package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/serializer"
	"github.com/basset-hound/houndctl/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"os/signal"
	"runtime"
	"syscall"
)

var Logger = logger.GetLogger("server")

// MockEngine answers the browser engine's protocol without a browser.
// Commands are dispatched to handlers by name; the built-in handlers keep
// a minimal in-memory page so navigation can be exercised end to end.
//
// Usage:
//
//	e := server.NewMockEngine()
//	e.RegisterHandler("extract_links", func(ctx context.Context, params map[string]any) (common.Result, error) {
//		return common.Result{"links": []any{}}, nil
//	})
//
//	if err := e.Serve(config, ws.NewServerTransport()); err != nil {
//		panic(err)
//	}
type MockEngine struct {
	serializer serializer.IRPCSerializer
	handlers   *xsync.MapOf[string, HandlerFunc]
	page       *pageState
}

// NewMockEngine creates a mock engine with the built-in handlers registered
func NewMockEngine() *MockEngine {
	e := &MockEngine{
		serializer: serializer.NewJSONSerializer(),
		handlers:   xsync.NewMapOf[string, HandlerFunc](),
		page:       newPageState(),
	}
	e.registerBuiltins()
	return e
}

// RegisterHandler registers (or replaces) the handler for command
func (e *MockEngine) RegisterHandler(command string, handler HandlerFunc) {
	e.handlers.Store(command, handler)
}

// Commands returns the number of registered commands
func (e *MockEngine) Commands() int {
	return e.handlers.Size()
}

// Bind makes the transport hand every message to this engine
func (e *MockEngine) Bind(t transport.IRPCServerTransport) {
	t.RegisterHandler(e.Handle)
}

// Serve binds the transport and listens until the transport is shut down
func (e *MockEngine) Serve(config common.ServerConfig, t transport.IRPCServerTransport) error {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created mock engine with %d commands", e.Commands())
	Logger.Infof(config.String())

	e.Bind(t)
	return t.Listen(config)
}

// Handle handles one message and returns the encoded response, or nil if
// nothing is to be sent. It is safe to call concurrently.
func (e *MockEngine) Handle(ctx context.Context, req []byte) []byte {
	var env common.Envelope
	var resp *common.Response

	if err := e.serializer.DeserializeEnvelope(req, &env); err != nil {
		Logger.Warningf("Failed to decode message: %v", err)
		resp = common.NewErrorResponse("", fmt.Sprintf("failed to deserialize request: %s", err), nil)
	} else if handler, ok := e.handlers.Load(env.Command); !ok {
		resp = common.NewErrorResponse(env.ID, fmt.Sprintf("Unknown command: %s", env.Command), nil)
	} else {
		// Let the handler handle the request
		result, err := handler(ctx, env.Params)
		switch {
		case errors.Is(err, ErrNoReply):
			Logger.Debugf("Not replying to %s (%s)", env.Command, env.ID)
			return nil
		case err != nil:
			resp = errorResponse(env.ID, err)
		default:
			resp = common.NewSuccessResponse(env.ID, result)
		}
	}

	// Return result
	val, err := e.serializer.SerializeResponse(*resp)
	if err != nil {
		Logger.Errorf("Failed to encode response to %s: %v", env.Command, err)
		val, _ = e.serializer.SerializeResponse(*common.NewErrorResponse(
			env.ID, fmt.Sprintf("failed to serialize response: %s", err), nil,
		))
	}
	return val
}

// errorResponse turns a handler error into a failure response
func errorResponse(id string, err error) *common.Response {
	var cmdErr *common.CommandError
	if errors.As(err, &cmdErr) {
		return common.NewErrorResponse(id, cmdErr.Message, cmdErr.Details)
	}
	return common.NewErrorResponse(id, err.Error(), nil)
}
