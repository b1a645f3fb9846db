package ws

import (
	"context"
	"errors"
	"fmt"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/transport"
	"github.com/basset-hound/houndctl/rpc/transport/base"
	"github.com/coder/websocket"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net"
)

var Logger = logger.GetLogger("transport/ws")

// NewClientTransport creates a new client transport speaking WebSocket
func NewClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}

// --------------------------------------------------------------------------
// Connector (docu see base.IClientConnector)
// --------------------------------------------------------------------------

type clientConnector struct{}

func (c *clientConnector) Connect(ctx context.Context, endpoint common.Endpoint, config common.ClientConfig) (base.Conn, error) {
	wsConn, _, err := websocket.Dial(ctx, endpoint.URL(), nil)
	if err != nil {
		return nil, err
	}
	wsConn.SetReadLimit(config.MaxMessageBytes)
	return &conn{ws: wsConn}, nil
}

func (c *clientConnector) GetName() string {
	return "websocket"
}

// --------------------------------------------------------------------------
// Connection (docu see base.Conn)
// --------------------------------------------------------------------------

// conn adapts a websocket connection to base.Conn. Every message is one
// text frame.
type conn struct {
	ws *websocket.Conn
}

func (c *conn) ReadFrame(ctx context.Context) ([]byte, error) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, translateErr(err)
		}
		if typ != websocket.MessageText {
			Logger.Debugf("Ignoring binary frame of %d bytes", len(data))
			continue
		}
		return data, nil
	}
}

func (c *conn) WriteFrame(ctx context.Context, frame []byte) error {
	return translateErr(c.ws.Write(ctx, websocket.MessageText, frame))
}

func (c *conn) Close(reason string) error {
	return c.ws.Close(websocket.StatusNormalClosure, reason)
}

func (c *conn) Abort() error {
	return c.ws.CloseNow()
}

// translateErr maps a close frame from the peer to io.EOF so the transport
// reports it as a regular end of the connection
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %v", io.EOF, err)
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return fmt.Errorf("%w: %v", io.EOF, err)
	}
	return err
}
