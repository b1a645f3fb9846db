package base

import (
	"context"
	"errors"
	"io"
)

// Conn is one established message connection. Implementations carry whole
// messages, framing is up to the underlying protocol (e.g. WebSocket text
// frames).
type Conn interface {
	// ReadFrame blocks until the next complete message arrives
	ReadFrame(ctx context.Context) ([]byte, error)

	// WriteFrame writes one complete message. Callers serialize writes.
	WriteFrame(ctx context.Context, frame []byte) error

	// Close performs a graceful close with the given reason
	Close(reason string) error

	// Abort tears the connection down without a closing handshake
	Abort() error
}

// isClosedErr reports whether err is just the end of the connection as
// opposed to a transport failure worth an error log
func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.ErrClosedPipe)
}
