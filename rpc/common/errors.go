package common

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Sentinel errors
// --------------------------------------------------------------------------

var (
	// ErrNotConnected is the cause of a ConnectionError raised because an
	// operation needed a live connection and there was none
	ErrNotConnected = errors.New("not connected to browser")

	// ErrConnectionClosed is the cause of a ConnectionError raised for requests
	// that were still outstanding when the client disconnected on purpose
	ErrConnectionClosed = errors.New("connection closed")

	// ErrReservedParam is returned when a parameter would overwrite the id or
	// command field of the envelope
	ErrReservedParam = errors.New("reserved parameter name")
)

// --------------------------------------------------------------------------
// Error taxonomy
// --------------------------------------------------------------------------

// ConnectionError is raised when there is no live connection, when
// establishing a connection fails or times out, or when the connection drops
// while a request is outstanding.
type ConnectionError struct {
	Endpoint string
	Op       string
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("connection error (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("connection error (%s %s): %v", e.Op, e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CommandError is raised when the engine reports failure for a request.
// Message and Details are taken verbatim from the response.
type CommandError struct {
	Command string
	Message string
	Details Result
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %s", e.Command, e.Message)
}

// TimeoutError is raised when no response arrived within Timeout
type TimeoutError struct {
	Command string
	Timeout time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %s", e.Command, e.Timeout)
}

// RemovedCommandError is raised without contacting the engine when a
// command has been removed from the protocol
type RemovedCommandError struct {
	Command string
	Notice  string
}

func (e *RemovedCommandError) Error() string {
	return fmt.Sprintf("command %q has been removed: %s", e.Command, e.Notice)
}

// --------------------------------------------------------------------------
// Error kinds
// --------------------------------------------------------------------------

// ErrorKind tags which variant of the taxonomy an error belongs to, so
// callers can switch on it instead of probing each type
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConnection
	KindCommand
	KindTimeout
	KindRemoved
	KindCancelled
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConnection:
		return "connection"
	case KindCommand:
		return "command"
	case KindTimeout:
		return "timeout"
	case KindRemoved:
		return "removed"
	case KindCancelled:
		return "cancelled"
	default:
		return "other"
	}
}

// KindOf classifies err. A nil error is KindNone.
func KindOf(err error) ErrorKind {
	var (
		connErr    *ConnectionError
		cmdErr     *CommandError
		timeoutErr *TimeoutError
		removedErr *RemovedCommandError
	)

	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &cmdErr):
		return KindCommand
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &removedErr):
		return KindRemoved
	case errors.As(err, &connErr):
		return KindConnection
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindOther
	}
}
