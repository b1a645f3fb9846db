package correlator

import (
	"context"
	"errors"
	"fmt"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/serializer"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"time"
)

var Logger = logger.GetLogger("correlator")

// Sender writes one message to the connection
type Sender interface {
	Send(ctx context.Context, frame []byte) error
}

// outcome is what a pending request is resolved with, exactly one of both is set
type outcome struct {
	result common.Result
	err    error
}

// pendingRequest is one request waiting for its response
type pendingRequest struct {
	id      string
	command string
	created time.Time
	done    chan outcome // buffered (1), written once by whoever removed the entry
}

// Correlator matches responses to the requests that caused them.
// Ownership of a pending request is decided by removing it from the map:
// the response, the timeout, the caller's context and a lost connection all
// race for LoadAndDelete and only the winner may resolve it.
type Correlator struct {
	sender     Sender
	serializer serializer.IRPCSerializer
	pending    *xsync.MapOf[string, *pendingRequest]
	newID      func() string
}

// New creates a correlator that writes requests with sender
func New(sender Sender, s serializer.IRPCSerializer) *Correlator {
	return &Correlator{
		sender:     sender,
		serializer: s,
		pending:    xsync.NewMapOf[string, *pendingRequest](),
		newID:      uuid.NewString,
	}
}

// --------------------------------------------------------------------------
// Issuing requests
// --------------------------------------------------------------------------

// Issue sends command with params and waits for the matching response, the
// timeout or the end of ctx, whichever comes first. A timeout <= 0 uses
// common.DefaultCommandTimeout.
//
// The returned error is a *common.CommandError if the engine reported
// failure, a *common.TimeoutError if no response arrived in time and a
// *common.ConnectionError if the request could not be sent or the
// connection was lost while waiting.
func (c *Correlator) Issue(ctx context.Context, command string, params map[string]any, timeout time.Duration) (common.Result, error) {
	if timeout <= 0 {
		timeout = common.DefaultCommandTimeout
	}

	p := c.register(command)

	frame, err := c.serializer.SerializeEnvelope(common.Envelope{
		ID:      p.id,
		Command: command,
		Params:  params,
	})
	if err != nil {
		c.pending.Delete(p.id)
		return nil, err
	}

	// The timeout covers the whole exchange, a send stuck on a stalled
	// connection included
	deadline := p.created.Add(timeout)
	sendCtx, cancel := context.WithDeadline(ctx, deadline)
	err = c.sender.Send(sendCtx, frame)
	cancel()

	// The entry is registered before sending so a fast response finds it
	if err != nil {
		if !c.evict(p) {
			// Lost the race (e.g. the connection-lost sweep got it first)
			return p.wait()
		}
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("command %q cancelled: %w", command, ctx.Err())
		case errors.Is(err, context.DeadlineExceeded):
			return nil, c.timedOut(p, timeout)
		}
		return nil, err
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case o := <-p.done:
		return o.result, o.err

	case <-timer.C:
		if c.evict(p) {
			return nil, c.timedOut(p, timeout)
		}
		return p.wait()

	case <-ctx.Done():
		if c.evict(p) {
			return nil, fmt.Errorf("command %q cancelled: %w", command, ctx.Err())
		}
		return p.wait()
	}
}

// Pending returns the number of requests waiting for a response
func (c *Correlator) Pending() int {
	return c.pending.Size()
}

// --------------------------------------------------------------------------
// Inbound handling (implements transport.InboundHandler)
// --------------------------------------------------------------------------

// OnInbound resolves the request a response belongs to. Messages that cannot
// be decoded, carry no id or match no pending request are dropped.
func (c *Correlator) OnInbound(frame []byte) {
	var resp common.Response
	if err := c.serializer.DeserializeResponse(frame, &resp); err != nil {
		Logger.Debugf("Discarding undecodable message: %v", err)
		return
	}
	if resp.ID == "" {
		Logger.Debugf("Discarding message without id")
		return
	}

	p, ok := c.pending.LoadAndDelete(resp.ID)
	if !ok {
		// Late responses of timed out or cancelled requests end up here
		Logger.Debugf("Discarding response for unknown request %s", resp.ID)
		return
	}

	if resp.Success {
		p.done <- outcome{result: resp.Fields}
		return
	}
	p.done <- outcome{err: &common.CommandError{
		Command: p.command,
		Message: resp.Error,
		Details: resp.Fields,
	}}
}

// OnConnectionLost fails every pending request with a connection error
func (c *Correlator) OnConnectionLost(err error) {
	var connErr *common.ConnectionError
	if !errors.As(err, &connErr) {
		connErr = &common.ConnectionError{Op: "receive", Err: err}
	}

	failed := 0
	c.pending.Range(func(id string, _ *pendingRequest) bool {
		if p, ok := c.pending.LoadAndDelete(id); ok {
			p.done <- outcome{err: connErr}
			failed++
		}
		return true
	})

	if failed > 0 {
		Logger.Warningf("Connection lost, failed %d pending requests: %v", failed, err)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// register creates and stores a pending request under a fresh id
func (c *Correlator) register(command string) *pendingRequest {
	for {
		p := &pendingRequest{
			id:      c.newID(),
			command: command,
			created: time.Now(),
			done:    make(chan outcome, 1),
		}
		if _, loaded := c.pending.LoadOrStore(p.id, p); !loaded {
			return p
		}
		Logger.Warningf("Request id %s already in use, generating a new one", p.id)
	}
}

// timedOut builds the error for a request whose deadline passed
func (c *Correlator) timedOut(p *pendingRequest, timeout time.Duration) error {
	elapsed := time.Since(p.created)
	Logger.Warningf("Command %s (%s) timed out after %s", p.command, p.id, elapsed)
	return &common.TimeoutError{Command: p.command, Timeout: timeout, Elapsed: elapsed}
}

// evict removes p if it is still pending and reports whether the caller now
// owns its resolution
func (c *Correlator) evict(p *pendingRequest) bool {
	_, ok := c.pending.LoadAndDelete(p.id)
	return ok
}

// wait returns the outcome someone else already resolved p with
func (p *pendingRequest) wait() (common.Result, error) {
	o := <-p.done
	return o.result, o.err
}
