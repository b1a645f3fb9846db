package correlator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/basset-hound/houndctl/rpc/common"
	"github.com/basset-hound/houndctl/rpc/serializer"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

// fakeSender records every message instead of writing it to a connection
type fakeSender struct {
	frames chan []byte
	err    error
}

func newFakeSender() *fakeSender {
	return &fakeSender{frames: make(chan []byte, 1024)}
}

func (s *fakeSender) Send(_ context.Context, frame []byte) error {
	if s.err != nil {
		return s.err
	}
	s.frames <- frame
	return nil
}

type issueResult struct {
	result common.Result
	err    error
	at     time.Time
}

// issueAsync runs Issue in a goroutine and delivers its outcome on the returned channel
func issueAsync(c *Correlator, command string, params map[string]any, timeout time.Duration) <-chan issueResult {
	ch := make(chan issueResult, 1)
	go func() {
		res, err := c.Issue(context.Background(), command, params, timeout)
		ch <- issueResult{result: res, err: err, at: time.Now()}
	}()
	return ch
}

// nextEnvelope waits for the next message sent and decodes it
func nextEnvelope(t *testing.T, s *fakeSender) common.Envelope {
	t.Helper()
	select {
	case frame := <-s.frames:
		var env common.Envelope
		if err := serializer.NewJSONSerializer().DeserializeEnvelope(frame, &env); err != nil {
			t.Fatalf("Failed to decode sent message: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatalf("Timeout waiting for a message to be sent")
	}
	return common.Envelope{}
}

// respond feeds a response object into the correlator
func respond(t *testing.T, c *Correlator, fields map[string]any) {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Failed to encode response: %v", err)
	}
	c.OnInbound(data)
}

// await waits for an issued request to resolve
func await(t *testing.T, ch <-chan issueResult, within time.Duration) issueResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(within):
		t.Fatalf("Request did not resolve within %s", within)
	}
	return issueResult{}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

// TestIssueSuccess checks the basic request/response cycle
func TestIssueSuccess(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	ch := issueAsync(c, "navigate", map[string]any{"url": "https://example.com"}, time.Second)

	env := nextEnvelope(t, sender)
	if env.Command != "navigate" {
		t.Errorf("Expected command navigate, got %q", env.Command)
	}
	if env.Params["url"] != "https://example.com" {
		t.Errorf("Expected url param, got %v", env.Params)
	}
	if c.Pending() != 1 {
		t.Errorf("Expected 1 pending request, got %d", c.Pending())
	}

	respond(t, c, map[string]any{"id": env.ID, "success": true, "url": "https://example.com/"})

	r := await(t, ch, time.Second)
	if r.err != nil {
		t.Fatalf("Unexpected error: %v", r.err)
	}
	if url, _ := r.result.String("url"); url != "https://example.com/" {
		t.Errorf("Expected url in result, got %v", r.result)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests, got %d", c.Pending())
	}
}

// TestIssueCommandError checks that a failure response keeps message and details
func TestIssueCommandError(t *testing.T) {
	tests := []struct {
		name     string
		response map[string]any
		message  string
	}{
		{"WithMessage", map[string]any{"success": false, "error": "Element not found", "selector": "#x"}, "Element not found"},
		{"WithoutMessage", map[string]any{"success": false, "selector": "#x"}, common.UnknownError},
		{"EmptyMessage", map[string]any{"success": false, "error": "", "selector": "#x"}, common.UnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := newFakeSender()
			c := New(sender, serializer.NewJSONSerializer())

			ch := issueAsync(c, "click", map[string]any{"selector": "#x"}, time.Second)
			env := nextEnvelope(t, sender)

			tt.response["id"] = env.ID
			respond(t, c, tt.response)

			r := await(t, ch, time.Second)
			var cmdErr *common.CommandError
			if !errors.As(r.err, &cmdErr) {
				t.Fatalf("Expected CommandError, got %v", r.err)
			}
			if cmdErr.Command != "click" {
				t.Errorf("Expected command click, got %q", cmdErr.Command)
			}
			if cmdErr.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, cmdErr.Message)
			}
			if sel, _ := cmdErr.Details.String("selector"); sel != "#x" {
				t.Errorf("Expected details to be kept, got %v", cmdErr.Details)
			}
			if common.KindOf(r.err) != common.KindCommand {
				t.Errorf("Expected kind command, got %s", common.KindOf(r.err))
			}
		})
	}
}

// TestIssueMissingSuccessIsSuccess checks the handling of older engines
func TestIssueMissingSuccessIsSuccess(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	ch := issueAsync(c, "get_title", nil, time.Second)
	env := nextEnvelope(t, sender)
	respond(t, c, map[string]any{"id": env.ID, "title": "Example"})

	r := await(t, ch, time.Second)
	if r.err != nil {
		t.Fatalf("Unexpected error: %v", r.err)
	}
	if title, _ := r.result.String("title"); title != "Example" {
		t.Errorf("Expected title, got %v", r.result)
	}
}

// TestIssueTimeout checks that the timeout is honored and a late response is dropped
func TestIssueTimeout(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	const timeout = 50 * time.Millisecond
	start := time.Now()
	ch := issueAsync(c, "sleep", nil, timeout)
	env := nextEnvelope(t, sender)

	r := await(t, ch, time.Second)
	var timeoutErr *common.TimeoutError
	if !errors.As(r.err, &timeoutErr) {
		t.Fatalf("Expected TimeoutError, got %v", r.err)
	}
	if elapsed := r.at.Sub(start); elapsed < timeout {
		t.Errorf("Timed out after %s, before the timeout of %s", elapsed, timeout)
	}
	if timeoutErr.Timeout != timeout {
		t.Errorf("Expected timeout %s in error, got %s", timeout, timeoutErr.Timeout)
	}
	if timeoutErr.Elapsed < timeout {
		t.Errorf("Expected elapsed >= %s, got %s", timeout, timeoutErr.Elapsed)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected the timed out request to be evicted, %d pending", c.Pending())
	}

	// The late response must be discarded without side effects
	respond(t, c, map[string]any{"id": env.ID, "success": true})
	if c.Pending() != 0 {
		t.Errorf("Late response created a pending entry")
	}
}

// TestIssueContextCancel checks that a cancelled caller evicts its request
func TestIssueContextCancel(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Issue(ctx, "sleep", nil, 10*time.Second)
		errCh <- err
	}()

	env := nextEnvelope(t, sender)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
		if common.KindOf(err) != common.KindCancelled {
			t.Errorf("Expected kind cancelled, got %s", common.KindOf(err))
		}
	case <-time.After(time.Second):
		t.Fatalf("Cancelled request did not return")
	}

	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests, got %d", c.Pending())
	}
	respond(t, c, map[string]any{"id": env.ID, "success": true})
}

// TestIssueSendFailure checks that a failed send leaves nothing behind
func TestIssueSendFailure(t *testing.T) {
	sender := newFakeSender()
	sender.err = &common.ConnectionError{Op: "send", Err: common.ErrNotConnected}
	c := New(sender, serializer.NewJSONSerializer())

	_, err := c.Issue(context.Background(), "get_url", nil, time.Second)
	if !errors.Is(err, common.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
	if common.KindOf(err) != common.KindConnection {
		t.Errorf("Expected kind connection, got %s", common.KindOf(err))
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests, got %d", c.Pending())
	}
}

// TestIssueReservedParam checks that invalid envelopes are never sent
func TestIssueReservedParam(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	_, err := c.Issue(context.Background(), "echo", map[string]any{"id": "mine"}, time.Second)
	if !errors.Is(err, common.ErrReservedParam) {
		t.Errorf("Expected ErrReservedParam, got %v", err)
	}
	if len(sender.frames) != 0 {
		t.Errorf("Invalid envelope was sent")
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests, got %d", c.Pending())
	}
}

// TestConnectionLostFailsAllPending checks that a drop fails every request exactly once
func TestConnectionLostFailsAllPending(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	const n = 20
	results := make([]<-chan issueResult, n)
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		results[i] = issueAsync(c, "sleep", nil, 5*time.Second)
		ids[i] = nextEnvelope(t, sender).ID
	}

	c.OnConnectionLost(&common.ConnectionError{Op: "receive", Err: io.EOF})

	for i, ch := range results {
		r := await(t, ch, time.Second)
		if !errors.Is(r.err, io.EOF) {
			t.Errorf("Request %d: expected cause io.EOF, got %v", i, r.err)
		}
		if common.KindOf(r.err) != common.KindConnection {
			t.Errorf("Request %d: expected kind connection, got %s", i, common.KindOf(r.err))
		}
	}

	// Responses after the drop belong to nobody
	for _, id := range ids {
		respond(t, c, map[string]any{"id": id, "success": true})
	}
	for i, ch := range results {
		select {
		case r := <-ch:
			t.Errorf("Request %d resolved twice: %v", i, r)
		default:
		}
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests, got %d", c.Pending())
	}
}

// TestConnectionLostWrapsPlainErrors checks the error used for foreign causes
func TestConnectionLostWrapsPlainErrors(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	ch := issueAsync(c, "sleep", nil, 5*time.Second)
	nextEnvelope(t, sender)

	cause := errors.New("broken pipe")
	c.OnConnectionLost(cause)

	r := await(t, ch, time.Second)
	var connErr *common.ConnectionError
	if !errors.As(r.err, &connErr) {
		t.Fatalf("Expected ConnectionError, got %v", r.err)
	}
	if !errors.Is(r.err, cause) {
		t.Errorf("Expected the cause to be kept, got %v", r.err)
	}
}

// TestRoundTripOutOfOrder answers many concurrent requests in random order
func TestRoundTripOutOfOrder(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	const n = 200
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Issue(context.Background(), "echo", map[string]any{"n": i}, 5*time.Second)
			if err != nil {
				errs <- err
				return
			}
			if got, _ := res.Float("n"); int(got) != i {
				errs <- fmt.Errorf("request %d got the response of %v", i, got)
			}
		}(i)
	}

	envelopes := make([]common.Envelope, n)
	for i := range envelopes {
		envelopes[i] = nextEnvelope(t, sender)
	}
	rand.Shuffle(n, func(i, j int) { envelopes[i], envelopes[j] = envelopes[j], envelopes[i] })

	for _, env := range envelopes {
		respond(t, c, map[string]any{"id": env.ID, "success": true, "n": env.Params["n"]})
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests, got %d", c.Pending())
	}
}

// TestIsolation checks that outcomes of concurrent requests do not affect each other
func TestIsolation(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	okCh := issueAsync(c, "ok", nil, time.Second)
	okEnv := nextEnvelope(t, sender)
	failCh := issueAsync(c, "fail", nil, time.Second)
	failEnv := nextEnvelope(t, sender)
	timeoutCh := issueAsync(c, "slow", nil, 50*time.Millisecond)
	nextEnvelope(t, sender)

	respond(t, c, map[string]any{"id": failEnv.ID, "success": false, "error": "boom"})
	respond(t, c, map[string]any{"id": okEnv.ID, "success": true})

	if r := await(t, okCh, time.Second); r.err != nil {
		t.Errorf("Expected success, got %v", r.err)
	}
	if r := await(t, failCh, time.Second); common.KindOf(r.err) != common.KindCommand {
		t.Errorf("Expected command error, got %v", r.err)
	}
	if r := await(t, timeoutCh, time.Second); common.KindOf(r.err) != common.KindTimeout {
		t.Errorf("Expected timeout, got %v", r.err)
	}
}

// TestFastResponseNextToShortTimeout issues A (1000ms) and B (50ms) 10ms
// later, answers A after 30ms and never answers B
func TestFastResponseNextToShortTimeout(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	start := time.Now()
	aCh := issueAsync(c, "a", nil, 1000*time.Millisecond)
	aEnv := nextEnvelope(t, sender)

	time.Sleep(10 * time.Millisecond)
	bStart := time.Now()
	bCh := issueAsync(c, "b", nil, 50*time.Millisecond)
	nextEnvelope(t, sender)

	time.Sleep(time.Until(start.Add(30 * time.Millisecond)))
	respond(t, c, map[string]any{"id": aEnv.ID, "success": true})

	a := await(t, aCh, 2*time.Second)
	if a.err != nil {
		t.Fatalf("Expected A to succeed, got %v", a.err)
	}
	if elapsed := a.at.Sub(start); elapsed >= 500*time.Millisecond {
		t.Errorf("A resolved after %s, expected about 30ms", elapsed)
	}

	b := await(t, bCh, 2*time.Second)
	if common.KindOf(b.err) != common.KindTimeout {
		t.Fatalf("Expected B to time out, got %v", b.err)
	}
	elapsed := b.at.Sub(bStart)
	if elapsed < 50*time.Millisecond || elapsed >= 1000*time.Millisecond {
		t.Errorf("B timed out after %s, expected about 50ms", elapsed)
	}
}

// TestDropFailsLongRequestImmediately checks that a drop does not wait for the timeout
func TestDropFailsLongRequestImmediately(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	ch := issueAsync(c, "c", nil, 5000*time.Millisecond)
	nextEnvelope(t, sender)
	time.Sleep(10 * time.Millisecond)

	dropped := time.Now()
	c.OnConnectionLost(&common.ConnectionError{Op: "receive", Err: io.EOF})

	r := await(t, ch, time.Second)
	if common.KindOf(r.err) != common.KindConnection {
		t.Fatalf("Expected connection error, got %v", r.err)
	}
	if elapsed := r.at.Sub(dropped); elapsed > 500*time.Millisecond {
		t.Errorf("Request failed %s after the drop, expected near-immediately", elapsed)
	}
}

// TestUnmatchedMessagesAreDiscarded feeds messages that belong to no request
func TestUnmatchedMessagesAreDiscarded(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	ch := issueAsync(c, "get_url", nil, time.Second)
	env := nextEnvelope(t, sender)

	c.OnInbound([]byte(`{"id":"never-issued","success":false,"error":"x"}`))
	c.OnInbound([]byte(`{"success":true}`))
	c.OnInbound([]byte(`not json`))
	c.OnInbound([]byte(`[1,2,3]`))

	if c.Pending() != 1 {
		t.Errorf("Expected the issued request to stay pending, got %d", c.Pending())
	}

	respond(t, c, map[string]any{"id": env.ID, "success": true})
	if r := await(t, ch, time.Second); r.err != nil {
		t.Errorf("Unexpected error: %v", r.err)
	}
}

// TestIdentifierCollisionRetried checks that an id in use is never handed out twice
func TestIdentifierCollisionRetried(t *testing.T) {
	sender := newFakeSender()
	c := New(sender, serializer.NewJSONSerializer())

	c.pending.Store("taken", &pendingRequest{id: "taken", done: make(chan outcome, 1)})
	ids := []string{"taken", "taken", "fresh"}
	c.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	ch := issueAsync(c, "ping", nil, time.Second)
	env := nextEnvelope(t, sender)
	if env.ID != "fresh" {
		t.Errorf("Expected id fresh, got %q", env.ID)
	}

	respond(t, c, map[string]any{"id": "fresh", "success": true})
	if r := await(t, ch, time.Second); r.err != nil {
		t.Errorf("Unexpected error: %v", r.err)
	}
	if c.Pending() != 1 {
		t.Errorf("Expected only the pre-existing entry to remain, got %d", c.Pending())
	}
}

// stallingSender never completes a write, like a peer that stopped reading
type stallingSender struct{}

func (stallingSender) Send(ctx context.Context, _ []byte) error {
	<-ctx.Done()
	return &common.ConnectionError{Op: "send", Err: ctx.Err()}
}

// TestTimeoutCoversStalledSend checks that the timeout also bounds sending
func TestTimeoutCoversStalledSend(t *testing.T) {
	c := New(stallingSender{}, serializer.NewJSONSerializer())

	ch := issueAsync(c, "ping", nil, 50*time.Millisecond)
	r := await(t, ch, time.Second)

	var timeoutErr *common.TimeoutError
	if !errors.As(r.err, &timeoutErr) {
		t.Fatalf("Expected TimeoutError, got %v", r.err)
	}
	if timeoutErr.Timeout != 50*time.Millisecond {
		t.Errorf("Expected the configured timeout, got %s", timeoutErr.Timeout)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests, got %d", c.Pending())
	}

	// The caller giving up first is a cancellation, not a timeout
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Issue(ctx, "ping", nil, 5*time.Second)
	if common.KindOf(err) != common.KindCancelled {
		t.Errorf("Expected kind cancelled, got %s (%v)", common.KindOf(err), err)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests, got %d", c.Pending())
	}
}

// racingSender answers every request from its own goroutine after a random
// delay, so responses compete with timeouts and connection loss
type racingSender struct {
	c        *Correlator
	mu       sync.Mutex
	requests []*pendingRequest
	wg       sync.WaitGroup
}

func (s *racingSender) Send(_ context.Context, frame []byte) error {
	var env common.Envelope
	if err := serializer.NewJSONSerializer().DeserializeEnvelope(frame, &env); err != nil {
		return err
	}
	if p, ok := s.c.pending.Load(env.ID); ok {
		s.mu.Lock()
		s.requests = append(s.requests, p)
		s.mu.Unlock()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Microsecond)
		data, _ := json.Marshal(map[string]any{"id": env.ID, "success": true})
		s.c.OnInbound(data)
	}()
	return nil
}

// TestConcurrentRemovalPaths lets response, timeout and connection loss race
// for the same requests. Every request must be resolved exactly once.
func TestConcurrentRemovalPaths(t *testing.T) {
	const n = 500

	sender := &racingSender{}
	c := New(sender, serializer.NewJSONSerializer())
	sender.c = c

	// Connection loss sweeps run the whole time
	stop := make(chan struct{})
	sweeps := make(chan struct{})
	go func() {
		defer close(sweeps)
		for {
			select {
			case <-stop:
				return
			default:
			}
			c.OnConnectionLost(errors.New("connection reset"))
			time.Sleep(time.Duration(rand.Intn(300)) * time.Microsecond)
		}
	}()

	kinds := make([]common.ErrorKind, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			timeout := time.Duration(1+rand.Intn(800)) * time.Microsecond
			res, err := c.Issue(context.Background(), "ping", nil, timeout)
			kinds[i] = common.KindOf(err)
			if err == nil && res == nil {
				t.Errorf("Request %d succeeded without a result", i)
			}
		}(i)
	}
	wg.Wait()
	close(stop)
	<-sweeps

	// All late responses must find nothing to resolve
	done := make(chan struct{})
	go func() {
		sender.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Response goroutines blocked, a request was resolved twice")
	}

	counts := make(map[common.ErrorKind]int)
	for _, k := range kinds {
		counts[k]++
	}
	for k := range counts {
		if k != common.KindNone && k != common.KindConnection && k != common.KindTimeout {
			t.Errorf("Unexpected outcome %s (%d times)", k, counts[k])
		}
	}
	t.Logf("outcomes: %v", counts)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	for _, p := range sender.requests {
		if len(p.done) != 0 {
			t.Errorf("Request %s was resolved more than once", p.id)
		}
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests, got %d", c.Pending())
	}
}
