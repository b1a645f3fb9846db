package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"github.com/basset-hound/houndctl/rpc/common"
	"net/url"
	"sync"
	"time"
)

// DefaultFailMessage is the error text of the fail command without an error parameter
const DefaultFailMessage = "requested failure"

// mockScreenshot is returned by the screenshot command
var mockScreenshot = base64.StdEncoding.EncodeToString([]byte("mock screenshot"))

func (e *MockEngine) registerBuiltins() {
	e.RegisterHandler("ping", handlePing)
	e.RegisterHandler("echo", handleEcho)
	e.RegisterHandler("sleep", handleSleep)
	e.RegisterHandler("fail", handleFail)
	e.RegisterHandler("drop", handleDrop)
	e.RegisterHandler("screenshot", handleScreenshot)

	e.RegisterHandler("navigate", e.page.navigate)
	e.RegisterHandler("get_url", e.page.getURL)
	e.RegisterHandler("get_title", e.page.getTitle)
	e.RegisterHandler("go_back", e.page.goBack)
	e.RegisterHandler("go_forward", e.page.goForward)
	e.RegisterHandler("reload", e.page.reload)
}

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

func handlePing(_ context.Context, _ map[string]any) (common.Result, error) {
	return common.Result{"pong": true}, nil
}

// handleEcho returns its parameters
func handleEcho(_ context.Context, params map[string]any) (common.Result, error) {
	result := make(common.Result, len(params))
	for k, v := range params {
		result[k] = v
	}
	return result, nil
}

// handleSleep answers after ms milliseconds, or not at all if the
// connection goes away first
func handleSleep(ctx context.Context, params map[string]any) (common.Result, error) {
	ms, _ := common.Result(params).Float("ms")
	if ms < 0 {
		return nil, &common.CommandError{Command: "sleep", Message: "ms must not be negative"}
	}

	timer := time.NewTimer(time.Duration(ms * float64(time.Millisecond)))
	defer timer.Stop()

	select {
	case <-timer.C:
		return common.Result{"slept": ms}, nil
	case <-ctx.Done():
		return nil, ErrNoReply
	}
}

// handleFail always fails. The error parameter is the message, all other
// parameters come back as details.
func handleFail(_ context.Context, params map[string]any) (common.Result, error) {
	message, _ := common.Result(params).String("error")
	if message == "" {
		message = DefaultFailMessage
	}

	details := make(common.Result, len(params))
	for k, v := range params {
		if k != common.FieldError {
			details[k] = v
		}
	}
	return nil, &common.CommandError{Command: "fail", Message: message, Details: details}
}

func handleDrop(_ context.Context, _ map[string]any) (common.Result, error) {
	return nil, ErrNoReply
}

func handleScreenshot(_ context.Context, params map[string]any) (common.Result, error) {
	format, _ := common.Result(params).String("format")
	if format == "" {
		format = "png"
	}
	return common.Result{"data": mockScreenshot, "format": format}, nil
}

// --------------------------------------------------------------------------
// Page state
// --------------------------------------------------------------------------

type page struct {
	url   string
	title string
}

// pageState is the navigation history of the single mock tab
type pageState struct {
	mu      sync.Mutex
	history []page
	pos     int
}

func newPageState() *pageState {
	return &pageState{history: []page{{url: "about:blank"}}}
}

func (s *pageState) current() page {
	return s.history[s.pos]
}

func (p page) result() common.Result {
	return common.Result{"url": p.url, "title": p.title}
}

func (s *pageState) navigate(_ context.Context, params map[string]any) (common.Result, error) {
	raw, _ := common.Result(params).String("url")
	if raw == "" {
		return nil, &common.CommandError{Command: "navigate", Message: "Missing required parameter: url"}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, &common.CommandError{
			Command: "navigate",
			Message: fmt.Sprintf("Invalid URL: %s", raw),
			Details: common.Result{"url": raw},
		}
	}

	title, _ := common.Result(params).String("title")
	if title == "" {
		title = u.Host
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A new page drops the forward history
	s.history = append(s.history[:s.pos+1], page{url: u.String(), title: title})
	s.pos = len(s.history) - 1
	return s.current().result(), nil
}

func (s *pageState) getURL(_ context.Context, _ map[string]any) (common.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return common.Result{"url": s.current().url}, nil
}

func (s *pageState) getTitle(_ context.Context, _ map[string]any) (common.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return common.Result{"title": s.current().title}, nil
}

func (s *pageState) goBack(_ context.Context, _ map[string]any) (common.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos == 0 {
		return nil, &common.CommandError{Command: "go_back", Message: "No previous page"}
	}
	s.pos--
	return s.current().result(), nil
}

func (s *pageState) goForward(_ context.Context, _ map[string]any) (common.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos == len(s.history)-1 {
		return nil, &common.CommandError{Command: "go_forward", Message: "No next page"}
	}
	s.pos++
	return s.current().result(), nil
}

func (s *pageState) reload(_ context.Context, _ map[string]any) (common.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current().result(), nil
}
