package common

import (
	"fmt"
	"sort"
)

// --------------------------------------------------------------------------
// Wire field names
// --------------------------------------------------------------------------

const (
	FieldID      = "id"
	FieldCommand = "command"
	FieldSuccess = "success"
	FieldError   = "error"
)

// UnknownError is the failure message used when the engine reports
// success=false without an error field
const UnknownError = "Unknown error"

// --------------------------------------------------------------------------
// Envelope
// --------------------------------------------------------------------------

// Envelope is one outbound message. On the wire the parameters are
// flattened next to id and command:
//
//	{"id": "...", "command": "navigate", "url": "https://example.com"}
type Envelope struct {
	ID      string
	Command string
	Params  map[string]any
}

// Validate checks that the envelope can be flattened without losing data
func (e *Envelope) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("envelope without id")
	}
	if e.Command == "" {
		return fmt.Errorf("envelope without command")
	}
	for _, key := range []string{FieldID, FieldCommand} {
		if _, ok := e.Params[key]; ok {
			return fmt.Errorf("%w: %q", ErrReservedParam, key)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Response
// --------------------------------------------------------------------------

// Response is one inbound message matched to a request by ID.
// Fields holds the complete decoded object including id, success and error.
type Response struct {
	ID      string
	Success bool
	Error   string
	Fields  Result
}

// NewSuccessResponse builds the response a server sends for a successful command
func NewSuccessResponse(id string, result Result) *Response {
	return &Response{ID: id, Success: true, Fields: result}
}

// NewErrorResponse builds the response a server sends for a failed command
func NewErrorResponse(id string, message string, details Result) *Response {
	return &Response{ID: id, Success: false, Error: message, Fields: details}
}

// --------------------------------------------------------------------------
// Result
// --------------------------------------------------------------------------

// Result is a decoded response object. The engine's payloads are not
// interpreted here, the accessors only save callers some type assertions.
type Result map[string]any

// String returns the string value of key
func (r Result) String(key string) (string, bool) {
	v, ok := r[key].(string)
	return v, ok
}

// Bool returns the bool value of key
func (r Result) Bool(key string) (bool, bool) {
	v, ok := r[key].(bool)
	return v, ok
}

// Float returns the numeric value of key (JSON numbers decode to float64)
func (r Result) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Map returns the nested object stored at key
func (r Result) Map(key string) (Result, bool) {
	v, ok := r[key].(map[string]any)
	return v, ok
}

// Slice returns the array stored at key
func (r Result) Slice(key string) ([]any, bool) {
	v, ok := r[key].([]any)
	return v, ok
}

// Keys returns the field names in sorted order
func (r Result) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
