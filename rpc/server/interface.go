package server

import (
	"context"
	"errors"
	"github.com/basset-hound/houndctl/rpc/common"
)

// HandlerFunc handles one command of the mock engine.
// It takes the parameters of the envelope (without id and command) and
// returns the fields of the success response.
// If an error is returned, the response reports failure with the error text.
// A *common.CommandError additionally contributes its Details to the response.
type HandlerFunc func(ctx context.Context, params map[string]any) (common.Result, error)

// ErrNoReply can be returned by a handler to send no response at all
var ErrNoReply = errors.New("no reply")
