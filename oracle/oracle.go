// Package oracle defines the narrow interface to the external natural
// language service, a Gemini-backed HTTP client, validated score-map
// parsing, and supporting wrappers (rate limiting, prompt token budget).
//
// The oracle is treated as a fallible black box: callers validate its
// output before use and always carry a fallback. Nothing in this package
// ever executes oracle output.
package oracle

import (
	"context"
	"time"
)

// Options tune a single completion request. The zero value is usable.
type Options struct {
	// System is an optional system instruction.
	System string
	// Temperature in [0,2]; 0 means provider default.
	Temperature float32
	// MaxTokens limits the completion length; 0 means provider default.
	MaxTokens int
	// Timeout overrides the client timeout for this call when > 0.
	Timeout time.Duration
}

// Oracle produces free-text completions. Implementations must honor ctx
// cancellation and return coded errors from the types package.
type Oracle interface {
	Complete(ctx context.Context, prompt string, opts *Options) (string, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, prompt string, opts *Options) (string, error)

func (f Func) Complete(ctx context.Context, prompt string, opts *Options) (string, error) {
	return f(ctx, prompt, opts)
}
