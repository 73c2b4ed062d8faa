// Package handler defines the capability interface implemented by every
// specialized request handler, a Base type with the default confidence
// heuristic, and a registry that is frozen after construction.
package handler

import (
	"context"
	"strings"

	"github.com/BaSui01/hrflow/types"
)

// Handler is a named component that can attempt to satisfy a request and
// report its own capabilities.
type Handler interface {
	// Name returns the unique registry key of the handler.
	Name() string

	// Process attempts to satisfy the request. Normal failures surface as an
	// unsuccessful Response; the error return is reserved for infrastructure
	// failures the handler could not absorb.
	Process(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error)

	// Capabilities returns the ordered list of capability phrases.
	Capabilities() []string

	// CanHandle returns a confidence score in [0,1] for the request.
	CanHandle(request string, reqCtx map[string]any) float64
}

// Base provides the common identity fields and the default CanHandle
// heuristic. Concrete handlers embed it and implement Process.
type Base struct {
	name         string
	description  string
	capabilities []string
}

// NewBase creates a Base with the given identity. The capability slice is
// copied so later mutation by the caller cannot leak into the registry.
func NewBase(name, description string, capabilities []string) Base {
	caps := make([]string, len(capabilities))
	copy(caps, capabilities)
	return Base{name: name, description: description, capabilities: caps}
}

func (b *Base) Name() string        { return b.name }
func (b *Base) Description() string { return b.description }

func (b *Base) Capabilities() []string {
	caps := make([]string, len(b.capabilities))
	copy(caps, b.capabilities)
	return caps
}

// CanHandle scores the request as the fraction of capability phrases that
// appear as substrings of the lower-cased request. Handlers with no
// capabilities score 0.
func (b *Base) CanHandle(request string, _ map[string]any) float64 {
	return SubstringScore(request, b.capabilities)
}

// SubstringScore is the default capability heuristic: matches/len(caps),
// clamped to 1.0.
func SubstringScore(request string, capabilities []string) float64 {
	if len(capabilities) == 0 {
		return 0
	}
	lower := strings.ToLower(request)
	matches := 0
	for _, cap := range capabilities {
		if strings.Contains(lower, strings.ToLower(cap)) {
			matches++
		}
	}
	score := float64(matches) / float64(len(capabilities))
	if score > 1 {
		score = 1
	}
	return score
}
