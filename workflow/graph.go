package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/hrflow/types"
)

// Terminal is the designated target marking run completion. Edges and
// decision labels may route to it; it is not a node.
const Terminal = "__terminal__"

// NodeFunc is a named unit of work. It mutates state in place; a returned
// error is recorded on the state by the engine, never thrown past it.
type NodeFunc func(ctx context.Context, state *State) error

// DecisionFunc inspects state (read-only) and returns one of the labels
// registered on its conditional edge. Returning an unregistered label is a
// fatal configuration error, distinct from a node-level runtime failure.
type DecisionFunc func(state *State) string

// RetryPolicy gives a node bounded retry with fixed backoff. Attempts
// counts total invocations; 0 or 1 means no retry.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

type edge struct {
	conditional bool
	target      string
	decide      DecisionFunc
	labels      map[string]string
}

// Graph is a named, validated collection of nodes and edges with one entry
// node. It is immutable after Build and safe for concurrent executions.
type Graph struct {
	name    string
	entry   string
	nodes   map[string]NodeFunc
	edges   map[string]edge
	retries map[string]RetryPolicy
}

// Name returns the workflow type this graph implements.
func (g *Graph) Name() string { return g.name }

// Entry returns the entry node name.
func (g *Graph) Entry() string { return g.entry }

// HasNode reports whether the graph contains the named node.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// GraphBuilder assembles a Graph. Validation happens once in Build, so a
// malformed graph fails fast at system start rather than at run time.
type GraphBuilder struct {
	name    string
	entry   string
	nodes   map[string]NodeFunc
	edges   map[string]edge
	retries map[string]RetryPolicy
	errs    []error
}

// NewGraphBuilder creates a builder for the named workflow type.
func NewGraphBuilder(name string) *GraphBuilder {
	return &GraphBuilder{
		name:    name,
		nodes:   make(map[string]NodeFunc),
		edges:   make(map[string]edge),
		retries: make(map[string]RetryPolicy),
	}
}

// AddNode registers a named unit of work.
func (b *GraphBuilder) AddNode(name string, fn NodeFunc) *GraphBuilder {
	if name == "" || name == Terminal {
		b.errs = append(b.errs, fmt.Errorf("invalid node name %q", name))
		return b
	}
	if _, dup := b.nodes[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("duplicate node %q", name))
		return b
	}
	if fn == nil {
		b.errs = append(b.errs, fmt.Errorf("node %q has no function", name))
		return b
	}
	b.nodes[name] = fn
	return b
}

// WithRetry attaches a bounded retry policy to an already-added node.
func (b *GraphBuilder) WithRetry(node string, attempts int, backoff time.Duration) *GraphBuilder {
	b.retries[node] = RetryPolicy{Attempts: attempts, Backoff: backoff}
	return b
}

// AddEdge adds an unconditional transition. The target may be Terminal.
func (b *GraphBuilder) AddEdge(from, to string) *GraphBuilder {
	if _, dup := b.edges[from]; dup {
		b.errs = append(b.errs, fmt.Errorf("node %q already has an outgoing transition", from))
		return b
	}
	b.edges[from] = edge{target: to}
	return b
}

// AddConditionalEdge adds a decision transition: decide returns a label,
// and labels maps each possible label to a target node or Terminal.
func (b *GraphBuilder) AddConditionalEdge(from string, decide DecisionFunc, labels map[string]string) *GraphBuilder {
	if _, dup := b.edges[from]; dup {
		b.errs = append(b.errs, fmt.Errorf("node %q already has an outgoing transition", from))
		return b
	}
	if decide == nil {
		b.errs = append(b.errs, fmt.Errorf("conditional edge from %q has no decision function", from))
		return b
	}
	if len(labels) == 0 {
		b.errs = append(b.errs, fmt.Errorf("conditional edge from %q has no labels", from))
		return b
	}
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}
	b.edges[from] = edge{conditional: true, decide: decide, labels: copied}
	return b
}

// SetEntry designates the entry node.
func (b *GraphBuilder) SetEntry(name string) *GraphBuilder {
	b.entry = name
	return b
}

// Build validates the graph and returns the immutable result. All
// validation failures are configuration errors.
func (b *GraphBuilder) Build() (*Graph, error) {
	for _, err := range b.errs {
		return nil, types.NewErrorf(types.ErrWorkflowConfig, "graph %s: %v", b.name, err)
	}
	if len(b.nodes) == 0 {
		return nil, types.NewErrorf(types.ErrWorkflowConfig, "graph %s has no nodes", b.name)
	}
	if b.entry == "" {
		return nil, types.NewErrorf(types.ErrWorkflowConfig, "graph %s has no entry node", b.name)
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, types.NewErrorf(types.ErrWorkflowConfig, "graph %s entry node %q does not exist", b.name, b.entry)
	}

	for from, e := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			return nil, types.NewErrorf(types.ErrWorkflowConfig,
				"graph %s: edge source %q does not exist", b.name, from)
		}
		if e.conditional {
			for label, target := range e.labels {
				if target != Terminal {
					if _, ok := b.nodes[target]; !ok {
						return nil, types.NewErrorf(types.ErrWorkflowConfig,
							"graph %s: label %q on node %q maps to unknown node %q", b.name, label, from, target)
					}
				}
			}
		} else if e.target != Terminal {
			if _, ok := b.nodes[e.target]; !ok {
				return nil, types.NewErrorf(types.ErrWorkflowConfig,
					"graph %s: edge %q -> %q targets unknown node", b.name, from, e.target)
			}
		}
	}

	for node := range b.retries {
		if _, ok := b.nodes[node]; !ok {
			return nil, types.NewErrorf(types.ErrWorkflowConfig,
				"graph %s: retry policy on unknown node %q", b.name, node)
		}
	}

	if unreached := b.unreachable(); len(unreached) > 0 {
		return nil, types.NewErrorf(types.ErrWorkflowConfig,
			"graph %s: nodes not reachable from entry: %v", b.name, unreached)
	}

	return &Graph{
		name:    b.name,
		entry:   b.entry,
		nodes:   b.nodes,
		edges:   b.edges,
		retries: b.retries,
	}, nil
}

// MustBuild is Build for static graph definitions known to be valid.
func (b *GraphBuilder) MustBuild() *Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}

func (b *GraphBuilder) unreachable() []string {
	reachable := make(map[string]bool, len(b.nodes))
	b.markReachable(b.entry, reachable)

	var orphaned []string
	for name := range b.nodes {
		if !reachable[name] {
			orphaned = append(orphaned, name)
		}
	}
	return orphaned
}

func (b *GraphBuilder) markReachable(name string, reachable map[string]bool) {
	if name == Terminal || reachable[name] {
		return
	}
	reachable[name] = true

	e, ok := b.edges[name]
	if !ok {
		return
	}
	if e.conditional {
		for _, target := range e.labels {
			b.markReachable(target, reachable)
		}
		return
	}
	b.markReachable(e.target, reachable)
}
