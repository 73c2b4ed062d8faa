package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/internal/metrics"
	"github.com/BaSui01/hrflow/types"
)

// Engine compiles graphs once at construction and executes them with
// persisted, resumable checkpoints. The engine itself is read-only after
// construction and safe for concurrent executions of distinct thread ids.
type Engine struct {
	graphs  map[string]*Graph
	store   CheckpointStore
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.Collector
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(collector *metrics.Collector) EngineOption {
	return func(e *Engine) { e.metrics = collector }
}

// NewEngine creates an engine over the given graphs. Graph names are the
// workflow types accepted by Execute. A nil store gets an in-memory one.
func NewEngine(store CheckpointStore, graphs []*Graph, opts ...EngineOption) (*Engine, error) {
	if store == nil {
		store = NewMemoryCheckpointStore()
	}
	e := &Engine{
		graphs: make(map[string]*Graph, len(graphs)),
		store:  store,
		logger: zap.NewNop(),
		tracer: otel.Tracer("hrflow/workflow"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("component", "workflow_engine"))

	for _, g := range graphs {
		if g == nil {
			return nil, types.NewError(types.ErrWorkflowConfig, "nil graph")
		}
		if _, dup := e.graphs[g.Name()]; dup {
			return nil, types.NewErrorf(types.ErrWorkflowConfig, "duplicate workflow type %q", g.Name())
		}
		e.graphs[g.Name()] = g
	}
	return e, nil
}

// WorkflowTypes returns the registered workflow type names.
func (e *Engine) WorkflowTypes() []string {
	names := make([]string, 0, len(e.graphs))
	for name := range e.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs a workflow from its entry node. initial may be nil or a
// partially populated seed; identity and bookkeeping fields are filled by
// the engine. The final state is persisted under (workflowType, threadID)
// and returned. An unknown workflow type or an unregistered decision label
// is a fatal configuration error.
func (e *Engine) Execute(ctx context.Context, workflowType string, initial *State, threadID string) (*State, error) {
	g, ok := e.graphs[workflowType]
	if !ok {
		return nil, types.NewErrorf(types.ErrWorkflowConfig, "unknown workflow type %q", workflowType)
	}

	state := initial
	if state == nil {
		state = NewState(workflowType, threadID)
	} else {
		state.normalize(workflowType, threadID)
	}
	state.CurrentStep = ""

	return e.runToCompletion(ctx, g, state)
}

// GetState returns the last persisted checkpoint state, or nil when none
// exists. It never fails for an unknown thread id.
func (e *Engine) GetState(ctx context.Context, workflowType, threadID string) (*State, error) {
	cp, err := e.store.Load(ctx, workflowType, threadID)
	if err == ErrCheckpointNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s/%s: %w", workflowType, threadID, err)
	}
	return cp.State, nil
}

// Resume loads the last checkpoint and re-enters the graph at the state's
// current step, re-executing that node (at-least-once semantics). A
// missing checkpoint is a fatal configuration error.
func (e *Engine) Resume(ctx context.Context, workflowType, threadID string) (*State, error) {
	g, ok := e.graphs[workflowType]
	if !ok {
		return nil, types.NewErrorf(types.ErrWorkflowConfig, "unknown workflow type %q", workflowType)
	}

	cp, err := e.store.Load(ctx, workflowType, threadID)
	if err == ErrCheckpointNotFound {
		return nil, types.NewErrorf(types.ErrWorkflowConfig,
			"no checkpoint for workflow %q thread %q", workflowType, threadID)
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s/%s: %w", workflowType, threadID, err)
	}

	state := cp.State
	state.Status = StatusRunning
	state.CompletedAt = nil

	e.logger.Info("resuming workflow",
		zap.String("workflow_type", workflowType),
		zap.String("thread_id", threadID),
		zap.String("current_step", state.CurrentStep),
	)
	return e.runToCompletion(ctx, g, state)
}

// Cancel marks a persisted execution cancelled with a completion
// timestamp. It returns false when no checkpoint exists. Cancellation is
/// cooperative: it does not interrupt a node already executing.
func (e *Engine) Cancel(ctx context.Context, workflowType, threadID string) (bool, error) {
	cp, err := e.store.Load(ctx, workflowType, threadID)
	if err == ErrCheckpointNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load checkpoint %s/%s: %w", workflowType, threadID, err)
	}

	now := time.Now().UTC()
	cp.State.Status = StatusCancelled
	cp.State.CompletedAt = &now
	if err := e.store.Save(ctx, NewCheckpoint(cp.State)); err != nil {
		return false, fmt.Errorf("save cancelled state: %w", err)
	}

	e.logger.Info("workflow cancelled",
		zap.String("workflow_type", workflowType),
		zap.String("thread_id", threadID),
	)
	return true, nil
}

func (e *Engine) runToCompletion(ctx context.Context, g *Graph, state *State) (*State, error) {
	ctx, span := e.tracer.Start(ctx, "workflow.execute",
		trace.WithAttributes(
			attribute.String("workflow.type", g.Name()),
			attribute.String("workflow.thread_id", state.ExecutionID),
		))
	defer span.End()

	start := time.Now()
	err := e.walk(ctx, g, state)

	now := time.Now().UTC()
	state.CompletedAt = &now
	if err != nil {
		state.Status = StatusFailed
	} else if len(state.Errors) == 0 {
		state.Status = StatusCompleted
	} else {
		state.Status = StatusFailed
	}

	e.checkpoint(ctx, state)
	e.metrics.ObserveWorkflow(g.Name(), string(state.Status), time.Since(start))

	e.logger.Info("workflow finished",
		zap.String("workflow_type", g.Name()),
		zap.String("thread_id", state.ExecutionID),
		zap.String("status", string(state.Status)),
		zap.Int("errors", len(state.Errors)),
		zap.Duration("duration", time.Since(start)),
	)

	if err != nil {
		return state, err
	}
	return state, nil
}

// walk advances from the current step (or entry) until a terminal marker
// is reached or a node has no outgoing transition. Node failures are
// appended to state.Errors and the walk continues; only an unregistered
// decision label aborts with a configuration error.
func (e *Engine) walk(ctx context.Context, g *Graph, state *State) error {
	cur := state.CurrentStep
	if cur == "" {
		cur = g.entry
	}

	for {
		fn, ok := g.nodes[cur]
		if !ok {
			// Only possible when resuming a checkpoint written by a
			// different graph revision.
			return types.NewErrorf(types.ErrWorkflowConfig,
				"workflow %q: current step %q is not a node", g.name, cur)
		}

		state.CurrentStep = cur
		e.runNode(ctx, g, cur, fn, state)
		e.checkpoint(ctx, state)

		out, ok := g.edges[cur]
		if !ok {
			return nil
		}

		var next string
		if out.conditional {
			label := out.decide(state)
			target, ok := out.labels[label]
			if !ok {
				return types.NewErrorf(types.ErrWorkflowConfig,
					"workflow %q: node %q decision returned unregistered label %q", g.name, cur, label)
			}
			state.Decisions[cur] = label
			next = target
		} else {
			next = out.target
		}

		if next == Terminal {
			return nil
		}
		cur = next
	}
}

// runNode invokes one node with its retry policy. Failures land on
// state.Errors; retries increment state.RetryCount and are logged on the
// state distinctly from the terminal failure.
func (e *Engine) runNode(ctx context.Context, g *Graph, name string, fn NodeFunc, state *State) {
	policy := g.retries[name]
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	start := time.Now()
	defer func() {
		e.metrics.ObserveNode(g.Name(), name, time.Since(start))
	}()

	for attempt := 1; attempt <= attempts; attempt++ {
		err := invoke(ctx, fn, state)
		if err == nil {
			return
		}

		if attempt < attempts {
			state.RetryCount++
			state.AddMessage("retry", fmt.Sprintf("node %s attempt %d failed: %v", name, attempt, err))
			e.logger.Warn("node failed, retrying",
				zap.String("workflow_type", g.Name()),
				zap.String("node", name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if !sleepCtx(ctx, policy.Backoff) {
				state.AddError(fmt.Sprintf("%s: %v", name, ctx.Err()))
				return
			}
			continue
		}

		state.AddError(fmt.Sprintf("%s: %v", name, err))
		e.logger.Warn("node failed",
			zap.String("workflow_type", g.Name()),
			zap.String("node", name),
			zap.Error(err),
		)
	}
}

// invoke runs a node function, converting a panic into an error so a
// misbehaving node cannot take down the engine.
func invoke(ctx context.Context, fn NodeFunc, state *State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node panicked: %v", r)
		}
	}()
	return fn(ctx, state)
}

// checkpoint persists the current state, best effort. A persistence
// failure is logged and does not interrupt execution.
func (e *Engine) checkpoint(ctx context.Context, state *State) {
	if err := e.store.Save(ctx, NewCheckpoint(state)); err != nil {
		e.logger.Warn("checkpoint save failed",
			zap.String("workflow_type", state.WorkflowType),
			zap.String("thread_id", state.ExecutionID),
			zap.Error(err),
		)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
