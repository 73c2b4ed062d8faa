package routing

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/handler"
	"github.com/BaSui01/hrflow/internal/metrics"
	"github.com/BaSui01/hrflow/types"
)

// compositionTriggers is the fixed phrase vocabulary that marks a request
// as spanning more than one handler.
var compositionTriggers = []string{
	"hire and onboard",
	"recruit and onboard",
	"recruit and train",
	"onboard and setup",
	"onboard and performance",
	"onboard and goals",
	"performance and goals",
	"review and develop",
	"end-to-end",
	"complete process",
	"full lifecycle",
}

// NeedsComposition reports whether the request text contains a
// multi-stage trigger phrase.
func NeedsComposition(request string) bool {
	lower := strings.ToLower(request)
	for _, phrase := range compositionTriggers {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Decision is the outcome of routing one request. When NeedsComposition
// is set the caller should hand the request to the composer; Handler is
// still filled with the best single-handler choice as a fallback.
type Decision struct {
	Handler          string
	Scores           map[string]float64
	NeedsComposition bool
}

// Router selects the handler for a request based on evaluator scores.
// Selection is deterministic: the highest score wins and ties break by
// ascending handler name.
type Router struct {
	registry *handler.Registry
	eval     *Evaluator
	log      InteractionLog
	logger   *zap.Logger
	tracer   trace.Tracer
	metrics  *metrics.Collector
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithInteractionLog enables best-effort interaction logging.
func WithInteractionLog(log InteractionLog) RouterOption {
	return func(r *Router) { r.log = log }
}

// WithRouterLogger sets the logger.
func WithRouterLogger(l *zap.Logger) RouterOption {
	return func(r *Router) { r.logger = l }
}

// WithRouterMetrics sets the metrics collector.
func WithRouterMetrics(m *metrics.Collector) RouterOption {
	return func(r *Router) { r.metrics = m }
}

// NewRouter creates a Router over the registry.
func NewRouter(reg *handler.Registry, eval *Evaluator, opts ...RouterOption) (*Router, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, types.NewError(types.ErrValidation, "router requires at least one registered handler")
	}
	if eval == nil {
		return nil, types.NewError(types.ErrValidation, "router requires an evaluator")
	}
	r := &Router{
		registry: reg,
		eval:     eval,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("hrflow/routing"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Route scores all handlers and picks one. Even when every handler
// scores zero a deterministic choice is returned, never an error: with no
// signal the lexicographically smallest handler name wins.
func (r *Router) Route(ctx context.Context, request string, reqCtx map[string]any) (*Decision, error) {
	ctx, span := r.tracer.Start(ctx, "routing.route")
	defer span.End()

	scores := r.eval.Evaluate(ctx, request, reqCtx, r.registry)

	best := ""
	bestScore := -1.0
	for _, name := range r.registry.Names() {
		// Names iterates in ascending order, so a strict comparison
		// keeps the smallest name on ties.
		if scores[name] > bestScore {
			best = name
			bestScore = scores[name]
		}
	}

	decision := &Decision{
		Handler:          best,
		Scores:           scores,
		NeedsComposition: NeedsComposition(request),
	}

	span.SetAttributes(
		attribute.String("routing.handler", decision.Handler),
		attribute.Bool("routing.composed", decision.NeedsComposition),
	)
	r.metrics.ObserveRouting(decision.Handler, decision.NeedsComposition)
	r.logInteraction(ctx, request, reqCtx, decision)

	r.logger.Debug("request routed",
		zap.String("handler", decision.Handler),
		zap.Float64("score", bestScore),
		zap.Bool("needs_composition", decision.NeedsComposition),
	)
	return decision, nil
}

// Registry returns the handler registry the router selects from.
func (r *Router) Registry() *handler.Registry { return r.registry }

func (r *Router) logInteraction(ctx context.Context, request string, reqCtx map[string]any, d *Decision) {
	if r.log == nil {
		return
	}
	rec := &Interaction{
		Request:   request,
		Handler:   d.Handler,
		Composed:  d.NeedsComposition,
		Scores:    d.Scores,
		CreatedAt: time.Now().UTC(),
	}
	if v, ok := reqCtx["user_id"].(string); ok {
		rec.UserID = v
	}
	if v, ok := reqCtx["session_id"].(string); ok {
		rec.SessionID = v
	}
	if err := r.log.LogInteraction(ctx, rec); err != nil {
		r.logger.Warn("interaction logging failed", zap.Error(err))
	}
}
