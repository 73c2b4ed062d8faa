// Package compose runs named multi-handler pipelines for requests that
// span more than one handler, merging per-stage results into a single
// response.
package compose

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/handler"
	"github.com/BaSui01/hrflow/routing"
	"github.com/BaSui01/hrflow/types"
)

// StageResult is the outcome of one pipeline stage.
type StageResult struct {
	Stage    string
	Response *types.Response
}

// Composer executes pipelines stage by stage, handing each successful
// stage's data to the next one, and falls back to single-handler routing
// when no pipeline matches the request.
type Composer struct {
	registry  *handler.Registry
	router    *routing.Router
	pipelines []Pipeline
	logger    *zap.Logger
	tracer    trace.Tracer
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithPipelines replaces the default pipeline set.
func WithPipelines(pipelines []Pipeline) ComposerOption {
	return func(c *Composer) { c.pipelines = pipelines }
}

// WithComposerLogger sets the logger.
func WithComposerLogger(l *zap.Logger) ComposerOption {
	return func(c *Composer) { c.logger = l }
}

// NewComposer creates a Composer over the registry. Every pipeline stage
// must name a registered handler; an unknown stage is a fatal
// configuration error.
func NewComposer(reg *handler.Registry, router *routing.Router, opts ...ComposerOption) (*Composer, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, types.NewError(types.ErrValidation, "composer requires at least one registered handler")
	}
	if router == nil {
		return nil, types.NewError(types.ErrValidation, "composer requires a router for fallback routing")
	}
	c := &Composer{
		registry:  reg,
		router:    router,
		pipelines: DefaultPipelines(),
		logger:    zap.NewNop(),
		tracer:    otel.Tracer("hrflow/compose"),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, p := range c.pipelines {
		if len(p.Stages) == 0 {
			return nil, types.NewErrorf(types.ErrWorkflowConfig, "pipeline %q has no stages", p.ID)
		}
		for _, stage := range p.Stages {
			if _, ok := reg.Get(stage); !ok {
				return nil, types.NewErrorf(types.ErrWorkflowConfig,
					"pipeline %q: stage %q is not a registered handler", p.ID, stage)
			}
		}
	}
	return c, nil
}

// Match returns the first pipeline whose trigger phrases appear in the
// request.
func (c *Composer) Match(request string) (Pipeline, bool) {
	for _, p := range c.pipelines {
		if p.Matches(request) {
			return p, true
		}
	}
	return Pipeline{}, false
}

// Run matches the request to a pipeline and executes it. With no matching
// pipeline the request falls back to single-handler routing.
func (c *Composer) Run(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	ctx, span := c.tracer.Start(ctx, "compose.run")
	defer span.End()

	p, ok := c.Match(request)
	if !ok {
		c.logger.Debug("no pipeline matched, falling back to single handler routing")
		return c.routeSingle(ctx, request, reqCtx)
	}
	span.SetAttributes(attribute.String("compose.pipeline", p.ID))

	results := make([]StageResult, 0, len(p.Stages))
	carry := make(map[string]any, len(reqCtx)+2)
	for k, v := range reqCtx {
		carry[k] = v
	}

	for _, stage := range p.Stages {
		h, _ := c.registry.Get(stage)
		resp, err := h.Process(ctx, request, carry)
		if err != nil {
			c.logger.Warn("pipeline stage failed",
				zap.String("pipeline", p.ID),
				zap.String("stage", stage),
				zap.Error(err),
			)
			resp = types.Failure(err.Error())
		}
		results = append(results, StageResult{Stage: stage, Response: resp})

		// Only a successful stage feeds its data forward.
		if resp.Success && len(resp.Data) > 0 {
			carry[stage+"_results"] = resp.Data
			carry["triggered_by"] = stage + "_completion"
		}
	}

	combined := combine(p.ID, results)
	c.logger.Info("pipeline finished",
		zap.String("pipeline", p.ID),
		zap.Bool("success", combined.Success),
		zap.Int("stages", len(results)),
	)
	return combined, nil
}

func (c *Composer) routeSingle(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	d, err := c.router.Route(ctx, request, reqCtx)
	if err != nil {
		return nil, err
	}
	h, ok := c.registry.Get(d.Handler)
	if !ok {
		return nil, types.NewErrorf(types.ErrWorkflowConfig, "routed handler %q is not registered", d.Handler)
	}
	return h.Process(ctx, request, reqCtx)
}

// combine merges stage results into one response. Overall success is the
// AND of all stage successes; the message is one line per stage; next
// steps keep stage order and are capped at five; confidence is the mean
// of stage confidences with 0.5 substituted where a stage reported none.
func combine(pipelineID string, results []StageResult) *types.Response {
	success := true
	completed := 0
	lines := make([]string, 0, len(results))
	var nextSteps []string
	confidenceSum := 0.0
	stageData := make(map[string]any, len(results))

	for _, r := range results {
		if r.Response.Success {
			completed++
			lines = append(lines, fmt.Sprintf("%s: %s", stageTitle(r.Stage), r.Response.Message))
		} else {
			success = false
			lines = append(lines, fmt.Sprintf("%s: Failed - %s", stageTitle(r.Stage), r.Response.Message))
		}
		nextSteps = append(nextSteps, r.Response.NextSteps...)
		confidenceSum += r.Response.ConfidenceOr(0.5)
		if len(r.Response.Data) > 0 {
			stageData[r.Stage] = r.Response.Data
		}
	}

	if len(nextSteps) > 5 {
		nextSteps = nextSteps[:5]
	}

	confidence := 0.5
	if len(results) > 0 {
		confidence = confidenceSum / float64(len(results))
	}

	action := "multi_handler_workflow_completed"
	if !success {
		action = "multi_handler_workflow_partial"
	}

	return &types.Response{
		Success: success,
		Message: strings.Join(lines, "\n"),
		Data: map[string]any{
			"pipeline":        pipelineID,
			"stage_results":   stageData,
			"steps_completed": completed,
			"total_steps":     len(results),
		},
		ActionTaken: action,
		NextSteps:   nextSteps,
		Confidence:  types.ConfidencePtr(confidence),
	}
}

// stageTitle renders a stage name for the combined message, upper-casing
// the first letter of each underscore-separated word.
func stageTitle(stage string) string {
	words := strings.Split(stage, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
