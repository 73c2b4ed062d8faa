package routing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/handler"
	"github.com/BaSui01/hrflow/internal/metrics"
	"github.com/BaSui01/hrflow/oracle"
)

const evaluatorSystemPrompt = "You score how well each request handler fits an HR request. " +
	"Respond with a single JSON object mapping handler names to confidence scores between 0.0 and 1.0. " +
	"No prose, no markdown."

// Evaluator produces a confidence score per handler for a request. The
// baseline score is each handler's own CanHandle estimate; when an oracle
// is configured its score map is averaged in. An oracle failure or
// unparsable reply degrades to the baseline alone and is never surfaced
// to the caller.
type Evaluator struct {
	oracle  oracle.Oracle
	logger  *zap.Logger
	metrics *metrics.Collector
	timeout time.Duration
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithEvaluatorLogger sets the logger.
func WithEvaluatorLogger(l *zap.Logger) EvaluatorOption {
	return func(e *Evaluator) { e.logger = l }
}

// WithEvaluatorMetrics sets the metrics collector.
func WithEvaluatorMetrics(m *metrics.Collector) EvaluatorOption {
	return func(e *Evaluator) { e.metrics = m }
}

// WithEvaluatorTimeout bounds the oracle call.
func WithEvaluatorTimeout(d time.Duration) EvaluatorOption {
	return func(e *Evaluator) { e.timeout = d }
}

// NewEvaluator creates an Evaluator. A nil oracle is allowed; scores then
// come from the baseline alone.
func NewEvaluator(o oracle.Oracle, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		oracle:  o,
		logger:  zap.NewNop(),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores every registered handler for the request. Every handler
// appears in the result and every score lies in [0, 1].
func (e *Evaluator) Evaluate(ctx context.Context, request string, reqCtx map[string]any, reg *handler.Registry) map[string]float64 {
	baseline := e.baselineScores(request, reqCtx, reg)
	if e.oracle == nil {
		return baseline
	}

	names := reg.Names()
	prompt := e.buildPrompt(request, reqCtx, reg, baseline)

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	raw, err := e.oracle.Complete(callCtx, prompt, &oracle.Options{
		System:      evaluatorSystemPrompt,
		Temperature: 0.1,
		MaxTokens:   512,
	})
	if err != nil {
		e.metrics.ObserveOracle("error")
		e.logger.Warn("oracle scoring failed, using baseline scores", zap.Error(err))
		return baseline
	}

	aiScores, err := oracle.ParseScoreMap(raw, names)
	if err != nil {
		e.metrics.ObserveOracle("malformed")
		e.logger.Warn("oracle score map unparsable, using baseline scores", zap.Error(err))
		return baseline
	}
	e.metrics.ObserveOracle("ok")

	combined := make(map[string]float64, len(names))
	for _, name := range names {
		combined[name] = oracle.Clamp((baseline[name] + aiScores[name]) / 2)
	}
	return combined
}

// baselineScores asks each handler directly. A panicking handler scores
// zero instead of taking the whole evaluation down.
func (e *Evaluator) baselineScores(request string, reqCtx map[string]any, reg *handler.Registry) map[string]float64 {
	scores := make(map[string]float64, reg.Len())
	for _, name := range reg.Names() {
		h, _ := reg.Get(name)
		scores[name] = oracle.Clamp(safeCanHandle(h, request, reqCtx))
	}
	return scores
}

func safeCanHandle(h handler.Handler, request string, reqCtx map[string]any) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			score = 0
		}
	}()
	return h.CanHandle(request, reqCtx)
}

func (e *Evaluator) buildPrompt(request string, reqCtx map[string]any, reg *handler.Registry, baseline map[string]float64) string {
	var b strings.Builder
	b.WriteString("Analyze this HR request and score each handler's fitness for it.\n\n")
	fmt.Fprintf(&b, "Request: %q\n", request)

	if len(reqCtx) > 0 {
		keys := make([]string, 0, len(reqCtx))
		for k := range reqCtx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("Context:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %v\n", k, reqCtx[k])
		}
	}

	b.WriteString("\nHandlers:\n")
	for _, name := range reg.Names() {
		h, _ := reg.Get(name)
		fmt.Fprintf(&b, "- %s: %s\n", name, strings.Join(h.Capabilities(), ", "))
	}

	b.WriteString("\nBaseline scores:\n")
	for _, name := range reg.Names() {
		fmt.Fprintf(&b, "  %s: %.2f\n", name, baseline[name])
	}

	b.WriteString("\nReturn a JSON object with an updated confidence score (0.0-1.0) per handler. " +
		"Consider the specific intent and domain of the request.")
	return b.String()
}
