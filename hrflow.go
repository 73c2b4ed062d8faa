// Package hrflow assembles the HR assistant: a confidence-scored
// router over specialist handlers, a composer for multi-handler
// pipelines and a workflow engine with persisted, resumable runs.
//
// Usage:
//
//	cfg := config.MustLoad("hrflow.yaml")
//	assistant, err := hrflow.New(cfg)
//	resp, err := assistant.Process(ctx, "screen the resume for Jane Doe", nil)
package hrflow

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BaSui01/hrflow/compose"
	"github.com/BaSui01/hrflow/config"
	"github.com/BaSui01/hrflow/handler"
	"github.com/BaSui01/hrflow/handlers"
	"github.com/BaSui01/hrflow/internal/metrics"
	"github.com/BaSui01/hrflow/notify"
	"github.com/BaSui01/hrflow/oracle"
	"github.com/BaSui01/hrflow/persistence"
	"github.com/BaSui01/hrflow/routing"
	"github.com/BaSui01/hrflow/types"
	"github.com/BaSui01/hrflow/workflow"
	"github.com/BaSui01/hrflow/workflows"
)

// Assistant is the assembled HR assistant.
type Assistant struct {
	cfg    *config.Config
	logger *zap.Logger

	registry     *handler.Registry
	router       *routing.Router
	composer     *compose.Composer
	engine       *workflow.Engine
	directory    persistence.Directory
	interactions routing.InteractionLog
	notifier     notify.Notifier

	closers []func() error
}

type assistantOptions struct {
	logger     *zap.Logger
	oracle     oracle.Oracle
	oracleSet  bool
	notifier   notify.Notifier
	directory  persistence.Directory
	registerer prometheus.Registerer
}

// Option overrides one assembled component, mainly for tests and
// embedding.
type Option func(*assistantOptions)

// WithLogger replaces the logger built from the config.
func WithLogger(logger *zap.Logger) Option {
	return func(o *assistantOptions) { o.logger = logger }
}

// WithOracle replaces the oracle built from the config. A nil oracle
// disables model scoring; routing then uses capability baselines.
func WithOracle(orc oracle.Oracle) Option {
	return func(o *assistantOptions) {
		o.oracle = orc
		o.oracleSet = true
	}
}

// WithNotifier replaces the notifier built from the config.
func WithNotifier(n notify.Notifier) Option {
	return func(o *assistantOptions) { o.notifier = n }
}

// WithDirectory replaces the record directory.
func WithDirectory(d persistence.Directory) Option {
	return func(o *assistantOptions) { o.directory = d }
}

// WithMetricsRegisterer enables metrics on the given registerer.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *assistantOptions) { o.registerer = reg }
}

// New assembles an Assistant from the configuration. A nil config uses
// defaults.
func New(cfg *config.Config, opts ...Option) (*Assistant, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var ao assistantOptions
	for _, opt := range opts {
		opt(&ao)
	}

	logger := ao.logger
	if logger == nil {
		var err error
		logger, err = cfg.Log.BuildLogger()
		if err != nil {
			return nil, err
		}
	}

	a := &Assistant{cfg: cfg, logger: logger}

	var collector *metrics.Collector
	if ao.registerer != nil {
		collector = metrics.NewCollector("hrflow", ao.registerer)
	} else if cfg.Telemetry.Enabled {
		collector = metrics.NewCollector("hrflow", prometheus.DefaultRegisterer)
	}

	orc := ao.oracle
	if !ao.oracleSet {
		var err error
		orc, err = buildOracle(cfg.Oracle, logger)
		if err != nil {
			return nil, err
		}
	}

	store, directory, interactions, err := a.buildPersistence(ao)
	if err != nil {
		return nil, err
	}
	a.directory = directory
	a.interactions = interactions

	a.notifier = ao.notifier
	if a.notifier == nil {
		if cfg.Webhook.URL != "" {
			webhook, err := notify.NewWebhook(notify.WebhookConfig{
				URL:        cfg.Webhook.URL,
				AuthToken:  cfg.Webhook.AuthToken,
				Timeout:    cfg.Webhook.Timeout,
				MaxRetries: cfg.Webhook.MaxRetries,
				Backoff:    cfg.Webhook.Backoff,
			}, logger)
			if err != nil {
				return nil, err
			}
			a.notifier = webhook
		} else {
			a.notifier = notify.NewRecorder()
		}
	}

	a.registry, err = handler.NewRegistry(handlers.All(handlers.Deps{
		Directory: directory,
		Notifier:  a.notifier,
		Oracle:    orc,
		Logger:    logger,
	})...)
	if err != nil {
		return nil, err
	}

	eval := routing.NewEvaluator(orc,
		routing.WithEvaluatorLogger(logger),
		routing.WithEvaluatorMetrics(collector),
		routing.WithEvaluatorTimeout(cfg.Routing.EvaluatorTimeout),
	)
	routerOpts := []routing.RouterOption{
		routing.WithRouterLogger(logger),
		routing.WithRouterMetrics(collector),
	}
	if cfg.Routing.LogInteractions {
		routerOpts = append(routerOpts, routing.WithInteractionLog(interactions))
	}
	a.router, err = routing.NewRouter(a.registry, eval, routerOpts...)
	if err != nil {
		return nil, err
	}

	a.composer, err = compose.NewComposer(a.registry, a.router,
		compose.WithComposerLogger(logger))
	if err != nil {
		return nil, err
	}

	nodes := workflows.NewNodes(directory, a.notifier, orc, logger)
	a.engine, err = workflow.NewEngine(store, workflows.Graphs(nodes),
		workflow.WithLogger(logger),
		workflow.WithMetrics(collector),
	)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// buildOracle constructs the configured oracle client, wrapped with
// rate limiting and a prompt token cap when configured.
func buildOracle(cfg config.OracleConfig, logger *zap.Logger) (oracle.Oracle, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "gemini":
	default:
		return nil, types.NewErrorf(types.ErrValidation, "unknown oracle provider %q", cfg.Provider)
	}

	var orc oracle.Oracle = oracle.NewGeminiClient(oracle.GeminiConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}, logger)

	if cfg.RateLimitRPS > 0 {
		orc = oracle.NewRateLimited(orc, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.TokenBudget > 0 {
		budget := oracle.NewTokenBudget("cl100k_base", logger)
		inner := orc
		maxTokens := cfg.TokenBudget
		orc = oracle.Func(func(ctx context.Context, prompt string, opts *oracle.Options) (string, error) {
			return inner.Complete(ctx, budget.Truncate(prompt, maxTokens), opts)
		})
	}
	return orc, nil
}

func (a *Assistant) buildPersistence(ao assistantOptions) (workflow.CheckpointStore, persistence.Directory, routing.InteractionLog, error) {
	cfg := a.cfg.Store

	if cfg.Type == "sqlite" {
		store, err := persistence.OpenSQLiteStore(persistence.SQLiteConfig{Path: cfg.SQLite.Path}, a.logger)
		if err != nil {
			return nil, nil, nil, err
		}
		a.closers = append(a.closers, store.Close)
		directory := persistence.Directory(store)
		if ao.directory != nil {
			directory = ao.directory
		}
		return store, directory, store, nil
	}

	store, err := persistence.NewCheckpointStore(persistence.StoreConfig{
		Type:    persistence.StoreType(cfg.Type),
		BaseDir: cfg.BaseDir,
		Redis: persistence.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			PoolSize:  cfg.Redis.PoolSize,
			KeyPrefix: cfg.Redis.KeyPrefix,
		},
		Timeout: cfg.Timeout,
	}, a.logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}

	directory := ao.directory
	if directory == nil {
		directory = persistence.NewMemoryDirectory()
	}
	return store, directory, routing.NewMemoryInteractionLog(), nil
}

// Process routes a request to the best handler, or through a
// multi-handler pipeline when the request asks for one.
func (a *Assistant) Process(ctx context.Context, request string, reqCtx map[string]any) (*types.Response, error) {
	if reqCtx == nil {
		reqCtx = make(map[string]any)
	}

	decision, err := a.router.Route(ctx, request, reqCtx)
	if err != nil {
		return nil, err
	}

	if decision.NeedsComposition {
		return a.composer.Run(ctx, request, reqCtx)
	}

	h, ok := a.registry.Get(decision.Handler)
	if !ok {
		return nil, types.NewErrorf(types.ErrRoutingAmbiguity, "routed to unknown handler %q", decision.Handler)
	}
	return h.Process(ctx, request, reqCtx)
}

// Capabilities returns the capabilities of every registered handler.
func (a *Assistant) Capabilities() map[string][]string {
	return a.registry.Capabilities()
}

// Router returns the assembled router.
func (a *Assistant) Router() *routing.Router { return a.router }

// Composer returns the assembled composer.
func (a *Assistant) Composer() *compose.Composer { return a.composer }

// Directory returns the record directory.
func (a *Assistant) Directory() persistence.Directory { return a.directory }

// Interactions returns the routing decision log.
func (a *Assistant) Interactions() routing.InteractionLog { return a.interactions }

// StartWorkflow executes a workflow to completion and returns the final
// state.
func (a *Assistant) StartWorkflow(ctx context.Context, workflowType string, initial *workflow.State, threadID string) (*workflow.State, error) {
	return a.engine.Execute(ctx, workflowType, initial, threadID)
}

// WorkflowState returns the last persisted state of a run, or nil when
// the thread is unknown.
func (a *Assistant) WorkflowState(ctx context.Context, workflowType, threadID string) (*workflow.State, error) {
	return a.engine.GetState(ctx, workflowType, threadID)
}

// ResumeWorkflow re-enters a checkpointed run at its current step.
func (a *Assistant) ResumeWorkflow(ctx context.Context, workflowType, threadID string) (*workflow.State, error) {
	return a.engine.Resume(ctx, workflowType, threadID)
}

// CancelWorkflow marks a checkpointed run cancelled. It reports whether
// a checkpoint existed.
func (a *Assistant) CancelWorkflow(ctx context.Context, workflowType, threadID string) (bool, error) {
	return a.engine.Cancel(ctx, workflowType, threadID)
}

// WorkflowTypes returns the registered workflow type names.
func (a *Assistant) WorkflowTypes() []string {
	return a.engine.WorkflowTypes()
}

// SystemStatus reports the assembled component summary.
func (a *Assistant) SystemStatus() map[string]any {
	storeType := a.cfg.Store.Type
	if storeType == "" {
		storeType = "memory"
	}
	oracleProvider := a.cfg.Oracle.Provider
	if oracleProvider == "" {
		oracleProvider = "none"
	}
	return map[string]any{
		"handlers":        a.registry.Names(),
		"workflow_types":  a.engine.WorkflowTypes(),
		"store_type":      storeType,
		"oracle_provider": oracleProvider,
	}
}

// Close releases held resources such as database connections.
func (a *Assistant) Close() error {
	var firstErr error
	for _, close := range a.closers {
		if err := close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close assistant: %w", err)
		}
	}
	return firstErr
}
