package app

import (
	"context"
	"log/slog"
	"regexp"

	"NewsDigest/internal/config"
	"NewsDigest/internal/discover"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/llm"
	"NewsDigest/internal/infrastructure/mail"
	"NewsDigest/internal/infrastructure/parser"
	"NewsDigest/internal/infrastructure/scheduler"
	"NewsDigest/internal/logging"
	"NewsDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := discover.NewRegistry()
	registry.Register(parser.NewGenericStrategy(nil, cfg.Fetch, sourcePatterns(cfg.Sources, baseLogger)))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:     toDomainSources(cfg.Sources),
		Discoverer:  parser.NewStrategyDiscoverer(registry, baseLogger.With("component", "discover")),
		Extractor:   parser.NewExtractor(nil, cfg.Fetch),
		Summarizer:  llm.NewClient(cfg.LLM),
		Notifier:    mail.NewNotifier(cfg.Mail, baseLogger.With("component", "mail")),
		Concurrency: cfg.Fetch.Concurrency,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	var sched *usecase.Scheduler
	if cfg.Scheduler.CronExpression != "" {
		driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
		sched = usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))
	}

	return &Application{cfg: cfg, pipeline: pipeline, scheduler: sched}
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	_, err := a.pipeline.Run(ctx)
	return err
}

// Scheduled reports whether a cron expression is configured.
func (a *Application) Scheduled() bool {
	return a.scheduler != nil
}

// Start begins scheduled execution, optionally running once immediately.
func (a *Application) Start(ctx context.Context) error {
	if a.scheduler == nil {
		return a.Run(ctx)
	}

	if a.cfg.Scheduler.RunOnStart {
		if err := a.Run(ctx); err != nil {
			return err
		}
	}

	return a.scheduler.Start(ctx)
}

// Stop tears down the scheduler if one is running.
func (a *Application) Stop(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}

	return a.scheduler.Stop(ctx)
}

func toDomainSources(cfg []config.SourceConfig) []domain.Source {
	sources := make([]domain.Source, 0, len(cfg))
	for _, src := range cfg {
		sources = append(sources, domain.Source{
			Name:     src.Name,
			URL:      src.URL,
			Strategy: src.Strategy,
		})
	}
	return sources
}

// sourcePatterns compiles per-source link patterns; invalid patterns are
// logged and the source falls back to the default heuristic.
func sourcePatterns(cfg []config.SourceConfig, logger *slog.Logger) map[string]*regexp.Regexp {
	patterns := map[string]*regexp.Regexp{}
	for _, src := range cfg {
		if src.Pattern == "" {
			continue
		}
		compiled, err := regexp.Compile(src.Pattern)
		if err != nil {
			logger.Warn("invalid source pattern, using default heuristic", "source", src.Name, "pattern", src.Pattern, "error", err)
			continue
		}
		patterns[src.Name] = compiled
	}
	return patterns
}
