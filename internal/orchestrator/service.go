package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/report"
	"github.com/shaiso/apiforge/internal/telemetry"
)

// PipelineBuilder собирает цепочку стадий под конкретный run.
type PipelineBuilder interface {
	Names() []string
	Describe(name string) (string, error)
	Has(name string) bool
	Build(name string, runID uuid.UUID) (*engine.Chain, *report.ArtifactStore, error)
}

// RunStore — персистентность runs и отчётов.
type RunStore interface {
	Create(ctx context.Context, run *domain.Run) error
	Update(ctx context.Context, run *domain.Run) error
	SaveReport(ctx context.Context, rep *domain.RunReport) error
}

// EventPublisher публикует события жизненного цикла run.
type EventPublisher interface {
	RunStarted(ctx context.Context, run *domain.Run) error
	StageFinished(ctx context.Context, runID uuid.UUID, result domain.StageResult) error
	RunFinished(ctx context.Context, rep *domain.RunReport) error
}

// Service связывает выполнение pipeline с внешним миром: реестр
// pipelines, персистентность, события и метрики.
//
// Сбои персистентности и публикации событий не валят run: отчёт
// остаётся доступным, ошибка логируется.
type Service struct {
	pipelines PipelineBuilder
	store     RunStore
	publisher EventPublisher
	sink      report.Sink
	metrics   *telemetry.Metrics
	policy    domain.FailurePolicy
	logger    *slog.Logger
}

// ServiceConfig — конфигурация Service.
type ServiceConfig struct {
	// Pipelines — реестр pipelines (обязательно).
	Pipelines PipelineBuilder

	// Store — персистентность runs. Может быть nil.
	Store RunStore

	// Publisher — события RabbitMQ. Может быть nil.
	Publisher EventPublisher

	// Sink — приёмник отчётов. Может быть nil.
	Sink report.Sink

	// Metrics — Prometheus метрики. Может быть nil.
	Metrics *telemetry.Metrics

	// Policy — политика при падении стадии (default: abort).
	Policy domain.FailurePolicy

	// Logger — логгер (default: slog.Default).
	Logger *slog.Logger
}

// NewService создаёт Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Pipelines == nil {
		return nil, fmt.Errorf("pipelines registry is required")
	}

	policy := cfg.Policy
	if policy == "" {
		policy = domain.PolicyAbort
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		pipelines: cfg.Pipelines,
		store:     cfg.Store,
		publisher: cfg.Publisher,
		sink:      cfg.Sink,
		metrics:   cfg.Metrics,
		policy:    policy,
		logger:    logger,
	}, nil
}

// Pipelines возвращает имена доступных pipelines.
func (s *Service) Pipelines() []string {
	return s.pipelines.Names()
}

// Describe возвращает описание pipeline.
func (s *Service) Describe(name string) (string, error) {
	return s.pipelines.Describe(name)
}

// ExecuteRun выполняет pipeline синхронно и возвращает отчёт.
func (s *Service) ExecuteRun(ctx context.Context, pipeline string) (*domain.RunReport, error) {
	if !s.pipelines.Has(pipeline) {
		return nil, fmt.Errorf("%w: %s", ErrPipelineNotFound, pipeline)
	}
	return s.executeRun(ctx, domain.NewRun(pipeline))
}

// executeRun прогоняет подготовленный run через оркестратор.
func (s *Service) executeRun(ctx context.Context, run *domain.Run) (*domain.RunReport, error) {
	pipeline := run.Pipeline
	logger := telemetry.WithPipeline(telemetry.WithRunID(s.logger, run.ID.String()), pipeline)

	chain, _, err := s.pipelines.Build(pipeline, run.ID)
	if err != nil {
		return nil, fmt.Errorf("build pipeline %s: %w", pipeline, err)
	}

	if s.store != nil {
		if err := s.store.Create(ctx, run); err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
	}

	o, err := New(Config{
		Chain:    chain,
		Policy:   s.policy,
		RunID:    run.ID,
		Pipeline: pipeline,
		Logger:   logger,
		OnStage:  s.stageObserver(ctx, run.ID),
	})
	if err != nil {
		return nil, err
	}

	run.MarkRunning()
	s.persistRun(ctx, run, logger)
	if s.publisher != nil {
		if err := s.publisher.RunStarted(ctx, run); err != nil {
			logger.Warn("publish run.started failed", "error", err)
		}
	}

	logger.Info("run started")
	runErr := o.Run(ctx, engine.NewState())

	rep, repErr := o.Report()
	if repErr != nil {
		return nil, repErr
	}

	switch rep.Status {
	case domain.RunStatusCompleted:
		run.MarkCompleted()
	default:
		errText := rep.FirstError()
		if errText == "" && runErr != nil {
			errText = runErr.Error()
		}
		run.MarkPartiallyFailed(errText)
	}
	s.persistRun(ctx, run, logger)

	if s.metrics != nil {
		s.metrics.ObserveRun(rep)
	}
	if s.store != nil {
		if err := s.store.SaveReport(ctx, rep); err != nil {
			logger.Error("save report failed", "error", err)
		}
	}
	if s.sink != nil {
		if err := s.sink.Persist(ctx, rep); err != nil {
			logger.Error("persist report failed", "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.RunFinished(ctx, rep); err != nil {
			logger.Warn("publish run.finished failed", "error", err)
		}
	}

	logger.Info("run finished",
		"status", rep.Status,
		"elapsed_ms", rep.ElapsedMS,
	)
	return rep, runErr
}

// StartRun запускает pipeline в фоне и сразу возвращает run.
func (s *Service) StartRun(ctx context.Context, pipeline string) (*domain.Run, error) {
	if !s.pipelines.Has(pipeline) {
		return nil, fmt.Errorf("%w: %s", ErrPipelineNotFound, pipeline)
	}

	run := domain.NewRun(pipeline)
	// Копия до запуска горутины: фоновая горутина мутирует оригинал.
	snapshot := *run

	go func() {
		// Фоновое выполнение не наследует дедлайн запроса.
		if _, err := s.executeRun(context.WithoutCancel(ctx), run); err != nil {
			s.logger.Error("background run failed",
				"run_id", run.ID,
				"pipeline", pipeline,
				"error", err,
			)
		}
	}()

	return &snapshot, nil
}

// stageObserver возвращает callback, разносящий результат стадии
// в метрики и события.
func (s *Service) stageObserver(ctx context.Context, runID uuid.UUID) func(string, domain.StageResult) {
	if s.metrics == nil && s.publisher == nil {
		return nil
	}
	return func(_ string, result domain.StageResult) {
		if s.metrics != nil {
			s.metrics.ObserveStage(result)
		}
		if s.publisher != nil {
			if err := s.publisher.StageFinished(ctx, runID, result); err != nil {
				s.logger.Warn("publish stage.finished failed",
					"run_id", runID,
					"stage", result.StageID,
					"error", err,
				)
			}
		}
	}
}

// persistRun сохраняет run, логируя сбой вместо возврата ошибки.
func (s *Service) persistRun(ctx context.Context, run *domain.Run, logger *slog.Logger) {
	if s.store == nil {
		return
	}
	if err := s.store.Update(ctx, run); err != nil {
		logger.Error("update run failed", "status", run.Status, "error", err)
	}
}
