package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
)

// Orchestrator выполняет один run по цепочке стадий.
//
// Выполнение строго последовательное: стадии идут одна за другой
// от входной до терминальной. Между парой стадий применяется политика
// маршрутизации:
//   - skip-предикат: стадия пропускается без вызова обработчика
//   - branch-предикат: следующая стадия выбирается по состоянию,
//     переопределяя статический порядок цепочки
//
// Оркестратор владеет учётом: статусы, тайминги и результаты стадий
// записывает он, а не обработчики. Один экземпляр — один run.
type Orchestrator struct {
	chain   *engine.Chain
	policy  domain.FailurePolicy
	logger  *slog.Logger
	onStage func(stageID string, result domain.StageResult)

	runID    uuid.UUID
	pipeline string

	state      *engine.State
	results    map[string]domain.StageResult
	runStatus  domain.RunStatus
	startedAt  time.Time
	finishedAt time.Time
	finished   bool
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Chain — цепочка стадий (обязательно).
	Chain *engine.Chain

	// Policy — политика при падении стадии (default: abort).
	Policy domain.FailurePolicy

	// RunID — идентификатор run для отчёта.
	RunID uuid.UUID

	// Pipeline — имя pipeline для отчёта.
	Pipeline string

	// OnStage — callback после фиксации результата стадии
	// (метрики, события). Может быть nil.
	OnStage func(stageID string, result domain.StageResult)

	// Logger — логгер (default: slog.Default).
	Logger *slog.Logger
}

// New создаёт Orchestrator и валидирует цепочку.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Chain == nil {
		return nil, ErrNilChain
	}
	if err := cfg.Chain.Validate(); err != nil {
		return nil, err
	}

	policy := cfg.Policy
	if policy == "" {
		policy = domain.PolicyAbort
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		chain:     cfg.Chain,
		policy:    policy,
		logger:    logger,
		onStage:   cfg.OnStage,
		runID:     cfg.RunID,
		pipeline:  cfg.Pipeline,
		results:   make(map[string]domain.StageResult),
		runStatus: domain.RunStatusPending,
	}, nil
}

// Run выполняет цепочку над переданным состоянием.
//
// Ошибки обработчиков не возвращаются — они фиксируются в результатах
// стадий и влияют на терминальный статус run. Возвращаемая ошибка
// означает ошибку конфигурации: невалидная цепочка, branch-переход
// на неизвестную или уже выполненную стадию, повторный Run.
func (o *Orchestrator) Run(ctx context.Context, st *engine.State) error {
	if o.finished || o.runStatus == domain.RunStatusRunning {
		return ErrAlreadyRan
	}

	o.state = st
	o.runStatus = domain.RunStatusRunning
	o.startedAt = time.Now().UTC()

	var cfgErr error
	visited := make(map[string]bool)

	for id := o.chain.Entry(); id != ""; {
		stage, ok := o.chain.Get(id)
		if !ok {
			// Validate исключает такой обход; оставлено как инвариант.
			cfgErr = engine.NewConfigurationError(id, "stage missing from chain", engine.ErrUnknownBranchTarget)
			break
		}
		visited[id] = true

		result := o.executeStage(ctx, stage, st)
		o.record(id, result)

		if result.Status == domain.StageStatusFailed && o.policy == domain.PolicyAbort {
			o.logger.Warn("stage failed, aborting chain",
				"run_id", o.runID,
				"stage", id,
				"error", result.Error,
			)
			break
		}

		next := o.chain.Next(id)

		// Branch-предикат оценивается только после успешной стадии.
		if result.Status == domain.StageStatusCompleted && stage.BranchTo != nil {
			if target := stage.BranchTo(st); target != "" && target != next {
				if _, exists := o.chain.Get(target); !exists {
					cfgErr = engine.NewConfigurationError(id,
						fmt.Sprintf("branch target %q not in chain", target), engine.ErrUnknownBranchTarget)
					break
				}
				if visited[target] {
					cfgErr = engine.NewConfigurationError(id,
						fmt.Sprintf("branch target %q already visited", target), engine.ErrBranchTargetVisited)
					break
				}
				o.logger.Info("branch override",
					"run_id", o.runID,
					"stage", id,
					"target", target,
				)
				next = target
			}
		}

		id = next
	}

	o.finalize(cfgErr)
	return cfgErr
}

// executeStage выполняет одну стадию: skip-предикат, обработчик,
// замер времени. Паника обработчика превращается в FAILED.
func (o *Orchestrator) executeStage(ctx context.Context, stage *engine.Stage, st *engine.State) domain.StageResult {
	start := time.Now()

	if stage.SkipIf != nil && stage.SkipIf(st) {
		elapsed := time.Since(start)
		st.RecordTiming(stage.ID, elapsed)
		o.logger.Info("stage skipped",
			"run_id", o.runID,
			"stage", stage.ID,
			"reason", stage.SkipReason,
		)
		return domain.StageResult{
			StageID:    stage.ID,
			Status:     domain.StageStatusSkipped,
			SkipReason: stage.SkipReason,
			DurationMS: elapsed.Milliseconds(),
		}
	}

	o.logger.Info("stage started", "run_id", o.runID, "stage", stage.ID)

	payload, err := o.invoke(ctx, stage, st)
	elapsed := time.Since(start)
	st.RecordTiming(stage.ID, elapsed)

	if err != nil {
		o.logger.Error("stage failed",
			"run_id", o.runID,
			"stage", stage.ID,
			"duration", elapsed,
			"error", err,
		)
		return domain.StageResult{
			StageID:    stage.ID,
			Status:     domain.StageStatusFailed,
			Error:      err.Error(),
			DurationMS: elapsed.Milliseconds(),
		}
	}

	if recErr := st.RecordOutput(stage.ID, payload); recErr != nil {
		// Возможно только при нарушении "не более одного раза за run".
		return domain.StageResult{
			StageID:    stage.ID,
			Status:     domain.StageStatusFailed,
			Error:      recErr.Error(),
			DurationMS: elapsed.Milliseconds(),
		}
	}

	o.logger.Info("stage completed",
		"run_id", o.runID,
		"stage", stage.ID,
		"duration", elapsed,
	)

	return domain.StageResult{
		StageID:    stage.ID,
		Status:     domain.StageStatusCompleted,
		Output:     payload,
		DurationMS: elapsed.Milliseconds(),
	}
}

// invoke вызывает обработчик с перехватом паники.
func (o *Orchestrator) invoke(ctx context.Context, stage *engine.Stage, st *engine.State) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("stage handler panic: %v", r)
		}
	}()
	return stage.Handler.Execute(ctx, st)
}

// record фиксирует результат стадии и дёргает callback.
func (o *Orchestrator) record(stageID string, result domain.StageResult) {
	o.results[stageID] = result
	if o.onStage != nil {
		o.onStage(stageID, result)
	}
}

// finalize закрывает run: недостигнутые стадии получают NOT_REACHED,
// вычисляется терминальный статус.
func (o *Orchestrator) finalize(cfgErr error) {
	o.finishedAt = time.Now().UTC()
	o.finished = true

	failed := cfgErr != nil
	for _, id := range o.chain.Path() {
		if res, ok := o.results[id]; ok {
			if res.Status == domain.StageStatusFailed {
				failed = true
			}
			continue
		}
		o.results[id] = domain.StageResult{
			StageID: id,
			Status:  domain.StageStatusNotReached,
		}
	}

	if failed {
		o.runStatus = domain.RunStatusPartiallyFailed
	} else {
		o.runStatus = domain.RunStatusCompleted
	}
}

// Status возвращает текущий статус run.
func (o *Orchestrator) Status() domain.RunStatus {
	return o.runStatus
}

// Report строит итоговый отчёт.
//
// Вызывается после завершения Run; идемпотентен и не имеет побочных
// эффектов. До завершения возвращает ErrNotFinished.
func (o *Orchestrator) Report() (*domain.RunReport, error) {
	if !o.finished {
		return nil, ErrNotFinished
	}

	path := o.chain.Path()
	stages := make([]domain.StageResult, 0, len(path))
	for _, id := range path {
		stages = append(stages, o.results[id])
	}

	var counters map[string]int
	if o.state != nil {
		counters = o.state.Counters()
	}

	return &domain.RunReport{
		RunID:      o.runID,
		Pipeline:   o.pipeline,
		Status:     o.runStatus,
		StartedAt:  o.startedAt,
		FinishedAt: o.finishedAt,
		ElapsedMS:  o.finishedAt.Sub(o.startedAt).Milliseconds(),
		Stages:     stages,
		Counters:   counters,
	}, nil
}
