package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/apiforge/internal/domain"
)

// RunStarter запускает pipeline в фоне.
type RunStarter interface {
	StartRun(ctx context.Context, pipeline string) (*domain.Run, error)
}

// Scheduler запускает pipelines по cron-расписаниям.
//
// Расписания статические: берутся из конфигурации при старте процесса.
// Каждый тик планировщик проверяет, не наступило ли время очередного
// запуска; ошибка одного расписания не блокирует остальные.
type Scheduler struct {
	starter RunStarter
	logger  *slog.Logger

	entries []Entry
	nextDue []time.Time
}

// Config — конфигурация Scheduler.
type Config struct {
	// Starter — запуск runs (обязательно).
	Starter RunStarter

	// Entries — расписания из ParseSchedules.
	Entries []Entry

	// Logger — логгер (default: slog.Default).
	Logger *slog.Logger
}

// New создаёт Scheduler и вычисляет первые времена запуска.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := time.Now()
	nextDue := make([]time.Time, len(cfg.Entries))
	for i, e := range cfg.Entries {
		nextDue[i] = e.schedule.Next(now)
		logger.Info("schedule registered",
			"pipeline", e.Pipeline,
			"cron", e.Expr,
			"next_due", nextDue[i],
		)
	}

	return &Scheduler{
		starter: cfg.Starter,
		logger:  logger,
		entries: cfg.Entries,
		nextDue: nextDue,
	}
}

// Tick запускает все расписания, чьё время наступило.
//
// Возвращает количество запущенных runs.
func (s *Scheduler) Tick(ctx context.Context) int {
	now := time.Now()
	started := 0

	for i := range s.entries {
		if s.nextDue[i].After(now) {
			continue
		}

		entry := &s.entries[i]
		s.nextDue[i] = entry.schedule.Next(now)

		run, err := s.starter.StartRun(ctx, entry.Pipeline)
		if err != nil {
			s.logger.Error("scheduled run failed to start",
				"pipeline", entry.Pipeline,
				"error", err,
			)
			continue
		}

		s.logger.Info("scheduled run started",
			"pipeline", entry.Pipeline,
			"run_id", run.ID,
			"next_due", s.nextDue[i],
		)
		started++
	}

	return started
}

// Run крутит тики до отмены контекста.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}
