package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/apiforge/internal/domain"
)

// Ошибки персистентности отчётов.
var (
	// ErrReportNotFound — отчёт для run не найден.
	ErrReportNotFound = errors.New("report not found")
)

// PersistenceError — ошибка сохранения отчёта в конкретном sink.
//
// Сбой персистентности не делает run невалидным: отчёт остаётся
// доступным в памяти, ошибка только логируется и агрегируется.
type PersistenceError struct {
	Sink string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist report via %s: %v", e.Sink, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Sink — приёмник итоговых отчётов run.
type Sink interface {
	// Name — имя sink для логов.
	Name() string

	// Persist сохраняет отчёт.
	Persist(ctx context.Context, report *domain.RunReport) error
}

// MultiSink рассылает отчёт по всем приёмникам.
//
// Сбой одного приёмника не останавливает остальные: все ошибки
// собираются и возвращаются одним значением.
type MultiSink struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewMultiSink создаёт MultiSink.
func NewMultiSink(logger *slog.Logger, sinks ...Sink) *MultiSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiSink{sinks: sinks, logger: logger}
}

// Name реализует Sink.
func (m *MultiSink) Name() string {
	return "multi"
}

// Persist сохраняет отчёт во все приёмники.
func (m *MultiSink) Persist(ctx context.Context, report *domain.RunReport) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Persist(ctx, report); err != nil {
			perr := &PersistenceError{Sink: s.Name(), Err: err}
			m.logger.Error("report persistence failed",
				"run_id", report.RunID,
				"sink", s.Name(),
				"error", err,
			)
			errs = append(errs, perr)
		}
	}
	return errors.Join(errs...)
}
