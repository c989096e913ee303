package domain

import (
	"time"

	"github.com/google/uuid"
)

// StageResult — итог одной стадии в рамках run.
//
// Результат неизменяем после записи: оркестратор фиксирует его ровно
// один раз, когда стадия достигает финального статуса.
type StageResult struct {
	// StageID — идентификатор стадии в цепочке.
	StageID string `json:"stage_id"`

	// Status — финальный статус стадии.
	Status StageStatus `json:"status"`

	// Output — результат обработчика (только для COMPLETED).
	Output any `json:"output,omitempty"`

	// SkipReason — причина пропуска (только для SKIPPED).
	SkipReason string `json:"skip_reason,omitempty"`

	// Error — текст ошибки (только для FAILED).
	Error string `json:"error,omitempty"`

	// DurationMS — время выполнения стадии в миллисекундах.
	// Записывается независимо от исхода; для NOT_REACHED равно 0.
	DurationMS int64 `json:"duration_ms"`
}

// RunReport — итоговый отчёт о выполнении run.
//
// Отчёт всегда полный: перечисляет каждую стадию цепочки, включая
// пропущенные и недостигнутые, чтобы по нему можно было разобрать
// частичный прогресс без чтения логов.
type RunReport struct {
	// RunID — идентификатор run.
	RunID uuid.UUID `json:"run_id"`

	// Pipeline — имя выполненного pipeline.
	Pipeline string `json:"pipeline"`

	// Status — финальный статус run.
	Status RunStatus `json:"status"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения.
	FinishedAt time.Time `json:"finished_at"`

	// ElapsedMS — полное время выполнения в миллисекундах.
	ElapsedMS int64 `json:"elapsed_ms"`

	// Stages — результаты стадий в порядке цепочки.
	Stages []StageResult `json:"stages"`

	// Counters — снимок счётчиков состояния на момент завершения
	// (api_count, critical_issues и т.д.).
	Counters map[string]int `json:"counters,omitempty"`
}

// Stage возвращает результат стадии по ID.
// Возвращает nil, если стадия отсутствует в отчёте.
func (r *RunReport) Stage(stageID string) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].StageID == stageID {
			return &r.Stages[i]
		}
	}
	return nil
}

// FirstError возвращает текст ошибки первой упавшей стадии.
// Возвращает пустую строку, если падений не было.
func (r *RunReport) FirstError() string {
	for i := range r.Stages {
		if r.Stages[i].Status == StageStatusFailed {
			return r.Stages[i].Error
		}
	}
	return ""
}
