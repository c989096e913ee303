package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/apiforge/internal/domain"
)

// Pipeline DTOs

// PipelineResponse — ответ с описанием pipeline.
type PipelineResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Run DTOs

// RunResponse — ответ с run.
type RunResponse struct {
	ID         uuid.UUID  `json:"id"`
	Pipeline   string     `json:"pipeline"`
	Status     string     `json:"status"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:         r.ID,
		Pipeline:   r.Pipeline,
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Error:      r.Error,
		CreatedAt:  r.CreatedAt,
	}
}

// Report DTOs

// StageResultResponse — результат одной стадии в отчёте.
type StageResultResponse struct {
	StageID    string `json:"stage_id"`
	Status     string `json:"status"`
	Output     any    `json:"output,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// ReportResponse — ответ с итоговым отчётом run.
type ReportResponse struct {
	RunID      uuid.UUID             `json:"run_id"`
	Pipeline   string                `json:"pipeline"`
	Status     string                `json:"status"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	ElapsedMS  int64                 `json:"elapsed_ms"`
	Stages     []StageResultResponse `json:"stages"`
	Counters   map[string]int        `json:"counters,omitempty"`
}

// ReportFromDomain конвертирует domain.RunReport в ReportResponse.
func ReportFromDomain(r *domain.RunReport) ReportResponse {
	stages := make([]StageResultResponse, len(r.Stages))
	for i, s := range r.Stages {
		stages[i] = StageResultResponse{
			StageID:    s.StageID,
			Status:     string(s.Status),
			Output:     s.Output,
			SkipReason: s.SkipReason,
			Error:      s.Error,
			DurationMS: s.DurationMS,
		}
	}
	return ReportResponse{
		RunID:      r.RunID,
		Pipeline:   r.Pipeline,
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		ElapsedMS:  r.ElapsedMS,
		Stages:     stages,
		Counters:   r.Counters,
	}
}
