package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/repo"
)

// ListRuns возвращает список runs с фильтрацией.
// GET /api/v1/runs?pipeline=...&status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runRepo == nil {
		Unavailable(w, "run storage is not configured")
		return
	}

	filter := repo.RunFilter{
		Pipeline: r.URL.Query().Get("pipeline"),
		Status:   domain.RunStatus(r.URL.Query().Get("status")),
		Limit:    parseIntParam(r, "limit", 50),
		Offset:   parseIntParam(r, "offset", 0),
	}

	runs, err := h.runRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, len(result))
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.runRepo == nil {
		Unavailable(w, "run storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}

// GetRunReport возвращает итоговый отчёт run.
// GET /api/v1/runs/{id}/report
func (h *Handler) GetRunReport(w http.ResponseWriter, r *http.Request) {
	if h.runRepo == nil {
		Unavailable(w, "run storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	report, err := h.runRepo.GetReport(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "report not found") {
		return
	}

	Success(w, ReportFromDomain(report))
}

// parseIntParam читает числовой query-параметр с дефолтом.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
