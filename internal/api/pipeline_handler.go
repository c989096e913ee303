package api

import (
	"errors"
	"net/http"

	"github.com/shaiso/apiforge/internal/orchestrator"
)

// ListPipelines возвращает доступные pipelines.
// GET /api/v1/pipelines
func (h *Handler) ListPipelines(w http.ResponseWriter, _ *http.Request) {
	names := h.service.Pipelines()

	result := make([]PipelineResponse, 0, len(names))
	for _, name := range names {
		describe, err := h.service.Describe(name)
		if err != nil {
			InternalError(w, h.logger, err)
			return
		}
		result = append(result, PipelineResponse{Name: name, Description: describe})
	}

	List(w, result, len(result))
}

// GetPipeline возвращает описание pipeline.
// GET /api/v1/pipelines/{name}
func (h *Handler) GetPipeline(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	describe, err := h.service.Describe(name)
	if err != nil {
		if errors.Is(err, orchestrator.ErrPipelineNotFound) {
			NotFound(w, "pipeline not found")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Success(w, PipelineResponse{Name: name, Description: describe})
}

// StartRun запускает pipeline в фоне.
// POST /api/v1/pipelines/{name}/runs
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	run, err := h.service.StartRun(r.Context(), name)
	if err != nil {
		if errors.Is(err, orchestrator.ErrPipelineNotFound) {
			NotFound(w, "pipeline not found")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Accepted(w, RunFromDomain(*run))
}

// Health — проверка живости сервиса.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	Success(w, map[string]string{"status": "ok"})
}
