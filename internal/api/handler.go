package api

import (
	"log/slog"

	"github.com/shaiso/apiforge/internal/orchestrator"
	"github.com/shaiso/apiforge/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	service *orchestrator.Service
	runRepo *repo.RunRepo
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	// Service — запуск pipelines (обязательно).
	Service *orchestrator.Service

	// RunRepo — чтение runs и отчётов. Может быть nil, тогда
	// read-endpoints отвечают 503.
	RunRepo *repo.RunRepo

	// Logger — логгер (default: slog.Default).
	Logger *slog.Logger
}

// NewHandler создаёт Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: cfg.Service,
		runRepo: cfg.RunRepo,
		logger:  logger,
	}
}
