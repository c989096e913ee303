package stages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/report"
	"github.com/shaiso/apiforge/internal/tools"
)

// SDKStage генерирует клиентские библиотеки для найденных API.
type SDKStage struct {
	gen       *tools.SDKGenerator
	artifacts *report.ArtifactStore
	logger    *slog.Logger
}

// NewSDKStage создаёт стадию генерации SDK.
func NewSDKStage(gen *tools.SDKGenerator, artifacts *report.ArtifactStore, logger *slog.Logger) *SDKStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &SDKStage{gen: gen, artifacts: artifacts, logger: logger}
}

// Execute реализует engine.Handler.
func (s *SDKStage) Execute(_ context.Context, st *engine.State) (any, error) {
	discovery, err := discoveryOutput(st)
	if err != nil {
		return nil, err
	}

	result := &domain.SDKResult{Languages: s.gen.Languages()}

	for _, api := range discovery.APIs {
		for _, lang := range result.Languages {
			src, err := s.gen.Generate(api, lang)
			if err != nil {
				return nil, fmt.Errorf("generate %s sdk for %s: %w", lang, api.Name, err)
			}
			name, err := s.artifacts.WriteFile("sdk/"+lang+"/"+s.gen.FileName(api, lang), src)
			if err != nil {
				return nil, err
			}
			result.Files = append(result.Files, name)
		}
	}

	s.logger.Info("sdk clients generated",
		"languages", result.Languages,
		"files", len(result.Files),
	)
	return result, nil
}
