package stages

import (
	"context"
	"log/slog"

	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/report"
	"github.com/shaiso/apiforge/internal/tools"
)

// TestGenStage генерирует наборы тестов для найденных API.
type TestGenStage struct {
	gen       *tools.TestGenerator
	artifacts *report.ArtifactStore
	logger    *slog.Logger
}

// NewTestGenStage создаёт стадию генерации тестов.
func NewTestGenStage(gen *tools.TestGenerator, artifacts *report.ArtifactStore, logger *slog.Logger) *TestGenStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TestGenStage{gen: gen, artifacts: artifacts, logger: logger}
}

// Execute реализует engine.Handler.
func (s *TestGenStage) Execute(_ context.Context, st *engine.State) (any, error) {
	discovery, err := discoveryOutput(st)
	if err != nil {
		return nil, err
	}

	result := &domain.TestGenResult{Framework: s.gen.Framework()}

	for _, api := range discovery.APIs {
		suite := s.gen.Suite(api)
		name, err := s.artifacts.WriteFile("tests/"+s.gen.FileName(api), s.gen.Generate(api))
		if err != nil {
			return nil, err
		}
		suite.File = name
		result.Suites = append(result.Suites, suite)

		s.logger.Info("test suite generated",
			"target", api.Name,
			"unit", suite.UnitTests,
			"integration", suite.IntegrationTests,
			"coverage", suite.Coverage,
		)
	}

	return result, nil
}
