package stages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/report"
	"github.com/shaiso/apiforge/internal/tools"
)

// DocumentationStage генерирует документацию по найденным API
// и складывает её в артефакты run.
type DocumentationStage struct {
	gen       *tools.DocGenerator
	artifacts *report.ArtifactStore
	logger    *slog.Logger
}

// NewDocumentationStage создаёт стадию генерации документации.
func NewDocumentationStage(gen *tools.DocGenerator, artifacts *report.ArtifactStore, logger *slog.Logger) *DocumentationStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentationStage{gen: gen, artifacts: artifacts, logger: logger}
}

// Execute реализует engine.Handler.
func (s *DocumentationStage) Execute(ctx context.Context, st *engine.State) (any, error) {
	discovery, err := discoveryOutput(st)
	if err != nil {
		return nil, err
	}

	result := &domain.DocumentationResult{Format: "Markdown"}

	overview, err := s.gen.Overview(ctx, discovery.APIs)
	if err != nil {
		return nil, fmt.Errorf("generate overview: %w", err)
	}
	name, err := s.artifacts.WriteFile("docs/overview.md", overview)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, name)

	for _, api := range discovery.APIs {
		doc, err := s.gen.Generate(ctx, api)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", api.Name, err)
		}
		name, err := s.artifacts.WriteFile("docs/"+docFileName(api.Name), doc)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, name)
		result.EndpointsDocumented += len(api.Endpoints)
	}

	s.logger.Info("documentation generated",
		"files", len(result.Files),
		"endpoints", result.EndpointsDocumented,
	)
	return result, nil
}

// docFileName превращает имя сервиса в имя markdown-файла.
func docFileName(service string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, service)
	return strings.Trim(slug, "-") + ".md"
}
