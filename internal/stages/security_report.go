package stages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/apiforge/internal/agent"
	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/report"
)

// SecurityReportStage готовит эскалационный отчёт по критическим
// находкам. В штатном прогоне стадия пропускается skip-предикатом;
// branch-предикат оценки безопасности приводит сюда напрямую, когда
// есть критические уязвимости.
type SecurityReportStage struct {
	client    agent.Client
	artifacts *report.ArtifactStore
	logger    *slog.Logger
}

// NewSecurityReportStage создаёт стадию эскалационного отчёта.
func NewSecurityReportStage(client agent.Client, artifacts *report.ArtifactStore, logger *slog.Logger) *SecurityReportStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &SecurityReportStage{client: client, artifacts: artifacts, logger: logger}
}

// Execute реализует engine.Handler.
func (s *SecurityReportStage) Execute(ctx context.Context, st *engine.State) (any, error) {
	assessments, err := assessmentOutput(st)
	if err != nil {
		return nil, err
	}

	critical := st.Counter(CounterCriticalIssues)

	var b strings.Builder
	fmt.Fprintf(&b, "Critical security findings: %d\n\n", critical)
	for _, a := range assessments {
		for _, f := range a.Findings {
			if f.Severity != domain.SeverityCritical {
				continue
			}
			fmt.Fprintf(&b, "- [%s] %s on %s (CVSS %.1f, %s)\n  %s\n",
				f.ID, f.Name, a.Target, f.CVSS, f.Category, f.Description)
		}
	}
	b.WriteString("\nRemediation is required before the affected services ship.\n")

	text, err := s.client.Generate(ctx, agent.ComplianceOfficer, b.String())
	if err != nil {
		return nil, fmt.Errorf("generate security report: %w", err)
	}

	name, err := s.artifacts.WriteFile("security/escalation.md", text)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("security escalation report written",
		"critical", critical,
		"file", name,
	)
	return &domain.SecurityReportResult{CriticalCount: critical, File: name}, nil
}
