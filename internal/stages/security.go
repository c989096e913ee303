package stages

import (
	"context"
	"log/slog"

	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/tools"
)

// SecurityStage оценивает каждый найденный API по каталогу проверок.
//
// Счётчик CounterCriticalIssues получает суммарное число критических
// находок; branch-предикат pipeline по нему решает, уходить ли сразу
// в эскалационный отчёт.
type SecurityStage struct {
	scanner *tools.SecurityScanner
	logger  *slog.Logger
}

// NewSecurityStage создаёт стадию оценки безопасности.
func NewSecurityStage(scanner *tools.SecurityScanner, logger *slog.Logger) *SecurityStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &SecurityStage{scanner: scanner, logger: logger}
}

// Execute реализует engine.Handler.
func (s *SecurityStage) Execute(_ context.Context, st *engine.State) (any, error) {
	discovery, err := discoveryOutput(st)
	if err != nil {
		return nil, err
	}

	var assessments []*domain.SecurityAssessment
	critical := 0
	for _, api := range discovery.APIs {
		assessment := s.scanner.Assess(api.Name)
		assessments = append(assessments, assessment)
		critical += assessment.Critical

		s.logger.Info("security assessment finished",
			"target", api.Name,
			"findings", assessment.Total(),
			"critical", assessment.Critical,
		)
	}

	st.SetCounter(CounterCriticalIssues, critical)
	return assessments, nil
}
