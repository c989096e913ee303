package stages

import (
	"context"
	"log/slog"

	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/tools"
)

// ContractStage проверяет контракты найденных API.
//
// Счётчик CounterContractIssues получает число блокирующих нарушений.
type ContractStage struct {
	validator *tools.ContractValidator
	logger    *slog.Logger
}

// NewContractStage создаёт стадию проверки контрактов.
func NewContractStage(validator *tools.ContractValidator, logger *slog.Logger) *ContractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractStage{validator: validator, logger: logger}
}

// Execute реализует engine.Handler.
func (s *ContractStage) Execute(_ context.Context, st *engine.State) (any, error) {
	discovery, err := discoveryOutput(st)
	if err != nil {
		return nil, err
	}

	result := &domain.ContractValidationResult{Passed: true}
	for _, api := range discovery.APIs {
		validation := s.validator.Validate(api)
		result.Validations = append(result.Validations, validation)
		result.IssuesFound += len(validation.Errors)
		if !validation.Passed {
			result.Passed = false
		}

		s.logger.Info("contract validated",
			"target", api.Name,
			"passed", validation.Passed,
			"errors", len(validation.Errors),
			"warnings", len(validation.Warnings),
		)
	}

	st.SetCounter(CounterContractIssues, result.IssuesFound)
	return result, nil
}
