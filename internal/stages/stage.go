package stages

import (
	"errors"
	"fmt"

	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
)

// Идентификаторы стадий pipeline.
const (
	StageDiscover          = "discover"
	StageAssessSecurity    = "assess_security"
	StageDocument          = "document"
	StageGenerateSDKs      = "generate_sdks"
	StageSecurityReport    = "security_report"
	StageValidateContracts = "validate_contracts"
	StageGenerateTests     = "generate_tests"
	StageBenchmark         = "benchmark"
)

// Счётчики, которыми стадии управляют маршрутизацией.
const (
	// CounterAPICount — количество найденных API после discovery.
	CounterAPICount = "api_count"

	// CounterCriticalIssues — критические находки после оценки безопасности.
	CounterCriticalIssues = "critical_issues"

	// CounterContractIssues — блокирующие нарушения после проверки контрактов.
	CounterContractIssues = "contract_issues"
)

// Ошибки стадий.
var (
	// ErrMissingUpstream — стадия не нашла результат предыдущей стадии.
	ErrMissingUpstream = errors.New("required upstream output missing")
)

// discoveryOutput достаёт типизированный результат discovery из состояния.
func discoveryOutput(st *engine.State) (*domain.DiscoveryResult, error) {
	raw, ok := st.Output(StageDiscover)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingUpstream, StageDiscover)
	}
	result, ok := raw.(*domain.DiscoveryResult)
	if !ok {
		return nil, fmt.Errorf("unexpected output type from %s: %T", StageDiscover, raw)
	}
	return result, nil
}

// assessmentOutput достаёт результаты оценки безопасности из состояния.
func assessmentOutput(st *engine.State) ([]*domain.SecurityAssessment, error) {
	raw, ok := st.Output(StageAssessSecurity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingUpstream, StageAssessSecurity)
	}
	assessments, ok := raw.([]*domain.SecurityAssessment)
	if !ok {
		return nil, fmt.Errorf("unexpected output type from %s: %T", StageAssessSecurity, raw)
	}
	return assessments, nil
}
