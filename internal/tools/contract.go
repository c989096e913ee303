package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shaiso/apiforge/internal/domain"
)

// Пути, по которым сервис публикует свою спецификацию.
var specEndpoints = map[string]bool{
	"/swagger":      true,
	"/docs":         true,
	"/openapi.json": true,
}

// ContractValidator проверяет контракты найденных API.
//
// Проверки структурные: что сервис вообще достижим, что отвечает
// машинно-читаемым форматом и что публикует спецификацию. Блокирующие
// нарушения попадают в Errors, остальное — в Warnings.
type ContractValidator struct{}

// NewContractValidator создаёт ContractValidator.
func NewContractValidator() *ContractValidator {
	return &ContractValidator{}
}

// Validate проверяет контракт одного API.
func (v *ContractValidator) Validate(api domain.DiscoveredAPI) domain.ContractValidation {
	result := domain.ContractValidation{Target: api.Name}

	switch api.Source {
	case "repository":
		if api.SpecFile == "" {
			result.Errors = append(result.Errors, "repository API without a specification file")
		}
	default:
		v.validateEndpoints(api, &result)
	}

	result.Passed = len(result.Errors) == 0
	return result
}

func (v *ContractValidator) validateEndpoints(api domain.DiscoveredAPI, result *domain.ContractValidation) {
	if len(api.Endpoints) == 0 {
		result.Errors = append(result.Errors, "no reachable endpoints")
		return
	}

	hasJSON := false
	hasSpec := false
	for _, ep := range api.Endpoints {
		if ep.JSON {
			hasJSON = true
		}
		if specEndpoints[ep.Path] {
			hasSpec = true
		}
		if ep.StatusCode >= 400 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("endpoint %s answers %d", ep.Path, ep.StatusCode))
		}
	}

	if !hasJSON {
		result.Errors = append(result.Errors, "no endpoint answers application/json")
	}
	if !hasSpec {
		result.Warnings = append(result.Warnings,
			"no discoverable specification endpoint ("+specList()+")")
	}
}

func specList() string {
	paths := make([]string, 0, len(specEndpoints))
	for p := range specEndpoints {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return strings.Join(paths, ", ")
}
