package tools

import (
	"math/rand"

	"github.com/shaiso/apiforge/internal/domain"
)

// Каталог проверяемых классов уязвимостей. Сканер работает по
// фиксированному каталогу: каждая проверка либо срабатывает на цели,
// либо нет.
var vulnerabilityCatalog = []domain.Vulnerability{
	{
		ID:          "APISEC-001",
		Name:        "Missing authentication",
		Description: "Endpoint accepts requests without any credential check",
		Severity:    domain.SeverityCritical,
		CVSS:        9.8,
		Category:    "API2:2023 Broken Authentication",
	},
	{
		ID:          "APISEC-002",
		Name:        "SQL injection in query parameter",
		Description: "Unsanitized parameter reaches the SQL layer",
		Severity:    domain.SeverityCritical,
		CVSS:        9.1,
		Category:    "API8:2023 Security Misconfiguration",
	},
	{
		ID:          "APISEC-003",
		Name:        "Broken object level authorization",
		Description: "Object IDs from other tenants are readable",
		Severity:    domain.SeverityHigh,
		CVSS:        8.2,
		Category:    "API1:2023 Broken Object Level Authorization",
	},
	{
		ID:          "APISEC-004",
		Name:        "Missing rate limiting",
		Description: "No throttling on authentication endpoints",
		Severity:    domain.SeverityHigh,
		CVSS:        7.5,
		Category:    "API4:2023 Unrestricted Resource Consumption",
	},
	{
		ID:          "APISEC-005",
		Name:        "Verbose error responses",
		Description: "Stack traces and internal paths leak in error bodies",
		Severity:    domain.SeverityMedium,
		CVSS:        5.3,
		Category:    "API8:2023 Security Misconfiguration",
	},
	{
		ID:          "APISEC-006",
		Name:        "Permissive CORS policy",
		Description: "Access-Control-Allow-Origin reflects arbitrary origins",
		Severity:    domain.SeverityMedium,
		CVSS:        5.0,
		Category:    "API8:2023 Security Misconfiguration",
	},
	{
		ID:          "APISEC-007",
		Name:        "Missing security headers",
		Description: "Responses lack HSTS and content-type protections",
		Severity:    domain.SeverityLow,
		CVSS:        3.1,
		Category:    "API8:2023 Security Misconfiguration",
	},
	{
		ID:          "APISEC-008",
		Name:        "Outdated TLS configuration",
		Description: "Server negotiates TLS 1.0 and weak cipher suites",
		Severity:    domain.SeverityLow,
		CVSS:        3.7,
		Category:    "API8:2023 Security Misconfiguration",
	},
}

// SecurityScanner оценивает цель по каталогу уязвимостей.
//
// Источник случайности инжектируется, чтобы тесты были детерминированными.
type SecurityScanner struct {
	rng *rand.Rand
}

// NewSecurityScanner создаёт сканер с заданным источником случайности.
func NewSecurityScanner(rng *rand.Rand) *SecurityScanner {
	return &SecurityScanner{rng: rng}
}

// Assess прогоняет каталог проверок по цели.
//
// Для каждой проверки вероятность срабатывания зависит от серьёзности:
// критические находки редки, низкоуровневые — частые.
func (s *SecurityScanner) Assess(target string) *domain.SecurityAssessment {
	assessment := &domain.SecurityAssessment{Target: target}

	for _, vuln := range vulnerabilityCatalog {
		if s.rng.Float64() >= triggerProbability(vuln.Severity) {
			continue
		}
		assessment.Findings = append(assessment.Findings, vuln)
		switch vuln.Severity {
		case domain.SeverityCritical:
			assessment.Critical++
		case domain.SeverityHigh:
			assessment.High++
		case domain.SeverityMedium:
			assessment.Medium++
		case domain.SeverityLow:
			assessment.Low++
		}
	}

	assessment.Passed = assessment.Critical == 0
	return assessment
}

func triggerProbability(sev domain.Severity) float64 {
	switch sev {
	case domain.SeverityCritical:
		return 0.15
	case domain.SeverityHigh:
		return 0.30
	case domain.SeverityMedium:
		return 0.50
	default:
		return 0.60
	}
}
