package tools

import (
	"math/rand"
	"testing"

	"github.com/shaiso/apiforge/internal/domain"
)

func TestSecurityScanner_Deterministic(t *testing.T) {
	a := NewSecurityScanner(rand.New(rand.NewSource(42))).Assess("svc:8080")
	b := NewSecurityScanner(rand.New(rand.NewSource(42))).Assess("svc:8080")

	if a.Total() != b.Total() {
		t.Errorf("same seed must give same findings: %d vs %d", a.Total(), b.Total())
	}
	if a.Critical != b.Critical {
		t.Errorf("critical counts differ: %d vs %d", a.Critical, b.Critical)
	}
}

func TestSecurityScanner_CountsMatchFindings(t *testing.T) {
	assessment := NewSecurityScanner(rand.New(rand.NewSource(7))).Assess("svc:8080")

	counts := map[domain.Severity]int{}
	for _, f := range assessment.Findings {
		counts[f.Severity]++
	}

	if assessment.Critical != counts[domain.SeverityCritical] {
		t.Errorf("critical count mismatch: %d vs %d", assessment.Critical, counts[domain.SeverityCritical])
	}
	if assessment.High != counts[domain.SeverityHigh] {
		t.Errorf("high count mismatch: %d vs %d", assessment.High, counts[domain.SeverityHigh])
	}
	if assessment.Passed != (assessment.Critical == 0) {
		t.Error("passed flag must mirror critical count")
	}
}
