package tools

import (
	"strings"
	"testing"

	"github.com/shaiso/apiforge/internal/domain"
)

func TestTestGenerator_SuiteScalesWithEndpoints(t *testing.T) {
	g := NewTestGenerator()

	api := domain.DiscoveredAPI{
		Name: "payments",
		Endpoints: []domain.ProbedEndpoint{
			{Path: "/api", StatusCode: 200, JSON: true},
			{Path: "/health", StatusCode: 200},
		},
	}

	suite := g.Suite(api)
	if suite.UnitTests != 8 {
		t.Errorf("expected 8 unit tests, got %d", suite.UnitTests)
	}
	if suite.IntegrationTests != 3 {
		t.Errorf("expected 3 integration tests, got %d", suite.IntegrationTests)
	}
	if suite.Coverage != 70 {
		t.Errorf("expected 70%% coverage, got %d", suite.Coverage)
	}
}

func TestTestGenerator_CoverageCapped(t *testing.T) {
	g := NewTestGenerator()

	endpoints := make([]domain.ProbedEndpoint, 20)
	for i := range endpoints {
		endpoints[i] = domain.ProbedEndpoint{Path: "/api", StatusCode: 200}
	}

	if suite := g.Suite(domain.DiscoveredAPI{Name: "big", Endpoints: endpoints}); suite.Coverage != 95 {
		t.Errorf("coverage must cap at 95, got %d", suite.Coverage)
	}
}

func TestTestGenerator_GeneratesEndpointTests(t *testing.T) {
	g := NewTestGenerator()

	src := g.Generate(domain.DiscoveredAPI{
		Name:    "payments api",
		BaseURL: "http://10.0.0.5:8080",
		Endpoints: []domain.ProbedEndpoint{
			{Path: "/api/v1", StatusCode: 200, JSON: true},
		},
	})

	for _, want := range []string{
		`BASE_URL = "http://10.0.0.5:8080"`,
		"def test_service_reachable():",
		"def test_api_v1_responds():",
		"def test_api_v1_returns_json():",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated tests missing %q", want)
		}
	}

	if name := g.FileName(domain.DiscoveredAPI{Name: "payments api"}); name != "test_paymentsapi.py" {
		t.Errorf("unexpected file name: %s", name)
	}
}
