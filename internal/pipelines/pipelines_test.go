package pipelines

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/orchestrator"
	"github.com/shaiso/apiforge/internal/stages"
)

// closedPort возвращает заведомо закрытый порт.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

// apiServer поднимает тестовый API и возвращает его порт.
func apiServer(t *testing.T) int {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return port
}

func executePipeline(t *testing.T, reg *Registry, name string) *domain.RunReport {
	t.Helper()

	runID := uuid.New()
	chain, _, err := reg.Build(name, runID)
	if err != nil {
		t.Fatalf("build %s: %v", name, err)
	}

	o, err := orchestrator.New(orchestrator.Config{
		Chain:    chain,
		RunID:    runID,
		Pipeline: name,
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	if err := o.Run(context.Background(), engine.NewState()); err != nil {
		t.Fatalf("run: %v", err)
	}

	report, err := o.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	return report
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry(Config{ArtifactRoot: t.TempDir()})

	names := reg.Names()
	want := []string{PipelineCompliance, PipelineDevExperience, PipelineDiscoveryDocs, PipelineFull}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d]: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestRegistry_BuildUnknown(t *testing.T) {
	reg := NewRegistry(Config{ArtifactRoot: t.TempDir()})

	_, _, err := reg.Build("nope", uuid.New())
	if !errors.Is(err, orchestrator.ErrPipelineNotFound) {
		t.Errorf("expected ErrPipelineNotFound, got %v", err)
	}
}

func TestFullPipeline_NoAPIs(t *testing.T) {
	reg := NewRegistry(Config{
		Host:         "127.0.0.1",
		Ports:        []int{closedPort(t)},
		ArtifactRoot: t.TempDir(),
	})

	report := executePipeline(t, reg, PipelineFull)

	if report.Status != domain.RunStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", report.Status)
	}
	if report.Counters[stages.CounterAPICount] != 0 {
		t.Errorf("expected api_count=0, got %d", report.Counters[stages.CounterAPICount])
	}

	// Без API все последующие стадии пропускаются, но учитываются.
	for _, id := range []string{stages.StageAssessSecurity, stages.StageDocument, stages.StageGenerateSDKs, stages.StageSecurityReport} {
		res := report.Stage(id)
		if res == nil {
			t.Fatalf("stage %s missing from report", id)
		}
		if res.Status != domain.StageStatusSkipped {
			t.Errorf("stage %s: expected SKIPPED, got %s", id, res.Status)
		}
	}
}

func TestFullPipeline_RoutingMatchesFindings(t *testing.T) {
	reg := NewRegistry(Config{
		Host:         "127.0.0.1",
		Ports:        []int{apiServer(t)},
		ArtifactRoot: t.TempDir(),
	})

	report := executePipeline(t, reg, PipelineFull)

	if report.Status != domain.RunStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", report.Status)
	}
	if report.Counters[stages.CounterAPICount] == 0 {
		t.Fatal("expected at least one discovered API")
	}

	if report.Counters[stages.CounterCriticalIssues] > 0 {
		// Критические находки: branch уводит в эскалацию, документация
		// и SDK остаются недостигнутыми.
		if res := report.Stage(stages.StageSecurityReport); res.Status != domain.StageStatusCompleted {
			t.Errorf("expected security_report COMPLETED, got %s", res.Status)
		}
		if res := report.Stage(stages.StageDocument); res.Status != domain.StageStatusNotReached {
			t.Errorf("expected document NOT_REACHED, got %s", res.Status)
		}
		if res := report.Stage(stages.StageGenerateSDKs); res.Status != domain.StageStatusNotReached {
			t.Errorf("expected generate_sdks NOT_REACHED, got %s", res.Status)
		}
	} else {
		// Штатный путь: документация и SDK выполняются, эскалация
		// пропускается.
		if res := report.Stage(stages.StageDocument); res.Status != domain.StageStatusCompleted {
			t.Errorf("expected document COMPLETED, got %s", res.Status)
		}
		if res := report.Stage(stages.StageGenerateSDKs); res.Status != domain.StageStatusCompleted {
			t.Errorf("expected generate_sdks COMPLETED, got %s", res.Status)
		}
		if res := report.Stage(stages.StageSecurityReport); res.Status != domain.StageStatusSkipped {
			t.Errorf("expected security_report SKIPPED, got %s", res.Status)
		}
	}
}

func TestDiscoveryDocsPipeline(t *testing.T) {
	reg := NewRegistry(Config{
		Host:         "127.0.0.1",
		Ports:        []int{apiServer(t)},
		ArtifactRoot: t.TempDir(),
	})

	report := executePipeline(t, reg, PipelineDiscoveryDocs)

	if report.Status != domain.RunStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", report.Status)
	}
	if res := report.Stage(stages.StageDocument); res.Status != domain.StageStatusCompleted {
		t.Errorf("expected document COMPLETED, got %s", res.Status)
	}
	// В этой цепочке нет стадий безопасности.
	if res := report.Stage(stages.StageAssessSecurity); res != nil {
		t.Errorf("assess_security should not be in chain, got %+v", res)
	}
}

func TestDevExperiencePipeline(t *testing.T) {
	reg := NewRegistry(Config{
		Host:         "127.0.0.1",
		Ports:        []int{apiServer(t)},
		ArtifactRoot: t.TempDir(),
	})

	report := executePipeline(t, reg, PipelineDevExperience)

	if report.Status != domain.RunStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", report.Status)
	}
	for _, id := range []string{stages.StageValidateContracts, stages.StageGenerateTests, stages.StageBenchmark} {
		if res := report.Stage(id); res == nil || res.Status != domain.StageStatusCompleted {
			t.Errorf("stage %s: expected COMPLETED, got %+v", id, res)
		}
	}
	// Проверка контрактов фиксирует счётчик нарушений.
	if _, ok := report.Counters[stages.CounterContractIssues]; !ok {
		t.Error("contract_issues counter missing from report")
	}
}

func TestDevExperiencePipeline_NoAPIs(t *testing.T) {
	reg := NewRegistry(Config{
		Host:         "127.0.0.1",
		Ports:        []int{closedPort(t)},
		ArtifactRoot: t.TempDir(),
	})

	report := executePipeline(t, reg, PipelineDevExperience)

	if report.Status != domain.RunStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", report.Status)
	}
	for _, id := range []string{stages.StageValidateContracts, stages.StageGenerateTests, stages.StageBenchmark} {
		if res := report.Stage(id); res == nil || res.Status != domain.StageStatusSkipped {
			t.Errorf("stage %s: expected SKIPPED, got %+v", id, res)
		}
	}
}

func TestCompliancePipeline_StageOrder(t *testing.T) {
	reg := NewRegistry(Config{ArtifactRoot: t.TempDir()})

	chain, _, err := reg.Build(PipelineCompliance, uuid.New())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	path := chain.Path()
	want := []string{stages.StageDiscover, stages.StageAssessSecurity, stages.StageSecurityReport}
	if len(path) != len(want) {
		t.Fatalf("expected path %v, got %v", want, path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("path[%d]: expected %s, got %s", i, want[i], path[i])
		}
	}
}
