package orchestrator_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/orchestrator"
	"github.com/shaiso/apiforge/internal/pipelines"
	"github.com/shaiso/apiforge/internal/report"
)

type memoryStore struct {
	mu      sync.Mutex
	runs    map[uuid.UUID]*domain.Run
	reports map[uuid.UUID]*domain.RunReport
	updates int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		runs:    make(map[uuid.UUID]*domain.Run),
		reports: make(map[uuid.UUID]*domain.RunReport),
	}
}

func (s *memoryStore) Create(_ context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *run
	s.runs[run.ID] = &copied
	return nil
}

func (s *memoryStore) Update(_ context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *run
	s.runs[run.ID] = &copied
	s.updates++
	return nil
}

func (s *memoryStore) SaveReport(_ context.Context, rep *domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[rep.RunID] = rep
	return nil
}

type memoryPublisher struct {
	mu       sync.Mutex
	started  int
	finished int
	stages   []string
}

func (p *memoryPublisher) RunStarted(context.Context, *domain.Run) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started++
	return nil
}

func (p *memoryPublisher) RunFinished(context.Context, *domain.RunReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished++
	return nil
}

func (p *memoryPublisher) StageFinished(_ context.Context, _ uuid.UUID, result domain.StageResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, result.StageID)
	return nil
}

// testRegistry — реестр, сканирующий заведомо закрытый порт.
func testRegistry(t *testing.T) *pipelines.Registry {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	return pipelines.NewRegistry(pipelines.Config{
		Host:         "127.0.0.1",
		Ports:        []int{port},
		ArtifactRoot: t.TempDir(),
	})
}

func TestService_ExecuteRun(t *testing.T) {
	store := newMemoryStore()
	pub := &memoryPublisher{}
	sink := report.NewFileSink(t.TempDir())

	svc, err := orchestrator.NewService(orchestrator.ServiceConfig{
		Pipelines: testRegistry(t),
		Store:     store,
		Publisher: pub,
		Sink:      sink,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	rep, err := svc.ExecuteRun(context.Background(), pipelines.PipelineFull)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if rep.Status != domain.RunStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", rep.Status)
	}

	run, ok := store.runs[rep.RunID]
	if !ok {
		t.Fatal("run not persisted")
	}
	if run.Status != domain.RunStatusCompleted {
		t.Errorf("stored run status: %s", run.Status)
	}
	if _, ok := store.reports[rep.RunID]; !ok {
		t.Error("report not persisted in store")
	}
	if _, err := sink.Load(rep.RunID); err != nil {
		t.Errorf("report not persisted in sink: %v", err)
	}

	if pub.started != 1 || pub.finished != 1 {
		t.Errorf("expected 1 started and 1 finished event, got %d/%d", pub.started, pub.finished)
	}
	if len(pub.stages) != len(rep.Stages)-countNotReached(rep) {
		t.Errorf("stage events %d, report stages %d (without NOT_REACHED)",
			len(pub.stages), len(rep.Stages)-countNotReached(rep))
	}
}

func countNotReached(rep *domain.RunReport) int {
	n := 0
	for _, s := range rep.Stages {
		if s.Status == domain.StageStatusNotReached {
			n++
		}
	}
	return n
}

// Снимок run берётся до старта фоновой горутины: горутина мутирует
// оригинал, и гонка здесь ловится детектором гонок.
func TestService_StartRun_ReturnsPendingSnapshot(t *testing.T) {
	store := newMemoryStore()
	pub := &memoryPublisher{}

	svc, err := orchestrator.NewService(orchestrator.ServiceConfig{
		Pipelines: testRegistry(t),
		Store:     store,
		Publisher: pub,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	const runs = 50
	for i := 0; i < runs; i++ {
		run, err := svc.StartRun(context.Background(), pipelines.PipelineCompliance)
		if err != nil {
			t.Fatalf("start run: %v", err)
		}
		if run.Status != domain.RunStatusPending {
			t.Fatalf("expected PENDING snapshot, got %s", run.Status)
		}
	}

	// Дожидаемся фоновых runs, чтобы они не пережили тест.
	deadline := time.After(30 * time.Second)
	for {
		pub.mu.Lock()
		finished := pub.finished
		pub.mu.Unlock()
		if finished == runs {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("only %d of %d runs finished", finished, runs)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestService_UnknownPipeline(t *testing.T) {
	svc, err := orchestrator.NewService(orchestrator.ServiceConfig{
		Pipelines: testRegistry(t),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.ExecuteRun(context.Background(), "nope")
	if !errors.Is(err, orchestrator.ErrPipelineNotFound) {
		t.Errorf("expected ErrPipelineNotFound, got %v", err)
	}

	_, err = svc.StartRun(context.Background(), "nope")
	if !errors.Is(err, orchestrator.ErrPipelineNotFound) {
		t.Errorf("expected ErrPipelineNotFound, got %v", err)
	}
}

func TestService_Pipelines(t *testing.T) {
	svc, err := orchestrator.NewService(orchestrator.ServiceConfig{
		Pipelines: testRegistry(t),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	names := svc.Pipelines()
	if len(names) != 4 {
		t.Errorf("expected 4 pipelines, got %v", names)
	}
	if _, err := svc.Describe(pipelines.PipelineFull); err != nil {
		t.Errorf("describe: %v", err)
	}
}
