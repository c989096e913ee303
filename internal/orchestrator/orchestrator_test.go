package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
)

// recordingHandler считает вызовы и пишет счётчики в состояние.
func recordingHandler(calls *[]string, id string, mutate func(st *engine.State)) engine.Handler {
	return engine.HandlerFunc(func(_ context.Context, st *engine.State) (any, error) {
		*calls = append(*calls, id)
		if mutate != nil {
			mutate(st)
		}
		return map[string]any{"stage": id}, nil
	})
}

func failingHandler(calls *[]string, id string) engine.Handler {
	return engine.HandlerFunc(func(_ context.Context, _ *engine.State) (any, error) {
		*calls = append(*calls, id)
		return nil, fmt.Errorf("%s blew up", id)
	})
}

// ecosystemChain строит цепочку discover → assess_security → document →
// generate_sdks → security_report с реальными правилами маршрутизации.
func ecosystemChain(calls *[]string, apiCount, criticalIssues int) *engine.Chain {
	c := engine.NewChain()
	c.MustRegister(engine.Stage{
		ID: "discover",
		Handler: recordingHandler(calls, "discover", func(st *engine.State) {
			st.SetCounter("api_count", apiCount)
		}),
	})
	c.MustRegister(engine.Stage{
		ID:          "assess_security",
		Predecessor: "discover",
		Handler: recordingHandler(calls, "assess_security", func(st *engine.State) {
			st.SetCounter("critical_issues", criticalIssues)
		}),
		SkipIf:     func(st *engine.State) bool { return st.Counter("api_count") == 0 },
		SkipReason: "no APIs discovered",
		BranchTo: func(st *engine.State) string {
			if st.Counter("critical_issues") > 0 {
				return "security_report"
			}
			return ""
		},
	})
	c.MustRegister(engine.Stage{
		ID:          "document",
		Predecessor: "assess_security",
		Handler:     recordingHandler(calls, "document", nil),
	})
	c.MustRegister(engine.Stage{
		ID:          "generate_sdks",
		Predecessor: "document",
		Handler:     recordingHandler(calls, "generate_sdks", nil),
	})
	c.MustRegister(engine.Stage{
		ID:          "security_report",
		Predecessor: "generate_sdks",
		Handler:     recordingHandler(calls, "security_report", nil),
		SkipIf:      func(st *engine.State) bool { return st.Counter("critical_issues") == 0 },
		SkipReason:  "no critical findings",
	})
	return c
}

func runChain(t *testing.T, chain *engine.Chain, policy domain.FailurePolicy) (*Orchestrator, *domain.RunReport, error) {
	t.Helper()

	o, err := New(Config{
		Chain:    chain,
		Policy:   policy,
		RunID:    uuid.New(),
		Pipeline: "full",
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	runErr := o.Run(context.Background(), engine.NewState())

	report, err := o.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	return o, report, runErr
}

func TestRun_VisitsEveryStageInOrder(t *testing.T) {
	var calls []string
	chain := ecosystemChain(&calls, 2, 0)

	_, report, err := runChain(t, chain, domain.PolicyAbort)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"discover", "assess_security", "document", "generate_sdks"}
	if len(calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], calls[i])
		}
	}

	if report.Status != domain.RunStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", report.Status)
	}
	// security_report пропущен: критических находок нет.
	if res := report.Stage("security_report"); res == nil || res.Status != domain.StageStatusSkipped {
		t.Errorf("expected security_report SKIPPED, got %+v", res)
	}
}

func TestRun_SkipPredicate_NoAPIs(t *testing.T) {
	var calls []string
	chain := ecosystemChain(&calls, 0, 0)

	_, report, err := runChain(t, chain, domain.PolicyAbort)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Обработчик пропущенной стадии не вызывался.
	for _, c := range calls {
		if c == "assess_security" {
			t.Error("assess_security handler must not be invoked when skipped")
		}
	}

	res := report.Stage("assess_security")
	if res.Status != domain.StageStatusSkipped {
		t.Errorf("expected SKIPPED, got %s", res.Status)
	}
	if res.SkipReason != "no APIs discovered" {
		t.Errorf("unexpected skip reason: %q", res.SkipReason)
	}
	if res := report.Stage("document"); res.Status != domain.StageStatusCompleted {
		t.Errorf("document should still run, got %s", res.Status)
	}
	if report.Status != domain.RunStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", report.Status)
	}
}

func TestRun_BranchOnCriticalIssues(t *testing.T) {
	var calls []string
	chain := ecosystemChain(&calls, 2, 1)

	_, report, err := runChain(t, chain, domain.PolicyAbort)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res := report.Stage("security_report"); res.Status != domain.StageStatusCompleted {
		t.Errorf("expected security_report COMPLETED, got %s", res.Status)
	}
	// Перепрыгнутые стадии фиксируются как NOT_REACHED.
	if res := report.Stage("document"); res.Status != domain.StageStatusNotReached {
		t.Errorf("expected document NOT_REACHED, got %s", res.Status)
	}
	if res := report.Stage("generate_sdks"); res.Status != domain.StageStatusNotReached {
		t.Errorf("expected generate_sdks NOT_REACHED, got %s", res.Status)
	}
	if report.Status != domain.RunStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", report.Status)
	}
}

func TestRun_FailureAbortPolicy(t *testing.T) {
	var calls []string
	c := engine.NewChain()
	c.MustRegister(engine.Stage{ID: "discover", Handler: recordingHandler(&calls, "discover", nil)})
	c.MustRegister(engine.Stage{ID: "document", Predecessor: "discover", Handler: failingHandler(&calls, "document")})
	c.MustRegister(engine.Stage{ID: "generate_sdks", Predecessor: "document", Handler: recordingHandler(&calls, "generate_sdks", nil)})

	_, report, err := runChain(t, c, domain.PolicyAbort)
	if err != nil {
		t.Fatalf("handler failure must not surface as run error, got %v", err)
	}

	for _, call := range calls {
		if call == "generate_sdks" {
			t.Error("generate_sdks must not run after abort")
		}
	}
	if res := report.Stage("generate_sdks"); res.Status != domain.StageStatusNotReached {
		t.Errorf("expected NOT_REACHED, got %s", res.Status)
	}
	if report.Status != domain.RunStatusPartiallyFailed {
		t.Errorf("expected PARTIALLY_FAILED, got %s", report.Status)
	}
	if report.FirstError() != "document blew up" {
		t.Errorf("unexpected first error: %q", report.FirstError())
	}
}

func TestRun_FailureContinuePolicy(t *testing.T) {
	var calls []string
	c := engine.NewChain()
	c.MustRegister(engine.Stage{ID: "discover", Handler: recordingHandler(&calls, "discover", nil)})
	c.MustRegister(engine.Stage{ID: "document", Predecessor: "discover", Handler: failingHandler(&calls, "document")})
	c.MustRegister(engine.Stage{ID: "generate_sdks", Predecessor: "document", Handler: recordingHandler(&calls, "generate_sdks", nil)})

	_, report, err := runChain(t, c, domain.PolicyContinue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res := report.Stage("generate_sdks"); res.Status != domain.StageStatusCompleted {
		t.Errorf("generate_sdks should run under continue policy, got %s", res.Status)
	}
	if report.Status != domain.RunStatusPartiallyFailed {
		t.Errorf("expected PARTIALLY_FAILED, got %s", report.Status)
	}
}

func TestRun_BranchToUnknownStage(t *testing.T) {
	var calls []string
	c := engine.NewChain()
	c.MustRegister(engine.Stage{
		ID:       "discover",
		Handler:  recordingHandler(&calls, "discover", nil),
		BranchTo: func(_ *engine.State) string { return "missing" },
	})

	_, _, err := runChain(t, c, domain.PolicyAbort)
	if !errors.Is(err, engine.ErrUnknownBranchTarget) {
		t.Errorf("expected ErrUnknownBranchTarget, got %v", err)
	}
}

func TestRun_BranchToVisitedStage(t *testing.T) {
	var calls []string
	c := engine.NewChain()
	c.MustRegister(engine.Stage{ID: "discover", Handler: recordingHandler(&calls, "discover", nil)})
	c.MustRegister(engine.Stage{
		ID:          "assess",
		Predecessor: "discover",
		Handler:     recordingHandler(&calls, "assess", nil),
		BranchTo:    func(_ *engine.State) string { return "discover" },
	})

	_, _, err := runChain(t, c, domain.PolicyAbort)
	if !errors.Is(err, engine.ErrBranchTargetVisited) {
		t.Errorf("expected ErrBranchTargetVisited, got %v", err)
	}

	// discover выполнился ровно один раз.
	count := 0
	for _, call := range calls {
		if call == "discover" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("discover invoked %d times, expected 1", count)
	}
}

func TestRun_HandlerPanicRecorded(t *testing.T) {
	c := engine.NewChain()
	c.MustRegister(engine.Stage{
		ID: "discover",
		Handler: engine.HandlerFunc(func(_ context.Context, _ *engine.State) (any, error) {
			panic("boom")
		}),
	})

	_, report, err := runChain(t, c, domain.PolicyAbort)
	if err != nil {
		t.Fatalf("panic must be recorded, not returned: %v", err)
	}

	res := report.Stage("discover")
	if res.Status != domain.StageStatusFailed {
		t.Errorf("expected FAILED, got %s", res.Status)
	}
	if report.Status != domain.RunStatusPartiallyFailed {
		t.Errorf("expected PARTIALLY_FAILED, got %s", report.Status)
	}
}

func TestReport_BeforeRun(t *testing.T) {
	var calls []string
	o, err := New(Config{Chain: ecosystemChain(&calls, 1, 0)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := o.Report(); !errors.Is(err, ErrNotFinished) {
		t.Errorf("expected ErrNotFinished, got %v", err)
	}
}

func TestRun_SecondRunRejected(t *testing.T) {
	var calls []string
	o, err := New(Config{Chain: ecosystemChain(&calls, 1, 0)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := o.Run(context.Background(), engine.NewState()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := o.Run(context.Background(), engine.NewState()); !errors.Is(err, ErrAlreadyRan) {
		t.Errorf("expected ErrAlreadyRan, got %v", err)
	}
}

func TestRun_OnStageCallback(t *testing.T) {
	var calls []string
	var observed []string

	o, err := New(Config{
		Chain: ecosystemChain(&calls, 2, 0),
		OnStage: func(stageID string, result domain.StageResult) {
			observed = append(observed, stageID+":"+string(result.Status))
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := o.Run(context.Background(), engine.NewState()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(observed) != 5 {
		t.Errorf("expected 5 stage callbacks, got %d: %v", len(observed), observed)
	}
	if observed[0] != "discover:COMPLETED" {
		t.Errorf("unexpected first callback: %s", observed[0])
	}
}

func TestRun_CountersInReport(t *testing.T) {
	var calls []string
	_, report, err := runChain(t, ecosystemChain(&calls, 3, 2), domain.PolicyAbort)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Counters["api_count"] != 3 {
		t.Errorf("expected api_count=3, got %d", report.Counters["api_count"])
	}
	if report.Counters["critical_issues"] != 2 {
		t.Errorf("expected critical_issues=2, got %d", report.Counters["critical_issues"])
	}
}
