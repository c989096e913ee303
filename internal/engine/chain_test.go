package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noopHandler() Handler {
	return HandlerFunc(func(_ context.Context, _ *State) (any, error) {
		return nil, nil
	})
}

func TestChain_Register_LinearOrder(t *testing.T) {
	c := NewChain()

	stages := []Stage{
		{ID: "discover", Handler: noopHandler()},
		{ID: "assess", Predecessor: "discover", Handler: noopHandler()},
		{ID: "document", Predecessor: "assess", Handler: noopHandler()},
	}
	for _, s := range stages {
		if err := c.Register(s); err != nil {
			t.Fatalf("register %s: %v", s.ID, err)
		}
	}

	if c.Entry() != "discover" {
		t.Errorf("expected entry discover, got %s", c.Entry())
	}

	path := c.Path()
	want := []string{"discover", "assess", "document"}
	if len(path) != len(want) {
		t.Fatalf("expected path of %d stages, got %d", len(want), len(path))
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("path[%d]: expected %s, got %s", i, want[i], path[i])
		}
	}

	if err := c.Validate(); err != nil {
		t.Errorf("unexpected validate error: %v", err)
	}
}

func TestChain_Register_SpliceInsert(t *testing.T) {
	// Вставка между двумя уже связанными стадиями.
	c := NewChain()
	c.MustRegister(Stage{ID: "A", Handler: noopHandler()})
	c.MustRegister(Stage{ID: "C", Predecessor: "A", Handler: noopHandler()})
	c.MustRegister(Stage{ID: "B", Predecessor: "A", Handler: noopHandler()})

	path := c.Path()
	want := []string{"A", "B", "C"}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("expected path %v, got %v", want, path)
		}
	}
}

func TestChain_Register_DuplicateID(t *testing.T) {
	c := NewChain()
	c.MustRegister(Stage{ID: "A", Handler: noopHandler()})

	err := c.Register(Stage{ID: "A", Predecessor: "A", Handler: noopHandler()})
	if !errors.Is(err, ErrDuplicateStageID) {
		t.Errorf("expected ErrDuplicateStageID, got %v", err)
	}

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Error("expected ConfigurationError")
	}
}

func TestChain_Register_UnknownPredecessor(t *testing.T) {
	c := NewChain()
	c.MustRegister(Stage{ID: "A", Handler: noopHandler()})

	err := c.Register(Stage{ID: "B", Predecessor: "missing", Handler: noopHandler()})
	if !errors.Is(err, ErrUnknownPredecessor) {
		t.Errorf("expected ErrUnknownPredecessor, got %v", err)
	}
}

func TestChain_Register_SecondEntry(t *testing.T) {
	c := NewChain()
	c.MustRegister(Stage{ID: "A", Handler: noopHandler()})

	err := c.Register(Stage{ID: "B", Handler: noopHandler()})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestChain_Register_NilHandler(t *testing.T) {
	c := NewChain()

	err := c.Register(Stage{ID: "A"})
	if !errors.Is(err, ErrNilHandler) {
		t.Errorf("expected ErrNilHandler, got %v", err)
	}
}

func TestChain_Validate_NoEntry(t *testing.T) {
	c := NewChain()

	err := c.Validate()
	if !errors.Is(err, ErrNoEntry) {
		t.Errorf("expected ErrNoEntry, got %v", err)
	}
}

func TestState_RecordOutput_AppendOnly(t *testing.T) {
	st := NewState()

	if err := st.RecordOutput("discover", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Повторная запись под тем же ID запрещена.
	if err := st.RecordOutput("discover", 43); err == nil {
		t.Error("expected error on output overwrite")
	}

	out, ok := st.Output("discover")
	if !ok || out != 42 {
		t.Errorf("expected output 42, got %v", out)
	}
}

func TestState_Counters(t *testing.T) {
	st := NewState()

	if st.Counter("api_count") != 0 {
		t.Error("unset counter should be 0")
	}

	st.SetCounter("api_count", 2)
	st.AddCounter("api_count", 3)

	if got := st.Counter("api_count"); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestState_Timings(t *testing.T) {
	st := NewState()
	st.RecordTiming("discover", 250*time.Millisecond)

	if got := st.Timing("discover"); got != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", got)
	}
	if got := st.Timing("missing"); got != 0 {
		t.Errorf("expected 0 for unknown stage, got %v", got)
	}
}
