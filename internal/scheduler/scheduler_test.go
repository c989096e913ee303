package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/apiforge/internal/domain"
)

type fakeStarter struct {
	started []string
}

func (f *fakeStarter) StartRun(_ context.Context, pipeline string) (*domain.Run, error) {
	if pipeline == "broken" {
		return nil, errors.New("no such pipeline")
	}
	f.started = append(f.started, pipeline)
	return domain.NewRun(pipeline), nil
}

func TestParseSchedules(t *testing.T) {
	entries, err := ParseSchedules("full@0 2 * * *; compliance@0 */6 * * *")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Pipeline != "full" || entries[1].Pipeline != "compliance" {
		t.Errorf("unexpected pipelines: %+v", entries)
	}
}

func TestParseSchedules_Invalid(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"full-без-крона",
		"full@not a cron",
		"@0 2 * * *",
	}
	for _, spec := range cases {
		if _, err := ParseSchedules(spec); err == nil {
			t.Errorf("expected error for %q", spec)
		}
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("*/5 * * * *"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := ValidateCronExpr("61 * * * *"); err == nil {
		t.Error("invalid expression accepted")
	}
}

func TestScheduler_Tick(t *testing.T) {
	entries, err := ParseSchedules("full@* * * * *")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	starter := &fakeStarter{}
	s := New(Config{Starter: starter, Entries: entries})

	// Время ещё не наступило.
	if started := s.Tick(context.Background()); started != 0 {
		t.Errorf("expected 0 started, got %d", started)
	}

	// Сдвигаем время запуска в прошлое.
	s.nextDue[0] = time.Now().Add(-time.Minute)
	if started := s.Tick(context.Background()); started != 1 {
		t.Errorf("expected 1 started, got %d", started)
	}
	if len(starter.started) != 1 || starter.started[0] != "full" {
		t.Errorf("unexpected started runs: %v", starter.started)
	}

	// Следующее время пересчитано вперёд.
	if !s.nextDue[0].After(time.Now()) {
		t.Error("next due must be recalculated into the future")
	}
}

func TestScheduler_TickSurvivesStartError(t *testing.T) {
	entries, err := ParseSchedules("broken@* * * * *;full@* * * * *")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	starter := &fakeStarter{}
	s := New(Config{Starter: starter, Entries: entries})
	s.nextDue[0] = time.Now().Add(-time.Minute)
	s.nextDue[1] = time.Now().Add(-time.Minute)

	if started := s.Tick(context.Background()); started != 1 {
		t.Errorf("expected 1 started despite failure, got %d", started)
	}
	if len(starter.started) != 1 || starter.started[0] != "full" {
		t.Errorf("unexpected started runs: %v", starter.started)
	}
}
