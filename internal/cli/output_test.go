package cli

import (
	"bytes"
	"strings"
	"testing"
)

func testOutput(jsonMode bool) (*Output, *bytes.Buffer, *bytes.Buffer) {
	w := &bytes.Buffer{}
	errW := &bytes.Buffer{}
	return &Output{jsonMode: jsonMode, w: w, errW: errW}, w, errW
}

func TestOutput_PrintReport_Table(t *testing.T) {
	out, w, errW := testOutput(false)

	out.PrintReport(&ReportResponse{
		RunID:     "01234567-89ab-cdef-0123-456789abcdef",
		Pipeline:  "full",
		Status:    "COMPLETED",
		ElapsedMS: 1234,
		Stages: []StageResultResponse{
			{StageID: "discover", Status: "COMPLETED", DurationMS: 42},
			{StageID: "assess_security", Status: "SKIPPED", SkipReason: "no APIs discovered"},
		},
		Counters: map[string]int{"api_count": 0},
	})

	summary := errW.String()
	if !strings.Contains(summary, "COMPLETED in 1.2s") {
		t.Errorf("summary missing status and duration: %q", summary)
	}
	if !strings.Contains(summary, "api_count=0") {
		t.Errorf("summary missing counters: %q", summary)
	}

	table := w.String()
	for _, want := range []string{"STAGE", "discover", "42ms", "no APIs discovered"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q:\n%s", want, table)
		}
	}
}

func TestOutput_PrintReport_JSON(t *testing.T) {
	out, w, errW := testOutput(true)

	out.PrintReport(&ReportResponse{RunID: "id", Pipeline: "full", Status: "COMPLETED"})

	if !strings.Contains(w.String(), `"run_id": "id"`) {
		t.Errorf("json output missing run_id:\n%s", w.String())
	}
	// В JSON-режиме stderr остаётся чистым для pipe.
	if errW.Len() != 0 {
		t.Errorf("unexpected stderr output: %q", errW.String())
	}
}

func TestFormatCounters_StableOrder(t *testing.T) {
	got := formatCounters(map[string]int{"critical_issues": 2, "api_count": 3})
	if got != " (api_count=3, critical_issues=2)" {
		t.Errorf("unexpected counters formatting: %q", got)
	}

	if got := formatCounters(nil); got != "" {
		t.Errorf("empty counters must format to nothing, got %q", got)
	}
}
