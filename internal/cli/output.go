package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Output управляет форматированием вывода CLI: таблицы в stdout,
// сообщения в stderr, JSON по флагу --json.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        os.Stdout,
		errW:     os.Stderr,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// PrintReport выводит итоговый отчёт run: строку-сводку со счётчиками
// и таблицу стадий.
func (o *Output) PrintReport(report *ReportResponse) {
	if o.jsonMode {
		o.JSON(report)
		return
	}

	o.Success(fmt.Sprintf("Run %s (%s): %s in %s%s",
		report.RunID, report.Pipeline, report.Status,
		formatDuration(report.ElapsedMS), formatCounters(report.Counters)))

	rows := make([][]string, len(report.Stages))
	for i, s := range report.Stages {
		rows[i] = []string{s.StageID, s.Status, s.SkipReason, s.Error, formatDuration(s.DurationMS)}
	}
	o.Table([]string{"STAGE", "STATUS", "SKIP_REASON", "ERROR", "DURATION"}, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}

// formatDuration печатает миллисекунды человекочитаемо ("1.2s", "45ms").
func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return d.String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// formatCounters печатает счётчики отчёта в стабильном порядке.
func formatCounters(counters map[string]int) string {
	if len(counters) == 0 {
		return ""
	}

	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + strconv.Itoa(counters[name])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
