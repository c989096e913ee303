package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер стандартных пятипольных cron-выражений.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Ошибки разбора расписаний.
var (
	// ErrEmptySchedules — строка расписаний пуста.
	ErrEmptySchedules = errors.New("empty schedules")
)

// Entry — одно запланированное расписание pipeline.
type Entry struct {
	// Pipeline — имя pipeline.
	Pipeline string

	// Expr — исходное cron-выражение.
	Expr string

	schedule cron.Schedule
}

// ParseSchedules разбирает строку расписаний вида
// "full@0 2 * * *;compliance@0 */6 * * *".
//
// Записи разделяются точкой с запятой, pipeline отделён от
// cron-выражения символом @.
func ParseSchedules(spec string) ([]Entry, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrEmptySchedules
	}

	var entries []Entry
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		pipeline, expr, ok := strings.Cut(part, "@")
		if !ok {
			return nil, fmt.Errorf("invalid schedule entry %q: expected pipeline@cron", part)
		}
		pipeline = strings.TrimSpace(pipeline)
		expr = strings.TrimSpace(expr)
		if pipeline == "" {
			return nil, fmt.Errorf("invalid schedule entry %q: empty pipeline", part)
		}

		schedule, err := cronParser.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
		}

		entries = append(entries, Entry{
			Pipeline: pipeline,
			Expr:     expr,
			schedule: schedule,
		})
	}

	if len(entries) == 0 {
		return nil, ErrEmptySchedules
	}
	return entries, nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
