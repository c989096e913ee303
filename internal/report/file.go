package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shaiso/apiforge/internal/domain"
)

const reportFileName = "report.json"

// FileSink пишет отчёты в JSON файлы на диске.
//
// Каждый run получает каталог <root>/<run_id>/, отчёт лежит рядом
// с артефактами стадий.
type FileSink struct {
	root string
}

// NewFileSink создаёт FileSink с корневым каталогом.
func NewFileSink(root string) *FileSink {
	return &FileSink{root: root}
}

// Name реализует Sink.
func (s *FileSink) Name() string {
	return "file"
}

// Persist записывает отчёт в <root>/<run_id>/report.json.
func (s *FileSink) Persist(_ context.Context, report *domain.RunReport) error {
	dir := filepath.Join(s.root, report.RunID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(dir, reportFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Load читает ранее сохранённый отчёт.
func (s *FileSink) Load(runID uuid.UUID) (*domain.RunReport, error) {
	path := filepath.Join(s.root, runID.String(), reportFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, runID)
		}
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}
