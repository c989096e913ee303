package stages

import (
	"context"
	"log/slog"

	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/tools"
)

// BenchmarkStage снимает метрики производительности найденных API.
type BenchmarkStage struct {
	probe  *tools.PerformanceProbe
	logger *slog.Logger
}

// NewBenchmarkStage создаёт стадию замера производительности.
func NewBenchmarkStage(probe *tools.PerformanceProbe, logger *slog.Logger) *BenchmarkStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &BenchmarkStage{probe: probe, logger: logger}
}

// Execute реализует engine.Handler.
func (s *BenchmarkStage) Execute(_ context.Context, st *engine.State) (any, error) {
	discovery, err := discoveryOutput(st)
	if err != nil {
		return nil, err
	}

	result := &domain.BenchmarkResult{}
	slowest := 0
	for _, api := range discovery.APIs {
		sample := s.probe.Sample(api.Name)
		result.Samples = append(result.Samples, sample)
		if sample.P99LatencyMS > slowest {
			slowest = sample.P99LatencyMS
			result.SlowestTarget = sample.Target
		}

		s.logger.Info("benchmark sampled",
			"target", api.Name,
			"p99_ms", sample.P99LatencyMS,
			"rps", sample.RequestsPerSecond,
		)
	}

	return result, nil
}
