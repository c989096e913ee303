package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/apiforge/internal/domain"
)

// Metrics — Prometheus метрики pipeline.
type Metrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	stagesTotal   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// NewMetrics регистрирует метрики в реестре по умолчанию.
//
// Вызывается один раз на процесс: повторная регистрация тех же
// имён вызовет панику promauto.
func NewMetrics() *Metrics {
	return &Metrics{
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "apiforge_runs_total",
			Help: "Finished pipeline runs by terminal status.",
		}, []string{"pipeline", "status"}),

		runDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apiforge_run_duration_seconds",
			Help:    "Wall time of pipeline runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"pipeline"}),

		stagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "apiforge_stages_total",
			Help: "Stage results by terminal status.",
		}, []string{"stage", "status"}),

		stageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apiforge_stage_duration_seconds",
			Help:    "Wall time of individual stages.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
	}
}

// ObserveRun учитывает завершённый run.
func (m *Metrics) ObserveRun(report *domain.RunReport) {
	m.runsTotal.WithLabelValues(report.Pipeline, string(report.Status)).Inc()
	m.runDuration.WithLabelValues(report.Pipeline).Observe(
		time.Duration(report.ElapsedMS * int64(time.Millisecond)).Seconds())
}

// ObserveStage учитывает результат стадии.
func (m *Metrics) ObserveStage(result domain.StageResult) {
	m.stagesTotal.WithLabelValues(result.StageID, string(result.Status)).Inc()
	m.stageDuration.WithLabelValues(result.StageID).Observe(
		time.Duration(result.DurationMS * int64(time.Millisecond)).Seconds())
}
