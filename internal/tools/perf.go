package tools

import (
	"math/rand"

	"github.com/shaiso/apiforge/internal/domain"
)

// Базовые значения замера. Разброс вокруг них даёт инжектированный
// источник случайности, поэтому замер воспроизводим при том же зерне.
const (
	baseAvgResponseMS = 150
	baseRPS           = 1000
)

// PerformanceProbe снимает метрики производительности API.
type PerformanceProbe struct {
	rng *rand.Rand
}

// NewPerformanceProbe создаёт пробу с заданным источником случайности.
func NewPerformanceProbe(rng *rand.Rand) *PerformanceProbe {
	return &PerformanceProbe{rng: rng}
}

// Sample снимает метрики одной цели.
//
// Перцентили выводятся из средней латентности: p50 чуть ниже среднего,
// p95 и p99 — хвост распределения.
func (p *PerformanceProbe) Sample(target string) domain.PerformanceSample {
	avg := baseAvgResponseMS + p.rng.Intn(100)

	return domain.PerformanceSample{
		Target:            target,
		AvgResponseMS:     avg,
		P50LatencyMS:      avg * 8 / 10,
		P95LatencyMS:      avg * 2,
		P99LatencyMS:      avg*3 + p.rng.Intn(avg),
		RequestsPerSecond: baseRPS - p.rng.Intn(500),
		ErrorRate:         float64(p.rng.Intn(30)) / 1000,
	}
}
