package engine

import (
	"fmt"
	"time"
)

// State — изменяемое состояние одного run.
//
// State создаётся на старте run и живёт до его завершения. Им владеет
// ровно один оркестратор; между параллельными runs состояние не
// разделяется, поэтому блокировки не нужны.
//
// Содержит:
//   - Outputs завершённых стадий (append-only: стадия никогда не
//     перезаписывает чужой результат)
//   - Скалярные счётчики (api_count, critical_issues, ...)
//   - Тайминги стадий
type State struct {
	outputs  map[string]any
	counters map[string]int
	timings  map[string]time.Duration
}

// NewState создаёт пустой State.
func NewState() *State {
	return &State{
		outputs:  make(map[string]any),
		counters: make(map[string]int),
		timings:  make(map[string]time.Duration),
	}
}

// RecordOutput записывает результат стадии.
// Возвращает ошибку при попытке перезаписи — outputs append-only.
func (s *State) RecordOutput(stageID string, output any) error {
	if _, exists := s.outputs[stageID]; exists {
		return fmt.Errorf("output for stage %s already recorded", stageID)
	}
	s.outputs[stageID] = output
	return nil
}

// Output возвращает результат стадии.
func (s *State) Output(stageID string) (any, bool) {
	out, ok := s.outputs[stageID]
	return out, ok
}

// Outputs возвращает копию всех записанных результатов.
func (s *State) Outputs() map[string]any {
	out := make(map[string]any, len(s.outputs))
	for k, v := range s.outputs {
		out[k] = v
	}
	return out
}

// SetCounter устанавливает значение счётчика.
func (s *State) SetCounter(name string, value int) {
	s.counters[name] = value
}

// AddCounter увеличивает счётчик на delta.
func (s *State) AddCounter(name string, delta int) {
	s.counters[name] += delta
}

// Counter возвращает значение счётчика (0, если не устанавливался).
func (s *State) Counter(name string) int {
	return s.counters[name]
}

// Counters возвращает копию всех счётчиков.
func (s *State) Counters() map[string]int {
	out := make(map[string]int, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}

// RecordTiming фиксирует время выполнения стадии.
// Вызывается оркестратором, не обработчиками.
func (s *State) RecordTiming(stageID string, elapsed time.Duration) {
	s.timings[stageID] = elapsed
}

// Timing возвращает время выполнения стадии.
func (s *State) Timing(stageID string) time.Duration {
	return s.timings[stageID]
}
