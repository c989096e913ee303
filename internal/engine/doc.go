// Package engine содержит структуры данных для выполнения pipeline.
//
// Включает:
//   - chain.go — цепочка стадий (простой путь) с skip/branch предикатами
//   - state.go — состояние одного run: outputs, счётчики, тайминги
//
// Engine отвечает за структуру цепочки и правила её построения.
// Сам обход цепочки ведёт пакет orchestrator.
package engine
