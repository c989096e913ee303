package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrNilChain — оркестратор создан без цепочки.
	ErrNilChain = errors.New("nil chain")

	// ErrAlreadyRan — повторный вызов Run на том же оркестраторе.
	// Один оркестратор владеет состоянием одного run.
	ErrAlreadyRan = errors.New("orchestrator already ran")

	// ErrNotFinished — Report вызван до завершения Run.
	ErrNotFinished = errors.New("run not finished")

	// ErrPipelineNotFound — pipeline с таким именем не зарегистрирован.
	ErrPipelineNotFound = errors.New("pipeline not found")
)
