package domain

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ PARTIALLY_FAILED
type RunStatus string

const (
	// RunStatusPending — run создан, но выполнение ещё не началось.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — run в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusCompleted — все достигнутые стадии завершились без ошибок.
	RunStatusCompleted RunStatus = "COMPLETED"

	// RunStatusPartiallyFailed — хотя бы одна стадия упала.
	// Отчёт при этом всё равно полный: что выполнилось, что пропущено, что упало.
	RunStatusPartiallyFailed RunStatus = "PARTIALLY_FAILED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusPartiallyFailed:
		return true
	default:
		return false
	}
}

// StageStatus — статус одной стадии внутри run.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	        ↘ SKIPPED            ↘ FAILED
//
// Стадия никогда не возвращается в PENDING; обработчик стадии
// вызывается не более одного раза за run.
type StageStatus string

const (
	// StageStatusPending — стадия ещё не достигнута.
	StageStatusPending StageStatus = "PENDING"

	// StageStatusRunning — обработчик стадии выполняется.
	StageStatusRunning StageStatus = "RUNNING"

	// StageStatusCompleted — обработчик вернул результат.
	StageStatusCompleted StageStatus = "COMPLETED"

	// StageStatusSkipped — skip-предикат сработал, обработчик не вызывался.
	StageStatusSkipped StageStatus = "SKIPPED"

	// StageStatusFailed — обработчик вернул ошибку (или упал с паникой).
	StageStatusFailed StageStatus = "FAILED"

	// StageStatusNotReached — выполнение закончилось раньше:
	// branch-переход перепрыгнул стадию либо сработала abort-политика.
	StageStatusNotReached StageStatus = "NOT_REACHED"
)

// IsTerminal возвращает true, если статус стадии финальный.
func (s StageStatus) IsTerminal() bool {
	switch s {
	case StageStatusCompleted, StageStatusSkipped, StageStatusFailed, StageStatusNotReached:
		return true
	default:
		return false
	}
}

// FailurePolicy — политика оркестратора при падении стадии.
type FailurePolicy string

const (
	// PolicyAbort — остановить выполнение цепочки (по умолчанию).
	// Последующие стадии получают статус NOT_REACHED.
	PolicyAbort FailurePolicy = "abort"

	// PolicyContinue — продолжить выполнение со следующей стадии.
	PolicyContinue FailurePolicy = "continue"
)

// ParseFailurePolicy парсит строку в FailurePolicy.
// Неизвестные значения трактуются как PolicyAbort.
func ParseFailurePolicy(s string) FailurePolicy {
	if s == string(PolicyContinue) {
		return PolicyContinue
	}
	return PolicyAbort
}
