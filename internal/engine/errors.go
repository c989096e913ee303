package engine

import "errors"

// Ошибки конфигурации цепочки.
var (
	// ErrEmptyStageID — стадия не имеет ID.
	ErrEmptyStageID = errors.New("stage has empty ID")

	// ErrDuplicateStageID — несколько стадий с одинаковым ID.
	ErrDuplicateStageID = errors.New("duplicate stage ID")

	// ErrUnknownPredecessor — стадия ссылается на несуществующего предшественника.
	ErrUnknownPredecessor = errors.New("stage declares unknown predecessor")

	// ErrDuplicateEntry — в цепочке уже есть входная стадия (без предшественника).
	ErrDuplicateEntry = errors.New("chain already has an entry stage")

	// ErrNoEntry — в цепочке нет входной стадии.
	ErrNoEntry = errors.New("chain has no entry stage")

	// ErrNilHandler — стадия без обработчика.
	ErrNilHandler = errors.New("stage has nil handler")

	// ErrCyclicChain — предшественники образуют цикл.
	ErrCyclicChain = errors.New("cyclic chain detected")

	// ErrUnknownBranchTarget — branch-предикат вернул неизвестный ID стадии.
	ErrUnknownBranchTarget = errors.New("branch target not in chain")

	// ErrBranchTargetVisited — branch-предикат вернул уже выполненную стадию.
	// Повторный вход нарушил бы правило "обработчик выполняется не более
	// одного раза за run".
	ErrBranchTargetVisited = errors.New("branch target already visited")
)

// ConfigurationError — ошибка построения или маршрутизации цепочки
// с контекстом стадии.
type ConfigurationError struct {
	StageID string // стадия, на которой обнаружена ошибка
	Message string // описание
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ConfigurationError) Error() string {
	if e.StageID != "" {
		return "stage " + e.StageID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError создаёт новую ошибку конфигурации.
func NewConfigurationError(stageID, message string, err error) *ConfigurationError {
	return &ConfigurationError{
		StageID: stageID,
		Message: message,
		Err:     err,
	}
}
