package engine

import (
	"context"
	"fmt"
)

// Handler — обработчик стадии.
//
// Обработчик получает состояние run, возвращает результат (payload)
// или ошибку. Учёт статуса и таймингов — обязанность оркестратора,
// обработчик этим не занимается.
type Handler interface {
	Execute(ctx context.Context, st *State) (any, error)
}

// HandlerFunc — адаптер функции к интерфейсу Handler.
type HandlerFunc func(ctx context.Context, st *State) (any, error)

// Execute реализует интерфейс Handler.
func (f HandlerFunc) Execute(ctx context.Context, st *State) (any, error) {
	return f(ctx, st)
}

// Stage — одна стадия цепочки.
type Stage struct {
	// ID — уникальный идентификатор стадии в цепочке.
	ID string

	// Predecessor — ID предшественника. Пустая строка — входная стадия;
	// входная стадия в цепочке ровно одна.
	Predecessor string

	// Handler — обработчик стадии.
	Handler Handler

	// SkipIf — skip-предикат. Если возвращает true, обработчик не
	// вызывается, стадия получает статус SKIPPED, выполнение переходит
	// к следующей стадии. Предикат должен быть чистой функцией
	// от снимка состояния и не мутировать его.
	SkipIf func(st *State) bool

	// SkipReason — причина пропуска, попадает в отчёт при SkipIf=true.
	SkipReason string

	// BranchTo — branch-предикат. После успешного выполнения стадии
	// может вернуть ID следующей стадии, переопределяя статический
	// порядок цепочки. Пустая строка — идти по цепочке дальше.
	// Как и SkipIf, предикат чистый.
	BranchTo func(st *State) string
}

// Chain — цепочка стадий: простой путь от входной стадии к терминальной.
//
// Цепочка строится через Register и после этого только читается;
// выполнение по ней ведёт оркестратор.
type Chain struct {
	stages map[string]*Stage
	next   map[string]string // stageID → ID следующей стадии
	entry  string
}

// NewChain создаёт пустую цепочку.
func NewChain() *Chain {
	return &Chain{
		stages: make(map[string]*Stage),
		next:   make(map[string]string),
	}
}

// Register вставляет стадию в цепочку на позицию после её предшественника.
//
// Если у предшественника уже есть преемник, новая стадия встраивается
// между ними. Возвращает ConfigurationError при пустом/дублирующемся ID,
// неизвестном предшественнике, второй входной стадии или nil-обработчике.
func (c *Chain) Register(stage Stage) error {
	if stage.ID == "" {
		return NewConfigurationError("", "empty stage ID", ErrEmptyStageID)
	}
	if stage.Handler == nil {
		return NewConfigurationError(stage.ID, "nil handler", ErrNilHandler)
	}
	if _, exists := c.stages[stage.ID]; exists {
		return NewConfigurationError(stage.ID,
			fmt.Sprintf("stage %q already registered", stage.ID), ErrDuplicateStageID)
	}

	if stage.Predecessor == "" {
		if c.entry != "" {
			return NewConfigurationError(stage.ID,
				fmt.Sprintf("entry stage is already %q", c.entry), ErrDuplicateEntry)
		}
		c.entry = stage.ID
		c.stages[stage.ID] = &stage
		return nil
	}

	if _, exists := c.stages[stage.Predecessor]; !exists {
		return NewConfigurationError(stage.ID,
			fmt.Sprintf("predecessor %q not registered", stage.Predecessor), ErrUnknownPredecessor)
	}

	// Встраиваем: предшественник → стадия → бывший преемник предшественника.
	if successor, ok := c.next[stage.Predecessor]; ok {
		c.next[stage.ID] = successor
	}
	c.next[stage.Predecessor] = stage.ID
	c.stages[stage.ID] = &stage

	return nil
}

// MustRegister — Register с паникой при ошибке.
// Для цепочек, собираемых из кода на старте процесса.
func (c *Chain) MustRegister(stage Stage) {
	if err := c.Register(stage); err != nil {
		panic(err)
	}
}

// Validate проверяет целостность цепочки перед выполнением:
// есть входная стадия и путь от неё покрывает все стадии без циклов.
func (c *Chain) Validate() error {
	if c.entry == "" {
		return NewConfigurationError("", "no entry stage", ErrNoEntry)
	}

	visited := 0
	for id := c.entry; id != ""; id = c.next[id] {
		visited++
		if visited > len(c.stages) {
			return NewConfigurationError(id, "chain walk does not terminate", ErrCyclicChain)
		}
	}

	if visited != len(c.stages) {
		return NewConfigurationError("",
			fmt.Sprintf("chain path covers %d of %d stages", visited, len(c.stages)), ErrCyclicChain)
	}

	return nil
}

// Entry возвращает ID входной стадии.
func (c *Chain) Entry() string {
	return c.entry
}

// Get возвращает стадию по ID.
func (c *Chain) Get(id string) (*Stage, bool) {
	stage, ok := c.stages[id]
	return stage, ok
}

// Next возвращает ID следующей стадии после id.
// Пустая строка — id терминальная стадия.
func (c *Chain) Next(id string) string {
	return c.next[id]
}

// Path возвращает ID стадий в порядке цепочки.
func (c *Chain) Path() []string {
	path := make([]string, 0, len(c.stages))
	for id := c.entry; id != "" && len(path) <= len(c.stages); id = c.next[id] {
		path = append(path, id)
	}
	return path
}

// Len возвращает количество стадий в цепочке.
func (c *Chain) Len() int {
	return len(c.stages)
}
