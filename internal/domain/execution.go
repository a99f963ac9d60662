package domain

import (
	"time"

	"github.com/google/uuid"
)

// Execution — одно выполнение work item.
//
// Используется для логов, метрик и событий в RabbitMQ.
// В БД не сохраняется.
type Execution struct {
	// ID — уникальный идентификатор выполнения.
	ID uuid.UUID `json:"id"`

	// Item — имя фабрики (WorkItemFactory.Name).
	Item string `json:"item"`

	// Trigger — once или cron.
	Trigger Trigger `json:"trigger"`

	// Status — итог выполнения.
	Status ExecutionStatus `json:"status"`

	// Error — текст ошибки для FAILED.
	Error string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewExecution создаёт Execution для запуска item.
func NewExecution(item string, trigger Trigger) *Execution {
	return &Execution{
		ID:        uuid.New(),
		Item:      item,
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
}

// Finish фиксирует результат выполнения.
func (e *Execution) Finish(err error) {
	e.FinishedAt = time.Now()
	if err != nil {
		e.Status = ExecutionStatusFailed
		e.Error = err.Error()
		return
	}
	e.Status = ExecutionStatusSucceeded
}

// Duration возвращает длительность выполнения.
func (e *Execution) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
