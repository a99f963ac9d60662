package orchestrator

import "errors"

// Ошибки конфигурации оркестратора. Все фатальны для старта.
var (
	// ErrNoFactories — не зарегистрировано ни одной фабрики work items.
	ErrNoFactories = errors.New("no work item factories registered")

	// ErrInvalidSchedule — cron-выражение не прошло валидацию.
	ErrInvalidSchedule = errors.New("invalid cron schedule")

	// ErrNoScheduler — резидентный режим без планировщика.
	ErrNoScheduler = errors.New("scheduler is required in scheduled mode")

	// ErrWorkItemPanic — work item паниковал во время выполнения.
	ErrWorkItemPanic = errors.New("work item panicked")

	// ErrNilWorkItem — фабрика вернула nil вместо work item.
	ErrNilWorkItem = errors.New("factory returned nil work item")
)
