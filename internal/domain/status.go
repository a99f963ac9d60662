package domain

// ExecutionStatus — итог одного выполнения work item.
//
// Жизненный цикл:
//
//	(started) → SUCCEEDED
//	          ↘ FAILED
//
// Промежуточные статусы не хранятся: execution нигде не персистится.
type ExecutionStatus string

const (
	// ExecutionStatusSucceeded — work item завершился без ошибки.
	ExecutionStatusSucceeded ExecutionStatus = "SUCCEEDED"

	// ExecutionStatusFailed — work item вернул ошибку или паниковал.
	ExecutionStatusFailed ExecutionStatus = "FAILED"
)

// IsFailed возвращает true для неуспешного выполнения.
func (s ExecutionStatus) IsFailed() bool {
	return s == ExecutionStatusFailed
}

// Trigger — причина запуска work item.
type Trigger string

const (
	// TriggerOnce — однократный запуск при старте процесса.
	TriggerOnce Trigger = "once"

	// TriggerCron — запуск по cron-расписанию.
	TriggerCron Trigger = "cron"
)

// Mode — глобальный режим работы процесса.
//
// Решение принимается один раз при старте для всего процесса,
// а не для отдельного work item.
type Mode string

const (
	// ModeOnce — выполнить все включённые work items и завершиться.
	ModeOnce Mode = "once"

	// ModeScheduled — зарегистрировать расписания и остаться резидентным.
	ModeScheduled Mode = "scheduled"
)
