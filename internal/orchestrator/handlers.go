package orchestrator

import (
	"context"
	"fmt"

	"github.com/shaiso/bootkit/internal/domain"
	"github.com/shaiso/bootkit/internal/telemetry"
)

// execute выполняет один work item.
//
// 1. Создаёт Execution с новым ID
// 2. Кладёт логгер с item/execution_id/trigger в контекст
// 3. Создаёт и выполняет work item, перехватывая панику
// 4. Логирует результат, обновляет метрики, публикует событие
//
// Ошибка work item не пробрасывается выше, только фиксируется в Execution.
func (o *Orchestrator) execute(ctx context.Context, name string, newItem func() domain.WorkItem, trigger domain.Trigger) *domain.Execution {
	exec := domain.NewExecution(name, trigger)

	logger := telemetry.WithExecutionID(telemetry.WithItem(o.logger, name), exec.ID.String()).
		With("trigger", string(trigger))
	ctx = telemetry.WithLogger(ctx, logger)

	logger.Debug("running work item")

	exec.Finish(runSafely(ctx, newItem))

	if exec.Status.IsFailed() {
		logger.Error("work item failed",
			"duration", exec.Duration(),
			"error", exec.Error,
		)
	} else {
		logger.Info("work item succeeded", "duration", exec.Duration())
	}

	o.metrics.ExecutionFinished(name, string(trigger), string(exec.Status), exec.Duration())

	if o.publisher != nil {
		if err := o.publisher.PublishExecution(ctx, exec); err != nil {
			// Не фатально: событие информационное
			logger.Warn("failed to publish execution event", "error", err)
		}
	}

	return exec
}

// runSafely создаёт work item и вызывает Run, превращая панику в ошибку.
func runSafely(ctx context.Context, newItem func() domain.WorkItem) (err error) {
	item, err := instantiate(newItem)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrWorkItemPanic, r)
		}
	}()
	return item.Run(ctx)
}

// instantiate вызывает фабрику, превращая панику и nil в ошибку.
func instantiate(newItem func() domain.WorkItem) (item domain.WorkItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			item, err = nil, fmt.Errorf("%w: create work item: %v", ErrWorkItemPanic, r)
		}
	}()

	item = newItem()
	if item == nil {
		return nil, ErrNilWorkItem
	}
	return item, nil
}
