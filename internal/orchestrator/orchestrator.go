package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/bootkit/internal/domain"
	"github.com/shaiso/bootkit/internal/scheduler"
	"github.com/shaiso/bootkit/internal/telemetry"
)

// Registrar регистрирует функцию на cron-расписании.
//
// Реализация: scheduler.CronScheduler.
type Registrar interface {
	Register(name, cronExpr string, fn func(ctx context.Context)) error
}

// EventPublisher публикует результаты выполнения work items.
//
// Реализация: mq.Publisher.
type EventPublisher interface {
	PublishExecution(ctx context.Context, exec *domain.Execution) error
}

// Orchestrator выбирает режим работы и диспетчеризует work items.
type Orchestrator struct {
	factories []domain.WorkItemFactory
	runOnce   bool
	scheduler Registrar
	exit      func()
	publisher EventPublisher
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Factories — фабрики work items в порядке регистрации.
	Factories []domain.WorkItemFactory

	// RunOnce — принудительный однократный режим.
	RunOnce bool

	// Scheduler — обязателен, если хотя бы у одной фабрики есть расписание
	// и RunOnce выключен.
	Scheduler Registrar

	// Exit вызывается после однократного выполнения (сигнал завершения процесса).
	Exit func()

	// Опционально
	Publisher EventPublisher
	Metrics   *telemetry.Metrics

	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exit := cfg.Exit
	if exit == nil {
		exit = func() {}
	}

	return &Orchestrator{
		factories: cfg.Factories,
		runOnce:   cfg.RunOnce,
		scheduler: cfg.Scheduler,
		exit:      exit,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// Result — итог старта оркестратора.
type Result struct {
	Mode Mode

	// Executed — число немедленных выполнений (успешных и нет).
	Executed int

	// Failed — сколько из них завершились ошибкой (плюс work items
	// с расписанием, которые не удалось создать при регистрации).
	Failed int

	// Scheduled — число зарегистрированных расписаний.
	Scheduled int

	// Disabled — число выключенных фабрик.
	Disabled int

	// Interrupted — включённые work items, не запущенные из-за отмены ctx.
	Interrupted int
}

// Mode — псевдоним domain.Mode для удобства вызывающих.
type Mode = domain.Mode

// IsRunOnce определяет глобальный режим для набора фабрик.
//
// true, если runOnce установлен или ни у одной фабрики нет расписания.
// Флаг Enabled здесь не учитывается.
func IsRunOnce(factories []domain.WorkItemFactory, runOnce bool) bool {
	if runOnce {
		return true
	}
	for _, f := range factories {
		if domain.HasSchedule(f.CronSchedule()) {
			return false
		}
	}
	return true
}

// IsRunOnce возвращает режим, который выберет Start.
func (o *Orchestrator) IsRunOnce() bool {
	return IsRunOnce(o.factories, o.runOnce)
}

// Start выполняет или регистрирует work items.
//
// ModeOnce: выполняет все включённые work items по порядку, затем вызывает Exit.
// ModeScheduled: регистрирует включённые work items с расписанием и
// немедленно выполняет включённые work items без расписания. Exit не вызывается:
// процесс остаётся жить, остановка управляется снаружи.
//
// Ошибки выполнения отдельных work items не возвращаются: они логируются
// и учитываются в Result.Failed. Возвращаются только ошибки конфигурации.
func (o *Orchestrator) Start(ctx context.Context) (*Result, error) {
	if len(o.factories) == 0 {
		return nil, ErrNoFactories
	}

	res := &Result{}
	for _, f := range o.factories {
		if !f.Enabled() {
			res.Disabled++
		}
	}
	if res.Disabled == len(o.factories) {
		o.logger.Warn("all work item factories are disabled", "factories", len(o.factories))
	}

	if o.IsRunOnce() {
		res.Mode = domain.ModeOnce
		o.startOnce(ctx, res)
		return res, nil
	}

	res.Mode = domain.ModeScheduled
	if err := o.startScheduled(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// startOnce выполняет все включённые work items и сигнализирует о завершении.
func (o *Orchestrator) startOnce(ctx context.Context, res *Result) {
	o.logger.Info("running work items once",
		"factories", len(o.factories),
		"forced", o.runOnce,
	)

	for _, f := range o.factories {
		if !f.Enabled() {
			o.logger.Debug("work item disabled, skipping", "item", f.Name())
			continue
		}

		// Процесс прерван сигналом, оставшиеся work items не запускаем
		if ctx.Err() != nil {
			res.Interrupted++
			continue
		}

		exec := o.execute(ctx, f.Name(), f.NewWorkItem, domain.TriggerOnce)
		res.Executed++
		if exec.Status.IsFailed() {
			res.Failed++
		}
	}

	if res.Interrupted > 0 {
		o.logger.Warn("run once interrupted",
			"not_started", res.Interrupted,
			"error", ctx.Err(),
		)
	}

	o.logger.Info("run once completed",
		"executed", res.Executed,
		"failed", res.Failed,
		"interrupted", res.Interrupted,
	)

	o.exit()
}

// startScheduled регистрирует расписания и выполняет work items без расписания.
func (o *Orchestrator) startScheduled(ctx context.Context, res *Result) error {
	if o.scheduler == nil {
		return ErrNoScheduler
	}

	// 1. Валидируем все расписания до каких-либо побочных эффектов
	for _, f := range o.factories {
		if !f.Enabled() || !domain.HasSchedule(f.CronSchedule()) {
			continue
		}
		if err := scheduler.ValidateCronExpr(strings.TrimSpace(f.CronSchedule())); err != nil {
			return fmt.Errorf("%w: work item %s: %v", ErrInvalidSchedule, f.Name(), err)
		}
	}

	// 2. Регистрируем и выполняем в порядке регистрации фабрик
	for _, f := range o.factories {
		if !f.Enabled() {
			o.logger.Debug("work item disabled, skipping", "item", f.Name())
			continue
		}

		name := f.Name()

		if !domain.HasSchedule(f.CronSchedule()) {
			o.logger.Info("work item has no schedule, running once", "item", name)
			exec := o.execute(ctx, name, f.NewWorkItem, domain.TriggerOnce)
			res.Executed++
			if exec.Status.IsFailed() {
				res.Failed++
			}
			continue
		}

		cronExpr := strings.TrimSpace(f.CronSchedule())

		// Экземпляр создаётся один раз и переиспользуется на каждом тике
		item, err := instantiate(f.NewWorkItem)
		if err != nil {
			o.logger.Error("failed to create work item, not scheduled", "item", name, "error", err)
			res.Failed++
			continue
		}
		reuse := func() domain.WorkItem { return item }

		err = o.scheduler.Register(name, cronExpr, func(tickCtx context.Context) {
			o.execute(tickCtx, name, reuse, domain.TriggerCron)
		})
		if err != nil {
			return fmt.Errorf("%w: register %s: %v", ErrInvalidSchedule, name, err)
		}

		o.logger.Info("scheduled work item", "item", name, "cron", cronExpr)
		res.Scheduled++
	}

	o.metrics.SetScheduledItems(res.Scheduled)

	o.logger.Info("work items scheduled",
		"scheduled", res.Scheduled,
		"executed", res.Executed,
		"failed", res.Failed,
	)

	return nil
}
