package domain

import (
	"context"
	"strings"
)

// NoSchedule — значение расписания, означающее "расписания нет".
const NoSchedule = "-"

// WorkItem — исполняемая единица работы.
//
// Не имеет собственного состояния: создаётся фабрикой,
// выполняется и выбрасывается (или повторно вызывается на каждом тике cron).
type WorkItem interface {
	// Run выполняет работу. Должен уважать ctx.Done() для graceful shutdown.
	Run(ctx context.Context) error
}

// WorkItemFunc позволяет использовать обычную функцию как WorkItem.
type WorkItemFunc func(ctx context.Context) error

// Run вызывает f(ctx).
func (f WorkItemFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// WorkItemFactory описывает одну потенциальную единицу работы.
//
// Фабрики передаются оркестратору при старте и живут всё время жизни процесса.
// Список фабрик не изменяется после старта.
type WorkItemFactory interface {
	// Name — идентификатор для логов, метрик и событий.
	Name() string

	// Enabled — выключенные фабрики полностью игнорируются.
	Enabled() bool

	// CronSchedule — cron-выражение, пустая строка или NoSchedule.
	CronSchedule() string

	// NewWorkItem создаёт WorkItem.
	NewWorkItem() WorkItem
}

// HasSchedule проверяет, задано ли валидное (в смысле "не пустое") расписание.
// Синтаксис выражения здесь не проверяется, это делает scheduler.ValidateCronExpr.
func HasSchedule(cronExpr string) bool {
	expr := strings.TrimSpace(cronExpr)
	return expr != "" && expr != NoSchedule
}

// Factory — WorkItemFactory на основе структуры.
//
// Пример:
//
//	f := &domain.Factory{
//	    ID:       "cleanup",
//	    IsOn:     true,
//	    Schedule: "0 3 * * *",
//	    New: func() domain.WorkItem {
//	        return domain.WorkItemFunc(cleanup)
//	    },
//	}
type Factory struct {
	ID       string
	IsOn     bool
	Schedule string
	New      func() WorkItem
}

// Name возвращает ID фабрики.
func (f *Factory) Name() string { return f.ID }

// Enabled возвращает флаг активности.
func (f *Factory) Enabled() bool { return f.IsOn }

// CronSchedule возвращает расписание.
func (f *Factory) CronSchedule() string { return f.Schedule }

// NewWorkItem вызывает f.New.
func (f *Factory) NewWorkItem() WorkItem { return f.New() }
