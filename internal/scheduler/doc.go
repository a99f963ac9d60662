// Package scheduler реализует регистрацию work items на cron-расписании.
//
// Структура:
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//   - scheduler.go — CronScheduler поверх robfig/cron
//
// Гарантии:
//
// Тики одного work item не перекрываются: если предыдущий запуск ещё
// выполняется, очередной тик пропускается (политика "skip") или ждёт
// его завершения (политика "delay"). Разные work items выполняются
// параллельно в горутинах robfig/cron.
//
// Паника внутри work item перехватывается и логируется, горутина
// планировщика не падает.
//
// Использование:
//
//	sched := scheduler.NewCron(scheduler.Config{
//	    Overlap: scheduler.OverlapSkip,
//	    Logger:  logger,
//	})
//	if err := sched.Register("report", "0 0 * * *", fn); err != nil {
//	    return err
//	}
//	sched.Start(ctx)
//	defer sched.Stop(shutdownCtx)
package scheduler
