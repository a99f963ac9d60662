// Package orchestrator решает, как выполнять work items процесса.
//
// Orchestrator отвечает за:
//   - Выбор глобального режима: однократный запуск или расписание
//   - Однократное выполнение включённых work items в порядке регистрации
//   - Регистрацию work items с расписанием в cron-планировщике
//   - Немедленный однократный запуск work items без расписания
//     в резидентном режиме
//
// Правило выбора режима:
//
//	runOnce || ни у одной фабрики нет расписания  →  ModeOnce
//	иначе                                          →  ModeScheduled
//
// Ошибка одного work item логируется с его именем и не прерывает
// выполнение остальных. Повторов нет: упавший тик просто ждёт следующего.
package orchestrator
