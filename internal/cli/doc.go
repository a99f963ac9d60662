// Package cli реализует команды bootkit.
//
// # Команды
//
//	bootkit [flags]            seeding томов, затем запуск jobs
//	bootkit validate [--json]  проверка конфигурации и jobs-файла без побочных эффектов
//	bootkit version            версия сборки
//
// # Последовательность старта
//
//  1. Конфигурация: окружение (envconfig), поверх него явно заданные флаги.
//  2. Логгер (slog) и Prometheus-метрики.
//  3. Seeding томов; при заданном DB_URL под advisory lock.
//  4. Загрузка jobs-файла.
//  5. Оркестратор выбирает режим:
//     - однократный: выполнить jobs и завершиться (код 1, если хотя бы один упал)
//     - резидентный: запустить cron, отдавать /healthz и /metrics до SIGINT/SIGTERM
//
// Ошибка seeding фатальна: процесс не продолжает работу
// с частично заполненными томами.
//
// # Output
//
// validate выводит план таблицей (text/tabwriter) или JSON с флагом --json.
// Данные пишутся в stdout команды, сообщения в stderr.
package cli
