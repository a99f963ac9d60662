// Package mq публикует события выполнения jobs в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с брокером (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, queue, bindings
//   - publisher.go  — публикация событий
//
// Топология:
//
//	bootkit.jobs (direct)
//	└── jobs.finished [routing: succeeded, failed]
//
// Типы сообщений:
//   - job.succeeded — job завершился успешно
//   - job.failed    — job завершился с ошибкой
//
// Payload сообщения — domain.Execution.
package mq
