// Package telemetry обеспечивает наблюдаемость bootkit.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики seeding и выполнения work items
//
// В резидентном режиме метрики экспортируются на /metrics.
package telemetry
