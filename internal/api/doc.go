// Package api — служебный HTTP-интерфейс резидентного режима.
//
// Маршруты:
//
//	GET /healthz — liveness: "ok", пока scheduler работает
//	GET /metrics — Prometheus-метрики
//
// Паника в handler'е отдаётся как 500; запросы логируются на уровне Debug.
package api
