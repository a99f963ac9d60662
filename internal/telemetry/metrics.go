package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bootkit"

// Результаты обработки элемента seeding.
const (
	SeedResultCopied  = "copied"
	SeedResultSkipped = "skipped"
	SeedResultFailed  = "failed"
)

// Metrics — Prometheus метрики процесса.
//
// Все методы безопасны для nil-получателя: компоненты можно
// создавать без метрик (например, в тестах).
type Metrics struct {
	seedEntries       *prometheus.CounterVec
	seedFiles         prometheus.Counter
	executions        *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
	scheduledItems    prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		seedEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_entries_total",
			Help:      "Top-level seed entries by result.",
		}, []string{"result"}),
		seedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_files_total",
			Help:      "Files copied into target volumes.",
		}),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Work item executions by trigger and status.",
		}, []string{"item", "trigger", "status"}),
		executionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "Work item execution duration.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 4, 8),
		}, []string{"item"}),
		scheduledItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduled_items",
			Help:      "Work items registered with the cron scheduler.",
		}),
	}

	reg.MustRegister(
		m.seedEntries,
		m.seedFiles,
		m.executions,
		m.executionDuration,
		m.scheduledItems,
	)

	return m
}

// SeedEntry учитывает обработку одного элемента верхнего уровня.
func (m *Metrics) SeedEntry(result string) {
	if m == nil {
		return
	}
	m.seedEntries.WithLabelValues(result).Inc()
}

// SeedFiles учитывает скопированные файлы.
func (m *Metrics) SeedFiles(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.seedFiles.Add(float64(n))
}

// ExecutionFinished учитывает завершённое выполнение work item.
func (m *Metrics) ExecutionFinished(item, trigger, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(item, trigger, status).Inc()
	m.executionDuration.WithLabelValues(item).Observe(d.Seconds())
}

// SetScheduledItems фиксирует число зарегистрированных расписаний.
func (m *Metrics) SetScheduledItems(n int) {
	if m == nil {
		return
	}
	m.scheduledItems.Set(float64(n))
}
