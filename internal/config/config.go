// Package config собирает конфигурацию bootkit.
//
// Конфигурация читается из окружения один раз при старте (envconfig),
// затем поверх применяются явно заданные флаги командной строки.
// Результат — неизменяемая структура Config, которая передаётся
// компонентам по значению.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/shaiso/bootkit/internal/scheduler"
)

// ErrInvalidConfig — конфигурация не прошла валидацию.
var ErrInvalidConfig = errors.New("invalid config")

// Config — конфигурация процесса.
type Config struct {
	// Seeding томов
	PopulateContainerDirs bool   `envconfig:"POPULATE_CONTAINER_DIRS" default:"false"`
	SourceDir             string `envconfig:"POPULATE_CONTAINER_DIRS_SOURCE_DIR" default:"/default"`
	TargetDir             string `envconfig:"POPULATE_CONTAINER_DIRS_TARGET_DIR" default:"/"`
	EmptyMarker           string `envconfig:"POPULATE_CONTAINER_DIRS_EMPTY_MARKER" default:".empty"`

	// Режим запуска
	RunOnce  bool   `envconfig:"RUN_ONCE" default:"false"`
	JobsFile string `envconfig:"JOBS_FILE" default:"/etc/bootkit/jobs.json"`

	// Scheduler
	Overlap         string        `envconfig:"SCHEDULER_OVERLAP" default:"skip"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// HTTP (/healthz, /metrics), только в резидентном режиме
	HTTPPort string `envconfig:"HTTP_PORT" default:"8081"`

	// Опциональная инфраструктура
	DBURL   string `envconfig:"DB_URL"`   // advisory lock для seeding
	AMQPURL string `envconfig:"AMQP_URL"` // события выполнения work items

	// Логирование
	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load читает конфигурацию из окружения.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	return c, nil
}

// Validate проверяет согласованность значений.
func (c Config) Validate() error {
	switch c.Overlap {
	case scheduler.OverlapSkip, scheduler.OverlapDelay:
	default:
		return fmt.Errorf("%w: SCHEDULER_OVERLAP must be %q or %q, got %q",
			ErrInvalidConfig, scheduler.OverlapSkip, scheduler.OverlapDelay, c.Overlap)
	}

	if c.PopulateContainerDirs {
		if strings.TrimSpace(c.SourceDir) == "" {
			return fmt.Errorf("%w: source dir is required when seeding is enabled", ErrInvalidConfig)
		}
		if strings.TrimSpace(c.TargetDir) == "" {
			return fmt.Errorf("%w: target dir is required when seeding is enabled", ErrInvalidConfig)
		}
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be positive", ErrInvalidConfig)
	}

	return nil
}
