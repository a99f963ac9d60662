package jobs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shaiso/bootkit/internal/domain"
)

// File — содержимое jobs-файла.
type File struct {
	Jobs []Definition `json:"jobs"`
}

// Definition — описание одного job.
type Definition struct {
	// Name — уникальное имя (логи, метрики, события).
	Name string `json:"name"`

	// Type — тип job из Registry: "http", "command".
	Type string `json:"type"`

	// Enabled — по умолчанию true.
	Enabled *bool `json:"enabled,omitempty"`

	// Cron — cron-выражение; пусто или "-" — без расписания.
	// Поддерживает ${VAR} из окружения.
	Cron string `json:"cron,omitempty"`

	// Config — конфигурация, специфичная для типа.
	Config map[string]any `json:"config,omitempty"`
}

// IsEnabled возвращает значение Enabled с учётом default.
func (d Definition) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// Load читает jobs-файл и строит фабрики в порядке их объявления.
func Load(path string, reg *Registry) ([]domain.WorkItemFactory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	factories, err := Parse(data, reg)
	if err != nil {
		return nil, fmt.Errorf("jobs file %s: %w", path, err)
	}
	return factories, nil
}

// Parse разбирает содержимое jobs-файла.
//
// Проверяет:
//   - имя задано и уникально
//   - тип зарегистрирован
//   - конфигурация валидна для типа
//
// Cron-выражения здесь не проверяются: это делает оркестратор
// при старте в резидентном режиме.
func Parse(data []byte, reg *Registry) ([]domain.WorkItemFactory, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrInvalidJob, err)
	}

	seen := make(map[string]bool, len(file.Jobs))
	factories := make([]domain.WorkItemFactory, 0, len(file.Jobs))

	for i, def := range file.Jobs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: job #%d: name is required", ErrInvalidJob, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate job name %q", ErrInvalidJob, name)
		}
		seen[name] = true

		builder, err := reg.Get(def.Type)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", name, err)
		}

		config := def.Config
		if config == nil {
			config = make(map[string]any)
		}

		item, err := builder(config)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", name, err)
		}

		factories = append(factories, &domain.Factory{
			ID:       name,
			IsOn:     def.IsEnabled(),
			Schedule: strings.TrimSpace(os.ExpandEnv(def.Cron)),
			New: func() domain.WorkItem {
				// Встроенные jobs не имеют состояния, экземпляр переиспользуется
				return item
			},
		})
	}

	return factories, nil
}
