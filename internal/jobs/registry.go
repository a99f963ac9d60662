package jobs

import (
	"fmt"
	"sort"

	"github.com/shaiso/bootkit/internal/domain"
)

// Типы jobs.
const (
	TypeHTTP    = "http"
	TypeCommand = "command"
)

// Builder создаёт WorkItem из конфигурации job.
// Невалидная конфигурация отклоняется при загрузке файла.
type Builder func(config map[string]any) (domain.WorkItem, error)

// Registry — реестр builder'ов по типу job.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry создаёт реестр со встроенными типами: http, command.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	r.Register(TypeHTTP, func(config map[string]any) (domain.WorkItem, error) {
		return NewHTTPJob(config)
	})
	r.Register(TypeCommand, func(config map[string]any) (domain.WorkItem, error) {
		return NewCommandJob(config)
	})
	return r
}

// Register добавляет builder для типа job.
// Встраивающее приложение может регистрировать свои типы.
func (r *Registry) Register(jobType string, builder Builder) {
	r.builders[jobType] = builder
}

// Get возвращает builder для типа job.
func (r *Registry) Get(jobType string) (Builder, error) {
	builder, ok := r.builders[jobType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}
	return builder, nil
}

// Types возвращает список зарегистрированных типов.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
