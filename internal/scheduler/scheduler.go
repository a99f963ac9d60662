package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Политики перекрытия тиков одного work item.
const (
	OverlapSkip  = "skip"
	OverlapDelay = "delay"
)

// Ошибки планировщика.
var (
	// ErrDuplicateName — work item с таким именем уже зарегистрирован.
	ErrDuplicateName = errors.New("duplicate schedule name")

	// ErrAlreadyStarted — регистрация после Start не поддерживается.
	ErrAlreadyStarted = errors.New("scheduler already started")
)

// Entry — описание зарегистрированного расписания.
type Entry struct {
	Name     string
	CronExpr string
	Next     time.Time
}

// CronScheduler — планировщик на основе robfig/cron.
type CronScheduler struct {
	cron    *cron.Cron
	overlap string
	logger  *slog.Logger

	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	entries map[string]registered
}

type registered struct {
	id       cron.EntryID
	cronExpr string
	schedule cron.Schedule
}

// Config — конфигурация CronScheduler.
type Config struct {
	// Overlap — политика перекрытия: "skip" (default) или "delay".
	Overlap string

	// Location — часовой пояс по умолчанию (default: time.Local).
	Location *time.Location

	Logger *slog.Logger
}

// NewCron создаёт новый CronScheduler.
func NewCron(cfg Config) *CronScheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	overlap := cfg.Overlap
	if overlap == "" {
		overlap = OverlapSkip
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	cl := cronLogger{logger: logger}

	return &CronScheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		overlap: overlap,
		logger:  logger,
		ctx:     context.Background(),
		entries: make(map[string]registered),
	}
}

// Register регистрирует fn на расписании cronExpr.
//
// Выражение разбирается сразу: невалидное выражение даёт ошибку регистрации,
// а не на следующем тике.
func (s *CronScheduler) Register(name, cronExpr string, fn func(ctx context.Context)) error {
	schedule, err := ParseCronExpr(cronExpr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("%w: register %s", ErrAlreadyStarted, name)
	}
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	job := cron.FuncJob(func() {
		fn(s.jobContext())
	})

	id := s.cron.Schedule(schedule, s.overlapWrapper()(job))
	s.entries[name] = registered{id: id, cronExpr: cronExpr, schedule: schedule}

	s.logger.Debug("registered schedule",
		"item", name,
		"cron", cronExpr,
		"next_run", schedule.Next(time.Now()),
	)

	return nil
}

// overlapWrapper возвращает обёртку, сериализующую тики одного work item.
func (s *CronScheduler) overlapWrapper() cron.JobWrapper {
	cl := cronLogger{logger: s.logger}
	if s.overlap == OverlapDelay {
		return cron.DelayIfStillRunning(cl)
	}
	return cron.SkipIfStillRunning(cl)
}

// jobContext возвращает контекст для очередного тика.
func (s *CronScheduler) jobContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Start запускает диспетчеризацию.
//
// Контекст тиков наследует значения ctx (например, логгер),
// но не его отмену: выполняющиеся тики отменяются только в Stop,
// когда истекает отведённое на остановку время.
func (s *CronScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.started = true
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "entries", s.Len(), "overlap", s.overlap)
}

// Stop прекращает новые тики и ждёт завершения выполняющихся.
// Если ctx истекает раньше, выполняющиеся тики отменяются через их контекст.
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping scheduler...")

	done := s.cron.Stop()

	s.mu.RLock()
	cancel := s.cancel
	s.mu.RUnlock()

	select {
	case <-done.Done():
		if cancel != nil {
			cancel()
		}
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		if cancel != nil {
			cancel()
		}
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

// Len возвращает число зарегистрированных расписаний.
func (s *CronScheduler) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries возвращает зарегистрированные расписания, отсортированные по имени.
func (s *CronScheduler) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	result := make([]Entry, 0, len(s.entries))
	for name, e := range s.entries {
		next := s.cron.Entry(e.id).Next
		if next.IsZero() {
			next = e.schedule.Next(now)
		}
		result = append(result, Entry{
			Name:     name,
			CronExpr: e.cronExpr,
			Next:     next,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// cronLogger адаптирует slog к интерфейсу cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

// Info — служебные сообщения robfig/cron (wake, run, skip) идут в debug.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

// Error — в том числе перехваченные паники work items.
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
