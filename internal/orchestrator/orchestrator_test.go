package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shaiso/bootkit/internal/domain"
	"github.com/shaiso/bootkit/internal/telemetry"
)

// --- Fakes ---

// recorder записывает порядок выполнения work items.
type recorder struct {
	mu   sync.Mutex
	runs []string
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, name)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

// factory создаёт фабрику, записывающую свои выполнения в rec.
func factory(rec *recorder, name string, enabled bool, schedule string, err error) *domain.Factory {
	return &domain.Factory{
		ID:       name,
		IsOn:     enabled,
		Schedule: schedule,
		New: func() domain.WorkItem {
			return domain.WorkItemFunc(func(ctx context.Context) error {
				rec.record(name)
				return err
			})
		},
	}
}

// fakeScheduler запоминает регистрации.
type fakeScheduler struct {
	registered map[string]string
	fns        map[string]func(ctx context.Context)
	order      []string
	err        error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		registered: make(map[string]string),
		fns:        make(map[string]func(ctx context.Context)),
	}
}

func (s *fakeScheduler) Register(name, cronExpr string, fn func(ctx context.Context)) error {
	if s.err != nil {
		return s.err
	}
	s.registered[name] = cronExpr
	s.fns[name] = fn
	s.order = append(s.order, name)
	return nil
}

// fakePublisher запоминает опубликованные события.
type fakePublisher struct {
	mu    sync.Mutex
	execs []*domain.Execution
	err   error
}

func (p *fakePublisher) PublishExecution(ctx context.Context, exec *domain.Execution) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.execs = append(p.execs, exec)
	return p.err
}

func asFactories(fs ...*domain.Factory) []domain.WorkItemFactory {
	result := make([]domain.WorkItemFactory, len(fs))
	for i, f := range fs {
		result[i] = f
	}
	return result
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- IsRunOnce Tests ---

func TestIsRunOnce(t *testing.T) {
	rec := &recorder{}

	tests := []struct {
		name      string
		schedules []string
		runOnce   bool
		want      bool
	}{
		{"no schedules", []string{"", "-", "  "}, false, true},
		{"one schedule", []string{"", "0 0 * * *"}, false, false},
		{"forced", []string{"0 0 * * *"}, true, true},
		{"empty list", nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fs []domain.WorkItemFactory
			for i, s := range tt.schedules {
				fs = append(fs, factory(rec, fmt.Sprintf("f%d", i), true, s, nil))
			}
			if got := IsRunOnce(fs, tt.runOnce); got != tt.want {
				t.Errorf("IsRunOnce = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRunOnce_IgnoresEnabled(t *testing.T) {
	rec := &recorder{}
	fs := asFactories(
		factory(rec, "a", false, "0 0 * * *", nil),
		factory(rec, "b", true, "-", nil),
	)

	// Расписание выключенной фабрики тоже учитывается
	if IsRunOnce(fs, false) {
		t.Error("expected scheduled mode")
	}
}

// --- Start Tests ---

func TestStart_NoFactories(t *testing.T) {
	o := New(Config{Scheduler: newFakeScheduler()})

	_, err := o.Start(context.Background())
	if !errors.Is(err, ErrNoFactories) {
		t.Errorf("expected ErrNoFactories, got %v", err)
	}
}

// Сценарий D: три фабрики без расписания → однократный режим.
func TestStart_RunOnce_NoSchedules(t *testing.T) {
	rec := &recorder{}
	sched := newFakeScheduler()
	exited := 0

	o := New(Config{
		Factories: asFactories(
			factory(rec, "first", true, "", nil),
			factory(rec, "second", false, "-", nil),
			factory(rec, "third", true, "-", nil),
		),
		Scheduler: sched,
		Exit:      func() { exited++ },
	})

	res, err := o.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Mode != domain.ModeOnce {
		t.Errorf("expected once mode, got %s", res.Mode)
	}
	if got := rec.list(); !equalStrings(got, []string{"first", "third"}) {
		t.Errorf("expected enabled items in order, got %v", got)
	}
	if len(sched.registered) != 0 {
		t.Errorf("no registrations expected, got %v", sched.registered)
	}
	if exited != 1 {
		t.Errorf("exit should be called once, got %d", exited)
	}
	if res.Executed != 2 || res.Failed != 0 || res.Disabled != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestStart_RunOnce_Forced(t *testing.T) {
	rec := &recorder{}
	sched := newFakeScheduler()
	exited := false

	o := New(Config{
		Factories: asFactories(
			factory(rec, "cron", true, "0 0 * * *", nil),
			factory(rec, "plain", true, "", nil),
		),
		RunOnce:   true,
		Scheduler: sched,
		Exit:      func() { exited = true },
	})

	if !o.IsRunOnce() {
		t.Fatal("expected run once")
	}

	res, err := o.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Mode != domain.ModeOnce {
		t.Errorf("expected once mode, got %s", res.Mode)
	}
	if got := rec.list(); !equalStrings(got, []string{"cron", "plain"}) {
		t.Errorf("expected both items, got %v", got)
	}
	if len(sched.registered) != 0 {
		t.Error("scheduler should not be used in once mode")
	}
	if !exited {
		t.Error("exit should be called")
	}
}

func TestStart_RunOnce_ContinuesAfterFailure(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")

	panicky := &domain.Factory{
		ID:   "panicky",
		IsOn: true,
		New: func() domain.WorkItem {
			return domain.WorkItemFunc(func(ctx context.Context) error {
				rec.record("panicky")
				panic("unexpected")
			})
		},
	}

	pub := &fakePublisher{}
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	exited := false

	o := New(Config{
		Factories: []domain.WorkItemFactory{
			factory(rec, "failing", true, "", boom),
			panicky,
			factory(rec, "ok", true, "", nil),
		},
		Exit:      func() { exited = true },
		Publisher: pub,
		Metrics:   metrics,
	})

	res, err := o.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.list(); !equalStrings(got, []string{"failing", "panicky", "ok"}) {
		t.Errorf("all items should be attempted, got %v", got)
	}
	if res.Executed != 3 || res.Failed != 2 {
		t.Errorf("expected 3 executed / 2 failed, got %+v", res)
	}
	if !exited {
		t.Error("exit should be called even after failures")
	}

	if len(pub.execs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(pub.execs))
	}
	if pub.execs[0].Status != domain.ExecutionStatusFailed || pub.execs[0].Error != "boom" {
		t.Errorf("unexpected first event: %+v", pub.execs[0])
	}
	if pub.execs[1].Status != domain.ExecutionStatusFailed {
		t.Errorf("panic should be recorded as failure: %+v", pub.execs[1])
	}
	if pub.execs[2].Status != domain.ExecutionStatusSucceeded || pub.execs[2].Trigger != domain.TriggerOnce {
		t.Errorf("unexpected last event: %+v", pub.execs[2])
	}

	count, err := testutil.GatherAndCount(reg, "bootkit_executions_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 execution series, got %d", count)
	}
}

func TestStart_RunOnce_Interrupted(t *testing.T) {
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	first := &domain.Factory{
		ID:   "first",
		IsOn: true,
		New: func() domain.WorkItem {
			return domain.WorkItemFunc(func(ctx context.Context) error {
				rec.record("first")
				cancel()
				return nil
			})
		},
	}

	o := New(Config{
		Factories: []domain.WorkItemFactory{first, factory(rec, "second", true, "", nil)},
	})

	res, err := o.Start(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.list(); !equalStrings(got, []string{"first"}) {
		t.Errorf("expected only first item, got %v", got)
	}
	if res.Executed != 1 {
		t.Errorf("expected 1 executed, got %d", res.Executed)
	}
	if res.Interrupted != 1 {
		t.Errorf("expected 1 interrupted, got %d", res.Interrupted)
	}
}

func TestStart_PublishErrorIsNotFatal(t *testing.T) {
	rec := &recorder{}
	pub := &fakePublisher{err: errors.New("broker down")}

	o := New(Config{
		Factories: asFactories(factory(rec, "a", true, "", nil)),
		Publisher: pub,
	})

	res, err := o.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed != 0 {
		t.Errorf("publish failure should not fail the item: %+v", res)
	}
}

// Сценарий E: одна фабрика с расписанием, одна с "-" → резидентный режим.
func TestStart_Scheduled(t *testing.T) {
	rec := &recorder{}
	sched := newFakeScheduler()
	exited := false

	o := New(Config{
		Factories: asFactories(
			factory(rec, "nightly", true, "0 0 * * *", nil),
			factory(rec, "bootstrap", true, "-", nil),
		),
		Scheduler: sched,
		Exit:      func() { exited = true },
	})

	res, err := o.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Mode != domain.ModeScheduled {
		t.Errorf("expected scheduled mode, got %s", res.Mode)
	}
	if sched.registered["nightly"] != "0 0 * * *" || len(sched.registered) != 1 {
		t.Errorf("expected only nightly registered, got %v", sched.registered)
	}
	if got := rec.list(); !equalStrings(got, []string{"bootstrap"}) {
		t.Errorf("expected bootstrap to run once immediately, got %v", got)
	}
	if exited {
		t.Error("exit must not be called in scheduled mode")
	}
	if res.Scheduled != 1 || res.Executed != 1 {
		t.Errorf("unexpected result: %+v", res)
	}

	// Тик планировщика выполняет work item
	sched.fns["nightly"](context.Background())
	sched.fns["nightly"](context.Background())
	if got := rec.list(); !equalStrings(got, []string{"bootstrap", "nightly", "nightly"}) {
		t.Errorf("expected ticks to run nightly, got %v", got)
	}
}

func TestStart_Scheduled_DispatchCoverage(t *testing.T) {
	rec := &recorder{}
	sched := newFakeScheduler()

	o := New(Config{
		Factories: asFactories(
			factory(rec, "s1", true, "*/5 * * * *", nil),
			factory(rec, "s2-disabled", false, "0 0 * * *", nil),
			factory(rec, "u1", true, "", nil),
			factory(rec, "u2-disabled", false, "", nil),
			factory(rec, "s3", true, "@hourly", nil),
			factory(rec, "u3", true, "-", nil),
		),
		Scheduler: sched,
	})

	res, err := o.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !equalStrings(sched.order, []string{"s1", "s3"}) {
		t.Errorf("expected exactly enabled scheduled items, got %v", sched.order)
	}
	if got := rec.list(); !equalStrings(got, []string{"u1", "u3"}) {
		t.Errorf("expected exactly enabled unscheduled items once, got %v", got)
	}
	if res.Disabled != 2 {
		t.Errorf("expected 2 disabled, got %d", res.Disabled)
	}
}

func TestStart_Scheduled_InvalidCronFailsFast(t *testing.T) {
	rec := &recorder{}
	sched := newFakeScheduler()

	o := New(Config{
		Factories: asFactories(
			factory(rec, "good", true, "0 0 * * *", nil),
			factory(rec, "plain", true, "", nil),
			factory(rec, "bad", true, "every day", nil),
		),
		Scheduler: sched,
	})

	_, err := o.Start(context.Background())
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}

	// Ничего не зарегистрировано и не выполнено
	if len(sched.registered) != 0 {
		t.Errorf("no registrations expected, got %v", sched.registered)
	}
	if got := rec.list(); len(got) != 0 {
		t.Errorf("no executions expected, got %v", got)
	}
}

func TestStart_Scheduled_InvalidCronOnDisabledIsIgnored(t *testing.T) {
	rec := &recorder{}
	sched := newFakeScheduler()

	o := New(Config{
		Factories: asFactories(
			factory(rec, "good", true, "0 0 * * *", nil),
			factory(rec, "bad-disabled", false, "every day", nil),
		),
		Scheduler: sched,
	})

	if _, err := o.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sched.registered) != 1 {
		t.Errorf("expected 1 registration, got %v", sched.registered)
	}
}

func TestStart_Scheduled_RegisterError(t *testing.T) {
	rec := &recorder{}
	sched := newFakeScheduler()
	sched.err = errors.New("duplicate")

	o := New(Config{
		Factories: asFactories(factory(rec, "a", true, "0 0 * * *", nil)),
		Scheduler: sched,
	})

	_, err := o.Start(context.Background())
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestStart_Scheduled_NoScheduler(t *testing.T) {
	rec := &recorder{}

	o := New(Config{
		Factories: asFactories(factory(rec, "a", true, "0 0 * * *", nil)),
	})

	_, err := o.Start(context.Background())
	if !errors.Is(err, ErrNoScheduler) {
		t.Errorf("expected ErrNoScheduler, got %v", err)
	}
}

func TestStart_Scheduled_TickPublishesCronTrigger(t *testing.T) {
	rec := &recorder{}
	sched := newFakeScheduler()
	pub := &fakePublisher{}

	o := New(Config{
		Factories: asFactories(factory(rec, "nightly", true, "0 0 * * *", errors.New("tick failed"))),
		Scheduler: sched,
		Publisher: pub,
	})

	if _, err := o.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ошибка тика не паникует и не останавливает следующие тики
	sched.fns["nightly"](context.Background())
	sched.fns["nightly"](context.Background())

	if len(pub.execs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.execs))
	}
	for _, e := range pub.execs {
		if e.Trigger != domain.TriggerCron || e.Status != domain.ExecutionStatusFailed {
			t.Errorf("unexpected event: %+v", e)
		}
	}
	if pub.execs[0].ID == pub.execs[1].ID {
		t.Error("each tick should get a new execution id")
	}
}

func TestExecute_LoggerInContext(t *testing.T) {
	o := New(Config{})

	var got bool
	item := domain.WorkItemFunc(func(ctx context.Context) error {
		_, got = ctx.Value(telemetry.CtxLogger).(*slog.Logger)
		return nil
	})

	exec := o.execute(context.Background(), "x", func() domain.WorkItem { return item }, domain.TriggerOnce)
	if !got {
		t.Error("logger should be available from context")
	}
	if exec.Status != domain.ExecutionStatusSucceeded {
		t.Errorf("expected success, got %s", exec.Status)
	}
}

// panickingFactory паникует при создании work item.
func panickingFactory(name, schedule string) *domain.Factory {
	return &domain.Factory{
		ID:       name,
		IsOn:     true,
		Schedule: schedule,
		New: func() domain.WorkItem {
			panic("cannot build " + name)
		},
	}
}

func TestStart_RunOnce_FactoryPanicIsRecorded(t *testing.T) {
	rec := &recorder{}
	pub := &fakePublisher{}

	o := New(Config{
		Factories: []domain.WorkItemFactory{
			panickingFactory("broken", ""),
			&domain.Factory{ID: "nil", IsOn: true, New: func() domain.WorkItem { return nil }},
			factory(rec, "ok", true, "", nil),
		},
		Publisher: pub,
	})

	res, err := o.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.list(); !equalStrings(got, []string{"ok"}) {
		t.Errorf("following items should still run, got %v", got)
	}
	if res.Executed != 3 || res.Failed != 2 {
		t.Errorf("expected 3 executed / 2 failed, got %+v", res)
	}

	if len(pub.execs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(pub.execs))
	}
	if pub.execs[0].Item != "broken" || pub.execs[0].Status != domain.ExecutionStatusFailed {
		t.Errorf("factory panic should be a failed execution: %+v", pub.execs[0])
	}
	if pub.execs[1].Error != ErrNilWorkItem.Error() {
		t.Errorf("nil work item should be a failed execution: %+v", pub.execs[1])
	}
}

func TestStart_Scheduled_FactoryPanicIsNotRegistered(t *testing.T) {
	rec := &recorder{}
	sched := newFakeScheduler()

	o := New(Config{
		Factories: []domain.WorkItemFactory{
			panickingFactory("broken", "@hourly"),
			factory(rec, "nightly", true, "0 0 * * *", nil),
		},
		Scheduler: sched,
	})

	res, err := o.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Scheduled != 1 || res.Failed != 1 {
		t.Errorf("expected 1 scheduled / 1 failed, got %+v", res)
	}
	if _, ok := sched.registered["broken"]; ok {
		t.Error("item that cannot be created should not be registered")
	}
	if sched.registered["nightly"] != "0 0 * * *" {
		t.Errorf("sibling should be registered: %v", sched.registered)
	}
}

func TestInstantiate(t *testing.T) {
	if _, err := instantiate(func() domain.WorkItem { panic("boom") }); !errors.Is(err, ErrWorkItemPanic) {
		t.Errorf("expected ErrWorkItemPanic, got %v", err)
	}
	if _, err := instantiate(func() domain.WorkItem { return nil }); !errors.Is(err, ErrNilWorkItem) {
		t.Errorf("expected ErrNilWorkItem, got %v", err)
	}

	item, err := instantiate(func() domain.WorkItem {
		return domain.WorkItemFunc(func(ctx context.Context) error { return nil })
	})
	if err != nil || item == nil {
		t.Errorf("unexpected result: %v, %v", item, err)
	}
}
