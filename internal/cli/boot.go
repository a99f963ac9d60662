package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/shaiso/bootkit/internal/api"
	"github.com/shaiso/bootkit/internal/config"
	"github.com/shaiso/bootkit/internal/domain"
	"github.com/shaiso/bootkit/internal/jobs"
	"github.com/shaiso/bootkit/internal/mq"
	"github.com/shaiso/bootkit/internal/orchestrator"
	"github.com/shaiso/bootkit/internal/repo"
	"github.com/shaiso/bootkit/internal/scheduler"
	"github.com/shaiso/bootkit/internal/seeder"
	"github.com/shaiso/bootkit/internal/telemetry"
)

// Boot выполняет последовательность старта (см. doc.go).
//
// В однократном режиме возвращается после выполнения jobs;
// в резидентном после отмены ctx и остановки scheduler'а.
func Boot(ctx context.Context, cfg config.Config) error {
	logger := telemetry.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting bootkit",
		"populate_container_dirs", cfg.PopulateContainerDirs,
		"run_once", cfg.RunOnce,
		"jobs_file", cfg.JobsFile,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(reg)

	if err := seed(ctx, cfg, logger, metrics); err != nil {
		return fmt.Errorf("seed volumes: %w", err)
	}

	factories, err := jobs.Load(cfg.JobsFile, jobs.NewRegistry())
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", orchestrator.ErrNoFactories, err)
	}
	if err != nil {
		return err
	}
	if len(factories) == 0 {
		return fmt.Errorf("%w: %s defines no jobs", orchestrator.ErrNoFactories, cfg.JobsFile)
	}

	publisher, closeEvents := connectEvents(ctx, cfg.AMQPURL, logger)
	defer closeEvents()

	sched := scheduler.NewCron(scheduler.Config{
		Overlap: cfg.Overlap,
		Logger:  logger,
	})

	exited := make(chan struct{})
	orch := orchestrator.New(orchestrator.Config{
		Factories: factories,
		RunOnce:   cfg.RunOnce,
		Scheduler: sched,
		Exit:      func() { close(exited) },
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    logger,
	})

	res, err := orch.Start(ctx)
	if err != nil {
		return err
	}

	select {
	case <-exited:
		if res.Interrupted > 0 {
			return &ExitError{
				Code: 1,
				Err:  fmt.Errorf("interrupted, %d jobs not started: %w", res.Interrupted, context.Cause(ctx)),
			}
		}
		if res.Failed > 0 {
			return &ExitError{
				Code: 1,
				Err:  fmt.Errorf("%d of %d jobs failed", res.Failed, res.Executed),
			}
		}
		logger.Info("all jobs completed, exiting", "executed", res.Executed)
		return nil
	default:
	}

	return serve(ctx, cfg, sched, reg, logger)
}

// seed заполняет тома. При заданном DB_URL реплики выполняют seeding по очереди.
func seed(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *telemetry.Metrics) error {
	s := seeder.NewOS(cfg.PopulateContainerDirs, cfg.SourceDir, cfg.TargetDir, cfg.EmptyMarker, logger, metrics)

	populate := func(ctx context.Context) error {
		_, err := s.Populate(ctx)
		return err
	}

	if !cfg.PopulateContainerDirs || cfg.DBURL == "" {
		return populate(ctx)
	}

	pool, err := repo.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("waiting for seed lock", "lock", repo.SeedLockName, "target", cfg.TargetDir)
	return repo.WithAdvisoryLock(ctx, pool, repo.SeedLockKey(cfg.TargetDir), populate)
}

// connectEvents подключается к брокеру. Недоступный брокер не мешает старту:
// события просто не публикуются.
func connectEvents(ctx context.Context, url string, logger *slog.Logger) (orchestrator.EventPublisher, func()) {
	if url == "" {
		return nil, func() {}
	}

	conn, err := mq.NewConnection(url, logger)
	if err != nil {
		logger.Warn("broker not available, job events disabled", "error", err)
		return nil, func() {}
	}

	if err := mq.SetupTopology(ctx, conn); err != nil {
		logger.Warn("failed to setup topology", "error", err)
	}

	return mq.NewPublisher(conn, logger), func() {
		if err := conn.Close(); err != nil {
			logger.Warn("close broker connection", "error", err)
		}
	}
}

// serve держит процесс в резидентном режиме до отмены ctx.
func serve(ctx context.Context, cfg config.Config, sched *scheduler.CronScheduler, reg *prometheus.Registry, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched.Start(ctx)
	for _, e := range sched.Entries() {
		logger.Info("job scheduled", "item", e.Name, "cron", e.CronExpr, "next_run", e.Next)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewHandler(reg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer stopCancel()

	var result *multierror.Error
	if err := srv.Shutdown(stopCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("http shutdown: %w", err))
	}
	if err := sched.Stop(stopCtx); err != nil {
		result = multierror.Append(result, err)
	}
	select {
	case err := <-serveErr:
		result = multierror.Append(result, fmt.Errorf("http server: %w", err))
	default:
	}

	logger.Info("bootkit stopped")
	return result.ErrorOrNil()
}

// modeOf возвращает режим, который выберет оркестратор.
func modeOf(factories []domain.WorkItemFactory, runOnce bool) domain.Mode {
	if orchestrator.IsRunOnce(factories, runOnce) {
		return domain.ModeOnce
	}
	return domain.ModeScheduled
}
