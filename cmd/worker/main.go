package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghuser/lendingdesk/pkg/app"
	"github.com/ghuser/lendingdesk/pkg/cache"
	"github.com/ghuser/lendingdesk/pkg/config"
	"github.com/ghuser/lendingdesk/pkg/database"
	"github.com/ghuser/lendingdesk/pkg/events"
	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/pkg/scheduler"
	"github.com/ghuser/lendingdesk/pkg/telemetry"
	"github.com/ghuser/lendingdesk/pkg/workflows"
	appsvcs "github.com/ghuser/lendingdesk/services/lending/application/services"
	"github.com/ghuser/lendingdesk/services/lending/application/subscribers"
	lendingworkflows "github.com/ghuser/lendingdesk/services/lending/application/workflows"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg, telemetry.RoleWorker)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.Open(cfg, log, events.Options{Mode: events.ModeDirect})
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	a := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	topics, err := subscribers.Register(ctx, eventBus, cache.NewItemCache(redisClient), log)
	if err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("event subscribers registered", "topics", topics)

	svcs, err := appsvcs.New(a)
	if err != nil {
		log.Error("failed to build lending services", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	stop, err := startSweeps(ctx, a, svcs.Sweeper)
	if err != nil {
		log.Error("failed to start overdue sweeps", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	stop(stopCtx)
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// startSweeps schedules the overdue sweep on the backend chosen by
// SWEEP_SCHEDULER and returns a function that stops it.
func startSweeps(ctx context.Context, a *app.Application, sweeper *appsvcs.Sweeper) (func(context.Context), error) {
	cfg, log := a.Config, a.Logger

	if cfg.SweepScheduler == config.SweepSchedulerTemporal {
		tc, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			return nil, err
		}
		a.TemporalClient = tc

		w := tc.NewWorker(cfg.TemporalTaskQueue)
		lendingworkflows.Register(w, lendingworkflows.NewActivities(sweeper))
		if err := w.Start(); err != nil {
			tc.Close()
			return nil, err
		}
		if err := tc.EnsureCronWorkflow(ctx, lendingworkflows.SweepWorkflowID, cfg.TemporalTaskQueue,
			cfg.SweepSchedule, lendingworkflows.OverdueSweepWorkflow); err != nil {
			w.Stop()
			tc.Close()
			return nil, err
		}
		return func(context.Context) {
			w.Stop()
			tc.Close()
		}, nil
	}

	lock, err := cache.NewLock(a.Redis, cache.Key("lock", sweeper.Name()), cfg.SweepLockTTL)
	if err != nil {
		return nil, err
	}
	s := scheduler.New(log, cfg.SweepLockTTL)
	if err := s.Add(cfg.SweepSchedule, reportingJob{sweeper}, lock); err != nil {
		return nil, err
	}
	s.Start()
	return s.Stop, nil
}

// reportingJob sends failed runs to Sentry; the scheduler only logs them.
type reportingJob struct {
	scheduler.Job
}

func (j reportingJob) Run(ctx context.Context) error {
	err := j.Job.Run(ctx)
	telemetry.CaptureJobError(j.Name(), err)
	return err
}
