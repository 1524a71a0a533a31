package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/threatwatch/internal/artifact"
	"github.com/crucial707/threatwatch/internal/config"
	"github.com/crucial707/threatwatch/internal/db"
	"github.com/crucial707/threatwatch/internal/executor"
	"github.com/crucial707/threatwatch/internal/logging"
	"github.com/crucial707/threatwatch/internal/notify"
	"github.com/crucial707/threatwatch/internal/queue"
	"github.com/crucial707/threatwatch/internal/repo"
	"github.com/crucial707/threatwatch/internal/scheduler"
	"github.com/crucial707/threatwatch/internal/search"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogFormat)
	log := slog.Default()

	database, err := db.Connect(cfg)
	if err != nil {
		log.Error("database connect", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Run(cfg.DatabaseURL()); err != nil {
		log.Error("database migrate", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitors := repo.NewMonitorRepo(database)
	reports := repo.NewReportRepo(database)
	audit := repo.NewSearchAuditRepo(database)
	q := queue.NewPG(database)

	var notifier executor.NotifySender
	if cfg.NotificationsEnabled && cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookSender(cfg.NotifyWebhookURL, 10*time.Second)
	}

	ex := &executor.Executor{
		Monitors:             monitors,
		Reports:              reports,
		Audit:                audit,
		Search:               search.NewHTTPClient(cfg.SearchURL, cfg.SearchAPIKey, cfg.SearchTimeout),
		Artifacts:            artifact.NewFSStore(cfg.ArtifactDir, cfg.ArtifactBaseURL),
		Notifier:             notifier,
		Log:                  log,
		NotificationsEnabled: cfg.NotificationsEnabled,
		MaxAttempts:          cfg.SearchMaxAttempts,
	}

	sched := scheduler.New(monitors, q, log)
	sched.Maintenance = func() bool { return cfg.SchedulerDisabled }
	cronRunner, err := sched.Start(ctx, cfg.SchedulerTick)
	if err != nil {
		log.Error("scheduler start", "error", err)
		os.Exit(1)
	}

	retention, err := startRetention(ctx, reports, "@daily", cfg.ReportRetentionDays, log)
	if err != nil {
		log.Error("retention start", "error", err)
		os.Exit(1)
	}

	log.Info("worker started",
		"workers", cfg.ScanWorkers,
		"tick", cfg.SchedulerTick.String(),
		"lease", cfg.QueueLease.String(),
		"notifications", cfg.NotificationsEnabled)

	// Blocks until ctx is cancelled and all workers have drained.
	executor.RunPool(ctx, q, ex, executor.PoolConfig{
		Workers:     cfg.ScanWorkers,
		Lease:       cfg.QueueLease,
		ExecTimeout: cfg.ScanTimeout,
	}, log)

	<-cronRunner.Stop().Done()
	<-retention.Stop().Done()
	log.Info("worker stopped")
}

// startRetention schedules the report cleanup on the given cron spec.
func startRetention(ctx context.Context, reports *repo.ReportRepo, spec string, retentionDays int, log *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
		jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		n, err := reports.DeleteOlderThan(jobCtx, cutoff)
		if err != nil {
			log.Error("report retention", "error", err)
			return
		}
		log.Info("report retention", "deleted", n, "cutoff", cutoff.Format(time.RFC3339))
	})
	if err != nil {
		return nil, fmt.Errorf("retention cron: %w", err)
	}
	c.Start()
	return c, nil
}
