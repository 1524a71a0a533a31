// Package scheduler finds due monitors on a fixed cadence, dispatches one
// scan request per monitor, and advances their next-run times in bulk.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/threatwatch/internal/metrics"
	"github.com/crucial707/threatwatch/internal/models"
	"github.com/crucial707/threatwatch/internal/queue"
	"github.com/crucial707/threatwatch/internal/schedule"
)

// Store is the scheduling state store contract: one bulk read and one bulk
// write per tick, never per-monitor round trips.
type Store interface {
	QueryDue(ctx context.Context, now time.Time) ([]models.Monitor, error)
	BulkReschedule(ctx context.Context, ids []string, nextRuns []time.Time) error
}

// TickStats summarizes one scheduler tick.
type TickStats struct {
	Due         int
	Enqueued    int
	Rescheduled int
}

// Scheduler is the single periodic actor that drives scan dispatch. Exactly
// one instance may run against a monitor set at a time; next_run_at has no
// other writer.
type Scheduler struct {
	Store Store
	Queue queue.Enqueuer
	Log   *slog.Logger

	// Maintenance disables ticks when it returns true. Checked at every
	// tick so the flag can be flipped without a restart.
	Maintenance func() bool

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// New returns a scheduler over the given store and queue.
func New(store Store, q queue.Enqueuer, log *slog.Logger) *Scheduler {
	return &Scheduler{Store: store, Queue: q, Log: log}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// Tick runs one scheduling pass:
//
//  1. one bulk read of active monitors with next_run_at <= now,
//  2. one batch enqueue of scan requests,
//  3. one bulk write advancing every due monitor's next_run_at.
//
// Enqueue runs before the reschedule write on purpose: if the write then
// fails, the same monitors are re-selected next tick and scanned again
// (duplicates are tolerated, lost scans are not). If enqueue itself fails,
// the tick aborts without advancing anything, so nothing is dropped.
//
// Any infrastructure error aborts only the current tick; due monitors stay
// due and the next tick retries.
func (s *Scheduler) Tick(ctx context.Context) (TickStats, error) {
	log := s.logger()
	if s.Maintenance != nil && s.Maintenance() {
		log.Info("scheduler: maintenance mode, tick skipped")
		metrics.RecordTick("skipped", 0)
		return TickStats{}, nil
	}

	start := time.Now()
	now := s.now()

	due, err := s.Store.QueryDue(ctx, now)
	if err != nil {
		metrics.RecordTick("store_error", 0)
		return TickStats{}, fmt.Errorf("query due monitors: %w", err)
	}
	stats := TickStats{Due: len(due)}
	if len(due) == 0 {
		metrics.RecordTick("ok", 0)
		return stats, nil
	}

	ids := make([]string, 0, len(due))
	nextRuns := make([]time.Time, 0, len(due))
	for _, m := range due {
		next, err := schedule.NextRun(m.Frequency, m.NextRunAt, now)
		if err != nil {
			// Bad frequency rows cannot be scheduled; leave them out of this
			// cycle entirely rather than enqueue work we can't reschedule.
			log.Error("scheduler: skipping monitor", "monitor_id", m.ID, "error", err)
			continue
		}
		ids = append(ids, m.ID)
		nextRuns = append(nextRuns, next)
	}

	if err := s.Queue.EnqueueBatch(ctx, ids); err != nil {
		metrics.RecordTick("queue_error", stats.Due)
		return stats, fmt.Errorf("enqueue scan requests: %w", err)
	}
	stats.Enqueued = len(ids)

	if err := s.Store.BulkReschedule(ctx, ids, nextRuns); err != nil {
		// Already enqueued: the monitors stay due and will be scanned again
		// next tick. Accepted duplicate, never a lost cycle.
		metrics.RecordTick("store_error", stats.Due)
		return stats, fmt.Errorf("bulk reschedule: %w", err)
	}
	stats.Rescheduled = len(ids)

	metrics.RecordTick("ok", stats.Due)
	log.Info("scheduler: tick complete",
		"due", stats.Due,
		"enqueued", stats.Enqueued,
		"rescheduled", stats.Rescheduled,
		"duration_ms", time.Since(start).Milliseconds())
	return stats, nil
}

// Start registers the tick on a cron runner at the given interval and starts
// it. Tick errors are logged, never fatal; the next tick retries.
func (s *Scheduler) Start(ctx context.Context, every time.Duration) (*cron.Cron, error) {
	c := cron.New()
	spec := fmt.Sprintf("@every %s", every)
	_, err := c.AddFunc(spec, func() {
		if _, err := s.Tick(ctx); err != nil {
			s.logger().Error("scheduler: tick failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler cron: %w", err)
	}
	c.Start()
	return c, nil
}
