// Package executor processes scan requests: it runs the external search with
// bounded retries, persists the report artifact and metadata, and writes the
// audit trail. Executors never touch monitor scheduling state.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/crucial707/threatwatch/internal/artifact"
	"github.com/crucial707/threatwatch/internal/models"
	"github.com/crucial707/threatwatch/internal/report"
	"github.com/crucial707/threatwatch/internal/search"
)

// Outcome classifies one execution so the pool knows whether to ack or nack.
type Outcome string

const (
	// OutcomeSuccess: report and success audit row persisted. Ack.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure: retries exhausted, failure audit row persisted. Ack;
	// the monitor's next scheduled cycle is its retry.
	OutcomeFailure Outcome = "failure"
	// OutcomeNoop: monitor missing or deactivated since dispatch. Ack.
	OutcomeNoop Outcome = "noop"
	// OutcomeRetry: infrastructure trouble mid-execution. Nack so the
	// request is redelivered.
	OutcomeRetry Outcome = "retry"
)

// MonitorLoader loads the monitor a request refers to.
type MonitorLoader interface {
	GetByID(ctx context.Context, id string) (*models.Monitor, error)
}

// ReportWriter persists a completed report.
type ReportWriter interface {
	Create(ctx context.Context, monitorID, ownerID, artifactLocation string, itemCount int) (*models.Report, error)
}

// AuditWriter appends one scan attempt record.
type AuditWriter interface {
	Log(ctx context.Context, monitorID, query, status, detail string) error
}

// Executor runs one scan request to completion. Safe for concurrent use;
// all mutable state lives in the store.
type Executor struct {
	Monitors  MonitorLoader
	Reports   ReportWriter
	Audit     AuditWriter
	Search    search.Client
	Artifacts artifact.Store
	Notifier  NotifySender
	Log       *slog.Logger

	// NotificationsEnabled gates the best-effort notification after a
	// successful scan.
	NotificationsEnabled bool

	// MaxAttempts bounds provider retries per execution (default 3).
	MaxAttempts int
	// RetryBase is the first backoff delay, doubled per attempt with
	// jitter (default 500ms).
	RetryBase time.Duration

	// Now is the clock, overridable in tests.
	Now func() time.Time
	// Sleep is the backoff sleeper, overridable in tests.
	Sleep func(ctx context.Context, d time.Duration)
}

// NotifySender matches notify.Sender; redeclared here so executor tests can
// fake it without importing the transport.
type NotifySender interface {
	Send(ctx context.Context, ownerID, reportID, location string) error
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

func (e *Executor) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

func (e *Executor) maxAttempts() int {
	if e.MaxAttempts > 0 {
		return e.MaxAttempts
	}
	return 3
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) {
	if e.Sleep != nil {
		e.Sleep(ctx, d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Execute processes one scan request. Duplicate delivery of the same request
// re-runs the search and produces an independent report; dedup is the
// scheduler's job (it only enqueues a monitor once per cycle).
func (e *Executor) Execute(ctx context.Context, req models.ScanRequest) Outcome {
	log := e.logger().With("monitor_id", req.MonitorID, "request_id", req.ID, "attempt", req.AttemptCount)
	start := time.Now()
	log.Info("scan: start")

	m, err := e.Monitors.GetByID(ctx, req.MonitorID)
	if err != nil {
		log.Error("scan: load monitor", "error", err)
		return OutcomeRetry
	}
	if m == nil || !m.Active {
		// Deactivated (or deleted) after dispatch: drop silently, no report,
		// no audit row.
		log.Info("scan: monitor inactive or missing, dropping")
		return OutcomeNoop
	}

	items, attempts, err := e.searchWithRetry(ctx, log, m.Query)
	if err != nil {
		detail := fmt.Sprintf("search failed after %d attempts: %v", attempts, err)
		if auditErr := e.Audit.Log(ctx, m.ID, m.Query, models.ScanStatusFailure, detail); auditErr != nil {
			log.Error("scan: audit write failed", "error", auditErr)
			return OutcomeRetry
		}
		log.Error("scan: failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return OutcomeFailure
	}

	executedAt := e.now()
	pdf := report.Render(m, items, executedAt)
	location, err := e.Artifacts.Store(report.FileName(m.ID, executedAt), pdf)
	if err != nil {
		e.auditPartial(ctx, log, m, fmt.Sprintf("artifact store failed: %v", err))
		return OutcomeRetry
	}

	rep, err := e.Reports.Create(ctx, m.ID, m.OwnerID, location, len(items))
	if err != nil {
		e.auditPartial(ctx, log, m, fmt.Sprintf("report persist failed: %v", err))
		return OutcomeRetry
	}

	if err := e.Audit.Log(ctx, m.ID, m.Query, models.ScanStatusSuccess, ""); err != nil {
		// The report exists; losing the audit row is worse than a duplicate
		// one, so redeliver and let the next execution write its own trail.
		log.Error("scan: audit write failed", "error", err)
		return OutcomeRetry
	}

	if e.NotificationsEnabled && e.Notifier != nil {
		if err := e.Notifier.Send(ctx, m.OwnerID, rep.ID, rep.ArtifactLocation); err != nil {
			// Best effort only; the report and audit row stand.
			log.Warn("scan: notification failed", "report_id", rep.ID, "error", err)
		}
	}

	log.Info("scan: success",
		"report_id", rep.ID,
		"items", len(items),
		"duration_ms", time.Since(start).Milliseconds())
	return OutcomeSuccess
}

func (e *Executor) auditPartial(ctx context.Context, log *slog.Logger, m *models.Monitor, detail string) {
	// Best effort: the request is nacked either way.
	if err := e.Audit.Log(ctx, m.ID, m.Query, models.ScanStatusPartial, detail); err != nil {
		log.Error("scan: partial audit write failed", "error", err)
	}
	log.Error("scan: partial", "detail", detail)
}

// searchWithRetry retries transient provider errors with exponential backoff
// and jitter. Non-transient errors fail immediately. The returned count is
// the number of attempts actually made.
func (e *Executor) searchWithRetry(ctx context.Context, log *slog.Logger, query string) ([]search.ResultItem, int, error) {
	base := e.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts(); attempt++ {
		items, err := e.Search.Search(ctx, query)
		if err == nil {
			return items, attempt, nil
		}
		lastErr = err
		if !search.IsTransient(err) {
			return nil, attempt, err
		}
		if attempt == e.maxAttempts() {
			break
		}
		delay := base << (attempt - 1)
		delay += jitter(delay / 4)
		log.Warn("scan: transient provider error, retrying", "attempt", attempt, "delay", delay, "error", err)
		e.sleep(ctx, delay)
		if ctx.Err() != nil {
			return nil, attempt, ctx.Err()
		}
	}
	return nil, e.maxAttempts(), lastErr
}

func jitter(bound time.Duration) time.Duration {
	if bound <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(bound)))
}
