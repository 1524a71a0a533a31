package queue

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/crucial707/threatwatch/internal/models"
)

// PG is a Postgres-backed Queue over the scan_requests table. Claiming uses
// FOR UPDATE SKIP LOCKED so concurrent workers never double-claim a row, and
// the leased_until column doubles as the visibility timeout: a crashed worker
// simply lets its lease lapse and the row becomes claimable again.
type PG struct {
	DB *sql.DB
}

// NewPG returns a Postgres-backed queue.
func NewPG(db *sql.DB) *PG {
	return &PG{DB: db}
}

// Enqueue appends one scan request for a monitor.
func (q *PG) Enqueue(ctx context.Context, monitorID string) error {
	_, err := q.DB.ExecContext(ctx,
		`INSERT INTO scan_requests (monitor_id) VALUES ($1)`, monitorID)
	return err
}

// EnqueueBatch appends one scan request per monitor in a single statement,
// so a tick with N due monitors costs one broker round trip, not N.
func (q *PG) EnqueueBatch(ctx context.Context, monitorIDs []string) error {
	if len(monitorIDs) == 0 {
		return nil
	}
	_, err := q.DB.ExecContext(ctx,
		`INSERT INTO scan_requests (monitor_id)
		 SELECT unnest($1::uuid[])`,
		pq.Array(monitorIDs),
	)
	return err
}

// DequeueWithLease claims the oldest request whose lease is absent or
// expired, bumps its attempt count, and leases it for leaseFor.
func (q *PG) DequeueWithLease(ctx context.Context, leaseFor time.Duration) (models.ScanRequest, Lease, bool, error) {
	var req models.ScanRequest
	err := q.DB.QueryRowContext(ctx,
		`UPDATE scan_requests
		 SET leased_until = now() + make_interval(secs => $1), attempt_count = attempt_count + 1
		 WHERE id = (
		     SELECT id FROM scan_requests
		     WHERE leased_until IS NULL OR leased_until < now()
		     ORDER BY enqueued_at
		     FOR UPDATE SKIP LOCKED
		     LIMIT 1
		 )
		 RETURNING id, monitor_id, enqueued_at, attempt_count`,
		leaseFor.Seconds(),
	).Scan(&req.ID, &req.MonitorID, &req.EnqueuedAt, &req.AttemptCount)
	if err == sql.ErrNoRows {
		return models.ScanRequest{}, 0, false, nil
	}
	if err != nil {
		return models.ScanRequest{}, 0, false, err
	}
	return req, Lease(req.ID), true, nil
}

// Ack deletes the request; acked work is gone for good.
func (q *PG) Ack(ctx context.Context, lease Lease) error {
	_, err := q.DB.ExecContext(ctx,
		`DELETE FROM scan_requests WHERE id = $1`, int64(lease))
	return err
}

// Nack clears the lease so the request is immediately visible again.
func (q *PG) Nack(ctx context.Context, lease Lease) error {
	_, err := q.DB.ExecContext(ctx,
		`UPDATE scan_requests SET leased_until = NULL WHERE id = $1`, int64(lease))
	return err
}
