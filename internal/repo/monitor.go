package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/crucial707/threatwatch/internal/models"
)

// MonitorRepo persists monitors and implements the scheduling state store:
// one bulk read of due monitors and one bulk reschedule write per tick.
type MonitorRepo struct {
	DB *sql.DB
}

// NewMonitorRepo returns a new MonitorRepo.
func NewMonitorRepo(db *sql.DB) *MonitorRepo {
	return &MonitorRepo{DB: db}
}

const monitorColumns = `id, owner_id, query_text, frequency, next_run_at, active, created_at`

func scanMonitor(row interface{ Scan(...any) error }, m *models.Monitor) error {
	return row.Scan(&m.ID, &m.OwnerID, &m.Query, &m.Frequency, &m.NextRunAt, &m.Active, &m.CreatedAt)
}

// Create inserts a new monitor and returns it with id and created_at set.
func (r *MonitorRepo) Create(ctx context.Context, ownerID, query, frequency string, nextRunAt time.Time) (*models.Monitor, error) {
	m := &models.Monitor{}
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO monitors (owner_id, query_text, frequency, next_run_at, active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING `+monitorColumns,
		ownerID, query, frequency, nextRunAt,
	)
	if err := scanMonitor(row, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetByID returns one monitor by id, or nil if not found.
func (r *MonitorRepo) GetByID(ctx context.Context, id string) (*models.Monitor, error) {
	m := &models.Monitor{}
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+monitorColumns+` FROM monitors WHERE id = $1`, id)
	err := scanMonitor(row, m)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByOwner returns a user's monitors, newest first.
func (r *MonitorRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Monitor, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+monitorColumns+` FROM monitors
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Monitor
	for rows.Next() {
		var m models.Monitor
		if err := scanMonitor(rows, &m); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Deactivate sets active = false. Deactivated monitors are never selected as
// due and in-flight scans for them are dropped by the executor.
func (r *MonitorRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE monitors SET active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// QueryDue returns all active monitors with next_run_at <= now in one query.
func (r *MonitorRepo) QueryDue(ctx context.Context, now time.Time) ([]models.Monitor, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+monitorColumns+` FROM monitors
		 WHERE active = true AND next_run_at <= $1
		 ORDER BY next_run_at`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []models.Monitor
	for rows.Next() {
		var m models.Monitor
		if err := scanMonitor(rows, &m); err != nil {
			return nil, err
		}
		due = append(due, m)
	}
	return due, rows.Err()
}

// BulkReschedule advances next_run_at for all given monitors in a single
// statement, regardless of how many are due. ids and nextRuns are parallel
// slices; a zero-length call is a no-op.
func (r *MonitorRepo) BulkReschedule(ctx context.Context, ids []string, nextRuns []time.Time) error {
	if len(ids) != len(nextRuns) {
		return fmt.Errorf("bulk reschedule: %d ids vs %d next runs", len(ids), len(nextRuns))
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE monitors m
		 SET next_run_at = u.next_run_at
		 FROM (
		     SELECT unnest($1::uuid[]) AS id, unnest($2::timestamptz[]) AS next_run_at
		 ) u
		 WHERE m.id = u.id`,
		pq.Array(ids), pq.Array(nextRuns),
	)
	return err
}
