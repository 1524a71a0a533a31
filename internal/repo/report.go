package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/threatwatch/internal/models"
)

// ReportRepo persists scan reports. Rows are insert-only; the retention job
// is the only deleter.
type ReportRepo struct {
	DB *sql.DB
}

// NewReportRepo returns a new ReportRepo.
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{DB: db}
}

const reportColumns = `id, monitor_id, owner_id, artifact_location, item_count, created_at`

// Create inserts a new report and returns it with id and created_at set.
func (r *ReportRepo) Create(ctx context.Context, monitorID, ownerID, artifactLocation string, itemCount int) (*models.Report, error) {
	rep := &models.Report{}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO reports (monitor_id, owner_id, artifact_location, item_count)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+reportColumns,
		monitorID, ownerID, artifactLocation, itemCount,
	).Scan(&rep.ID, &rep.MonitorID, &rep.OwnerID, &rep.ArtifactLocation, &rep.ItemCount, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// GetByID returns one report by id, or nil if not found.
func (r *ReportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	rep := &models.Report{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id,
	).Scan(&rep.ID, &rep.MonitorID, &rep.OwnerID, &rep.ArtifactLocation, &rep.ItemCount, &rep.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// ListByOwner returns a user's reports, newest first, with each monitor's
// query text joined in so the feed needs a single round trip.
func (r *ReportRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Report, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.monitor_id, r.owner_id, r.artifact_location, r.item_count, r.created_at, m.query_text
		 FROM reports r
		 JOIN monitors m ON m.id = r.monitor_id
		 WHERE r.owner_id = $1
		 ORDER BY r.created_at DESC
		 LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.MonitorID, &rep.OwnerID, &rep.ArtifactLocation, &rep.ItemCount, &rep.CreatedAt, &rep.Query); err != nil {
			return nil, err
		}
		list = append(list, rep)
	}
	return list, rows.Err()
}

// DeleteOlderThan removes reports created before cutoff and returns the
// number of rows deleted. Used by the daily retention job.
func (r *ReportRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM reports WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
