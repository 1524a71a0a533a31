package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/threatwatch/internal/models"
)

// SearchAuditRepo persists the append-only scan attempt log.
type SearchAuditRepo struct {
	db *sql.DB
}

// NewSearchAuditRepo returns a new SearchAuditRepo.
func NewSearchAuditRepo(db *sql.DB) *SearchAuditRepo {
	return &SearchAuditRepo{db: db}
}

// Log records one scan attempt. status is success|failure|partial; detail
// carries the error text for non-success attempts.
func (r *SearchAuditRepo) Log(ctx context.Context, monitorID, query, status, detail string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO search_audit (monitor_id, query_text, status, detail) VALUES ($1, $2, $3, $4)`,
		monitorID, query, status, detail,
	)
	return err
}

// List returns recent audit records, newest first.
func (r *SearchAuditRepo) List(ctx context.Context, limit, offset int) ([]models.SearchAuditRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, monitor_id, query_text, status, COALESCE(detail, ''), created_at
		 FROM search_audit
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SearchAuditRecord
	for rows.Next() {
		var rec models.SearchAuditRecord
		if err := rows.Scan(&rec.ID, &rec.MonitorID, &rec.Query, &rec.Status, &rec.Detail, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
