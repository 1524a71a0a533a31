package models

import "time"

// Scan audit statuses.
const (
	ScanStatusSuccess = "success"
	ScanStatusFailure = "failure"
	ScanStatusPartial = "partial"
)

// SearchAuditRecord is one append-only row recording a scan attempt's outcome.
// success: a report was created. failure: retries exhausted, no report.
// partial: the search succeeded but report persistence did not complete.
type SearchAuditRecord struct {
	ID        int64     `json:"id"`
	MonitorID string    `json:"monitor_id"`
	Query     string    `json:"query"`
	Status    string    `json:"status"` // success, failure, partial
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
