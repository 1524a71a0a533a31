package models

import "time"

// ScanRequest is one unit of dispatch work: "execute one scan for this monitor".
// Rows live in the scan_requests table until acked (deleted) by an executor;
// an expired lease makes the row visible again for redelivery.
type ScanRequest struct {
	ID           int64     `json:"id"`
	MonitorID    string    `json:"monitor_id"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
	AttemptCount int       `json:"attempt_count"`
}
