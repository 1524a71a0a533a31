package models

import "time"

// Report is the artifact metadata produced by one successful scan.
// Rows are immutable once written; only the retention job ever deletes them.
type Report struct {
	ID               string    `json:"id"`
	MonitorID        string    `json:"monitor_id"`
	OwnerID          string    `json:"owner_id"`
	ArtifactLocation string    `json:"artifact_location"`
	ItemCount        int       `json:"item_count"`
	CreatedAt        time.Time `json:"created_at"`
	// Query is the monitor's query text, populated on list reads only.
	Query string `json:"query,omitempty"`
}
