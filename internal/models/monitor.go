package models

import "time"

// Monitor frequency values.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// ValidFrequency reports whether f is a supported monitor frequency.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Monitor represents a saved recurring search with a next-due timestamp.
// NextRunAt is advanced only by the scheduler; executors never write it.
type Monitor struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Query     string    `json:"query"`
	Frequency string    `json:"frequency"` // daily, weekly, monthly
	NextRunAt time.Time `json:"next_run_at"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
