// Package schedule computes monitor next-run times from their frequency.
package schedule

import (
	"fmt"
	"time"

	"github.com/crucial707/threatwatch/internal/models"
)

// Fixed intervals per frequency. Monthly is a flat 30 days rather than a
// calendar month, so next_run_at arithmetic stays timezone-independent.
const (
	dayInterval   = 24 * time.Hour
	weekInterval  = 7 * dayInterval
	monthInterval = 30 * dayInterval
)

// Interval returns the scan interval for a frequency.
func Interval(frequency string) (time.Duration, error) {
	switch frequency {
	case models.FrequencyDaily:
		return dayInterval, nil
	case models.FrequencyWeekly:
		return weekInterval, nil
	case models.FrequencyMonthly:
		return monthInterval, nil
	}
	return 0, fmt.Errorf("unsupported frequency: %q", frequency)
}

// NextRun advances lastRun by the frequency's interval until the result is
// strictly after now. Advancing from the previous next_run_at (instead of
// from now) keeps a monitor's cadence anchored to its original schedule even
// when ticks are delayed; the catch-up loop prevents a monitor that missed
// many cycles from staying permanently due.
func NextRun(frequency string, lastRun, now time.Time) (time.Time, error) {
	interval, err := Interval(frequency)
	if err != nil {
		return time.Time{}, err
	}
	next := lastRun.UTC()
	now = now.UTC()
	for !next.After(now) {
		next = next.Add(interval)
	}
	return next, nil
}

// FirstRun returns the initial next_run_at for a newly created monitor:
// one full interval from now, strictly in the future.
func FirstRun(frequency string, now time.Time) (time.Time, error) {
	interval, err := Interval(frequency)
	if err != nil {
		return time.Time{}, err
	}
	return now.UTC().Add(interval), nil
}
