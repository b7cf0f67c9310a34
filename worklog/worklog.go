// Package worklog tracks per-employee work sessions. Sessions feed the
// dashboard's unworked-days metric and the monthly CSV report.
package worklog

import (
	"context"
	"time"
)

// MinWorkedPerDay is the threshold above which a day counts as worked.
const MinWorkedPerDay = 20 * time.Minute

// Session is one logged work session: a clock-in instant and the time
// worked from it. One session per employee per calendar day.
type Session struct {
	EmployeeID int64
	Date       time.Time // clock-in instant
	Worked     time.Duration
}

// CountsAsWorked reports whether the session meets the worked-day threshold.
func (s Session) CountsAsWorked() bool {
	return s.Worked >= MinWorkedPerDay
}

// Store persists work sessions.
type Store interface {
	// SaveSession upserts the session for (employee, calendar day).
	SaveSession(ctx context.Context, s Session) error

	// SessionsInRange returns sessions with Date in [from, to], ordered by Date.
	SessionsInRange(ctx context.Context, employeeID int64, from, to time.Time) ([]Session, error)
}

// MonthRange returns the [start, end] instants bounding a calendar month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
