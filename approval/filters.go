package approval

import (
	"strings"
	"time"

	"github.com/TechTreck-2/petruzdroba/leave"
)

// DateFilter is an inclusive date range. The zero value means "all dates".
type DateFilter struct {
	StartDate time.Time
	EndDate   time.Time
}

// IsZero reports whether the filter matches everything.
func (f DateFilter) IsZero() bool {
	return f.StartDate.IsZero() && f.EndDate.IsZero()
}

// Contains reports whether d falls in the range. The end boundary is
// treated as end-of-day: a request dated anywhere on EndDate matches.
func (f DateFilter) Contains(d time.Time) bool {
	if f.IsZero() {
		return true
	}
	day := leave.DayOf(d)
	return !day.Before(leave.DayOf(f.StartDate)) && day.Before(leave.DayOf(f.EndDate).AddDate(0, 0, 1))
}

// StatusAll is the StatusFilter sentinel matching every status.
const StatusAll = "all"

// StatusFilter matches a single status, case-insensitively, or all.
type StatusFilter struct {
	Status string
}

// Matches reports whether the given status passes the filter.
func (f StatusFilter) Matches(status string) bool {
	if f.Status == "" || strings.EqualFold(f.Status, StatusAll) {
		return true
	}
	return strings.EqualFold(f.Status, status)
}
