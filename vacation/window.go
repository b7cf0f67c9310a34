/*
window.go - Day-span accounting against monthly reporting windows

PURPOSE:
  Pure functions reconciling vacation day-ranges with calendar months,
  consumed by dashboard reporting. No state, no I/O.

MONTH ATTRIBUTION:
  A vacation is credited only toward the month in which it BEGINS, even
  when it extends into the next month; the overlap is capped at the
  starting month's last day and never extended backward. A vacation from
  Jan 30 to Feb 5 contributes 2 days to January and 0 to February. This
  undercounts the later month on purpose - it mirrors how the payroll
  window was defined upstream and is a product decision, not a bug.
*/
package vacation

import (
	"fmt"
	"time"

	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/worklog"
)

// DaysBetween returns the inclusive day count between two dates
// (same day = 1). Returns 0 when b is before a.
func DaysBetween(a, b time.Time) int {
	from, to := leave.DayOf(a), leave.DayOf(b)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// lastDayOfMonth returns the last calendar day of a month.
func lastDayOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// OverlapWithMonth returns how many of the vacation's days fall in the
// given month, attributing the vacation only to its starting month. The
// overlap is capped at the month's last day.
func OverlapWithMonth(v Vacation, year int, month time.Month) int {
	start := leave.DayOf(v.StartDate)
	if start.Year() != year || start.Month() != month {
		return 0
	}
	end := leave.DayOf(v.EndDate)
	if monthEnd := lastDayOfMonth(year, month); end.After(monthEnd) {
		end = monthEnd
	}
	return DaysBetween(start, end)
}

// NoUpcomingVacation is the sentinel returned when no accepted vacation
// lies in the future.
const NoUpcomingVacation = "-"

const upcomingDateFormat = "Mon, January 2, 2006"

// NextUpcomingAccepted returns the accepted vacation with the earliest
// start date still in the future, formatted for display: a single date for
// one-day vacations, otherwise a start -> end range with the day count.
// Returns NoUpcomingVacation when there is none.
func NextUpcomingAccepted(vacations []Vacation, now time.Time) string {
	var next *Vacation
	for i := range vacations {
		v := vacations[i]
		if v.Status != StatusAccepted || !v.StartDate.After(now) {
			continue
		}
		if next == nil || v.StartDate.Before(next.StartDate) {
			next = &v
		}
	}
	if next == nil {
		return NoUpcomingVacation
	}

	start, end := leave.DayOf(next.StartDate), leave.DayOf(next.EndDate)
	if start.Equal(end) {
		return fmt.Sprintf("%s (1 day)", start.Format(upcomingDateFormat))
	}
	return fmt.Sprintf("%s -> %s (%d days)",
		start.Format(upcomingDateFormat),
		end.Format(upcomingDateFormat),
		DaysBetween(start, end))
}

// AcceptedDaysInMonth totals OverlapWithMonth over accepted vacations.
func AcceptedDaysInMonth(vacations []Vacation, year int, month time.Month) int {
	total := 0
	for _, v := range vacations {
		if v.Status == StatusAccepted {
			total += OverlapWithMonth(v, year, month)
		}
	}
	return total
}

// UnworkedDaysThisMonth is the dashboard metric: days in the current month,
// minus weekend days, minus each day up to today with a logged session that
// meets the worked threshold, minus accepted vacation days starting this
// month. Derived on demand, never persisted.
func UnworkedDaysThisMonth(sessions []worklog.Session, vacations []Vacation, now time.Time) int {
	year, month := now.Year(), now.Month()
	monthEnd := lastDayOfMonth(year, month)

	unworked := monthEnd.Day()
	for day := 1; day <= monthEnd.Day(); day++ {
		wd := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			unworked--
		}
	}

	for _, s := range sessions {
		if s.Date.Year() != year || s.Date.Month() != month || s.Date.Day() > now.Day() {
			continue
		}
		if s.CountsAsWorked() {
			unworked--
		}
	}

	return unworked - AcceptedDaysInMonth(vacations, year, month)
}
