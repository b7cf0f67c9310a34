package vacation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TechTreck-2/petruzdroba/vacation"
	"github.com/TechTreck-2/petruzdroba/worklog"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func accepted(start, end time.Time) vacation.Vacation {
	return vacation.Vacation{EmployeeID: 1, StartDate: start, EndDate: end, Status: vacation.StatusAccepted}
}

// =============================================================================
// DAY SPANS
// =============================================================================

func TestDaysBetween_Inclusive(t *testing.T) {
	jan10 := day(2025, time.January, 10)

	assert.Equal(t, 1, vacation.DaysBetween(jan10, jan10), "same day counts as 1")
	assert.Equal(t, 3, vacation.DaysBetween(jan10, day(2025, time.January, 12)))
	assert.Equal(t, 0, vacation.DaysBetween(jan10, day(2025, time.January, 9)), "reversed range is 0")

	// Wall clock must not matter
	morning := time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)
	night := time.Date(2025, time.January, 12, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 3, vacation.DaysBetween(morning, night))
}

func TestOverlapWithMonth_CreditsStartingMonthOnly(t *testing.T) {
	// GIVEN: A vacation from Jan 30 to Feb 5
	// WHEN: Computing its overlap with January and with February
	// THEN: January gets 2 days, February gets 0

	v := accepted(day(2025, time.January, 30), day(2025, time.February, 5))

	assert.Equal(t, 2, vacation.OverlapWithMonth(v, 2025, time.January))
	assert.Equal(t, 0, vacation.OverlapWithMonth(v, 2025, time.February))
}

func TestOverlapWithMonth_FullyInsideMonth(t *testing.T) {
	v := accepted(day(2025, time.March, 10), day(2025, time.March, 14))

	assert.Equal(t, 5, vacation.OverlapWithMonth(v, 2025, time.March))
	assert.Equal(t, 0, vacation.OverlapWithMonth(v, 2025, time.April))
	assert.Equal(t, 0, vacation.OverlapWithMonth(v, 2024, time.March), "wrong year never matches")
}

// =============================================================================
// NEXT UPCOMING VACATION
// =============================================================================

func TestNextUpcomingAccepted_None(t *testing.T) {
	now := day(2025, time.June, 16)

	assert.Equal(t, "-", vacation.NextUpcomingAccepted(nil, now))

	// Pending and past vacations never qualify
	vs := []vacation.Vacation{
		{StartDate: day(2025, time.July, 1), EndDate: day(2025, time.July, 3), Status: vacation.StatusPending},
		accepted(day(2025, time.May, 1), day(2025, time.May, 3)),
	}
	assert.Equal(t, "-", vacation.NextUpcomingAccepted(vs, now))
}

func TestNextUpcomingAccepted_SingleDay(t *testing.T) {
	now := day(2025, time.June, 16)
	vs := []vacation.Vacation{accepted(day(2025, time.July, 4), day(2025, time.July, 4))}

	assert.Equal(t, "Fri, July 4, 2025 (1 day)", vacation.NextUpcomingAccepted(vs, now))
}

func TestNextUpcomingAccepted_RangePicksEarliest(t *testing.T) {
	now := day(2025, time.June, 16)
	vs := []vacation.Vacation{
		accepted(day(2025, time.August, 1), day(2025, time.August, 10)),
		accepted(day(2025, time.July, 7), day(2025, time.July, 11)),
	}

	assert.Equal(t, "Mon, July 7, 2025 -> Fri, July 11, 2025 (5 days)",
		vacation.NextUpcomingAccepted(vs, now))
}

// =============================================================================
// UNWORKED DAYS
// =============================================================================

func TestUnworkedDaysThisMonth(t *testing.T) {
	// June 2025: 30 days, 9 weekend days -> 21 workable days.
	// now = June 16. Sessions: June 2 (8h, counts), June 3 (10 min, below
	// threshold), June 20 (8h, after today, skipped).
	// Accepted vacation June 9-10 -> 2 days.
	// Expected: 21 - 1 worked - 2 vacation = 18.

	now := time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC)

	sessions := []worklog.Session{
		{EmployeeID: 1, Date: day(2025, time.June, 2), Worked: 8 * time.Hour},
		{EmployeeID: 1, Date: day(2025, time.June, 3), Worked: 10 * time.Minute},
		{EmployeeID: 1, Date: day(2025, time.June, 20), Worked: 8 * time.Hour},
	}
	vacations := []vacation.Vacation{
		accepted(day(2025, time.June, 9), day(2025, time.June, 10)),
	}

	assert.Equal(t, 18, vacation.UnworkedDaysThisMonth(sessions, vacations, now))
}

func TestUnworkedDaysThisMonth_ThresholdBoundary(t *testing.T) {
	// Exactly 20 minutes counts as worked.
	now := time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC)

	sessions := []worklog.Session{
		{EmployeeID: 1, Date: day(2025, time.June, 4), Worked: 20 * time.Minute},
	}

	base := vacation.UnworkedDaysThisMonth(nil, nil, now)
	assert.Equal(t, base-1, vacation.UnworkedDaysThisMonth(sessions, nil, now))
}
