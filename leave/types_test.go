package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechTreck-2/petruzdroba/leave"
)

func TestParseStatus_CaseInsensitive(t *testing.T) {
	// Upstream data carries both lowercase and uppercase spellings.
	cases := map[string]leave.Status{
		"pending":   leave.StatusPending,
		"PENDING":   leave.StatusPending,
		" pending ": leave.StatusPending,
		"Accepted":  leave.StatusAccepted,
		"ACCEPTED":  leave.StatusAccepted,
		"denied":    leave.StatusDenied,
		"IGNORED":   leave.StatusIgnored,
	}
	for in, want := range cases {
		got, err := leave.ParseStatus(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := leave.ParseStatus("approved")
	assert.Error(t, err)
}

func TestComposeDescription_OtherCarriesReason(t *testing.T) {
	assert.Equal(t, "Other dentist appointment",
		leave.ComposeDescription("Other", "dentist appointment"))
	assert.Equal(t, "Medical", leave.ComposeDescription("Medical", "ignored"))

	kind, reason := leave.SplitDescription("Other dentist appointment")
	assert.Equal(t, "Other", kind)
	assert.Equal(t, "dentist appointment", reason)

	kind, reason = leave.SplitDescription("Medical")
	assert.Equal(t, "Medical", kind)
	assert.Empty(t, reason)
}

func TestAmount_UnitsAndArithmetic(t *testing.T) {
	twoHours := leave.NewAmount(7_200_000)

	assert.Equal(t, int64(7_200_000), twoHours.Milliseconds())
	assert.Equal(t, 2*time.Hour, twoHours.Duration())
	assert.Equal(t, "2", twoHours.In(leave.UnitHours).String())
	assert.Equal(t, "120", twoHours.In(leave.UnitMinutes).String())

	half := leave.NewAmount(3_600_000)
	assert.Equal(t, half, twoHours.Sub(half))
	assert.True(t, half.LessThan(twoHours))
	assert.True(t, twoHours.Sub(twoHours).IsZero())
}

func TestLeaveRequest_DurationAndValidation(t *testing.T) {
	start := time.Date(2025, time.June, 17, 10, 0, 0, 0, time.UTC)
	r := leave.LeaveRequest{StartTime: start, EndTime: start.Add(90 * time.Minute)}

	assert.Equal(t, int64(5_400_000), r.Duration().Milliseconds())
	assert.NoError(t, r.ValidateTimeRange())

	r.EndTime = start
	assert.ErrorIs(t, r.ValidateTimeRange(), leave.ErrInvalidTimeRange)

	r.EndTime = start.Add(-time.Hour)
	assert.ErrorIs(t, r.ValidateTimeRange(), leave.ErrInvalidTimeRange)
}
