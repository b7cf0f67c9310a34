package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/store"
	"github.com/TechTreck-2/petruzdroba/store/sqlite"
	"github.com/TechTreck-2/petruzdroba/vacation"
	"github.com/TechTreck-2/petruzdroba/worklog"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRequest(employeeID int64, day time.Time) leave.LeaveRequest {
	start := time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, time.UTC)
	return leave.LeaveRequest{
		EmployeeID:  employeeID,
		Date:        day,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Description: "Medical",
		Status:      leave.StatusPending,
		Bucket:      leave.BucketFuture,
	}
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func TestStore_LeaveRequest_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)
	created, err := st.InsertRequest(ctx, sampleRequest(1, day))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := st.Request(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.EmployeeID, got.EmployeeID)
	assert.True(t, got.Date.Equal(day))
	assert.True(t, got.StartTime.Equal(created.StartTime))
	assert.True(t, got.EndTime.Equal(created.EndTime))
	assert.Equal(t, leave.StatusPending, got.Status)
	assert.Equal(t, leave.BucketFuture, got.Bucket)

	got.Status = leave.StatusAccepted
	got.Bucket = leave.BucketPast
	require.NoError(t, st.UpdateRequest(ctx, got))

	updated, err := st.Request(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusAccepted, updated.Status)
	assert.Equal(t, leave.BucketPast, updated.Bucket)

	require.NoError(t, st.DeleteRequest(ctx, created.ID))
	_, err = st.Request(ctx, created.ID)
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestStore_LeaveRequest_MissingIDs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.Request(ctx, 404)
	assert.ErrorIs(t, err, leave.ErrNotFound)
	assert.ErrorIs(t, st.UpdateRequest(ctx, leave.LeaveRequest{ID: 404}), leave.ErrNotFound)
	assert.ErrorIs(t, st.DeleteRequest(ctx, 404), leave.ErrNotFound)
}

func TestStore_RequestsByEmployee_OrderedByDate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	later := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)

	_, err := st.InsertRequest(ctx, sampleRequest(1, later))
	require.NoError(t, err)
	_, err = st.InsertRequest(ctx, sampleRequest(1, earlier))
	require.NoError(t, err)
	_, err = st.InsertRequest(ctx, sampleRequest(2, earlier))
	require.NoError(t, err)

	mine, err := st.RequestsByEmployee(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].Date.Before(mine[1].Date))

	all, err := st.AllRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// =============================================================================
// BALANCES + DEBIT RECORDS
// =============================================================================

func TestStore_Balance_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, ok, err := st.RemainingTime(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "untouched employee has no balance row")

	require.NoError(t, st.SetRemainingTime(ctx, 1, leave.NewAmount(7_200_000)))

	got, ok, err := st.RemainingTime(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7_200_000), got.Milliseconds())

	// Upsert replaces
	require.NoError(t, st.SetRemainingTime(ctx, 1, leave.NewAmount(0)))
	got, _, err = st.RemainingTime(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestStore_DebitRecord_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, ok, err := st.DebitRecord(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.PutDebitRecord(ctx, 1, 10, leave.NewAmount(3_600_000)))

	amount, ok, err := st.DebitRecord(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(3_600_000), amount.Milliseconds())

	require.NoError(t, st.DeleteDebitRecord(ctx, 10))
	_, ok, err = st.DebitRecord(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A transaction that writes a balance and inserts a request
	// WHEN: The transaction fn returns an error
	// THEN: Neither write survives

	st := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(s leave.Store) error {
		if err := s.SetRemainingTime(ctx, 1, leave.NewAmount(1)); err != nil {
			return err
		}
		day := time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)
		if _, err := s.InsertRequest(ctx, sampleRequest(1, day)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok, err := st.RemainingTime(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "balance write must roll back")

	all, err := st.AllRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "request insert must roll back")
}

func TestStore_WithTx_CommitsOnSuccess(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.WithTx(ctx, func(s leave.Store) error {
		return s.SetRemainingTime(ctx, 1, leave.NewAmount(42))
	})
	require.NoError(t, err)

	got, ok, err := st.RemainingTime(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), got.Milliseconds())
}

// =============================================================================
// VACATIONS / USERS / WORK SESSIONS
// =============================================================================

func TestStore_Vacation_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.InsertVacation(ctx, vacation.Vacation{
		EmployeeID: 1,
		StartDate:  time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, time.July, 11, 0, 0, 0, 0, time.UTC),
		Status:     vacation.StatusPending,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := st.Vacation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Days())

	got.Status = vacation.StatusAccepted
	require.NoError(t, st.UpdateVacation(ctx, got))

	mine, err := st.VacationsByEmployee(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, vacation.StatusAccepted, mine[0].Status)

	require.NoError(t, st.DeleteVacation(ctx, created.ID))
	_, err = st.Vacation(ctx, created.ID)
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

func TestStore_User_Upsert(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.User(ctx, 1)
	assert.ErrorIs(t, err, leave.ErrNotFound)

	u := store.User{ID: 1, Email: "ana@example.com", Role: "employee", PersonalTime: 6 * time.Hour}
	require.NoError(t, st.SaveUser(ctx, u))

	got, err := st.User(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	u.Email = "ana.pop@example.com"
	require.NoError(t, st.SaveUser(ctx, u))
	got, err = st.User(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ana.pop@example.com", got.Email)
}

func TestStore_WorkSessions_UpsertPerDay(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	clockIn := time.Date(2025, time.June, 17, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveSession(ctx, worklog.Session{EmployeeID: 1, Date: clockIn, Worked: 4 * time.Hour}))

	// Same day again replaces the row
	require.NoError(t, st.SaveSession(ctx, worklog.Session{EmployeeID: 1, Date: clockIn, Worked: 8 * time.Hour}))

	from, to := worklog.MonthRange(2025, time.June)
	sessions, err := st.SessionsInRange(ctx, 1, from, to)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 8*time.Hour, sessions[0].Worked)

	// Other employees and other months are excluded
	sessions, err = st.SessionsInRange(ctx, 2, from, to)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
