package approval_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechTreck-2/petruzdroba/approval"
	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/store"
	"github.com/TechTreck-2/petruzdroba/store/memory"
	"github.com/TechTreck-2/petruzdroba/vacation"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var today = time.Date(2025, time.June, 16, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return today }

func newTestAggregator(t *testing.T) (*approval.Aggregator, *leave.Engine, *memory.Memory) {
	t.Helper()
	mem := memory.New()
	engine := leave.NewEngine(mem, leave.WithClock(clock))
	vacations := vacation.NewService(mem, clock)
	agg := approval.NewAggregator(engine, vacations, mem, clock)
	return agg, engine, mem
}

func slip(employeeID int64, day time.Time, hrs int) leave.LeaveRequest {
	start := time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, time.UTC)
	return leave.LeaveRequest{
		EmployeeID:  employeeID,
		Date:        day,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(hrs) * time.Hour),
		Description: "Medical",
	}
}

func mustAdd(t *testing.T, engine *leave.Engine, r leave.LeaveRequest) leave.LeaveRequest {
	t.Helper()
	created, err := engine.AddRequest(context.Background(), r)
	require.NoError(t, err)
	return created
}

// =============================================================================
// PARTITIONS
// =============================================================================

func TestAggregator_Refresh_PartitionsByPending(t *testing.T) {
	// GIVEN: One pending and one denied leave request, one pending and one
	//        accepted vacation
	// WHEN: Refreshing the queue
	// THEN: Pending and completed partitions split accordingly

	agg, engine, mem := newTestAggregator(t)
	ctx := context.Background()

	p := mustAdd(t, engine, slip(1, today.AddDate(0, 0, 1), 2))
	d := mustAdd(t, engine, slip(2, today.AddDate(0, 0, 2), 2))
	_, err := engine.Deny(ctx, d.ID)
	require.NoError(t, err)

	_, err = mem.InsertVacation(ctx, vacation.Vacation{
		EmployeeID: 1,
		StartDate:  today.AddDate(0, 0, 7),
		EndDate:    today.AddDate(0, 0, 9),
		Status:     vacation.StatusPending,
	})
	require.NoError(t, err)
	_, err = mem.InsertVacation(ctx, vacation.Vacation{
		EmployeeID: 2,
		StartDate:  today.AddDate(0, 0, 14),
		EndDate:    today.AddDate(0, 0, 15),
		Status:     vacation.StatusAccepted,
	})
	require.NoError(t, err)

	require.NoError(t, agg.Refresh(ctx))

	pending := agg.PendingLeaves()
	require.Len(t, pending, 1)
	assert.Equal(t, p.ID, pending[0].Request.ID)

	completed := agg.CompletedLeaves()
	require.Len(t, completed, 1)
	assert.Equal(t, d.ID, completed[0].Request.ID)

	assert.Len(t, agg.PendingVacations(), 1)
	assert.Len(t, agg.CompletedVacations(), 1)
}

// =============================================================================
// FILTERS
// =============================================================================

func TestFilterLeaves_DateEndBoundaryIsInclusive(t *testing.T) {
	// GIVEN: Requests dated June 17, 18, and 19
	// WHEN: Filtering June 17 - June 18
	// THEN: June 18 (the end date) is included, June 19 is not

	agg, engine, _ := newTestAggregator(t)
	ctx := context.Background()

	mustAdd(t, engine, slip(1, today.AddDate(0, 0, 1), 1))
	mustAdd(t, engine, slip(1, today.AddDate(0, 0, 2), 1))
	mustAdd(t, engine, slip(1, today.AddDate(0, 0, 3), 1))
	require.NoError(t, agg.Refresh(ctx))

	filter := approval.DateFilter{
		StartDate: today.AddDate(0, 0, 1),
		EndDate:   today.AddDate(0, 0, 2),
	}
	out := approval.FilterLeaves(agg.PendingLeaves(), filter, approval.StatusFilter{})
	assert.Len(t, out, 2)
}

func TestFilterLeaves_StatusAllAndCaseInsensitive(t *testing.T) {
	agg, engine, _ := newTestAggregator(t)
	ctx := context.Background()

	a := mustAdd(t, engine, slip(1, today.AddDate(0, 0, 1), 1))
	b := mustAdd(t, engine, slip(1, today.AddDate(0, 0, 2), 1))
	_, err := engine.Accept(ctx, a.ID)
	require.NoError(t, err)
	_, err = engine.Deny(ctx, b.ID)
	require.NoError(t, err)
	require.NoError(t, agg.Refresh(ctx))

	completed := agg.CompletedLeaves()
	require.Len(t, completed, 2)

	all := approval.FilterLeaves(completed, approval.DateFilter{}, approval.StatusFilter{Status: "ALL"})
	assert.Len(t, all, 2)

	denied := approval.FilterLeaves(completed, approval.DateFilter{}, approval.StatusFilter{Status: "DENIED"})
	require.Len(t, denied, 1)
	assert.Equal(t, b.ID, denied[0].Request.ID)
}

// =============================================================================
// ACCEPTABILITY CACHE
// =============================================================================

func TestAggregator_IsAcceptable(t *testing.T) {
	// GIVEN: Employee 1 with 6h: a pending 4h and a pending 5h request
	// WHEN: Refreshing
	// THEN: Both fit the full balance individually, so both are acceptable;
	//       after accepting the 4h one, a refresh marks the 5h one not

	agg, engine, _ := newTestAggregator(t)
	ctx := context.Background()

	four := mustAdd(t, engine, slip(1, today.AddDate(0, 0, 1), 4))
	five := mustAdd(t, engine, slip(1, today.AddDate(0, 0, 2), 5))
	require.NoError(t, agg.Refresh(ctx))

	assert.True(t, agg.IsAcceptable(four))
	assert.True(t, agg.IsAcceptable(five))

	require.NoError(t, agg.AcceptLeave(ctx, four.ID))

	// AcceptLeave refreshed: only 2h remain, 5h no longer fits
	assert.False(t, agg.IsAcceptable(five))
}

func TestAggregator_IsAcceptable_PastDateAlwaysFalse(t *testing.T) {
	agg, _, _ := newTestAggregator(t)

	past := slip(1, today.AddDate(0, 0, -1), 1)
	past.ID = 7
	assert.False(t, agg.IsAcceptable(past))
}

func TestAggregator_IsAcceptable_UnknownDefaultsTrue(t *testing.T) {
	// A request absent from the cache defaults to acceptable; the accept
	// operation itself re-validates atomically.
	agg, _, _ := newTestAggregator(t)

	unknown := slip(1, today.AddDate(0, 0, 1), 1)
	unknown.ID = 99
	assert.True(t, agg.IsAcceptable(unknown))
}

// =============================================================================
// EMAIL CACHE
// =============================================================================

func TestAggregator_EmployeeEmail_LoadingSentinelThenCached(t *testing.T) {
	// GIVEN: A user on file but not yet cached
	// WHEN: Asking for the email
	// THEN: The first call returns the sentinel and kicks off a fetch;
	//       once resolved, the cached address is returned

	agg, _, mem := newTestAggregator(t)
	ctx := context.Background()

	require.NoError(t, mem.SaveUser(ctx, store.User{ID: 1, Email: "ana@example.com", Role: "employee"}))

	first := agg.EmployeeEmail(1)
	assert.Equal(t, approval.EmailLoading, first)

	// Blocking resolve shares the outstanding fetch and fills the cache
	email, err := agg.ResolveEmail(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", email)

	assert.Eventually(t, func() bool {
		return agg.EmployeeEmail(1) == "ana@example.com"
	}, time.Second, 10*time.Millisecond)
}

func TestAggregator_ResolveEmail_MissingUser(t *testing.T) {
	agg, _, _ := newTestAggregator(t)

	_, err := agg.ResolveEmail(context.Background(), 404)
	assert.ErrorIs(t, err, leave.ErrNotFound)
}

// =============================================================================
// MANAGER ACTIONS
// =============================================================================

func TestAggregator_AcceptLeave_MovesRowToCompleted(t *testing.T) {
	agg, engine, _ := newTestAggregator(t)
	ctx := context.Background()

	created := mustAdd(t, engine, slip(1, today.AddDate(0, 0, 1), 2))
	require.NoError(t, agg.Refresh(ctx))
	require.Len(t, agg.PendingLeaves(), 1)

	require.NoError(t, agg.AcceptLeave(ctx, created.ID))
	assert.Empty(t, agg.PendingLeaves())
	require.Len(t, agg.CompletedLeaves(), 1)
	assert.Equal(t, leave.StatusAccepted, agg.CompletedLeaves()[0].Request.Status)

	require.NoError(t, agg.UndoLeave(ctx, created.ID))
	assert.Len(t, agg.PendingLeaves(), 1)
}

func TestAggregator_AcceptLeave_InsufficientBalance_Surfaces(t *testing.T) {
	// GIVEN: 2h remaining and a pending 3h request
	// WHEN: The manager accepts it
	// THEN: The error surfaces and the row stays pending

	agg, engine, _ := newTestAggregator(t)
	ctx := context.Background()

	big := mustAdd(t, engine, slip(1, today.AddDate(0, 0, 1), 4))
	small := mustAdd(t, engine, slip(1, today.AddDate(0, 0, 2), 3))
	require.NoError(t, agg.Refresh(ctx))
	require.NoError(t, agg.AcceptLeave(ctx, big.ID))

	err := agg.AcceptLeave(ctx, small.ID)
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	found := false
	for _, row := range agg.PendingLeaves() {
		if row.Request.ID == small.ID {
			found = true
		}
	}
	assert.True(t, found, "failed accept must leave the row pending")
}

func TestAggregator_VacationActions(t *testing.T) {
	agg, _, mem := newTestAggregator(t)
	ctx := context.Background()

	v, err := mem.InsertVacation(ctx, vacation.Vacation{
		EmployeeID: 1,
		StartDate:  today.AddDate(0, 0, 7),
		EndDate:    today.AddDate(0, 0, 9),
		Status:     vacation.StatusPending,
	})
	require.NoError(t, err)
	require.NoError(t, agg.Refresh(ctx))

	require.NoError(t, agg.AcceptVacation(ctx, v.ID))
	require.Len(t, agg.CompletedVacations(), 1)
	assert.Equal(t, vacation.StatusAccepted, agg.CompletedVacations()[0].Vacation.Status)

	require.NoError(t, agg.UndoVacation(ctx, v.ID))
	assert.Len(t, agg.PendingVacations(), 1)

	require.NoError(t, agg.RejectVacation(ctx, v.ID))
	assert.Equal(t, vacation.StatusDenied, agg.CompletedVacations()[0].Vacation.Status)
}
