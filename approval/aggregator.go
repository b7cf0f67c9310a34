/*
Package approval is the manager-facing read model: it merges every
employee's leave requests and vacations into one reviewable queue,
partitions it into pending/completed, applies date and status filters,
and answers "can this request be accepted right now?" without re-querying
the ledger per row.

CACHES:
  - Acceptability: computed once per employee per refresh pass and keyed
    (employeeID, requestID). Invalidated and recomputed on every mutation
    (accept/reject/undo) before the aggregator returns, so a stale "yes"
    can never follow a balance change.
  - Employee e-mails: TTL cache (patrickmn/go-cache) fed by a
    single-flight fetch per employee id - concurrent callers for the same
    id share one outstanding directory lookup. Until the fetch resolves,
    EmployeeEmail returns the EmailLoading sentinel.
*/
package approval

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/store"
	"github.com/TechTreck-2/petruzdroba/vacation"
)

// EmailLoading is returned while a directory fetch is still outstanding.
const EmailLoading = "Loading..."

// LeaveWithUser pairs a leave request with its owner for queue rows.
type LeaveWithUser struct {
	EmployeeID int64
	Request    leave.LeaveRequest
}

// VacationWithUser pairs a vacation with its owner for queue rows.
type VacationWithUser struct {
	EmployeeID int64
	Vacation   vacation.Vacation
}

type validityKey struct {
	employeeID int64
	requestID  int64
}

// Aggregator holds the manager-scope snapshot and its caches.
type Aggregator struct {
	engine    *leave.Engine
	vacations *vacation.Service
	src       store.Store
	clock     func() time.Time

	mu       sync.RWMutex
	leaves   []leave.LeaveRequest
	vacs     []vacation.Vacation
	validity map[validityKey]bool

	emails *gocache.Cache
	fetch  singleflight.Group
}

func NewAggregator(engine *leave.Engine, vacations *vacation.Service, src store.Store, clock func() time.Time) *Aggregator {
	if clock == nil {
		clock = time.Now
	}
	return &Aggregator{
		engine:    engine,
		vacations: vacations,
		src:       src,
		clock:     clock,
		validity:  make(map[validityKey]bool),
		emails:    gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// =============================================================================
// REFRESH - Rebuild the snapshot and the acceptability cache
// =============================================================================

// Refresh reloads all leave requests and vacations and recomputes the
// acceptability cache, querying each employee's remaining time exactly once
// per pass regardless of how many pending requests they have.
func (a *Aggregator) Refresh(ctx context.Context) error {
	leaves, err := a.src.AllRequests(ctx)
	if err != nil {
		return err
	}
	vacs, err := a.src.AllVacations(ctx)
	if err != nil {
		return err
	}

	remaining := make(map[int64]leave.Amount)
	validity := make(map[validityKey]bool)
	for _, r := range leaves {
		if r.Status != leave.StatusPending {
			continue
		}
		rem, ok := remaining[r.EmployeeID]
		if !ok {
			rem, err = a.engine.Remaining(ctx, r.EmployeeID)
			if err != nil {
				return err
			}
			remaining[r.EmployeeID] = rem
		}
		validity[validityKey{r.EmployeeID, r.ID}] = rem.GreaterThanOrEqual(r.Duration())
	}

	a.mu.Lock()
	a.leaves = leaves
	a.vacs = vacs
	a.validity = validity
	a.mu.Unlock()
	return nil
}

// =============================================================================
// QUEUE VIEWS
// =============================================================================

// PendingLeaves returns all leave requests still awaiting a decision.
func (a *Aggregator) PendingLeaves() []LeaveWithUser {
	return a.partitionLeaves(true)
}

// CompletedLeaves returns every leave request that is no longer pending.
func (a *Aggregator) CompletedLeaves() []LeaveWithUser {
	return a.partitionLeaves(false)
}

func (a *Aggregator) partitionLeaves(pending bool) []LeaveWithUser {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []LeaveWithUser
	for _, r := range a.leaves {
		if (r.Status == leave.StatusPending) == pending {
			out = append(out, LeaveWithUser{EmployeeID: r.EmployeeID, Request: r})
		}
	}
	return out
}

// PendingVacations returns all vacations still awaiting a decision.
func (a *Aggregator) PendingVacations() []VacationWithUser {
	return a.partitionVacations(true)
}

// CompletedVacations returns every vacation that is no longer pending.
func (a *Aggregator) CompletedVacations() []VacationWithUser {
	return a.partitionVacations(false)
}

func (a *Aggregator) partitionVacations(pending bool) []VacationWithUser {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []VacationWithUser
	for _, v := range a.vacs {
		if (v.Status == vacation.StatusPending) == pending {
			out = append(out, VacationWithUser{EmployeeID: v.EmployeeID, Vacation: v})
		}
	}
	return out
}

// FilterLeaves applies date and status filters to queue rows. The date
// filter is inclusive on the request's date with the end boundary treated
// as end-of-day.
func FilterLeaves(items []LeaveWithUser, dates DateFilter, status StatusFilter) []LeaveWithUser {
	var out []LeaveWithUser
	for _, it := range items {
		if !dates.Contains(it.Request.Date) || !status.Matches(string(it.Request.Status)) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// FilterVacations applies date and status filters on the vacation start date.
func FilterVacations(items []VacationWithUser, dates DateFilter, status StatusFilter) []VacationWithUser {
	var out []VacationWithUser
	for _, it := range items {
		if !dates.Contains(it.Vacation.StartDate) || !status.Matches(string(it.Vacation.Status)) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// =============================================================================
// ACCEPTABILITY
// =============================================================================

// IsAcceptable reports whether a pending request could be accepted right
// now: never for past-dated requests, otherwise from the acceptability
// cache computed on the last refresh. An unknown request defaults to
// acceptable; the accept operation itself re-validates atomically.
func (a *Aggregator) IsAcceptable(r leave.LeaveRequest) bool {
	if leave.DayOf(r.Date).Before(leave.DayOf(a.clock())) {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if valid, ok := a.validity[validityKey{r.EmployeeID, r.ID}]; ok {
		return valid
	}
	return true
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// EmployeeEmail returns the employee's e-mail from cache, or the
// EmailLoading sentinel while a (de-duplicated) background fetch runs.
func (a *Aggregator) EmployeeEmail(employeeID int64) string {
	key := strconv.FormatInt(employeeID, 10)
	if v, ok := a.emails.Get(key); ok {
		return v.(string)
	}
	go a.fetchEmail(employeeID, key)
	return EmailLoading
}

// ResolveEmail blocks until the directory lookup completes. Concurrent
// callers for the same employee share one outstanding fetch.
func (a *Aggregator) ResolveEmail(ctx context.Context, employeeID int64) (string, error) {
	key := strconv.FormatInt(employeeID, 10)
	if v, ok := a.emails.Get(key); ok {
		return v.(string), nil
	}
	email, err, _ := a.fetch.Do(key, func() (any, error) {
		u, err := a.src.User(ctx, employeeID)
		if err != nil {
			return nil, err
		}
		a.emails.SetDefault(key, u.Email)
		return u.Email, nil
	})
	if err != nil {
		return "", err
	}
	return email.(string), nil
}

func (a *Aggregator) fetchEmail(employeeID int64, key string) {
	_, _, _ = a.fetch.Do(key, func() (any, error) {
		u, err := a.src.User(context.Background(), employeeID)
		if err != nil {
			return nil, err
		}
		a.emails.SetDefault(key, u.Email)
		return u.Email, nil
	})
}

// =============================================================================
// MANAGER ACTIONS - Delegate, then refresh before returning
// =============================================================================

// AcceptLeave accepts a pending leave request, then refreshes the snapshot
// and invalidates caches before returning.
func (a *Aggregator) AcceptLeave(ctx context.Context, requestID int64) error {
	if _, err := a.engine.Accept(ctx, requestID); err != nil {
		return err
	}
	return a.Refresh(ctx)
}

// RejectLeave denies a pending leave request.
func (a *Aggregator) RejectLeave(ctx context.Context, requestID int64) error {
	if _, err := a.engine.Deny(ctx, requestID); err != nil {
		return err
	}
	return a.Refresh(ctx)
}

// UndoLeave reverses a manager decision back to pending.
func (a *Aggregator) UndoLeave(ctx context.Context, requestID int64) error {
	if _, err := a.engine.Undo(ctx, requestID); err != nil {
		return err
	}
	return a.Refresh(ctx)
}

// AcceptVacation accepts a vacation.
func (a *Aggregator) AcceptVacation(ctx context.Context, vacationID int64) error {
	if _, err := a.vacations.SetStatus(ctx, vacationID, vacation.StatusAccepted); err != nil {
		return err
	}
	return a.Refresh(ctx)
}

// RejectVacation denies a vacation.
func (a *Aggregator) RejectVacation(ctx context.Context, vacationID int64) error {
	if _, err := a.vacations.SetStatus(ctx, vacationID, vacation.StatusDenied); err != nil {
		return err
	}
	return a.Refresh(ctx)
}

// UndoVacation puts a decided vacation back to pending.
func (a *Aggregator) UndoVacation(ctx context.Context, vacationID int64) error {
	if _, err := a.vacations.SetStatus(ctx, vacationID, vacation.StatusPending); err != nil {
		return err
	}
	return a.Refresh(ctx)
}
