/*
Package memory provides an in-memory Store implementation for tests and
development.

TRANSACTIONS:
  WithTx is simulated with a deep snapshot taken under the write lock; if
  fn fails, the snapshot is restored, so a failed lifecycle operation
  leaves no partial mutation - same contract as the SQLite store.
*/
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/store"
	"github.com/TechTreck-2/petruzdroba/vacation"
	"github.com/TechTreck-2/petruzdroba/worklog"
)

type debitRecord struct {
	employeeID int64
	amount     leave.Amount
}

type sessionKey struct {
	employeeID int64
	day        time.Time
}

// Memory implements store.Store with maps behind a RWMutex.
type Memory struct {
	mu sync.RWMutex

	nextRequestID  int64
	nextVacationID int64

	requests  map[int64]leave.LeaveRequest
	balances  map[int64]leave.Amount
	debits    map[int64]debitRecord
	vacations map[int64]vacation.Vacation
	users     map[int64]store.User
	sessions  map[sessionKey]worklog.Session
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		nextRequestID:  1,
		nextVacationID: 1,
		requests:       make(map[int64]leave.LeaveRequest),
		balances:       make(map[int64]leave.Amount),
		debits:         make(map[int64]debitRecord),
		vacations:      make(map[int64]vacation.Vacation),
		users:          make(map[int64]store.User),
		sessions:       make(map[sessionKey]worklog.Session),
	}
}

// =============================================================================
// LEAVE STORE
// =============================================================================

func (m *Memory) RemainingTime(_ context.Context, employeeID int64) (leave.Amount, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.remainingLocked(employeeID)
}

func (m *Memory) remainingLocked(employeeID int64) (leave.Amount, bool, error) {
	a, ok := m.balances[employeeID]
	return a, ok, nil
}

func (m *Memory) SetRemainingTime(_ context.Context, employeeID int64, remaining leave.Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setRemainingLocked(employeeID, remaining)
}

func (m *Memory) setRemainingLocked(employeeID int64, remaining leave.Amount) error {
	m.balances[employeeID] = remaining
	return nil
}

func (m *Memory) DebitRecord(_ context.Context, requestID int64) (leave.Amount, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.debitRecordLocked(requestID)
}

func (m *Memory) debitRecordLocked(requestID int64) (leave.Amount, bool, error) {
	rec, ok := m.debits[requestID]
	return rec.amount, ok, nil
}

func (m *Memory) PutDebitRecord(_ context.Context, employeeID, requestID int64, amount leave.Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putDebitRecordLocked(employeeID, requestID, amount)
}

func (m *Memory) putDebitRecordLocked(employeeID, requestID int64, amount leave.Amount) error {
	m.debits[requestID] = debitRecord{employeeID: employeeID, amount: amount}
	return nil
}

func (m *Memory) DeleteDebitRecord(_ context.Context, requestID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteDebitRecordLocked(requestID)
}

func (m *Memory) deleteDebitRecordLocked(requestID int64) error {
	delete(m.debits, requestID)
	return nil
}

func (m *Memory) Request(_ context.Context, id int64) (leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestLocked(id)
}

func (m *Memory) requestLocked(id int64) (leave.LeaveRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return leave.LeaveRequest{}, &leave.NotFoundError{Kind: "leave request", ID: id}
	}
	return r, nil
}

func (m *Memory) RequestsByEmployee(_ context.Context, employeeID int64) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestsByEmployeeLocked(employeeID)
}

func (m *Memory) requestsByEmployeeLocked(employeeID int64) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range m.requests {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	sortRequests(out)
	return out, nil
}

func (m *Memory) AllRequests(_ context.Context) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allRequestsLocked()
}

func (m *Memory) allRequestsLocked() ([]leave.LeaveRequest, error) {
	out := make([]leave.LeaveRequest, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, r)
	}
	sortRequests(out)
	return out, nil
}

func (m *Memory) InsertRequest(_ context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertRequestLocked(r)
}

func (m *Memory) insertRequestLocked(r leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.ID = m.nextRequestID
	m.nextRequestID++
	m.requests[r.ID] = r
	return r, nil
}

func (m *Memory) UpdateRequest(_ context.Context, r leave.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateRequestLocked(r)
}

func (m *Memory) updateRequestLocked(r leave.LeaveRequest) error {
	if _, ok := m.requests[r.ID]; !ok {
		return &leave.NotFoundError{Kind: "leave request", ID: r.ID}
	}
	m.requests[r.ID] = r
	return nil
}

func (m *Memory) DeleteRequest(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteRequestLocked(id)
}

func (m *Memory) deleteRequestLocked(id int64) error {
	if _, ok := m.requests[id]; !ok {
		return &leave.NotFoundError{Kind: "leave request", ID: id}
	}
	delete(m.requests, id)
	return nil
}

func sortRequests(rs []leave.LeaveRequest) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Date.Equal(rs[j].Date) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].Date.Before(rs[j].Date)
	})
}

// =============================================================================
// TRANSACTIONS - Snapshot and restore on failure
// =============================================================================

// WithTx executes fn against an unlocked view while holding the write lock.
// On error, the pre-transaction snapshot is restored.
func (m *Memory) WithTx(_ context.Context, fn func(leave.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshotLocked()
	if err := fn(&txView{parent: m}); err != nil {
		m.restoreLocked(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	nextRequestID int64
	requests      map[int64]leave.LeaveRequest
	balances      map[int64]leave.Amount
	debits        map[int64]debitRecord
}

func (m *Memory) snapshotLocked() memSnapshot {
	s := memSnapshot{
		nextRequestID: m.nextRequestID,
		requests:      make(map[int64]leave.LeaveRequest, len(m.requests)),
		balances:      make(map[int64]leave.Amount, len(m.balances)),
		debits:        make(map[int64]debitRecord, len(m.debits)),
	}
	for k, v := range m.requests {
		s.requests[k] = v
	}
	for k, v := range m.balances {
		s.balances[k] = v
	}
	for k, v := range m.debits {
		s.debits[k] = v
	}
	return s
}

func (m *Memory) restoreLocked(s memSnapshot) {
	m.nextRequestID = s.nextRequestID
	m.requests = s.requests
	m.balances = s.balances
	m.debits = s.debits
}

// txView exposes the locked methods without re-acquiring the mutex.
type txView struct {
	parent *Memory
}

func (v *txView) RemainingTime(_ context.Context, employeeID int64) (leave.Amount, bool, error) {
	return v.parent.remainingLocked(employeeID)
}

func (v *txView) SetRemainingTime(_ context.Context, employeeID int64, remaining leave.Amount) error {
	return v.parent.setRemainingLocked(employeeID, remaining)
}

func (v *txView) DebitRecord(_ context.Context, requestID int64) (leave.Amount, bool, error) {
	return v.parent.debitRecordLocked(requestID)
}

func (v *txView) PutDebitRecord(_ context.Context, employeeID, requestID int64, amount leave.Amount) error {
	return v.parent.putDebitRecordLocked(employeeID, requestID, amount)
}

func (v *txView) DeleteDebitRecord(_ context.Context, requestID int64) error {
	return v.parent.deleteDebitRecordLocked(requestID)
}

func (v *txView) Request(_ context.Context, id int64) (leave.LeaveRequest, error) {
	return v.parent.requestLocked(id)
}

func (v *txView) RequestsByEmployee(_ context.Context, employeeID int64) ([]leave.LeaveRequest, error) {
	return v.parent.requestsByEmployeeLocked(employeeID)
}

func (v *txView) AllRequests(_ context.Context) ([]leave.LeaveRequest, error) {
	return v.parent.allRequestsLocked()
}

func (v *txView) InsertRequest(_ context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	return v.parent.insertRequestLocked(r)
}

func (v *txView) UpdateRequest(_ context.Context, r leave.LeaveRequest) error {
	return v.parent.updateRequestLocked(r)
}

func (v *txView) DeleteRequest(_ context.Context, id int64) error {
	return v.parent.deleteRequestLocked(id)
}

// =============================================================================
// VACATION STORE
// =============================================================================

func (m *Memory) Vacation(_ context.Context, id int64) (vacation.Vacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vacations[id]
	if !ok {
		return vacation.Vacation{}, &leave.NotFoundError{Kind: "vacation", ID: id}
	}
	return v, nil
}

func (m *Memory) AllVacations(_ context.Context) ([]vacation.Vacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]vacation.Vacation, 0, len(m.vacations))
	for _, v := range m.vacations {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) VacationsByEmployee(_ context.Context, employeeID int64) ([]vacation.Vacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []vacation.Vacation
	for _, v := range m.vacations {
		if v.EmployeeID == employeeID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *Memory) InsertVacation(_ context.Context, v vacation.Vacation) (vacation.Vacation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = m.nextVacationID
	m.nextVacationID++
	m.vacations[v.ID] = v
	return v, nil
}

func (m *Memory) UpdateVacation(_ context.Context, v vacation.Vacation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vacations[v.ID]; !ok {
		return &leave.NotFoundError{Kind: "vacation", ID: v.ID}
	}
	m.vacations[v.ID] = v
	return nil
}

func (m *Memory) DeleteVacation(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vacations[id]; !ok {
		return &leave.NotFoundError{Kind: "vacation", ID: id}
	}
	delete(m.vacations, id)
	return nil
}

// =============================================================================
// USER DIRECTORY + WORK SESSIONS
// =============================================================================

func (m *Memory) User(_ context.Context, id int64) (store.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return store.User{}, &leave.NotFoundError{Kind: "user", ID: id}
	}
	return u, nil
}

func (m *Memory) SaveUser(_ context.Context, u store.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) SaveSession(_ context.Context, s worklog.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionKey{employeeID: s.EmployeeID, day: leave.DayOf(s.Date)}] = s
	return nil
}

func (m *Memory) SessionsInRange(_ context.Context, employeeID int64, from, to time.Time) ([]worklog.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []worklog.Session
	for _, s := range m.sessions {
		if s.EmployeeID != employeeID || s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
