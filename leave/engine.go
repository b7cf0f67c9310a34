/*
engine.go - Leave request lifecycle

PURPOSE:
  Drives a leave request through its states while keeping the ledger
  consistent:

    pending -> accepted   (manager accept, debits duration)
    pending -> denied     (manager deny, no ledger effect)
    accepted -> pending   (manager undo, credits the recorded debit)
    denied -> pending     (manager undo, no ledger effect)
    pending -> ignored    (expiry sweep, no ledger effect)

  'ignored' is terminal: no transition, not even undo, leaves it.

ATOMICITY:
  Every mutation runs inside store.WithTx under a per-employee lock, so
  "check remaining time, then debit" is exclusive per employee: two
  concurrent accepts cannot both succeed when only one debit's worth of
  balance remains. A store failure aborts the transaction; no partial
  ledger mutation survives.

CLOCK:
  The engine takes its clock at construction so tests can pin "today"
  for sweep and validation behavior.

SEE ALSO:
  - ledger.go: debit/credit rules
  - sweep.go: expiry sweep, run on every Snapshot
*/
package leave

import (
	"context"
	"sync"
	"time"
)

// Engine owns the leave request lifecycle for all employees.
type Engine struct {
	store  TxStore
	ledger Ledger
	clock  func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the engine's clock (tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithDefaultAllotment overrides the initial leave-time budget.
func WithDefaultAllotment(a Amount) Option {
	return func(e *Engine) { e.ledger.DefaultAllotment = a }
}

func NewEngine(store TxStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		ledger: NewLedger(),
		clock:  time.Now,
		locks:  make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lockEmployee serializes mutations per employee. Returns the unlock func.
func (e *Engine) lockEmployee(employeeID int64) func() {
	e.mu.Lock()
	l, ok := e.locks[employeeID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[employeeID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// =============================================================================
// READS
// =============================================================================

// Snapshot loads an employee's leave data, running the expiry sweep and
// persisting any relocations before returning. Re-running on already-swept
// data is a no-op.
func (e *Engine) Snapshot(ctx context.Context, employeeID int64) (LeaveData, error) {
	unlock := e.lockEmployee(employeeID)
	defer unlock()

	var data LeaveData
	err := e.store.WithTx(ctx, func(s Store) error {
		requests, err := s.RequestsByEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		remaining, err := e.ledger.Remaining(ctx, s, employeeID)
		if err != nil {
			return err
		}

		loaded := LeaveData{RemainingTime: remaining}
		for _, r := range requests {
			if r.Bucket == BucketPast {
				loaded.PastLeaves = append(loaded.PastLeaves, r)
			} else {
				loaded.FutureLeaves = append(loaded.FutureLeaves, r)
			}
		}

		swept, changed := SweepExpired(loaded, e.clock())
		for _, r := range changed {
			if err := s.UpdateRequest(ctx, r); err != nil {
				return err
			}
		}
		data = swept
		return nil
	})
	if err != nil {
		return LeaveData{}, err
	}
	return data, nil
}

// Remaining returns the employee's remaining leave time.
func (e *Engine) Remaining(ctx context.Context, employeeID int64) (Amount, error) {
	var remaining Amount
	err := e.store.WithTx(ctx, func(s Store) error {
		var err error
		remaining, err = e.ledger.Remaining(ctx, s, employeeID)
		return err
	})
	return remaining, err
}

// =============================================================================
// CREATION / EDIT / DELETE
// =============================================================================

// AddRequest validates and persists a new leave request in the pending
// state. Rejections (invalid range, insufficient balance) leave all state
// unchanged; creation never debits - the debit happens on accept.
func (e *Engine) AddRequest(ctx context.Context, r LeaveRequest) (LeaveRequest, error) {
	if err := r.ValidateTimeRange(); err != nil {
		return LeaveRequest{}, err
	}

	unlock := e.lockEmployee(r.EmployeeID)
	defer unlock()

	var created LeaveRequest
	err := e.store.WithTx(ctx, func(s Store) error {
		remaining, err := e.ledger.Remaining(ctx, s, r.EmployeeID)
		if err != nil {
			return err
		}
		if r.Duration().GreaterThan(remaining) {
			return &InsufficientBalanceError{
				EmployeeID: r.EmployeeID,
				Available:  remaining,
				Requested:  r.Duration(),
			}
		}

		r.Status = StatusPending
		r.Bucket = BucketFuture
		created, err = s.InsertRequest(ctx, r)
		return err
	})
	if err != nil {
		return LeaveRequest{}, err
	}
	return created, nil
}

// EditRequest replaces the time range and description of an existing
// request and resets it to pending. If the existing request was accepted,
// its recorded debit is credited back before the new duration is validated;
// a failed validation rolls the credit back with the transaction. Ignored
// requests cannot be edited.
func (e *Engine) EditRequest(ctx context.Context, id int64, updated LeaveRequest) (LeaveRequest, error) {
	if err := updated.ValidateTimeRange(); err != nil {
		return LeaveRequest{}, err
	}

	existing, err := e.store.Request(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}

	unlock := e.lockEmployee(existing.EmployeeID)
	defer unlock()

	var edited LeaveRequest
	err = e.store.WithTx(ctx, func(s Store) error {
		current, err := s.Request(ctx, id)
		if err != nil {
			return err
		}

		switch current.Status {
		case StatusAccepted:
			if _, err := e.ledger.Credit(ctx, s, current.EmployeeID, id); err != nil {
				return err
			}
		case StatusIgnored:
			return &InvalidTransitionError{RequestID: id, From: current.Status, To: StatusPending}
		}

		remaining, err := e.ledger.Remaining(ctx, s, current.EmployeeID)
		if err != nil {
			return err
		}
		if updated.Duration().GreaterThan(remaining) {
			return &InsufficientBalanceError{
				EmployeeID: current.EmployeeID,
				RequestID:  id,
				Available:  remaining,
				Requested:  updated.Duration(),
			}
		}

		edited = LeaveRequest{
			ID:          id,
			EmployeeID:  current.EmployeeID,
			Date:        updated.Date,
			StartTime:   updated.StartTime,
			EndTime:     updated.EndTime,
			Description: updated.Description,
			Status:      StatusPending,
			Bucket:      BucketFuture,
		}
		return s.UpdateRequest(ctx, edited)
	})
	if err != nil {
		return LeaveRequest{}, err
	}
	return edited, nil
}

// DeleteRequest removes a request. An accepted request's debit is credited
// back first; pending, denied, and ignored requests have no ledger effect.
func (e *Engine) DeleteRequest(ctx context.Context, id int64) error {
	existing, err := e.store.Request(ctx, id)
	if err != nil {
		return err
	}

	unlock := e.lockEmployee(existing.EmployeeID)
	defer unlock()

	return e.store.WithTx(ctx, func(s Store) error {
		current, err := s.Request(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == StatusAccepted {
			if _, err := e.ledger.Credit(ctx, s, current.EmployeeID, id); err != nil {
				return err
			}
		}
		return s.DeleteRequest(ctx, id)
	})
}

// =============================================================================
// APPROVAL WORKFLOW
// =============================================================================

// Accept transitions pending -> accepted and debits the request's duration.
// Fails with InsufficientBalanceError when the requester's balance no longer
// covers the duration; the request then remains pending.
func (e *Engine) Accept(ctx context.Context, id int64) (LeaveRequest, error) {
	return e.transition(ctx, id, StatusAccepted)
}

// Deny transitions pending -> denied. No ledger effect.
func (e *Engine) Deny(ctx context.Context, id int64) (LeaveRequest, error) {
	return e.transition(ctx, id, StatusDenied)
}

// Undo reverses a manager decision back to pending. Only valid from
// accepted (credits back the recorded debit) or denied (no ledger effect),
// never from ignored.
func (e *Engine) Undo(ctx context.Context, id int64) (LeaveRequest, error) {
	return e.transition(ctx, id, StatusPending)
}

func (e *Engine) transition(ctx context.Context, id int64, to Status) (LeaveRequest, error) {
	existing, err := e.store.Request(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}

	unlock := e.lockEmployee(existing.EmployeeID)
	defer unlock()

	var result LeaveRequest
	err = e.store.WithTx(ctx, func(s Store) error {
		current, err := s.Request(ctx, id)
		if err != nil {
			return err
		}
		if !allowedTransition(current.Status, to) {
			return &InvalidTransitionError{RequestID: id, From: current.Status, To: to}
		}

		switch {
		case to == StatusAccepted:
			if err := e.ledger.Debit(ctx, s, current.EmployeeID, id, current.Duration()); err != nil {
				return err
			}
		case to == StatusPending && current.Status == StatusAccepted:
			if _, err := e.ledger.Credit(ctx, s, current.EmployeeID, id); err != nil {
				return err
			}
		}

		current.Status = to
		if err := s.UpdateRequest(ctx, current); err != nil {
			return err
		}
		result = current
		return nil
	})
	if err != nil {
		return LeaveRequest{}, err
	}
	return result, nil
}

// allowedTransition encodes the manager-facing state machine.
func allowedTransition(from, to Status) bool {
	switch to {
	case StatusAccepted, StatusDenied:
		return from == StatusPending
	case StatusPending:
		return from == StatusAccepted || from == StatusDenied
	default:
		return false
	}
}
