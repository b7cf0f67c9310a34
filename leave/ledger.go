/*
ledger.go - Per-employee leave-time balance with debit/credit

PURPOSE:
  The Ledger owns the single numeric time budget per employee. Lifecycle
  transitions spend it (debit on accept) and restore it (credit on undo or
  on deleting/editing an accepted request). Nothing else may mutate it.

CRITICAL INVARIANTS:
  1. A debit refuses when it would exceed the remaining time.
  2. Each request is debited at most once; a second debit for the same
     request id is rejected.
  3. A credit restores exactly the amount previously debited for that
     request - the recorded amount, never a recomputed duration. If the
     request's times are edited later, the reversal still matches the
     original debit, so the ledger cannot drift.
  4. Sum of debits minus credits always equals initial - remaining
     (ledger conservation).

DEBIT RECORDS:
  Invariant 3 requires remembering what was debited. The ledger keeps one
  debit record per accepted request (request id -> amount); Credit consumes
  the record and deletes it.

SEE ALSO:
  - store.go: the Store interface the ledger operates through
  - engine.go: the only caller of Debit/Credit
*/
package leave

import "context"

// Ledger applies debit/credit operations to per-employee balances through a
// Store view. It is stateless; atomicity comes from the caller running it
// inside a store transaction.
type Ledger struct {
	// DefaultAllotment seeds a balance the first time an employee is seen.
	DefaultAllotment Amount
}

func NewLedger() Ledger {
	return Ledger{DefaultAllotment: NewAmount(DefaultAllotmentMS)}
}

// Remaining returns the employee's remaining leave time, initializing the
// balance with the default allotment on first touch.
func (l Ledger) Remaining(ctx context.Context, s Store, employeeID int64) (Amount, error) {
	remaining, found, err := s.RemainingTime(ctx, employeeID)
	if err != nil {
		return Amount{}, err
	}
	if !found {
		if err := s.SetRemainingTime(ctx, employeeID, l.DefaultAllotment); err != nil {
			return Amount{}, err
		}
		return l.DefaultAllotment, nil
	}
	return remaining, nil
}

// Debit spends leave time for a request. It refuses with
// InsufficientBalanceError when the amount exceeds the remaining time, and
// with ErrDuplicateDebit when the request already holds a debit record.
func (l Ledger) Debit(ctx context.Context, s Store, employeeID, requestID int64, amount Amount) error {
	if _, recorded, err := s.DebitRecord(ctx, requestID); err != nil {
		return err
	} else if recorded {
		return ErrDuplicateDebit
	}

	remaining, err := l.Remaining(ctx, s, employeeID)
	if err != nil {
		return err
	}
	if amount.GreaterThan(remaining) {
		return &InsufficientBalanceError{
			EmployeeID: employeeID,
			RequestID:  requestID,
			Available:  remaining,
			Requested:  amount,
		}
	}

	if err := s.SetRemainingTime(ctx, employeeID, remaining.Sub(amount)); err != nil {
		return err
	}
	return s.PutDebitRecord(ctx, employeeID, requestID, amount)
}

// Credit restores the exact amount previously debited for the request and
// deletes the debit record. Returns the restored amount.
func (l Ledger) Credit(ctx context.Context, s Store, employeeID, requestID int64) (Amount, error) {
	recorded, found, err := s.DebitRecord(ctx, requestID)
	if err != nil {
		return Amount{}, err
	}
	if !found {
		return Amount{}, ErrNoDebitRecord
	}

	remaining, err := l.Remaining(ctx, s, employeeID)
	if err != nil {
		return Amount{}, err
	}
	if err := s.SetRemainingTime(ctx, employeeID, remaining.Add(recorded)); err != nil {
		return Amount{}, err
	}
	if err := s.DeleteDebitRecord(ctx, requestID); err != nil {
		return Amount{}, err
	}
	return recorded, nil
}
