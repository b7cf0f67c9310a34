/*
errors.go - Centralized error taxonomy for the leave engine

PURPOSE:
  All failure kinds in one place. Every failure carries enough detail
  (kind + offending id) for the caller to decide whether to retry or
  surface to a user; none are silently swallowed.

CATEGORIES:
  1. Validation errors - detected before any mutation, state unchanged
     (ErrInvalidTimeRange, ErrInsufficientBalance, ErrInvalidTransition)
  2. Lookup errors - the target id does not exist (ErrNotFound)
  3. Transport errors - store/network unavailable; the surrounding
     transaction did not commit, so no partial ledger mutation occurred

USAGE:
  if errors.Is(err, leave.ErrInsufficientBalance) { ... }

  var insuff *leave.InsufficientBalanceError
  if errors.As(err, &insuff) {
      log.Printf("employee %d short by %v", insuff.EmployeeID, insuff.Shortfall())
  }
*/
package leave

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeRange is returned when a request's end is not after its start.
	ErrInvalidTimeRange = errors.New("invalid time range: end not after start")

	// ErrInsufficientBalance is returned when a debit would exceed remaining time.
	ErrInsufficientBalance = errors.New("insufficient leave time")

	// ErrNotFound is returned when mutating a record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned for a lifecycle move the state machine
	// does not allow (e.g. accepting a non-pending request, undoing an
	// ignored one).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateDebit is returned when a request that already holds a debit
	// record is debited again. Each transition debits at most once.
	ErrDuplicateDebit = errors.New("request already debited")

	// ErrNoDebitRecord is returned when crediting a request that has no
	// recorded debit. Reversals restore the recorded amount, never a
	// recomputed one, so a missing record is an inconsistency.
	ErrNoDebitRecord = errors.New("no debit recorded for request")

	// ErrTransport is returned when the durable store is unreachable. The
	// operation did not happen; callers may retry.
	ErrTransport = errors.New("transport failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports a balance shortage.
type InsufficientBalanceError struct {
	EmployeeID int64
	RequestID  int64
	Available  Amount
	Requested  Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave time for employee %d: available %v, requested %v",
		e.EmployeeID, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// Shortfall returns how much leave time is missing.
func (e *InsufficientBalanceError) Shortfall() Amount { return e.Requested.Sub(e.Available) }

// InvalidTimeRangeError reports an end <= start violation.
type InvalidTimeRangeError struct {
	RequestID int64
	Start     time.Time
	End       time.Time
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("invalid time range for request %d: start %s, end %s",
		e.RequestID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *InvalidTimeRangeError) Unwrap() error { return ErrInvalidTimeRange }

// NotFoundError reports a missing record of a given kind.
type NotFoundError struct {
	Kind string // "leave request", "vacation", "user", "balance"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvalidTransitionError reports a disallowed lifecycle move.
type InvalidTransitionError struct {
	RequestID int64
	From      Status
	To        Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("request %d: cannot transition %s -> %s", e.RequestID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// TransportError wraps a store failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return ErrTransport }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport)
}
