/*
Package leave implements the employee leave-time engine.

PURPOSE:
  This package contains the core types and rules for short, timed absence
  requests ("leave slips") debited against a per-employee time budget:
  - Amount: a millisecond-precise quantity of leave time
  - LeaveRequest: a timed absence request with a lifecycle status
  - Ledger: the per-employee remaining-time balance with debit/credit
  - Engine: the request lifecycle (create, edit, delete, accept, deny, undo)
    plus the expiry sweep that retires overdue pending requests

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: quantity of leave time, decimal-backed, millisecond base unit
  - Status: canonical lifecycle states, parsed case-insensitively
  - Bucket: whether a request lives in the "future" or "past" table
  - LeaveRequest / LeaveData: the request record and the per-employee view

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for balance math, no float drift
  2. One canonical status spelling: lowercase, normalized at every boundary
  3. The ledger is only mutated by lifecycle transitions, never directly

SEE ALSO:
  - ledger.go: balance debit/credit with per-request debit records
  - engine.go: lifecycle transitions and atomicity
  - sweep.go: expiry sweep of overdue pending requests
*/
package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity of leave time (millisecond base unit)
// =============================================================================

// Unit is a display unit for leave time. Amounts are always held in
// milliseconds internally; In() converts for presentation.
type Unit string

const (
	UnitMilliseconds Unit = "ms"
	UnitMinutes      Unit = "minutes"
	UnitHours        Unit = "hours"
)

// Amount is a quantity of leave time in milliseconds.
type Amount struct {
	Value decimal.Decimal
}

func NewAmount(ms int64) Amount {
	return Amount{Value: decimal.NewFromInt(ms)}
}

func AmountFromDuration(d time.Duration) Amount {
	return NewAmount(d.Milliseconds())
}

func (a Amount) Add(b Amount) Amount      { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount      { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Neg() Amount              { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsZero() bool             { return a.Value.IsZero() }
func (a Amount) IsNegative() bool         { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool         { return a.Value.IsPositive() }
func (a Amount) LessThan(b Amount) bool   { return a.Value.LessThan(b.Value) }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }
func (a Amount) GreaterThanOrEqual(b Amount) bool {
	return a.Value.GreaterThanOrEqual(b.Value)
}

// Milliseconds returns the amount as a whole number of milliseconds.
func (a Amount) Milliseconds() int64 { return a.Value.IntPart() }

// Duration converts the amount to a time.Duration.
func (a Amount) Duration() time.Duration {
	return time.Duration(a.Milliseconds()) * time.Millisecond
}

// In converts the amount to the given display unit.
func (a Amount) In(unit Unit) decimal.Decimal {
	switch unit {
	case UnitMinutes:
		return a.Value.Div(decimal.NewFromInt(60_000))
	case UnitHours:
		return a.Value.Div(decimal.NewFromInt(3_600_000))
	default:
		return a.Value
	}
}

func (a Amount) String() string { return a.Value.String() + "ms" }

// DefaultAllotmentMS is the leave-time budget granted to an employee whose
// balance has never been initialized: 6 hours.
const DefaultAllotmentMS int64 = 21_600_000

// =============================================================================
// STATUS - Lifecycle state, case-insensitive aliases, lowercase canonical
// =============================================================================

// Status is the lifecycle state of a leave request. Upstream data carries
// both lowercase and uppercase spellings ('pending' vs 'PENDING'); they are
// aliases of the same state. ParseStatus normalizes at the boundary and the
// rest of the engine only ever sees the lowercase canonical form.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDenied   Status = "denied"
	StatusIgnored  Status = "ignored"
)

// ParseStatus normalizes a status string case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "accepted":
		return StatusAccepted, nil
	case "denied":
		return StatusDenied, nil
	case "ignored":
		return StatusIgnored, nil
	default:
		return "", fmt.Errorf("unknown leave status %q", s)
	}
}

// =============================================================================
// BUCKET - Future vs past partition of an employee's requests
// =============================================================================

type Bucket string

const (
	BucketFuture Bucket = "future"
	BucketPast   Bucket = "past"
)

// =============================================================================
// LEAVE REQUEST
// =============================================================================

// LeaveRequest is a short, timed absence request. ID is assigned by the
// store; zero means not yet created.
type LeaveRequest struct {
	ID          int64
	EmployeeID  int64
	Date        time.Time // the calendar day of the absence
	StartTime   time.Time
	EndTime     time.Time
	Description string
	Status      Status
	Bucket      Bucket
}

// Duration is the leave time the request consumes: EndTime - StartTime.
func (r LeaveRequest) Duration() Amount {
	return AmountFromDuration(r.EndTime.Sub(r.StartTime))
}

// ValidateTimeRange checks the EndTime > StartTime invariant.
func (r LeaveRequest) ValidateTimeRange() error {
	if !r.EndTime.After(r.StartTime) {
		return &InvalidTimeRangeError{RequestID: r.ID, Start: r.StartTime, End: r.EndTime}
	}
	return nil
}

// DescriptionOther is the sentinel for a free-text reason. A custom
// description is encoded as "Other " + reason.
const DescriptionOther = "Other"

// ComposeDescription encodes a description plus optional free-text reason.
func ComposeDescription(description, reason string) string {
	if description == DescriptionOther {
		return DescriptionOther + " " + reason
	}
	return description
}

// SplitDescription decodes an "Other "-prefixed description back into the
// sentinel and the free-text reason.
func SplitDescription(description string) (kind, reason string) {
	if strings.HasPrefix(description, DescriptionOther) {
		return DescriptionOther, strings.TrimPrefix(strings.TrimPrefix(description, DescriptionOther), " ")
	}
	return description, ""
}

// =============================================================================
// LEAVE DATA - Per-employee view: future/past buckets plus remaining time
// =============================================================================

// LeaveData is the durable per-employee leave state.
type LeaveData struct {
	FutureLeaves  []LeaveRequest
	PastLeaves    []LeaveRequest
	RemainingTime Amount
}

// DayOf truncates an instant to its calendar day, ignoring the wall clock.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
