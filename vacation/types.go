// Package vacation tracks multi-day whole-day absence requests, kept
// separate from the leave-time budget, and the day-span accounting that
// reconciles them against monthly reporting windows.
package vacation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TechTreck-2/petruzdroba/leave"
)

// Status is the lifecycle state of a vacation. Like leave statuses,
// upstream data mixes letter cases; ParseStatus normalizes to lowercase.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDenied   Status = "denied"
)

// ParseStatus normalizes a vacation status string case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "accepted":
		return StatusAccepted, nil
	case "denied":
		return StatusDenied, nil
	default:
		return "", fmt.Errorf("unknown vacation status %q", s)
	}
}

// Vacation is a whole-day-range absence request. Both dates are inclusive.
// ID is assigned by the store; zero means not yet created.
type Vacation struct {
	ID         int64
	EmployeeID int64
	StartDate  time.Time
	EndDate    time.Time
	Status     Status
}

// ValidateDateRange checks the EndDate >= StartDate invariant.
func (v Vacation) ValidateDateRange() error {
	if leave.DayOf(v.EndDate).Before(leave.DayOf(v.StartDate)) {
		return &leave.InvalidTimeRangeError{RequestID: v.ID, Start: v.StartDate, End: v.EndDate}
	}
	return nil
}

// Days is the inclusive day count of the vacation.
func (v Vacation) Days() int {
	return DaysBetween(v.StartDate, v.EndDate)
}

// Store persists vacations.
type Store interface {
	Vacation(ctx context.Context, id int64) (Vacation, error)
	AllVacations(ctx context.Context) ([]Vacation, error)
	VacationsByEmployee(ctx context.Context, employeeID int64) ([]Vacation, error)
	InsertVacation(ctx context.Context, v Vacation) (Vacation, error)
	UpdateVacation(ctx context.Context, v Vacation) error
	DeleteVacation(ctx context.Context, id int64) error
}
