/*
service.go - Vacation lifecycle

PURPOSE:
  Create/delete vacations and drive the manager workflow:
  pending -> accepted | denied, and undo back to pending. Vacations never
  touch the leave-time ledger; their budget is tracked in whole days.
*/
package vacation

import (
	"context"
	"time"
)

// Service owns vacation persistence and status transitions.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, clock: clock}
}

// Create validates and persists a new vacation in the pending state.
func (s *Service) Create(ctx context.Context, v Vacation) (Vacation, error) {
	if err := v.ValidateDateRange(); err != nil {
		return Vacation{}, err
	}
	v.Status = StatusPending
	return s.store.InsertVacation(ctx, v)
}

// Get returns a vacation by id.
func (s *Service) Get(ctx context.Context, id int64) (Vacation, error) {
	return s.store.Vacation(ctx, id)
}

// All returns every vacation across all employees (manager scope).
func (s *Service) All(ctx context.Context) ([]Vacation, error) {
	return s.store.AllVacations(ctx)
}

// ByEmployee returns one employee's vacations.
func (s *Service) ByEmployee(ctx context.Context, employeeID int64) ([]Vacation, error) {
	return s.store.VacationsByEmployee(ctx, employeeID)
}

// SetStatus applies a manager decision: accepted, denied, or pending (undo).
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (Vacation, error) {
	v, err := s.store.Vacation(ctx, id)
	if err != nil {
		return Vacation{}, err
	}
	v.Status = status
	if err := s.store.UpdateVacation(ctx, v); err != nil {
		return Vacation{}, err
	}
	return v, nil
}

// Delete removes a vacation.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.Vacation(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteVacation(ctx, id)
}

// NextUpcoming returns the formatted next accepted vacation for an employee.
func (s *Service) NextUpcoming(ctx context.Context, employeeID int64) (string, error) {
	vacations, err := s.store.VacationsByEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	return NextUpcomingAccepted(vacations, s.clock()), nil
}
