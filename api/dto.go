/*
dto.go - Request/response data structures

PURPOSE:
  JSON shapes for the HTTP API. Field names are camelCase to match the
  frontend's payloads; times in leave slips travel as RFC3339 instants and
  calendar days as "YYYY-MM-DD".

SEE ALSO:
  - handlers.go: Handler implementations that map these to domain types
*/
package api

import (
	"time"

	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/vacation"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// LEAVE SLIPS
// =============================================================================

type LeaveRequestDTO struct {
	ID          int64  `json:"id"`
	EmployeeID  int64  `json:"userId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type LeaveDataDTO struct {
	FutureLeaves  []LeaveRequestDTO `json:"futureLeaves"`
	PastLeaves    []LeaveRequestDTO `json:"pastLeaves"`
	RemainingTime int64             `json:"remainingTime"`
}

type CreateLeaveRequest struct {
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
	Reason      string `json:"reason,omitempty"`
}

func toLeaveRequestDTO(r leave.LeaveRequest) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		Date:        leave.DayOf(r.Date).Format("2006-01-02"),
		StartTime:   r.StartTime.UTC().Format(time.RFC3339),
		EndTime:     r.EndTime.UTC().Format(time.RFC3339),
		Description: r.Description,
		Status:      string(r.Status),
	}
}

func toLeaveRequestDTOs(requests []leave.LeaveRequest) []LeaveRequestDTO {
	dtos := make([]LeaveRequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toLeaveRequestDTO(r)
	}
	return dtos
}

// =============================================================================
// VACATIONS
// =============================================================================

type VacationDTO struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"userId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Status     string `json:"status"`
	Days       int    `json:"days"`
}

type CreateVacationRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

func toVacationDTO(v vacation.Vacation) VacationDTO {
	return VacationDTO{
		ID:         v.ID,
		EmployeeID: v.EmployeeID,
		StartDate:  leave.DayOf(v.StartDate).Format("2006-01-02"),
		EndDate:    leave.DayOf(v.EndDate).Format("2006-01-02"),
		Status:     string(v.Status),
		Days:       v.Days(),
	}
}

func toVacationDTOs(vacations []vacation.Vacation) []VacationDTO {
	dtos := make([]VacationDTO, len(vacations))
	for i, v := range vacations {
		dtos[i] = toVacationDTO(v)
	}
	return dtos
}

// =============================================================================
// APPROVAL QUEUE
// =============================================================================

// QueueLeaveDTO is one row of the manager's leave queue: the request plus
// the owner's email and whether accepting it would fit the owner's balance.
type QueueLeaveDTO struct {
	LeaveRequestDTO
	Email      string `json:"email"`
	Acceptable bool   `json:"acceptable"`
}

type QueueVacationDTO struct {
	VacationDTO
	Email string `json:"email"`
}

type QueueDTO struct {
	PendingLeaves      []QueueLeaveDTO    `json:"pendingLeaves"`
	CompletedLeaves    []QueueLeaveDTO    `json:"completedLeaves"`
	PendingVacations   []QueueVacationDTO `json:"pendingVacations"`
	CompletedVacations []QueueVacationDTO `json:"completedVacations"`
}

// =============================================================================
// DASHBOARD / WORKLOG / USERS
// =============================================================================

type DashboardDTO struct {
	RemainingTime int64  `json:"remainingTime"`
	NextVacation  string `json:"nextVacation"`
	UnworkedDays  int    `json:"unworkedDays"`
}

type SessionDTO struct {
	EmployeeID int64  `json:"userId"`
	Date       string `json:"date"`
	WorkedMS   int64  `json:"workedMs"`
}

type UserDTO struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	PersonalTimeMS int64  `json:"personalTimeMs"`
}
