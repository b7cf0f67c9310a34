/*
handlers.go - HTTP API handlers for the time-off engine

PURPOSE:
  Exposes the leave engine, vacation service, approval queue, dashboard,
  work log, and monthly reports via REST. Handles HTTP request/response and
  JSON serialization, and delegates everything else to domain logic.

ENDPOINTS:
  Leave slips:
    GET    /api/leaveslip/{employeeID}        Employee leave data (runs sweep)
    POST   /api/leaveslip/{employeeID}        Create request
    PUT    /api/leaveslip/{employeeID}/{id}   Edit request (resets to pending)
    DELETE /api/leaveslip/{employeeID}/{id}   Delete request

  Vacations:
    GET    /api/vacation/{employeeID}         Employee vacations
    POST   /api/vacation/{employeeID}         Create vacation
    DELETE /api/vacation/{id}                 Delete vacation
    GET    /api/vacation/{employeeID}/next    Next upcoming accepted vacation

  Approval queue (manager):
    GET    /api/manage/queue                  Pending + completed partitions
    POST   /api/manage/leaves/{id}/accept     Accept leave (debits)
    POST   /api/manage/leaves/{id}/reject     Deny leave
    POST   /api/manage/leaves/{id}/undo       Undo decision
    POST   /api/manage/vacations/{id}/accept  Accept vacation
    POST   /api/manage/vacations/{id}/reject  Deny vacation
    POST   /api/manage/vacations/{id}/undo    Undo decision
    GET    /api/manage/email/{employeeID}     Resolve employee email

  Dashboard / work log / users / reports:
    GET    /api/dashboard/{employeeID}
    POST   /api/worklog
    GET    /api/user/{id}
    PUT    /api/user/{id}
    GET    /api/reports/{employeeID}/{year}/{month}       CSV download
    POST   /api/reports/{employeeID}/{year}/{month}/email

ERROR HANDLING:
  Errors map to HTTP status by kind:
  - 400: invalid time range, malformed input
  - 404: missing record
  - 409: insufficient balance, disallowed transition
  - 500: everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TechTreck-2/petruzdroba/approval"
	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/report"
	"github.com/TechTreck-2/petruzdroba/store"
	"github.com/TechTreck-2/petruzdroba/vacation"
	"github.com/TechTreck-2/petruzdroba/worklog"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine    *leave.Engine
	Vacations *vacation.Service
	Queue     *approval.Aggregator
	Reports   *report.Service
	Store     store.Store

	clock func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock replaces the handler's clock (tests).
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) { h.clock = clock }
}

// NewHandler creates a handler over the assembled services.
func NewHandler(engine *leave.Engine, vacations *vacation.Service, queue *approval.Aggregator, reports *report.Service, st store.Store, opts ...Option) *Handler {
	h := &Handler{
		Engine:    engine,
		Vacations: vacations,
		Queue:     queue,
		Reports:   reports,
		Store:     st,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// =============================================================================
// LEAVE SLIP HANDLERS
// =============================================================================

// GetLeaveData returns the employee's leave slips and remaining time. The
// expiry sweep runs as part of the load.
func (h *Handler) GetLeaveData(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}

	data, err := h.Engine.Snapshot(r.Context(), employeeID)
	if err != nil {
		writeDomainError(w, "Failed to load leave data", err)
		return
	}

	writeJSON(w, http.StatusOK, LeaveDataDTO{
		FutureLeaves:  toLeaveRequestDTOs(data.FutureLeaves),
		PastLeaves:    toLeaveRequestDTOs(data.PastLeaves),
		RemainingTime: data.RemainingTime.Milliseconds(),
	})
}

// CreateLeave creates a new pending leave request.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}

	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lr, err := parseLeaveRequest(employeeID, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave request", err)
		return
	}

	created, err := h.Engine.AddRequest(r.Context(), lr)
	if err != nil {
		writeDomainError(w, "Failed to create leave request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(created))
}

// UpdateLeave edits an existing request, resetting it to pending.
func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lr, err := parseLeaveRequest(employeeID, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave request", err)
		return
	}

	edited, err := h.Engine.EditRequest(r.Context(), id, lr)
	if err != nil {
		writeDomainError(w, "Failed to update leave request", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(edited))
}

// DeleteLeave removes a request, crediting back an accepted one's debit.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Engine.DeleteRequest(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete leave request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseLeaveRequest(employeeID int64, req CreateLeaveRequest) (leave.LeaveRequest, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", req.Date, err)
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("invalid startTime %q: %w", req.StartTime, err)
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("invalid endTime %q: %w", req.EndTime, err)
	}

	return leave.LeaveRequest{
		EmployeeID:  employeeID,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Description: leave.ComposeDescription(req.Description, req.Reason),
	}, nil
}

// =============================================================================
// VACATION HANDLERS
// =============================================================================

// ListVacations returns one employee's vacations.
func (h *Handler) ListVacations(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}
	vacations, err := h.Vacations.ByEmployee(r.Context(), employeeID)
	if err != nil {
		writeDomainError(w, "Failed to load vacations", err)
		return
	}
	writeJSON(w, http.StatusOK, toVacationDTOs(vacations))
}

// CreateVacation creates a new pending vacation.
func (h *Handler) CreateVacation(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}

	var req CreateVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.Vacations.Create(r.Context(), vacation.Vacation{
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		writeDomainError(w, "Failed to create vacation", err)
		return
	}
	writeJSON(w, http.StatusCreated, toVacationDTO(created))
}

// DeleteVacation removes a vacation.
func (h *Handler) DeleteVacation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Vacations.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete vacation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NextVacation returns the employee's next upcoming accepted vacation,
// formatted, or "-" when none is scheduled.
func (h *Handler) NextVacation(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}
	next, err := h.Vacations.NextUpcoming(r.Context(), employeeID)
	if err != nil {
		writeDomainError(w, "Failed to load vacations", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"nextVacation": next})
}

// =============================================================================
// APPROVAL QUEUE HANDLERS
// =============================================================================

// GetQueue returns the manager's approval queue, partitioned into pending
// and completed, with optional date and status filters applied.
func (h *Handler) GetQueue(w http.ResponseWriter, r *http.Request) {
	if err := h.Queue.Refresh(r.Context()); err != nil {
		writeDomainError(w, "Failed to refresh approval queue", err)
		return
	}

	dates, err := parseDateFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date filter", err)
		return
	}
	status := approval.StatusFilter{Status: r.URL.Query().Get("status")}

	dto := QueueDTO{
		PendingLeaves:      h.toQueueLeaveDTOs(approval.FilterLeaves(h.Queue.PendingLeaves(), dates, approval.StatusFilter{})),
		CompletedLeaves:    h.toQueueLeaveDTOs(approval.FilterLeaves(h.Queue.CompletedLeaves(), dates, status)),
		PendingVacations:   h.toQueueVacationDTOs(approval.FilterVacations(h.Queue.PendingVacations(), dates, approval.StatusFilter{})),
		CompletedVacations: h.toQueueVacationDTOs(approval.FilterVacations(h.Queue.CompletedVacations(), dates, status)),
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) toQueueLeaveDTOs(items []approval.LeaveWithUser) []QueueLeaveDTO {
	dtos := make([]QueueLeaveDTO, len(items))
	for i, item := range items {
		dtos[i] = QueueLeaveDTO{
			LeaveRequestDTO: toLeaveRequestDTO(item.Request),
			Email:           h.Queue.EmployeeEmail(item.EmployeeID),
			Acceptable:      h.Queue.IsAcceptable(item.Request),
		}
	}
	return dtos
}

func (h *Handler) toQueueVacationDTOs(items []approval.VacationWithUser) []QueueVacationDTO {
	dtos := make([]QueueVacationDTO, len(items))
	for i, item := range items {
		dtos[i] = QueueVacationDTO{
			VacationDTO: toVacationDTO(item.Vacation),
			Email:       h.Queue.EmployeeEmail(item.EmployeeID),
		}
	}
	return dtos
}

func parseDateFilter(r *http.Request) (approval.DateFilter, error) {
	var f approval.DateFilter
	if s := r.URL.Query().Get("startDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return approval.DateFilter{}, fmt.Errorf("invalid startDate %q: %w", s, err)
		}
		f.StartDate = t
	}
	if s := r.URL.Query().Get("endDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return approval.DateFilter{}, fmt.Errorf("invalid endDate %q: %w", s, err)
		}
		f.EndDate = t
	}
	return f, nil
}

// AcceptLeave accepts a pending leave request, debiting its duration.
func (h *Handler) AcceptLeave(w http.ResponseWriter, r *http.Request) {
	h.queueAction(w, r, h.Queue.AcceptLeave, "Failed to accept leave request")
}

// RejectLeave denies a pending leave request.
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.queueAction(w, r, h.Queue.RejectLeave, "Failed to reject leave request")
}

// UndoLeave reverses a leave decision back to pending.
func (h *Handler) UndoLeave(w http.ResponseWriter, r *http.Request) {
	h.queueAction(w, r, h.Queue.UndoLeave, "Failed to undo leave decision")
}

// AcceptVacation accepts a pending vacation.
func (h *Handler) AcceptVacation(w http.ResponseWriter, r *http.Request) {
	h.queueAction(w, r, h.Queue.AcceptVacation, "Failed to accept vacation")
}

// RejectVacation denies a pending vacation.
func (h *Handler) RejectVacation(w http.ResponseWriter, r *http.Request) {
	h.queueAction(w, r, h.Queue.RejectVacation, "Failed to reject vacation")
}

// UndoVacation reverses a vacation decision back to pending.
func (h *Handler) UndoVacation(w http.ResponseWriter, r *http.Request) {
	h.queueAction(w, r, h.Queue.UndoVacation, "Failed to undo vacation decision")
}

func (h *Handler) queueAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) error, failMsg string) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := fn(r.Context(), id); err != nil {
		writeDomainError(w, failMsg, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEmployeeEmail resolves an employee's email address, blocking until the
// directory lookup completes.
func (h *Handler) GetEmployeeEmail(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}
	email, err := h.Queue.ResolveEmail(r.Context(), employeeID)
	if err != nil {
		writeDomainError(w, "Failed to resolve email", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

// =============================================================================
// DASHBOARD / WORKLOG / USER HANDLERS
// =============================================================================

// GetDashboard returns the employee's dashboard metrics: remaining leave
// time, next upcoming vacation, and unworked days this month.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}
	ctx := r.Context()

	remaining, err := h.Engine.Remaining(ctx, employeeID)
	if err != nil {
		writeDomainError(w, "Failed to load balance", err)
		return
	}
	next, err := h.Vacations.NextUpcoming(ctx, employeeID)
	if err != nil {
		writeDomainError(w, "Failed to load vacations", err)
		return
	}

	now := h.clock()
	from, to := worklog.MonthRange(now.Year(), now.Month())
	sessions, err := h.Store.SessionsInRange(ctx, employeeID, from, to)
	if err != nil {
		writeDomainError(w, "Failed to load work sessions", err)
		return
	}
	vacations, err := h.Vacations.ByEmployee(ctx, employeeID)
	if err != nil {
		writeDomainError(w, "Failed to load vacations", err)
		return
	}

	writeJSON(w, http.StatusOK, DashboardDTO{
		RemainingTime: remaining.Milliseconds(),
		NextVacation:  next,
		UnworkedDays:  vacation.UnworkedDaysThisMonth(sessions, vacations, now),
	})
}

// SaveSession upserts the work session for an employee's day.
func (h *Handler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req SessionDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	session := worklog.Session{
		EmployeeID: req.EmployeeID,
		Date:       date,
		Worked:     time.Duration(req.WorkedMS) * time.Millisecond,
	}
	if err := h.Store.SaveSession(r.Context(), session); err != nil {
		writeDomainError(w, "Failed to save work session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetUser returns a directory record.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.Store.User(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role,
		PersonalTimeMS: u.PersonalTime.Milliseconds(),
	})
}

// SaveUser upserts a directory record.
func (h *Handler) SaveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UserDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	u := store.User{
		ID:           id,
		Email:        req.Email,
		Role:         req.Role,
		PersonalTime: time.Duration(req.PersonalTimeMS) * time.Millisecond,
	}
	if err := h.Store.SaveUser(r.Context(), u); err != nil {
		writeDomainError(w, "Failed to save user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// DownloadReport streams the employee's monthly work-session report as CSV.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	employeeID, year, month, ok := reportParams(w, r)
	if !ok {
		return
	}

	data, err := h.Reports.Download(r.Context(), employeeID, year, month)
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}

	name := report.AttachmentName(employeeID, year, month)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// EmailReport sends the monthly report to the employee's email address.
func (h *Handler) EmailReport(w http.ResponseWriter, r *http.Request) {
	employeeID, year, month, ok := reportParams(w, r)
	if !ok {
		return
	}
	if err := h.Reports.Email(r.Context(), employeeID, year, month); err != nil {
		writeDomainError(w, "Failed to email report", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func reportParams(w http.ResponseWriter, r *http.Request) (employeeID int64, year int, month time.Month, ok bool) {
	employeeID, idOK := pathID(w, r, "employeeID")
	if !idOK {
		return 0, 0, 0, false
	}
	y, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, 0, 0, false
	}
	m, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || m < 1 || m > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return 0, 0, 0, false
	}
	return employeeID, y, time.Month(m), true
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", param), err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps a domain error to the right HTTP status.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, leave.ErrInvalidTimeRange):
		writeError(w, http.StatusBadRequest, message, err)
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case leave.IsClientError(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
