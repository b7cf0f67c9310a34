/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

INTERFACES IMPLEMENTED:
  leave.TxStore:  balances, debit records, leave request CRUD, WithTx
  vacation.Store: vacation CRUD
  worklog.Store:  work session upsert and range queries
  store.UserStore: user directory lookup

KEY TABLES:
  leave_requests: one row per request, status + future/past bucket
  balances:       one row per employee, remaining leave time in ms
  leave_debits:   one row per accepted request, the exact debited amount
                  (credits restore this recorded value, never a recomputed
                  duration)
  vacations:      whole-day-range absences
  users:          directory records
  work_sessions:  one row per employee per day

TRANSACTIONS:
  WithTx wraps fn in a database transaction; the leave.Store it passes in
  writes through the same *sql.Tx, so a failed lifecycle operation leaves
  no partial ledger mutation.

WAL MODE:
  The database is opened with WAL so readers don't block during writes.

STATUS NORMALIZATION:
  Statuses are persisted lowercase. Rows written by older clients may carry
  uppercase variants; scans parse case-insensitively.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/store"
	"github.com/TechTreck-2/petruzdroba/vacation"
	"github.com/TechTreck-2/petruzdroba/worklog"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements every data method against a dbtx, so the same code
// serves both direct access and transactional views.
type queries struct {
	db dbtx
}

// Store implements store.Store using SQLite.
type Store struct {
	queries
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) a SQLite store. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{queries: queries{db: db}, db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leave_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		bucket TEXT NOT NULL DEFAULT 'future',
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee_bucket
		ON leave_requests(employee_id, bucket);

	CREATE TABLE IF NOT EXISTS balances (
		employee_id INTEGER PRIMARY KEY,
		remaining_ms TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- The exact amount debited per accepted request. Credits restore this
	-- recorded value; editing a request's times later cannot drift the ledger.
	CREATE TABLE IF NOT EXISTS leave_debits (
		request_id INTEGER PRIMARY KEY,
		employee_id INTEGER NOT NULL,
		amount_ms TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leave_debits_employee
		ON leave_debits(employee_id);

	CREATE TABLE IF NOT EXISTS vacations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_vacations_employee
		ON vacations(employee_id);
	CREATE INDEX IF NOT EXISTS idx_vacations_status
		ON vacations(status);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'employee',
		personal_time_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS work_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		day TEXT NOT NULL,
		date TEXT NOT NULL,
		worked_ms INTEGER NOT NULL,
		UNIQUE(employee_id, day)
	);
	CREATE INDEX IF NOT EXISTS idx_work_sessions_employee_date
		ON work_sessions(employee_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn inside a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &leave.TransportError{Op: "begin tx", Err: err}
	}

	if err := fn(&queries{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &leave.TransportError{Op: "commit tx", Err: err}
	}
	return nil
}

// =============================================================================
// BALANCES + DEBIT RECORDS
// =============================================================================

func (q *queries) RemainingTime(ctx context.Context, employeeID int64) (leave.Amount, bool, error) {
	var ms string
	err := q.db.QueryRowContext(ctx,
		`SELECT remaining_ms FROM balances WHERE employee_id = ?`, employeeID).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Amount{}, false, nil
	}
	if err != nil {
		return leave.Amount{}, false, &leave.TransportError{Op: "load balance", Err: err}
	}
	value, err := decimal.NewFromString(ms)
	if err != nil {
		return leave.Amount{}, false, fmt.Errorf("corrupt balance for employee %d: %w", employeeID, err)
	}
	return leave.Amount{Value: value}, true, nil
}

func (q *queries) SetRemainingTime(ctx context.Context, employeeID int64, remaining leave.Amount) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO balances (employee_id, remaining_ms, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			remaining_ms = excluded.remaining_ms,
			updated_at = excluded.updated_at`,
		employeeID, remaining.Value.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return &leave.TransportError{Op: "save balance", Err: err}
	}
	return nil
}

func (q *queries) DebitRecord(ctx context.Context, requestID int64) (leave.Amount, bool, error) {
	var ms string
	err := q.db.QueryRowContext(ctx,
		`SELECT amount_ms FROM leave_debits WHERE request_id = ?`, requestID).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.Amount{}, false, nil
	}
	if err != nil {
		return leave.Amount{}, false, &leave.TransportError{Op: "load debit record", Err: err}
	}
	value, err := decimal.NewFromString(ms)
	if err != nil {
		return leave.Amount{}, false, fmt.Errorf("corrupt debit record for request %d: %w", requestID, err)
	}
	return leave.Amount{Value: value}, true, nil
}

func (q *queries) PutDebitRecord(ctx context.Context, employeeID, requestID int64, amount leave.Amount) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO leave_debits (request_id, employee_id, amount_ms, created_at)
		VALUES (?, ?, ?, ?)`,
		requestID, employeeID, amount.Value.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return &leave.TransportError{Op: "save debit record", Err: err}
	}
	return nil
}

func (q *queries) DeleteDebitRecord(ctx context.Context, requestID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM leave_debits WHERE request_id = ?`, requestID)
	if err != nil {
		return &leave.TransportError{Op: "delete debit record", Err: err}
	}
	return nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

const leaveRequestColumns = `id, employee_id, date, start_time, end_time, description, status, bucket`

func scanLeaveRequest(scan func(dest ...any) error) (leave.LeaveRequest, error) {
	var (
		r                        leave.LeaveRequest
		date, startTime, endTime string
		status, bucket           string
	)
	if err := scan(&r.ID, &r.EmployeeID, &date, &startTime, &endTime, &r.Description, &status, &bucket); err != nil {
		return leave.LeaveRequest{}, err
	}

	var err error
	if r.Date, err = time.Parse("2006-01-02", date); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("corrupt date on request %d: %w", r.ID, err)
	}
	if r.StartTime, err = time.Parse(time.RFC3339, startTime); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("corrupt start_time on request %d: %w", r.ID, err)
	}
	if r.EndTime, err = time.Parse(time.RFC3339, endTime); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("corrupt end_time on request %d: %w", r.ID, err)
	}
	if r.Status, err = leave.ParseStatus(status); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("request %d: %w", r.ID, err)
	}
	r.Bucket = leave.Bucket(bucket)
	return r, nil
}

func (q *queries) Request(ctx context.Context, id int64) (leave.LeaveRequest, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests WHERE id = ?`, id)
	r, err := scanLeaveRequest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return leave.LeaveRequest{}, &leave.NotFoundError{Kind: "leave request", ID: id}
	}
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	return r, nil
}

func (q *queries) RequestsByEmployee(ctx context.Context, employeeID int64) ([]leave.LeaveRequest, error) {
	return q.queryRequests(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests WHERE employee_id = ? ORDER BY date, id`,
		employeeID)
}

func (q *queries) AllRequests(ctx context.Context) ([]leave.LeaveRequest, error) {
	return q.queryRequests(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests ORDER BY date, id`)
}

func (q *queries) queryRequests(ctx context.Context, query string, args ...any) ([]leave.LeaveRequest, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &leave.TransportError{Op: "load leave requests", Err: err}
	}
	defer rows.Close()

	var out []leave.LeaveRequest
	for rows.Next() {
		r, err := scanLeaveRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *queries) InsertRequest(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO leave_requests (employee_id, date, start_time, end_time, description, status, bucket, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.EmployeeID,
		leave.DayOf(r.Date).Format("2006-01-02"),
		r.StartTime.UTC().Format(time.RFC3339),
		r.EndTime.UTC().Format(time.RFC3339),
		r.Description,
		string(r.Status),
		string(r.Bucket),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return leave.LeaveRequest{}, &leave.TransportError{Op: "insert leave request", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return leave.LeaveRequest{}, &leave.TransportError{Op: "insert leave request", Err: err}
	}
	r.ID = id
	return r, nil
}

func (q *queries) UpdateRequest(ctx context.Context, r leave.LeaveRequest) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET date = ?, start_time = ?, end_time = ?, description = ?, status = ?, bucket = ?, updated_at = ?
		WHERE id = ?`,
		leave.DayOf(r.Date).Format("2006-01-02"),
		r.StartTime.UTC().Format(time.RFC3339),
		r.EndTime.UTC().Format(time.RFC3339),
		r.Description,
		string(r.Status),
		string(r.Bucket),
		time.Now().UTC().Format(time.RFC3339),
		r.ID)
	if err != nil {
		return &leave.TransportError{Op: "update leave request", Err: err}
	}
	return checkAffected(res, "leave request", r.ID)
}

func (q *queries) DeleteRequest(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM leave_requests WHERE id = ?`, id)
	if err != nil {
		return &leave.TransportError{Op: "delete leave request", Err: err}
	}
	return checkAffected(res, "leave request", id)
}

func checkAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &leave.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// =============================================================================
// VACATIONS
// =============================================================================

func scanVacation(scan func(dest ...any) error) (vacation.Vacation, error) {
	var (
		v                  vacation.Vacation
		start, end, status string
	)
	if err := scan(&v.ID, &v.EmployeeID, &start, &end, &status); err != nil {
		return vacation.Vacation{}, err
	}

	var err error
	if v.StartDate, err = time.Parse("2006-01-02", start); err != nil {
		return vacation.Vacation{}, fmt.Errorf("corrupt start_date on vacation %d: %w", v.ID, err)
	}
	if v.EndDate, err = time.Parse("2006-01-02", end); err != nil {
		return vacation.Vacation{}, fmt.Errorf("corrupt end_date on vacation %d: %w", v.ID, err)
	}
	if v.Status, err = vacation.ParseStatus(status); err != nil {
		return vacation.Vacation{}, fmt.Errorf("vacation %d: %w", v.ID, err)
	}
	return v, nil
}

func (q *queries) Vacation(ctx context.Context, id int64) (vacation.Vacation, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, employee_id, start_date, end_date, status FROM vacations WHERE id = ?`, id)
	v, err := scanVacation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return vacation.Vacation{}, &leave.NotFoundError{Kind: "vacation", ID: id}
	}
	if err != nil {
		return vacation.Vacation{}, err
	}
	return v, nil
}

func (q *queries) AllVacations(ctx context.Context) ([]vacation.Vacation, error) {
	return q.queryVacations(ctx,
		`SELECT id, employee_id, start_date, end_date, status FROM vacations ORDER BY start_date, id`)
}

func (q *queries) VacationsByEmployee(ctx context.Context, employeeID int64) ([]vacation.Vacation, error) {
	return q.queryVacations(ctx,
		`SELECT id, employee_id, start_date, end_date, status FROM vacations WHERE employee_id = ? ORDER BY start_date, id`,
		employeeID)
}

func (q *queries) queryVacations(ctx context.Context, query string, args ...any) ([]vacation.Vacation, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &leave.TransportError{Op: "load vacations", Err: err}
	}
	defer rows.Close()

	var out []vacation.Vacation
	for rows.Next() {
		v, err := scanVacation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (q *queries) InsertVacation(ctx context.Context, v vacation.Vacation) (vacation.Vacation, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO vacations (employee_id, start_date, end_date, status, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		v.EmployeeID,
		leave.DayOf(v.StartDate).Format("2006-01-02"),
		leave.DayOf(v.EndDate).Format("2006-01-02"),
		string(v.Status),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return vacation.Vacation{}, &leave.TransportError{Op: "insert vacation", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return vacation.Vacation{}, &leave.TransportError{Op: "insert vacation", Err: err}
	}
	v.ID = id
	return v, nil
}

func (q *queries) UpdateVacation(ctx context.Context, v vacation.Vacation) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE vacations SET start_date = ?, end_date = ?, status = ?, updated_at = ? WHERE id = ?`,
		leave.DayOf(v.StartDate).Format("2006-01-02"),
		leave.DayOf(v.EndDate).Format("2006-01-02"),
		string(v.Status),
		time.Now().UTC().Format(time.RFC3339),
		v.ID)
	if err != nil {
		return &leave.TransportError{Op: "update vacation", Err: err}
	}
	return checkAffected(res, "vacation", v.ID)
}

func (q *queries) DeleteVacation(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM vacations WHERE id = ?`, id)
	if err != nil {
		return &leave.TransportError{Op: "delete vacation", Err: err}
	}
	return checkAffected(res, "vacation", id)
}

// =============================================================================
// USERS + WORK SESSIONS
// =============================================================================

func (q *queries) User(ctx context.Context, id int64) (store.User, error) {
	var (
		u  store.User
		ms int64
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, email, role, personal_time_ms FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.Role, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, &leave.NotFoundError{Kind: "user", ID: id}
	}
	if err != nil {
		return store.User{}, &leave.TransportError{Op: "load user", Err: err}
	}
	u.PersonalTime = time.Duration(ms) * time.Millisecond
	return u, nil
}

func (q *queries) SaveUser(ctx context.Context, u store.User) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, email, role, personal_time_ms) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			role = excluded.role,
			personal_time_ms = excluded.personal_time_ms`,
		u.ID, u.Email, u.Role, u.PersonalTime.Milliseconds())
	if err != nil {
		return &leave.TransportError{Op: "save user", Err: err}
	}
	return nil
}

func (q *queries) SaveSession(ctx context.Context, s worklog.Session) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO work_sessions (employee_id, day, date, worked_ms) VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id, day) DO UPDATE SET
			date = excluded.date,
			worked_ms = excluded.worked_ms`,
		s.EmployeeID,
		leave.DayOf(s.Date).Format("2006-01-02"),
		s.Date.UTC().Format(time.RFC3339),
		s.Worked.Milliseconds())
	if err != nil {
		return &leave.TransportError{Op: "save work session", Err: err}
	}
	return nil
}

func (q *queries) SessionsInRange(ctx context.Context, employeeID int64, from, to time.Time) ([]worklog.Session, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT employee_id, date, worked_ms FROM work_sessions
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		employeeID, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, &leave.TransportError{Op: "load work sessions", Err: err}
	}
	defer rows.Close()

	var out []worklog.Session
	for rows.Next() {
		var (
			s    worklog.Session
			date string
			ms   int64
		)
		if err := rows.Scan(&s.EmployeeID, &date, &ms); err != nil {
			return nil, err
		}
		if s.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("corrupt work session date: %w", err)
		}
		s.Worked = time.Duration(ms) * time.Millisecond
		out = append(out, s)
	}
	return out, rows.Err()
}
