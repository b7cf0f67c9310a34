/*
store.go - Persistence interface for leave data

PURPOSE:
  Defines what the engine needs from the durable store: per-employee
  balances, per-request debit records, and leave request CRUD. The engine
  treats storage as an external collaborator; implementations live in
  store/sqlite (production) and store/memory (tests).

ATOMICITY CONTRACT:
  Every mutating lifecycle operation is one logical transaction against
  the ledger plus the request record: a debit/credit and its status change
  either both apply or neither does. TxStore.WithTx provides that boundary;
  if fn returns an error the implementation must discard all writes made
  through the Store it passed in.
*/
package leave

import "context"

// Store handles persistence of leave requests, balances, and debit records.
type Store interface {
	// RemainingTime returns the employee's balance. found is false when the
	// employee has no balance row yet.
	RemainingTime(ctx context.Context, employeeID int64) (remaining Amount, found bool, err error)
	SetRemainingTime(ctx context.Context, employeeID int64, remaining Amount) error

	// DebitRecord returns the amount debited for a request, if any.
	DebitRecord(ctx context.Context, requestID int64) (amount Amount, found bool, err error)
	PutDebitRecord(ctx context.Context, employeeID, requestID int64, amount Amount) error
	DeleteDebitRecord(ctx context.Context, requestID int64) error

	// Request returns a leave request by id, or NotFoundError.
	Request(ctx context.Context, id int64) (LeaveRequest, error)
	RequestsByEmployee(ctx context.Context, employeeID int64) ([]LeaveRequest, error)
	AllRequests(ctx context.Context) ([]LeaveRequest, error)

	// InsertRequest persists a new request and returns it with the
	// store-assigned id.
	InsertRequest(ctx context.Context, r LeaveRequest) (LeaveRequest, error)
	UpdateRequest(ctx context.Context, r LeaveRequest) error
	DeleteRequest(ctx context.Context, id int64) error
}

// TxStore wraps Store with transaction support. WithTx executes fn within a
// transaction: if fn returns an error the transaction is rolled back,
// otherwise it is committed.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
