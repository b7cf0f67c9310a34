// Package store defines the full durable-store surface the server wires
// together: leave data, vacations, work sessions, and the user directory.
// Implementations live in store/sqlite (production) and store/memory (tests).
package store

import (
	"context"
	"time"

	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/vacation"
	"github.com/TechTreck-2/petruzdroba/worklog"
)

// User is a directory record: who an employee is and their personal-time
// grant. Authentication is handled elsewhere; this is lookup data only.
type User struct {
	ID           int64
	Email        string
	Role         string
	PersonalTime time.Duration
}

// UserStore is the user-directory lookup surface.
type UserStore interface {
	// User returns a directory record, or leave.NotFoundError.
	User(ctx context.Context, id int64) (User, error)
	SaveUser(ctx context.Context, u User) error
}

// Store is the combined durable store.
type Store interface {
	leave.TxStore
	vacation.Store
	worklog.Store
	UserStore
}
