package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no record exists for the account identifier.
	ErrNotFound = errors.New("account record not found")
	// ErrDuplicate indicates PutIfAbsent lost to an existing record.
	ErrDuplicate = errors.New("account record already exists")
	// ErrUnavailable indicates the backend is unreachable or timed out.
	// Callers may retry; the engine surfaces it as a transient failure.
	ErrUnavailable = errors.New("account store unavailable")
)

// Record is the durable credential record, one per account.
//
// Invariant: Locked implies LockedAt is non-nil. FailedAttempts is reset
// exactly when a lockout episode ends (successful login or expiry
// detection), never in between.
type Record struct {
	AccountID      string
	PasswordHash   string
	FailedAttempts int
	Locked         bool
	LockedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy so callers can mutate freely.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.LockedAt != nil {
		t := *r.LockedAt
		out.LockedAt = &t
	}
	return &out
}

// UpdateFunc transforms a record inside a serialized Update. It receives a
// private copy and returns the record to persist. Returning an error aborts
// the update and propagates unchanged.
type UpdateFunc func(*Record) (*Record, error)

// AccountStore is the persistence contract consumed by the engine.
//
// Backends must provide read-after-write consistency per account identifier
// and serialize Update calls for the same identifier.
type AccountStore interface {
	// Get returns the record for the identifier, or ErrNotFound.
	Get(ctx context.Context, accountID string) (*Record, error)

	// Put overwrites the record unconditionally.
	Put(ctx context.Context, rec *Record) error

	// PutIfAbsent stores the record only when no record exists for its
	// identifier. Returns false (and no error) when a record is already
	// present; the existing record is left untouched.
	PutIfAbsent(ctx context.Context, rec *Record) (bool, error)

	// Update applies fn to the current record under per-key serialization
	// and persists the result. Returns the persisted record.
	Update(ctx context.Context, accountID string, fn UpdateFunc) (*Record, error)
}
