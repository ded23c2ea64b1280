package flows

import (
	"context"
	"errors"
	"time"

	"github.com/authforge/credauth/internal/lockout"
	"github.com/authforge/credauth/store"
)

// LoginFailureKind classifies login flow failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureValidation
	LoginFailureNotFound
	LoginFailureLocked
	LoginFailureBadPassword
	LoginFailureStore
	LoginFailureIssue
)

// errLockActive aborts the store update when the record is still inside an
// active lock window at write time.
var errLockActive = errors.New("lock window active")

// LoginResult carries either the issued token pair or failure metadata.
// LockedNow reports that this attempt crossed the failure threshold;
// ClearedExpired reports that an expired lock was cleared while processing
// the attempt.
type LoginResult struct {
	Failure        LoginFailureKind
	Err            error
	AccountID      string
	FailedAttempts int
	LockedNow      bool
	ClearedExpired bool
	AccessToken    string
	RefreshToken   string
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Policy lockout.Policy

	Now            func() time.Time
	GetRecord      func(context.Context, string) (*store.Record, error)
	UpdateRecord   func(context.Context, string, store.UpdateFunc) (*store.Record, error)
	VerifyPassword func(plaintext, digest string) (bool, error)
	IssueAccess    func(string) (string, error)
	IssueRefresh   func(string) (string, error)
}

// RunLogin executes the credential check and lockout transitions.
//
// The password is verified against the hash from the initial read, outside the
// store's critical section; the resulting transition is then applied through
// the store's atomic update, which re-evaluates the lock window so a
// concurrently acquired lock is never bypassed.
func RunLogin(ctx context.Context, accountID, password string, deps LoginDeps) LoginResult {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	if accountID == "" || password == "" {
		return LoginResult{
			Failure:   LoginFailureValidation,
			Err:       errors.New("empty account id or password"),
			AccountID: accountID,
		}
	}

	rec, err := deps.GetRecord(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{
				Failure:   LoginFailureNotFound,
				Err:       err,
				AccountID: accountID,
			}
		}
		return LoginResult{
			Failure:   LoginFailureStore,
			Err:       err,
			AccountID: accountID,
		}
	}

	now := deps.Now()
	if deps.Policy.Evaluate(rec, now) == lockout.Locked {
		return LoginResult{
			Failure:        LoginFailureLocked,
			AccountID:      accountID,
			FailedAttempts: rec.FailedAttempts,
		}
	}

	match, verr := deps.VerifyPassword(password, rec.PasswordHash)
	password = ""
	ok := verr == nil && match

	var lockedNow, clearedExpired bool
	updated, err := deps.UpdateRecord(ctx, accountID, func(cur *store.Record) (*store.Record, error) {
		lockedNow = false
		clearedExpired = false
		switch deps.Policy.Evaluate(cur, now) {
		case lockout.Locked:
			return nil, errLockActive
		case lockout.LockExpired:
			cur = deps.Policy.ClearExpired(cur, now)
			clearedExpired = true
		}
		if ok {
			return deps.Policy.RecordSuccess(cur, now), nil
		}
		next, locked := deps.Policy.RecordFailure(cur, now)
		lockedNow = locked
		return next, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errLockActive):
			return LoginResult{
				Failure:   LoginFailureLocked,
				AccountID: accountID,
			}
		case errors.Is(err, store.ErrNotFound):
			return LoginResult{
				Failure:   LoginFailureNotFound,
				Err:       err,
				AccountID: accountID,
			}
		default:
			return LoginResult{
				Failure:   LoginFailureStore,
				Err:       err,
				AccountID: accountID,
			}
		}
	}

	if !ok {
		return LoginResult{
			Failure:        LoginFailureBadPassword,
			Err:            verr,
			AccountID:      accountID,
			FailedAttempts: updated.FailedAttempts,
			LockedNow:      lockedNow,
			ClearedExpired: clearedExpired,
		}
	}

	access, err := deps.IssueAccess(accountID)
	if err != nil {
		return LoginResult{
			Failure:        LoginFailureIssue,
			Err:            err,
			AccountID:      accountID,
			ClearedExpired: clearedExpired,
		}
	}
	refresh, err := deps.IssueRefresh(accountID)
	if err != nil {
		return LoginResult{
			Failure:        LoginFailureIssue,
			Err:            err,
			AccountID:      accountID,
			ClearedExpired: clearedExpired,
		}
	}

	return LoginResult{
		AccountID:      accountID,
		AccessToken:    access,
		RefreshToken:   refresh,
		ClearedExpired: clearedExpired,
	}
}
