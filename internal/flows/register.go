package flows

import (
	"context"
	"errors"
	"time"

	"github.com/authforge/credauth/store"
)

// RegisterFailureKind classifies register flow failures for root-level mapping.
type RegisterFailureKind int

const (
	RegisterFailureNone RegisterFailureKind = iota
	RegisterFailureValidation
	RegisterFailureExists
	RegisterFailureHash
	RegisterFailureStore
)

// RegisterResult carries the outcome of a register attempt. Warning is set
// when the account was created but the profile notification did not go out.
type RegisterResult struct {
	Failure   RegisterFailureKind
	Err       error
	AccountID string
	CreatedAt time.Time
	Warning   string
}

// RegisterDeps captures register flow dependencies.
type RegisterDeps struct {
	Now           func() time.Time
	HashPassword  func(string) (string, error)
	CreateRecord  func(context.Context, *store.Record) (bool, error)
	NotifyProfile func(context.Context, string) error
	Warn          func(string, ...any)
}

// RunRegister hashes the password and creates the credential record. The
// account must not already exist; detection relies on the store's atomic
// put-if-absent so two concurrent registers cannot both succeed.
func RunRegister(ctx context.Context, accountID, password string, deps RegisterDeps) RegisterResult {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}

	if accountID == "" {
		return RegisterResult{
			Failure: RegisterFailureValidation,
			Err:     errors.New("empty account id"),
		}
	}
	if password == "" {
		return RegisterResult{
			Failure:   RegisterFailureValidation,
			Err:       errors.New("empty password"),
			AccountID: accountID,
		}
	}

	hash, err := deps.HashPassword(password)
	if err != nil {
		return RegisterResult{
			Failure:   RegisterFailureHash,
			Err:       err,
			AccountID: accountID,
		}
	}
	password = ""

	now := deps.Now()
	rec := &store.Record{
		AccountID:    accountID,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := deps.CreateRecord(ctx, rec)
	if err != nil {
		return RegisterResult{
			Failure:   RegisterFailureStore,
			Err:       err,
			AccountID: accountID,
		}
	}
	if !created {
		return RegisterResult{
			Failure:   RegisterFailureExists,
			AccountID: accountID,
		}
	}

	result := RegisterResult{
		AccountID: accountID,
		CreatedAt: now,
	}
	if deps.NotifyProfile != nil {
		if nerr := deps.NotifyProfile(ctx, accountID); nerr != nil {
			deps.Warn("credauth: profile notification failed", "account_id", accountID)
			result.Warning = "profile notification failed"
		}
	}
	return result
}
