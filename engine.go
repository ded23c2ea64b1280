package credauth

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	internalaudit "github.com/authforge/credauth/internal/audit"
	"github.com/authforge/credauth/internal/flows"
	"github.com/authforge/credauth/internal/lockout"
	"github.com/authforge/credauth/password"
	"github.com/authforge/credauth/store"
	"github.com/authforge/credauth/token"
	"github.com/google/uuid"
)

// Engine defines a public type used by credauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	store    store.AccountStore
	verifier password.Verifier
	codec    *token.Codec
	policy   lockout.Policy
	notifier ProfileNotifier
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
	clock    func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Register(ctx context.Context, accountID, plaintextPassword string) (*RegisterResult, error) {
	if e == nil || e.store == nil || e.verifier == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunRegister(ctx, accountID, plaintextPassword, flows.RegisterDeps{
		Now:          e.clock,
		HashPassword: e.verifier.Hash,
		CreateRecord: e.store.PutIfAbsent,
		NotifyProfile: func(ctx context.Context, id string) error {
			if e.notifier == nil {
				return nil
			}
			return e.notifier.CreateProfile(ctx, id)
		},
		Warn: func(msg string, args ...any) {
			log.Println(append([]any{msg}, args...)...)
		},
	})

	switch res.Failure {
	case flows.RegisterFailureNone:
		e.metricInc(MetricRegisterSuccess)
		e.emitAudit(ctx, auditEventRegisterSuccess, true, accountID, nil, nil)
		if res.Warning != "" {
			e.metricInc(MetricProfileNotifyFailed)
			e.emitAudit(ctx, auditEventProfileNotifyFailed, false, accountID, nil, nil)
		}
		return &RegisterResult{
			RequestID: uuid.NewString(),
			AccountID: res.AccountID,
			CreatedAt: res.CreatedAt,
			Warning:   res.Warning,
		}, nil
	case flows.RegisterFailureValidation:
		return nil, ErrValidation
	case flows.RegisterFailureExists:
		e.metricInc(MetricRegisterDuplicate)
		e.emitAudit(ctx, auditEventRegisterDuplicate, false, accountID, ErrAccountExists, nil)
		return nil, ErrAccountExists
	case flows.RegisterFailureStore:
		mapped := mapStoreError(res.Err)
		e.metricInc(MetricRegisterFailure)
		if errors.Is(mapped, ErrStoreUnavailable) {
			e.metricInc(MetricStoreUnavailable)
		}
		e.emitAudit(ctx, auditEventRegisterFailure, false, accountID, mapped, nil)
		return nil, mapped
	default:
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, auditEventRegisterFailure, false, accountID, res.Err, nil)
		return nil, res.Err
	}
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, accountID, plaintextPassword string) (*TokenPair, error) {
	if e == nil || e.store == nil || e.verifier == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunLogin(ctx, accountID, plaintextPassword, flows.LoginDeps{
		Policy:         e.policy,
		Now:            e.clock,
		GetRecord:      e.store.Get,
		UpdateRecord:   e.store.Update,
		VerifyPassword: e.verifier.Verify,
		IssueAccess:    e.codec.IssueAccess,
		IssueRefresh:   e.codec.IssueRefresh,
	})

	if res.ClearedExpired {
		e.metricInc(MetricLockoutCleared)
	}

	switch res.Failure {
	case flows.LoginFailureNone:
		e.metricInc(MetricLoginSuccess)
		e.emitAudit(ctx, auditEventLoginSuccess, true, accountID, nil, nil)
		return &TokenPair{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
		}, nil
	case flows.LoginFailureValidation:
		return nil, ErrValidation
	case flows.LoginFailureNotFound:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, accountID, ErrAccountNotFound, nil)
		return nil, ErrAccountNotFound
	case flows.LoginFailureLocked:
		e.metricInc(MetricLoginLocked)
		e.emitAudit(ctx, auditEventLoginLocked, false, accountID, ErrAccountLocked, nil)
		return nil, ErrAccountLocked
	case flows.LoginFailureBadPassword:
		e.metricInc(MetricLoginFailure)
		if res.LockedNow {
			e.metricInc(MetricLockoutTriggered)
			e.emitAudit(ctx, auditEventLockoutTriggered, false, accountID, ErrInvalidCredentials, func() map[string]string {
				return map[string]string{
					"failed_attempts": strconv.Itoa(res.FailedAttempts),
				}
			})
		} else {
			e.emitAudit(ctx, auditEventLoginFailure, false, accountID, ErrInvalidCredentials, func() map[string]string {
				return map[string]string{
					"failed_attempts": strconv.Itoa(res.FailedAttempts),
				}
			})
		}
		return nil, ErrInvalidCredentials
	case flows.LoginFailureStore:
		e.metricInc(MetricStoreUnavailable)
		mapped := mapStoreError(res.Err)
		e.emitAudit(ctx, auditEventLoginFailure, false, accountID, mapped, nil)
		return nil, mapped
	default:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, accountID, res.Err, nil)
		return nil, res.Err
	}
}

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	res := flows.RunRefresh(ctx, refreshToken, flows.RefreshDeps{
		Verify:      e.codec.Verify,
		IssueAccess: e.codec.IssueAccess,
	})

	switch res.Failure {
	case flows.RefreshFailureNone:
		e.metricInc(MetricRefreshSuccess)
		e.emitAudit(ctx, auditEventRefreshSuccess, true, res.AccountID, nil, nil)
		return &TokenPair{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
		}, nil
	case flows.RefreshFailureValidation:
		return nil, ErrValidation
	case flows.RefreshFailureExpired:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, res.AccountID, ErrTokenExpired, nil)
		return nil, ErrTokenExpired
	case flows.RefreshFailureInvalid:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, res.AccountID, ErrTokenInvalid, nil)
		return nil, ErrTokenInvalid
	default:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, res.AccountID, res.Err, nil)
		return nil, res.Err
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Validate(ctx context.Context, tokenStr string) error {
	_, err := e.ValidateSubject(ctx, tokenStr)
	return err
}

// ValidateSubject verifies tokenStr and returns the account identifier it
// asserts. Validation is stateless and never touches the account store.
func (e *Engine) ValidateSubject(ctx context.Context, tokenStr string) (string, error) {
	if e == nil || e.codec == nil {
		return "", ErrEngineNotReady
	}

	start := time.Now()
	res := flows.RunValidate(tokenStr, flows.ValidateDeps{
		Verify: e.codec.Verify,
	})
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricValidateLatency, time.Since(start))
	}

	switch res.Failure {
	case flows.ValidateFailureNone:
		e.metricInc(MetricValidateSuccess)
		return res.AccountID, nil
	case flows.ValidateFailureValidation:
		return "", ErrValidation
	case flows.ValidateFailureExpired:
		e.metricInc(MetricValidateFailure)
		e.emitAudit(ctx, auditEventValidateFailure, false, "", ErrTokenExpired, nil)
		return "", ErrTokenExpired
	default:
		e.metricInc(MetricValidateFailure)
		e.emitAudit(ctx, auditEventValidateFailure, false, "", ErrTokenInvalid, nil)
		return "", ErrTokenInvalid
	}
}

// GetRecord returns a snapshot of the stored credential record. Intended for
// admin surfaces and tests; mutations go through Login and Register only.
func (e *Engine) GetRecord(ctx context.Context, accountID string) (*CredentialRecord, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	rec, err := e.store.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, mapStoreError(err)
	}
	return rec, nil
}

// Unlock clears an active lockout episode for accountID without waiting for
// expiry. The failure counter resets with the lock.
func (e *Engine) Unlock(ctx context.Context, accountID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	now := e.now()
	_, err := e.store.Update(ctx, accountID, func(cur *store.Record) (*store.Record, error) {
		return e.policy.ClearExpired(cur, now), nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return mapStoreError(err)
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDuplicate):
		return ErrAccountExists
	case errors.Is(err, store.ErrNotFound):
		return ErrAccountNotFound
	default:
		return ErrStoreUnavailable
	}
}
