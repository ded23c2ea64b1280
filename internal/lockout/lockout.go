// Package lockout implements the failed-login lockout policy as a pure
// state machine over the credential record.
//
// # Architecture boundaries
//
// This package owns the transition rules only. Persistence of the resulting
// record and the decision to reject a login belong to the engine. Every
// function is pure: record in, record out, no I/O, no clock reads.
package lockout

import (
	"time"

	"github.com/authforge/credauth/store"
)

// State classifies a record's lockout position at a point in time.
type State int

const (
	// Open means the account is not locked; attempts may proceed.
	Open State = iota
	// Locked means the account is inside an active lock window.
	Locked
	// LockExpired means the account is flagged locked but the window has
	// elapsed; the next evaluation must clear it and treat it as Open.
	LockExpired
)

// Policy holds the two configuration values of the lockout state machine.
//
// Policy instances are intended to be configured during initialization and
// then treated as immutable.
type Policy struct {
	MaxFailedAttempts int
	LockDuration      time.Duration
}

// Evaluate classifies rec at time now without mutating it.
func (p Policy) Evaluate(rec *store.Record, now time.Time) State {
	if !rec.Locked {
		return Open
	}
	if rec.LockedAt == nil {
		// Corrupt state: locked without a timestamp. Treat the lock as
		// expired so the account is recoverable rather than locked forever.
		return LockExpired
	}
	if now.Sub(*rec.LockedAt) >= p.LockDuration {
		return LockExpired
	}
	return Locked
}

// ClearExpired ends a lockout episode: the lock flag and timestamp are
// dropped and the failure counter resets so a new episode starts from zero.
func (p Policy) ClearExpired(rec *store.Record, now time.Time) *store.Record {
	out := rec.Clone()
	out.Locked = false
	out.LockedAt = nil
	out.FailedAttempts = 0
	out.UpdatedAt = now
	return out
}

// RecordFailure applies the failed-attempt transition. The returned bool
// reports whether this failure crossed the threshold and locked the account.
func (p Policy) RecordFailure(rec *store.Record, now time.Time) (*store.Record, bool) {
	out := rec.Clone()
	out.FailedAttempts++
	out.UpdatedAt = now

	if out.FailedAttempts >= p.MaxFailedAttempts {
		out.Locked = true
		t := now
		out.LockedAt = &t
		return out, true
	}
	return out, false
}

// RecordSuccess applies the successful-login transition: counter cleared,
// lock dropped.
func (p Policy) RecordSuccess(rec *store.Record, now time.Time) *store.Record {
	out := rec.Clone()
	out.FailedAttempts = 0
	out.Locked = false
	out.LockedAt = nil
	out.UpdatedAt = now
	return out
}
