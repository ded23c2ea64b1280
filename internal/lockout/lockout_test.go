package lockout

import (
	"testing"
	"time"

	"github.com/authforge/credauth/store"
)

var testPolicy = Policy{MaxFailedAttempts: 3, LockDuration: 15 * time.Minute}

func testRecord() *store.Record {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &store.Record{
		AccountID:    "alice",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestEvaluate(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		locked   bool
		lockedAt *time.Time
		now      time.Time
		want     State
	}{
		{name: "unlocked", locked: false, now: base, want: Open},
		{name: "inside window", locked: true, lockedAt: &base, now: base.Add(14 * time.Minute), want: Locked},
		{name: "exactly at boundary", locked: true, lockedAt: &base, now: base.Add(15 * time.Minute), want: LockExpired},
		{name: "past window", locked: true, lockedAt: &base, now: base.Add(16 * time.Minute), want: LockExpired},
		{name: "locked without timestamp", locked: true, lockedAt: nil, now: base, want: LockExpired},
	}

	for _, tc := range cases {
		rec := testRecord()
		rec.Locked = tc.locked
		rec.LockedAt = tc.lockedAt
		if got := testPolicy.Evaluate(rec, tc.now); got != tc.want {
			t.Fatalf("%s: Evaluate = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRecordFailureThreshold(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := testRecord()

	for i := 1; i < testPolicy.MaxFailedAttempts; i++ {
		var locked bool
		rec, locked = testPolicy.RecordFailure(rec, now)
		if locked {
			t.Fatalf("failure %d should not lock", i)
		}
		if rec.FailedAttempts != i {
			t.Fatalf("failure %d: counter = %d", i, rec.FailedAttempts)
		}
		if rec.Locked || rec.LockedAt != nil {
			t.Fatalf("failure %d: record locked early: %+v", i, rec)
		}
	}

	rec, locked := testPolicy.RecordFailure(rec, now)
	if !locked {
		t.Fatal("threshold failure should report a new lock")
	}
	if !rec.Locked || rec.LockedAt == nil || !rec.LockedAt.Equal(now) {
		t.Fatalf("threshold failure did not lock the record: %+v", rec)
	}
	if rec.FailedAttempts != testPolicy.MaxFailedAttempts {
		t.Fatalf("counter = %d, want %d", rec.FailedAttempts, testPolicy.MaxFailedAttempts)
	}
}

func TestRecordFailureDoesNotMutateInput(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := testRecord()

	out, _ := testPolicy.RecordFailure(rec, now)
	if rec.FailedAttempts != 0 {
		t.Fatalf("input record mutated: %+v", rec)
	}
	if out == rec {
		t.Fatal("expected a cloned record")
	}
}

func TestClearExpired(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := testRecord()
	rec.FailedAttempts = 3
	rec.Locked = true
	rec.LockedAt = &base

	later := base.Add(20 * time.Minute)
	out := testPolicy.ClearExpired(rec, later)
	if out.Locked || out.LockedAt != nil || out.FailedAttempts != 0 {
		t.Fatalf("expected cleared record, got %+v", out)
	}
	if !out.UpdatedAt.Equal(later) {
		t.Fatalf("UpdatedAt = %v, want %v", out.UpdatedAt, later)
	}
}

func TestRecordSuccess(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := testRecord()
	rec.FailedAttempts = 2

	out := testPolicy.RecordSuccess(rec, base.Add(time.Minute))
	if out.FailedAttempts != 0 || out.Locked || out.LockedAt != nil {
		t.Fatalf("expected reset record, got %+v", out)
	}
}
