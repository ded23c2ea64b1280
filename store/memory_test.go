package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func memoryTestRecord(accountID string) *Record {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &Record{
		AccountID:    accountID,
		PasswordHash: "hash-" + accountID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryPutGetRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	rec := memoryTestRecord("alice")
	if err := m.Put(ctx, rec); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.PasswordHash != rec.PasswordHash {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Stored record must be isolated from caller mutations.
	rec.PasswordHash = "mutated"
	got2, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got2.PasswordHash != "hash-alice" {
		t.Fatalf("store leaked caller mutation: %+v", got2)
	}

	// And the returned record must be isolated from the store.
	got2.FailedAttempts = 99
	got3, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got3.FailedAttempts != 0 {
		t.Fatalf("store leaked returned-copy mutation: %+v", got3)
	}
}

func TestMemoryPutIfAbsent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.PutIfAbsent(ctx, memoryTestRecord("alice"))
	if err != nil {
		t.Fatalf("PutIfAbsent error: %v", err)
	}
	if !created {
		t.Fatal("first PutIfAbsent should create")
	}

	second := memoryTestRecord("alice")
	second.PasswordHash = "other-hash"
	created, err = m.PutIfAbsent(ctx, second)
	if err != nil {
		t.Fatalf("PutIfAbsent error: %v", err)
	}
	if created {
		t.Fatal("second PutIfAbsent should not create")
	}

	got, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.PasswordHash != "hash-alice" {
		t.Fatalf("existing record was overwritten: %+v", got)
	}
}

func TestMemoryUpdate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Put(ctx, memoryTestRecord("alice")); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	out, err := m.Update(ctx, "alice", func(rec *Record) (*Record, error) {
		rec.FailedAttempts++
		return rec, nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if out.FailedAttempts != 1 {
		t.Fatalf("update not applied: %+v", out)
	}

	got, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.FailedAttempts != 1 {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestMemoryUpdateMissing(t *testing.T) {
	m := NewMemory()

	_, err := m.Update(context.Background(), "nobody", func(rec *Record) (*Record, error) {
		return rec, nil
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUpdateErrorAborts(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Put(ctx, memoryTestRecord("alice")); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	sentinel := errors.New("abort")
	_, err := m.Update(ctx, "alice", func(rec *Record) (*Record, error) {
		rec.FailedAttempts = 42
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}

	got, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.FailedAttempts != 0 {
		t.Fatalf("aborted update was persisted: %+v", got)
	}
}

func TestMemoryUpdateConcurrent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Put(ctx, memoryTestRecord("alice")); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	const updates = 100
	var wg sync.WaitGroup
	wg.Add(updates)
	for i := 0; i < updates; i++ {
		go func() {
			defer wg.Done()
			m.Update(ctx, "alice", func(rec *Record) (*Record, error) {
				rec.FailedAttempts++
				return rec, nil
			})
		}()
	}
	wg.Wait()

	got, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.FailedAttempts != updates {
		t.Fatalf("lost updates: got %d, want %d", got.FailedAttempts, updates)
	}
}

func TestMemoryCancelledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Get(ctx, "alice"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Get: expected ErrUnavailable, got %v", err)
	}
	if err := m.Put(ctx, memoryTestRecord("alice")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Put: expected ErrUnavailable, got %v", err)
	}
	if _, err := m.PutIfAbsent(ctx, memoryTestRecord("alice")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("PutIfAbsent: expected ErrUnavailable, got %v", err)
	}
	if _, err := m.Update(ctx, "alice", func(rec *Record) (*Record, error) {
		return rec, nil
	}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Update: expected ErrUnavailable, got %v", err)
	}
}

func TestRecordClone(t *testing.T) {
	lockedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := memoryTestRecord("alice")
	rec.Locked = true
	rec.LockedAt = &lockedAt

	clone := rec.Clone()
	if clone == rec || clone.LockedAt == rec.LockedAt {
		t.Fatal("Clone must not share pointers with the original")
	}
	if !clone.LockedAt.Equal(lockedAt) {
		t.Fatalf("Clone lost LockedAt: %+v", clone)
	}

	var nilRec *Record
	if nilRec.Clone() != nil {
		t.Fatal("Clone of nil must be nil")
	}
}
