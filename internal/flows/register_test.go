package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/authforge/credauth/store"
)

func registerTestDeps(backing *store.Memory) RegisterDeps {
	return RegisterDeps{
		Now: func() time.Time {
			return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		},
		HashPassword: func(plaintext string) (string, error) {
			return "hashed:" + plaintext, nil
		},
		CreateRecord: backing.PutIfAbsent,
	}
}

func TestRunRegisterCreatesRecord(t *testing.T) {
	backing := store.NewMemory()
	deps := registerTestDeps(backing)
	ctx := context.Background()

	res := RunRegister(ctx, "alice", "secret", deps)
	if res.Failure != RegisterFailureNone {
		t.Fatalf("failure = %v, err = %v", res.Failure, res.Err)
	}
	if res.AccountID != "alice" || res.Warning != "" {
		t.Fatalf("unexpected result: %+v", res)
	}

	rec, err := backing.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.PasswordHash != "hashed:secret" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.FailedAttempts != 0 || rec.Locked {
		t.Fatalf("fresh record should be open: %+v", rec)
	}
}

func TestRunRegisterValidation(t *testing.T) {
	deps := registerTestDeps(store.NewMemory())

	for _, c := range []struct{ id, pw string }{{"", "secret"}, {"alice", ""}} {
		res := RunRegister(context.Background(), c.id, c.pw, deps)
		if res.Failure != RegisterFailureValidation {
			t.Fatalf("(%q, %q): failure = %v", c.id, c.pw, res.Failure)
		}
	}
}

func TestRunRegisterDuplicate(t *testing.T) {
	backing := store.NewMemory()
	deps := registerTestDeps(backing)
	ctx := context.Background()

	RunRegister(ctx, "alice", "first", deps)
	res := RunRegister(ctx, "alice", "second", deps)
	if res.Failure != RegisterFailureExists {
		t.Fatalf("failure = %v", res.Failure)
	}

	rec, err := backing.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.PasswordHash != "hashed:first" {
		t.Fatalf("duplicate register overwrote record: %+v", rec)
	}
}

func TestRunRegisterHashFailure(t *testing.T) {
	deps := registerTestDeps(store.NewMemory())
	deps.HashPassword = func(string) (string, error) {
		return "", errors.New("no entropy")
	}

	res := RunRegister(context.Background(), "alice", "secret", deps)
	if res.Failure != RegisterFailureHash {
		t.Fatalf("failure = %v", res.Failure)
	}
}

func TestRunRegisterStoreFailure(t *testing.T) {
	deps := registerTestDeps(store.NewMemory())
	deps.CreateRecord = func(ctx context.Context, rec *store.Record) (bool, error) {
		return false, store.ErrUnavailable
	}

	res := RunRegister(context.Background(), "alice", "secret", deps)
	if res.Failure != RegisterFailureStore {
		t.Fatalf("failure = %v", res.Failure)
	}
	if !errors.Is(res.Err, store.ErrUnavailable) {
		t.Fatalf("err = %v", res.Err)
	}
}

func TestRunRegisterNotifyFailureIsWarning(t *testing.T) {
	backing := store.NewMemory()
	deps := registerTestDeps(backing)
	deps.NotifyProfile = func(ctx context.Context, accountID string) error {
		return errors.New("profile service down")
	}
	var warned bool
	deps.Warn = func(string, ...any) { warned = true }

	res := RunRegister(context.Background(), "alice", "secret", deps)
	if res.Failure != RegisterFailureNone {
		t.Fatalf("notification failure must not fail registration: %+v", res)
	}
	if res.Warning == "" || !warned {
		t.Fatalf("expected warning, got %+v (warned=%v)", res, warned)
	}

	if _, err := backing.Get(context.Background(), "alice"); err != nil {
		t.Fatalf("record must persist despite warning: %v", err)
	}
}
