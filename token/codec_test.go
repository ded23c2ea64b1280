package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"sync"
	"testing"
	"time"
)

type codecClock struct {
	mu  sync.Mutex
	now time.Time
}

func newCodecClock() *codecClock {
	return &codecClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *codecClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *codecClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig(clock *codecClock) Config {
	return Config{
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("unit-test-signing-key"),
		Issuer:        "credauth-test",
		Now:           clock.Now,
	}
}

func newTestCodec(t *testing.T, clock *codecClock) *Codec {
	t.Helper()
	codec, err := NewCodec(testConfig(clock))
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	return codec
}

func TestNewCodecValidation(t *testing.T) {
	clock := newCodecClock()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"zero refresh ttl", func(c *Config) { c.RefreshTTL = 0 }},
		{"negative leeway", func(c *Config) { c.Leeway = -time.Second }},
		{"excessive leeway", func(c *Config) { c.Leeway = 3 * time.Minute }},
		{"missing hs256 key", func(c *Config) { c.PrivateKey = nil }},
		{"unknown method", func(c *Config) { c.SigningMethod = "rs256" }},
		{"ed25519 without public key", func(c *Config) {
			c.SigningMethod = MethodEd25519
			c.PrivateKey = nil
			c.PublicKey = nil
		}},
	}

	for _, tc := range cases {
		cfg := testConfig(clock)
		tc.mutate(&cfg)
		if _, err := NewCodec(cfg); err == nil {
			t.Fatalf("%s: expected config error", tc.name)
		}
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clock := newCodecClock()
	codec := newTestCodec(t, clock)

	access, err := codec.IssueAccess("alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	refresh, err := codec.IssueRefresh("alice")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}
	if access == refresh {
		t.Fatal("access and refresh tokens must differ")
	}

	subject, kind, err := codec.Verify(access)
	if err != nil {
		t.Fatalf("Verify access error: %v", err)
	}
	if subject != "alice" || kind != KindAccess {
		t.Fatalf("Verify access = (%s, %s)", subject, kind)
	}

	subject, kind, err = codec.Verify(refresh)
	if err != nil {
		t.Fatalf("Verify refresh error: %v", err)
	}
	if subject != "alice" || kind != KindRefresh {
		t.Fatalf("Verify refresh = (%s, %s)", subject, kind)
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	clock := newCodecClock()
	codec := newTestCodec(t, clock)

	if _, err := codec.IssueAccess(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
	if _, err := codec.IssueAccess("   "); err == nil {
		t.Fatal("expected error for blank subject")
	}
}

func TestVerifyExpiry(t *testing.T) {
	clock := newCodecClock()
	codec := newTestCodec(t, clock)

	access, err := codec.IssueAccess("alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	clock.Advance(14 * time.Minute)
	if _, _, err := codec.Verify(access); err != nil {
		t.Fatalf("token should still verify inside ttl: %v", err)
	}

	clock.Advance(2 * time.Minute)
	_, _, err = codec.Verify(access)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	clock := newCodecClock()
	codec := newTestCodec(t, clock)

	otherCfg := testConfig(clock)
	otherCfg.PrivateKey = []byte("a-different-signing-key")
	other, err := NewCodec(otherCfg)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	access, err := other.IssueAccess("alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	if _, _, err := codec.Verify(access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for foreign signature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	clock := newCodecClock()
	codec := newTestCodec(t, clock)

	for _, tokenStr := range []string{"", "garbage", "a.b.c"} {
		if _, _, err := codec.Verify(tokenStr); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Verify(%q): expected ErrInvalid, got %v", tokenStr, err)
		}
	}
}

func TestVerifyIssuerMismatch(t *testing.T) {
	clock := newCodecClock()

	issuerCfg := testConfig(clock)
	issuerCfg.Issuer = "someone-else"
	other, err := NewCodec(issuerCfg)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}
	access, err := other.IssueAccess("alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	codec := newTestCodec(t, clock)
	if _, _, err := codec.Verify(access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for issuer mismatch, got %v", err)
	}
}

func TestVerifyLeeway(t *testing.T) {
	clock := newCodecClock()
	cfg := testConfig(clock)
	cfg.Leeway = time.Minute
	codec, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	access, err := codec.IssueAccess("alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	// 30s past expiry is tolerated within a one-minute leeway.
	clock.Advance(cfg.AccessTTL + 30*time.Second)
	if _, _, err := codec.Verify(access); err != nil {
		t.Fatalf("expected token inside leeway to verify: %v", err)
	}

	clock.Advance(time.Minute)
	if _, _, err := codec.Verify(access); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired past leeway, got %v", err)
	}
}

func TestRefreshAccess(t *testing.T) {
	clock := newCodecClock()
	codec := newTestCodec(t, clock)

	refresh, err := codec.IssueRefresh("alice")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	clock.Advance(time.Hour)

	access, err := codec.RefreshAccess(refresh)
	if err != nil {
		t.Fatalf("RefreshAccess error: %v", err)
	}
	subject, kind, err := codec.Verify(access)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if subject != "alice" || kind != KindAccess {
		t.Fatalf("Verify = (%s, %s)", subject, kind)
	}
}

func TestRefreshAccessRejectsAccessToken(t *testing.T) {
	clock := newCodecClock()
	codec := newTestCodec(t, clock)

	access, err := codec.IssueAccess("alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	if _, err := codec.RefreshAccess(access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for kind mismatch, got %v", err)
	}
}

func TestRefreshAccessExpiredRefreshToken(t *testing.T) {
	clock := newCodecClock()
	codec := newTestCodec(t, clock)

	refresh, err := codec.IssueRefresh("alice")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	clock.Advance(25 * time.Hour)
	if _, err := codec.RefreshAccess(refresh); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestEd25519RoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey error: %v", err)
	}

	clock := newCodecClock()
	cfg := testConfig(clock)
	cfg.SigningMethod = MethodEd25519
	cfg.PrivateKey = priv
	cfg.PublicKey = pub

	codec, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec error: %v", err)
	}

	access, err := codec.IssueAccess("alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	subject, kind, err := codec.Verify(access)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if subject != "alice" || kind != KindAccess {
		t.Fatalf("Verify = (%s, %s)", subject, kind)
	}

	// A token signed under hs256 must not verify under an ed25519 codec.
	hsCodec := newTestCodec(t, clock)
	hsToken, err := hsCodec.IssueAccess("alice")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}
	if _, _, err := codec.Verify(hsToken); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for algorithm mismatch, got %v", err)
	}
}
