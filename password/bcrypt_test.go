package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptValidation(t *testing.T) {
	if _, err := NewBcrypt(bcrypt.MaxCost + 1); err == nil {
		t.Fatal("expected error for excessive cost")
	}
	if _, err := NewBcrypt(-1); err == nil {
		t.Fatal("expected error for negative cost")
	}
	if _, err := NewBcrypt(0); err != nil {
		t.Fatalf("zero cost should select the default: %v", err)
	}
}

func TestBcryptHashAndVerify(t *testing.T) {
	verifier, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	hash, err := verifier.Hash("secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Fatalf("unexpected digest format: %s", hash)
	}

	ok, err := verifier.Verify("secret", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = verifier.Verify("wrong", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestBcryptMalformedDigest(t *testing.T) {
	verifier, err := NewBcrypt(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	ok, err := verifier.Verify("secret", "not-a-bcrypt-digest")
	if err != nil {
		t.Fatalf("Verify must not error on malformed digests: %v", err)
	}
	if ok {
		t.Fatal("malformed digest must not verify")
	}
}
