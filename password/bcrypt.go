package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt is a bcrypt-backed [Verifier]. It exists for deployments whose
// stored digests predate the argon2id default.
type Bcrypt struct {
	cost int
}

// NewBcrypt constructs a Bcrypt verifier. A zero cost selects
// bcrypt.DefaultCost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash describes the hash operation and its observable behavior.
func (b *Bcrypt) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify describes the verify operation and its observable behavior.
// Malformed digests and mismatches both report (false, nil).
func (b *Bcrypt) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err != nil {
		return false, nil
	}
	return true, nil
}
