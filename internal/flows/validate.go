package flows

import (
	"errors"

	"github.com/authforge/credauth/token"
)

// ValidateFailureKind classifies validation failures for root-level mapping.
type ValidateFailureKind int

const (
	ValidateFailureNone ValidateFailureKind = iota
	ValidateFailureValidation
	ValidateFailureInvalid
	ValidateFailureExpired
)

// ValidateResult carries the recovered subject or classified failure.
type ValidateResult struct {
	Failure   ValidateFailureKind
	Err       error
	AccountID string
	Kind      token.Kind
}

// ValidateDeps captures token validation dependencies.
type ValidateDeps struct {
	Verify func(string) (string, token.Kind, error)
}

// RunValidate verifies a token's signature and expiry. Validation is pure and
// stateless; the record store is never consulted.
func RunValidate(tokenStr string, deps ValidateDeps) ValidateResult {
	if tokenStr == "" {
		return ValidateResult{
			Failure: ValidateFailureValidation,
			Err:     errors.New("empty token"),
		}
	}

	subject, kind, err := deps.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return ValidateResult{
				Failure: ValidateFailureExpired,
				Err:     err,
			}
		}
		return ValidateResult{
			Failure: ValidateFailureInvalid,
			Err:     err,
		}
	}

	// Refresh tokens are not bearer credentials; only access tokens pass.
	if kind != token.KindAccess {
		return ValidateResult{
			Failure: ValidateFailureInvalid,
			Err:     errors.New("token kind mismatch"),
		}
	}

	return ValidateResult{
		AccountID: subject,
		Kind:      kind,
	}
}
