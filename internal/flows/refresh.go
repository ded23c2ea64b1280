package flows

import (
	"context"
	"errors"

	"github.com/authforge/credauth/token"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureValidation
	RefreshFailureInvalid
	RefreshFailureExpired
	RefreshFailureIssue
)

// RefreshResult carries the re-issued access token. The refresh token is
// echoed back unchanged; refresh tokens are not rotated.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	AccountID    string
	AccessToken  string
	RefreshToken string
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Verify      func(string) (string, token.Kind, error)
	IssueAccess func(string) (string, error)
}

// RunRefresh verifies the refresh token and issues a fresh access token.
// The flow is read-only: no store access, no counter updates.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	_ = ctx

	if refreshToken == "" {
		return RefreshResult{
			Failure: RefreshFailureValidation,
			Err:     errors.New("empty refresh token"),
		}
	}

	subject, kind, err := deps.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return RefreshResult{
				Failure: RefreshFailureExpired,
				Err:     err,
			}
		}
		return RefreshResult{
			Failure: RefreshFailureInvalid,
			Err:     err,
		}
	}
	if kind != token.KindRefresh {
		return RefreshResult{
			Failure:   RefreshFailureInvalid,
			Err:       errors.New("token kind is not refresh"),
			AccountID: subject,
		}
	}

	access, err := deps.IssueAccess(subject)
	if err != nil {
		return RefreshResult{
			Failure:   RefreshFailureIssue,
			Err:       err,
			AccountID: subject,
		}
	}

	return RefreshResult{
		AccountID:    subject,
		AccessToken:  access,
		RefreshToken: refreshToken,
	}
}
