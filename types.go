package credauth

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/authforge/credauth/internal/audit"
	"github.com/authforge/credauth/store"
)

// TokenPair is returned by [Engine.Login] and [Engine.Refresh]. It carries
// the signed access and refresh tokens for the authenticated account.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterResult is returned by [Engine.Register]. RequestID correlates the
// registration with its audit trail; Warning is set when the account was
// created but the downstream profile notification failed.
type RegisterResult struct {
	RequestID string
	AccountID string
	CreatedAt time.Time
	Warning   string
}

// ProfileNotifier is the optional downstream hook invoked after a successful
// registration. Failures are degraded to a warning and never roll back the
// registration.
type ProfileNotifier interface {
	CreateProfile(ctx context.Context, accountID string) error
}

// ProfileNotifierFunc adapts a plain function to [ProfileNotifier].
type ProfileNotifierFunc func(ctx context.Context, accountID string) error

// CreateProfile describes the createprofile operation and its observable behavior.
func (f ProfileNotifierFunc) CreateProfile(ctx context.Context, accountID string) error {
	return f(ctx, accountID)
}

// CredentialRecord is the durable per-account state held in the account
// store. It is re-exported here so callers can inspect records without
// importing the store package.
type CredentialRecord = store.Record

// AccountStore is the persistence interface that callers must implement (or
// pick from store.Memory, store.Redis, store.Gorm) to integrate credauth
// with their infrastructure.
type AccountStore = store.AccountStore

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine’s audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
