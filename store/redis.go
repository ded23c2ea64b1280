package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisUpdateRetries = 16

// Redis is an AccountStore backed by a Redis instance or cluster.
// Records are stored as JSON under "<prefix>:acct:<accountID>".
//
// Update uses an optimistic WATCH transaction: concurrent writers to the
// same key retry until the transaction commits, so failed-attempt counters
// never under-count.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis-backed store. An empty prefix defaults to "ca".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "ca"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(accountID string) string {
	return r.prefix + ":acct:" + accountID
}

type redisRecord struct {
	AccountID      string     `json:"account_id"`
	PasswordHash   string     `json:"password_hash"`
	FailedAttempts int        `json:"failed_attempts"`
	Locked         bool       `json:"locked"`
	LockedAt       *time.Time `json:"locked_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func encodeRecord(rec *Record) ([]byte, error) {
	return json.Marshal(redisRecord{
		AccountID:      rec.AccountID,
		PasswordHash:   rec.PasswordHash,
		FailedAttempts: rec.FailedAttempts,
		Locked:         rec.Locked,
		LockedAt:       rec.LockedAt,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	})
}

func decodeRecord(data []byte) (*Record, error) {
	var raw redisRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode account record: %w", err)
	}
	return &Record{
		AccountID:      raw.AccountID,
		PasswordHash:   raw.PasswordHash,
		FailedAttempts: raw.FailedAttempts,
		Locked:         raw.Locked,
		LockedAt:       raw.LockedAt,
		CreatedAt:      raw.CreatedAt,
		UpdatedAt:      raw.UpdatedAt,
	}, nil
}

// Get describes the get operation and its observable behavior.
func (r *Redis) Get(ctx context.Context, accountID string) (*Record, error) {
	data, err := r.client.Get(ctx, r.key(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeRecord(data)
}

// Put describes the put operation and its observable behavior.
func (r *Redis) Put(ctx context.Context, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(rec.AccountID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// PutIfAbsent describes the putifabsent operation and its observable behavior.
func (r *Redis) PutIfAbsent(ctx context.Context, rec *Record) (bool, error) {
	data, err := encodeRecord(rec)
	if err != nil {
		return false, err
	}
	ok, err := r.client.SetNX(ctx, r.key(rec.AccountID), data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ok, nil
}

// Update applies fn inside a WATCH transaction, retrying on write conflicts.
func (r *Redis) Update(ctx context.Context, accountID string, fn UpdateFunc) (*Record, error) {
	key := r.key(accountID)

	var out *Record
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return err
		}

		next, err := fn(rec)
		if err != nil {
			return err
		}
		encoded, err := encodeRecord(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	for i := 0; i < redisUpdateRetries; i++ {
		err := r.client.Watch(ctx, txn, key)
		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil):
			return nil, ErrNotFound
		default:
			if _, ok := err.(redis.Error); ok {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			var netErr net.Error
			if errors.As(err, &netErr) {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			// Anything else is an UpdateFunc error and propagates unchanged.
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: update contention on %s", ErrUnavailable, accountID)
}
