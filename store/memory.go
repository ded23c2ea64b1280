package store

import (
	"context"
	"sync"
)

// Memory is an in-process AccountStore backed by a mutex-guarded map.
// It is the reference backend for tests and single-process deployments.
//
// Memory instances are safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]*Record),
	}
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation or lookup fails.
func (m *Memory) Get(ctx context.Context, accountID string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Put describes the put operation and its observable behavior.
func (m *Memory) Put(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return ErrUnavailable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.AccountID] = rec.Clone()
	return nil
}

// PutIfAbsent describes the putifabsent operation and its observable behavior.
func (m *Memory) PutIfAbsent(ctx context.Context, rec *Record) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, ErrUnavailable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.AccountID]; ok {
		return false, nil
	}
	m.records[rec.AccountID] = rec.Clone()
	return true, nil
}

// Update applies fn under the store mutex, which serializes all
// read-modify-write sequences for every key.
func (m *Memory) Update(ctx context.Context, accountID string, fn UpdateFunc) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrUnavailable
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[accountID]
	if !ok {
		return nil, ErrNotFound
	}

	next, err := fn(rec.Clone())
	if err != nil {
		return nil, err
	}

	m.records[accountID] = next.Clone()
	return next.Clone(), nil
}
