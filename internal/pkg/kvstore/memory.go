package kvstore

import (
	"context"
	"sync"
)

// Memory is an in-process Store implementation.
//
// It is used for tests and single-node deployments where persistence
// across restarts is handled elsewhere (or not needed).
type Memory struct {
	mu   sync.RWMutex
	data map[string]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]Record)}
}

// Get returns the record stored under key, or ErrNotFound.
func (m *Memory) Get(ctx context.Context, key string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	return rec.Clone(), nil
}

// Put stores the record under key, replacing any previous record.
func (m *Memory) Put(ctx context.Context, key string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = rec.Clone()
	return nil
}

// Delete removes the record under key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Close implements io.Closer for interface compatibility.
func (m *Memory) Close() error {
	return nil
}
