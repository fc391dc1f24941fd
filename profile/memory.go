package profile

import (
	"context"
	"sync"

	goVerify "github.com/MrEthical07/goVerify"
)

// Memory is an in-process profile store, used for local runs and tests.
type Memory struct {
	mu     sync.RWMutex
	hashes map[string]string
}

var _ goVerify.ProfileStore = (*Memory)(nil)

// NewMemory returns a store pre-loaded with digests keyed by account.
func NewMemory(hashes map[string]string) *Memory {
	m := &Memory{hashes: make(map[string]string, len(hashes))}
	for id, h := range hashes {
		m.hashes[id] = h
	}
	return m
}

// PasswordHash returns the stored hash or [goVerify.ErrProfileNotFound].
func (m *Memory) PasswordHash(_ context.Context, accountID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.hashes[accountID]
	if !ok {
		return "", goVerify.ErrProfileNotFound
	}
	return h, nil
}

// Put inserts or replaces the stored digest for accountID.
func (m *Memory) Put(_ context.Context, accountID, passwordHash string) error {
	m.mu.Lock()
	m.hashes[accountID] = passwordHash
	m.mu.Unlock()
	return nil
}
