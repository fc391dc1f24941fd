package counter

import (
	"context"
	"sync"
	"time"

	goVerify "github.com/MrEthical07/goVerify"
)

type entry struct {
	failures  int
	expiresAt time.Time
}

// Memory is an in-process counter suitable for single-instance deployment.
// For multiple instances use a shared store such as [Redis].
type Memory struct {
	mu     sync.Mutex
	data   map[string]*entry
	config Config
	now    func() time.Time
}

var _ goVerify.FailedCounter = (*Memory)(nil)

// NewMemory returns an empty in-memory counter.
func NewMemory(cfg Config) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Memory{
		data:   make(map[string]*entry),
		config: cfg,
		now:    time.Now,
	}, nil
}

// live returns the entry for accountID, dropping it when its window elapsed.
// Callers hold m.mu.
func (m *Memory) live(accountID string) *entry {
	e := m.data[accountID]
	if e == nil {
		return nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.data, accountID)
		return nil
	}
	return e
}

// AddFailedCount increments the count, starting a new window when none is live.
func (m *Memory) AddFailedCount(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.live(accountID)
	if e == nil {
		e = &entry{}
		if m.config.Window > 0 {
			e.expiresAt = m.now().Add(m.config.Window)
		}
		m.data[accountID] = e
	}
	e.failures++
	return nil
}

// ResetFailedCount clears the count.
func (m *Memory) ResetFailedCount(_ context.Context, accountID string) error {
	m.mu.Lock()
	delete(m.data, accountID)
	m.mu.Unlock()
	return nil
}

// GetFailedCount returns the live count, 0 when none.
func (m *Memory) GetFailedCount(_ context.Context, accountID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e := m.live(accountID); e != nil {
		return e.failures, nil
	}
	return 0, nil
}

// IsAccountLocked reports count >= Threshold.
func (m *Memory) IsAccountLocked(ctx context.Context, accountID string) (bool, error) {
	count, _ := m.GetFailedCount(ctx, accountID)
	return count >= m.config.Threshold, nil
}
