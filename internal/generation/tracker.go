package generation

import (
	"context"
	"sync"
	"time"
)

// Progress is one project's batch progress snapshot. Writes are whole-entry
// replacements so a concurrent reader always sees a consistent value.
type Progress struct {
	CurrentBatch int `json:"current_batch"`
	TotalBatches int `json:"total_batches"`
	Percent      int `json:"percent"`
}

// ProgressStore is the process-wide tracker polled by the status endpoint
// while a worker is writing. Entries are ephemeral; a missing entry is not an
// error, callers fall back to the project lifecycle state.
type ProgressStore interface {
	Set(ctx context.Context, projectID int, p Progress)
	Get(ctx context.Context, projectID int) (Progress, bool)
	Clear(ctx context.Context, projectID int)
}

// DefaultProgressTTL bounds how long an entry for an abandoned job survives.
const DefaultProgressTTL = 30 * time.Minute

type memoryEntry struct {
	progress  Progress
	updatedAt time.Time
}

// MemoryProgressStore keeps progress in an in-process map. Stale entries are
// dropped lazily on access and by an optional background sweep.
type MemoryProgressStore struct {
	mu      sync.RWMutex
	entries map[int]memoryEntry
	ttl     time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

var _ ProgressStore = (*MemoryProgressStore)(nil)

func NewMemoryProgressStore(ttl time.Duration) *MemoryProgressStore {
	if ttl <= 0 {
		ttl = DefaultProgressTTL
	}
	return &MemoryProgressStore{
		entries: make(map[int]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

func (m *MemoryProgressStore) Set(_ context.Context, projectID int, p Progress) {
	m.mu.Lock()
	m.entries[projectID] = memoryEntry{progress: p, updatedAt: m.now()}
	m.mu.Unlock()
}

func (m *MemoryProgressStore) Get(_ context.Context, projectID int) (Progress, bool) {
	m.mu.RLock()
	e, ok := m.entries[projectID]
	m.mu.RUnlock()
	if !ok {
		return Progress{}, false
	}
	if m.now().Sub(e.updatedAt) > m.ttl {
		m.Clear(context.Background(), projectID)
		return Progress{}, false
	}
	return e.progress, true
}

func (m *MemoryProgressStore) Clear(_ context.Context, projectID int) {
	m.mu.Lock()
	delete(m.entries, projectID)
	m.mu.Unlock()
}

// StartSweeper launches a background loop that evicts stale entries until
// Stop is called.
func (m *MemoryProgressStore) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = m.ttl
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.sweep()
			}
		}
	}()
}

func (m *MemoryProgressStore) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *MemoryProgressStore) sweep() {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	for id, e := range m.entries {
		if e.updatedAt.Before(cutoff) {
			delete(m.entries, id)
		}
	}
	m.mu.Unlock()
}
