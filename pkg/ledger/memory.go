package ledger

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

type memoryEntry struct {
	Entry
	cycle int
}

// Memory is an in-process Ledger. When maxEntries is positive, the least recently
// touched entries are evicted once the cap is exceeded, but only entries untouched in
// both the current and the previous cycle. A contract still in intake is looked up every
// pass and so is never evicted; the cap may be exceeded while intake holds more
// contracts than it allows.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	cycle      int
	now        func() time.Time
	logger     *slog.Logger
}

// NewMemory creates an empty memory ledger. maxEntries <= 0 disables eviction.
func NewMemory(maxEntries int, logger *slog.Logger) *Memory {
	return &Memory{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
		logger:     logger.With("system", "ledger", "backend", "memory"),
	}
}

func (m *Memory) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("memory ledger ready", "max_entries", m.maxEntries)
	return nil
}

func (m *Memory) Backend() string { return "memory" }

// BeginCycle starts a new discovery cycle. Entries untouched in the previous cycle
// become eligible for eviction.
func (m *Memory) BeginCycle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cycle++
	m.evict()
}

func (m *Memory) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	m.touch(el)
	return el.Value.(*memoryEntry).Entry, true, nil
}

func (m *Memory) Record(ctx context.Context, key string, completed bool) (Entry, error) {
	if key == "" {
		return Entry{}, ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		el = m.order.PushBack(&memoryEntry{Entry: Entry{Key: key}})
		m.entries[key] = el
	}
	m.touch(el)

	e := el.Value.(*memoryEntry)
	e.Attempts++
	e.Completed = e.Completed || completed
	e.UpdatedAt = m.now()

	m.evict()
	return e.Entry, nil
}

// Len returns the number of tracked identities.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *Memory) touch(el *list.Element) {
	el.Value.(*memoryEntry).cycle = m.cycle
	m.order.MoveToBack(el)
}

// evict drops the least recently touched entries older than the previous cycle until
// the cap holds.
func (m *Memory) evict() {
	if m.maxEntries <= 0 {
		return
	}
	for m.order.Len() > m.maxEntries {
		oldest := m.order.Front()
		e := oldest.Value.(*memoryEntry)
		if e.cycle >= m.cycle-1 {
			return
		}
		m.order.Remove(oldest)
		delete(m.entries, e.Key)
		m.logger.Debug("evicted ledger entry", "key", e.Key)
	}
}
