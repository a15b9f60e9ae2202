package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/soundprediction/veridoc/pkg/types"
)

const (
	// DefaultMaxEntries bounds the in-memory cache size.
	DefaultMaxEntries = 1000
	// DefaultTTL is how long an entry stays valid.
	DefaultTTL = 5 * time.Minute
)

type memoryEntry struct {
	key       string
	result    *types.PipelineResult
	expiresAt time.Time
}

// Memory is an in-process LRU cache with per-entry TTL. Safe for concurrent
// use by multiple request goroutines.
type Memory struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	order      *list.List
	entries    map[string]*list.Element
	now        func() time.Time
}

// NewMemory creates an in-memory cache. Non-positive maxEntries or ttl fall
// back to the defaults.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		maxEntries: maxEntries,
		ttl:        ttl,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (*types.PipelineResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, found := m.entries[key]
	if !found {
		return nil, false, nil
	}
	entry := elem.Value.(*memoryEntry)
	if m.now().After(entry.expiresAt) {
		m.order.Remove(elem)
		delete(m.entries, key)
		return nil, false, nil
	}
	m.order.MoveToFront(elem)
	return entry.result, true, nil
}

func (m *Memory) Set(_ context.Context, key string, result *types.PipelineResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, found := m.entries[key]; found {
		entry := elem.Value.(*memoryEntry)
		entry.result = result
		entry.expiresAt = m.now().Add(m.ttl)
		m.order.MoveToFront(elem)
		return nil
	}

	elem := m.order.PushFront(&memoryEntry{key: key, result: result, expiresAt: m.now().Add(m.ttl)})
	m.entries[key] = elem

	for m.order.Len() > m.maxEntries {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoryEntry).key)
	}
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order.Init()
	m.entries = make(map[string]*list.Element)
	return nil
}

func (m *Memory) Close() error { return nil }

// Len reports the number of live entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}
