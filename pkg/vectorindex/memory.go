package vectorindex

import (
	"context"
	"sort"
	"sync"

	"github.com/soundprediction/veridoc/pkg/types"
)

type memoryEntry struct {
	domain types.Domain
	vector []float32
}

// MemoryIndex is a brute-force in-memory vector index.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]memoryEntry)}
}

// Upsert implements Index.
func (m *MemoryIndex) Upsert(_ context.Context, id string, domain types.Domain, vector []float32) error {
	stored := make([]float32, len(vector))
	copy(stored, vector)

	m.mu.Lock()
	m.entries[id] = memoryEntry{domain: domain, vector: stored}
	m.mu.Unlock()
	return nil
}

// Search implements Index.
func (m *MemoryIndex) Search(ctx context.Context, queryVector []float32, k int, domainFilter map[types.Domain]bool) ([]Hit, error) {
	if k <= 0 || len(queryVector) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	hits := make([]Hit, 0, len(m.entries))
	for id, e := range m.entries {
		if len(domainFilter) > 0 && !domainFilter[e.domain] {
			continue
		}
		score := similarityScore(queryVector, e.vector)
		if score > 0 {
			hits = append(hits, Hit{DocumentID: id, Score: score})
		}
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len implements Index.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close implements Index.
func (m *MemoryIndex) Close() error {
	return nil
}
