package corpus

import (
	"fmt"
	"sort"

	"github.com/soundprediction/veridoc/pkg/types"
)

// Snapshot is an immutable view of the corpus. All accessors are safe for
// concurrent use; nothing mutates a snapshot after construction.
type Snapshot struct {
	docs    []types.Document
	byID    map[string]int
	domains []types.Domain
}

// NewSnapshot validates the documents and builds the id index. Duplicate ids
// and invalid documents are configuration errors.
func NewSnapshot(docs []types.Document) (*Snapshot, error) {
	byID := make(map[string]int, len(docs))
	domainSet := make(map[types.Domain]bool)
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if _, dup := byID[docs[i].ID]; dup {
			return nil, fmt.Errorf("duplicate document id %s", docs[i].ID)
		}
		byID[docs[i].ID] = i
		domainSet[docs[i].Domain] = true
	}

	domains := make([]types.Domain, 0, len(domainSet))
	for d := range domainSet {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	return &Snapshot{docs: docs, byID: byID, domains: domains}, nil
}

// Documents returns the full document slice. Callers must not mutate it.
func (s *Snapshot) Documents() []types.Document {
	return s.docs
}

// Get returns the document with the given id.
func (s *Snapshot) Get(id string) (types.Document, bool) {
	i, ok := s.byID[id]
	if !ok {
		return types.Document{}, false
	}
	return s.docs[i], true
}

// Domains returns the sorted set of domains present in the corpus.
func (s *Snapshot) Domains() []types.Domain {
	return s.domains
}

// Len returns the number of documents.
func (s *Snapshot) Len() int {
	return len(s.docs)
}
