package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/veridoc/pkg/types"
)

const badgerKeyPrefix = "vec/"

type badgerRecord struct {
	Domain types.Domain `json:"domain"`
	Vector []float32    `json:"vector"`
}

// BadgerIndex persists vectors in a badger database and serves searches from
// an in-memory mirror loaded at open time. Writes go to badger first, then to
// the mirror, so a crash can lose at most the in-flight upsert.
type BadgerIndex struct {
	db     *badger.DB
	memory *MemoryIndex
}

// NewBadgerIndex opens (or creates) the index at the given path and loads all
// stored vectors into memory.
func NewBadgerIndex(path string) (*BadgerIndex, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open vector index at %s: %w", path, err)
	}

	idx := &BadgerIndex{db: db, memory: NewMemoryIndex()}
	if err := idx.loadAll(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (b *BadgerIndex) loadAll() error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				var rec badgerRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("decode vector for %s: %w", id, err)
				}
				return b.memory.Upsert(context.Background(), id, rec.Domain, rec.Vector)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Upsert implements Index.
func (b *BadgerIndex) Upsert(ctx context.Context, id string, domain types.Domain, vector []float32) error {
	data, err := json.Marshal(badgerRecord{Domain: domain, Vector: vector})
	if err != nil {
		return fmt.Errorf("encode vector for %s: %w", id, err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+id), data)
	})
	if err != nil {
		return fmt.Errorf("persist vector for %s: %w", id, err)
	}
	return b.memory.Upsert(ctx, id, domain, vector)
}

// Search implements Index.
func (b *BadgerIndex) Search(ctx context.Context, queryVector []float32, k int, domainFilter map[types.Domain]bool) ([]Hit, error) {
	return b.memory.Search(ctx, queryVector, k, domainFilter)
}

// Len implements Index.
func (b *BadgerIndex) Len() int {
	return b.memory.Len()
}

// Close implements Index.
func (b *BadgerIndex) Close() error {
	return b.db.Close()
}
