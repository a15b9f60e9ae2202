package corpus

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/veridoc/pkg/types"
)

// Loader supplies the raw document set. Implementations load from files,
// object stores, or fixtures in tests.
type Loader interface {
	Load(ctx context.Context) ([]types.Document, error)
}

// FileLoader reads documents from a YAML file. JSON files load too since
// JSON is a YAML subset. The file is either a bare document list or a
// mapping with a top-level "documents" key.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the given path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

type documentFile struct {
	Documents []types.Document `yaml:"documents"`
}

// Load implements Loader.
func (l *FileLoader) Load(_ context.Context) ([]types.Document, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	var wrapped documentFile
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Documents) > 0 {
		return wrapped.Documents, nil
	}

	var docs []types.Document
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", l.path, err)
	}
	return docs, nil
}

// StaticLoader wraps an in-memory document slice, mostly for tests and the
// CLI one-shot path.
type StaticLoader []types.Document

// Load implements Loader.
func (l StaticLoader) Load(_ context.Context) ([]types.Document, error) {
	return l, nil
}

// Store holds the current corpus snapshot and swaps it atomically on reload.
type Store struct {
	loader  Loader
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store and performs the initial load. A load failure at
// construction is fatal to the caller; the store never starts empty-handed.
func NewStore(ctx context.Context, loader Loader) (*Store, error) {
	s := &Store{loader: loader}
	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload builds a fresh snapshot from the loader and swaps it in atomically.
// In-flight requests keep whatever snapshot they captured before the swap.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	docs, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	snap, err := NewSnapshot(docs)
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)
	return snap, nil
}

// Snapshot returns the current corpus view.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}
