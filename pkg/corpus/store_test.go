package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/veridoc/pkg/types"
)

func TestNewSnapshotRejectsDuplicates(t *testing.T) {
	_, err := NewSnapshot([]types.Document{
		{ID: "a", Domain: types.DomainPublic},
		{ID: "a", Domain: types.DomainPublic},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewSnapshotRejectsInvalidDocument(t *testing.T) {
	_, err := NewSnapshot([]types.Document{{ID: "", Domain: types.DomainPublic}})
	require.Error(t, err)
}

func TestSnapshotDomains(t *testing.T) {
	snap, err := NewSnapshot([]types.Document{
		{ID: "a", Domain: types.DomainPublic},
		{ID: "b", Domain: types.DomainFinance},
		{ID: "c", Domain: types.DomainFinance},
	})
	require.NoError(t, err)
	assert.Equal(t, []types.Domain{types.DomainFinance, types.DomainPublic}, snap.Domains())
	assert.Equal(t, 3, snap.Len())

	doc, ok := snap.Get("b")
	require.True(t, ok)
	assert.Equal(t, types.DomainFinance, doc.Domain)

	_, ok = snap.Get("missing")
	assert.False(t, ok)
}

func TestFileLoaderYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.yaml")
	content := `
documents:
  - id: fin-001
    title: Q3 Report
    content: Revenue grew.
    domain: finance
    classification: confidential
  - id: pub-001
    title: Notice
    content: Office closed Friday.
    domain: public
    classification: public
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	docs, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "fin-001", docs[0].ID)
	assert.Equal(t, types.ClassificationConfidential, docs[0].Classification)
}

func TestStoreReloadSwapsSnapshot(t *testing.T) {
	ctx := context.Background()

	loader := &switchingLoader{
		first:  []types.Document{{ID: "a", Domain: types.DomainPublic}},
		second: []types.Document{{ID: "a", Domain: types.DomainPublic}, {ID: "b", Domain: types.DomainHR}},
	}
	store, err := NewStore(ctx, loader)
	require.NoError(t, err)

	before := store.Snapshot()
	assert.Equal(t, 1, before.Len())

	after, err := store.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Len())

	// The old snapshot is untouched by the swap.
	assert.Equal(t, 1, before.Len())
	assert.Same(t, after, store.Snapshot())
}

type switchingLoader struct {
	first  []types.Document
	second []types.Document
	calls  int
}

func (l *switchingLoader) Load(context.Context) ([]types.Document, error) {
	l.calls++
	if l.calls == 1 {
		return l.first, nil
	}
	return l.second, nil
}
