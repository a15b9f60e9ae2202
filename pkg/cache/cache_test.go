package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/types"
)

func sampleResult(ids ...string) *types.PipelineResult {
	result := &types.PipelineResult{}
	for _, id := range ids {
		result.Accepted = append(result.Accepted, types.ValidationOutcome{
			Document: types.Document{ID: id, Domain: types.DomainPublic},
			Accepted: true,
		})
	}
	result.Stats = types.PipelineStats{Retrieved: len(ids), Accepted: len(ids)}
	return result
}

func TestKeyCoversAuthorizationContext(t *testing.T) {
	base := Key("quarterly revenue", types.RoleAnalyst, 5, "")

	assert.Equal(t, base, Key("quarterly revenue", types.RoleAnalyst, 5, ""))
	assert.Equal(t, base, Key("  quarterly revenue  ", types.RoleAnalyst, 5, ""), "whitespace must not change the key")

	assert.NotEqual(t, base, Key("quarterly revenue", types.RoleGuest, 5, ""), "role participates in the key")
	assert.NotEqual(t, base, Key("quarterly revenue", types.RoleAnalyst, 10, ""), "k participates in the key")
	assert.NotEqual(t, base, Key("quarterly revenue", types.RoleAnalyst, 5, policy.FrameworkHIPAA), "framework participates in the key")
	assert.NotEqual(t, base, Key("annual budget", types.RoleAnalyst, 5, ""))
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, time.Minute)

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleResult("pub-001")
	require.NoError(t, m.Set(ctx, "k1", want))

	got, ok, err := m.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, time.Minute)

	now := time.Now()
	m.now = func() time.Time { return now }
	require.NoError(t, m.Set(ctx, "k1", sampleResult("a")))

	_, ok, _ := m.Get(ctx, "k1")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = m.Get(ctx, "k1")
	assert.False(t, ok, "expired entry must be a miss")
	assert.Equal(t, 0, m.Len(), "expired entry is evicted on read")
}

func TestMemoryLRUEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, time.Minute)

	require.NoError(t, m.Set(ctx, "a", sampleResult("a")))
	require.NoError(t, m.Set(ctx, "b", sampleResult("b")))

	// Touch "a" so "b" is the least recently used.
	_, ok, _ := m.Get(ctx, "a")
	require.True(t, ok)

	require.NoError(t, m.Set(ctx, "c", sampleResult("c")))
	assert.Equal(t, 2, m.Len())

	_, ok, _ = m.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok, _ = m.Get(ctx, "a")
	assert.True(t, ok)
	_, ok, _ = m.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemorySetOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, time.Minute)

	require.NoError(t, m.Set(ctx, "k", sampleResult("old")))
	require.NoError(t, m.Set(ctx, "k", sampleResult("new")))

	got, ok, _ := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "new", got.Accepted[0].Document.ID)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10, time.Minute)

	require.NoError(t, m.Set(ctx, "a", sampleResult("a")))
	require.NoError(t, m.Set(ctx, "b", sampleResult("b")))
	require.NoError(t, m.Clear(ctx))

	assert.Equal(t, 0, m.Len())
	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)
}
