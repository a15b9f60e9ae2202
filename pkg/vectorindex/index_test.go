package vectorindex

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/veridoc/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryIndexSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Upsert(ctx, "a", types.DomainFinance, []float32{1, 0, 0}))
	require.NoError(t, idx.Upsert(ctx, "b", types.DomainFinance, []float32{0.9, 0.1, 0}))
	require.NoError(t, idx.Upsert(ctx, "c", types.DomainHR, []float32{0, 1, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].DocumentID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.Equal(t, "b", hits[1].DocumentID)

	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0)
	}
}

func TestMemoryIndexDomainFilter(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Upsert(ctx, "fin", types.DomainFinance, []float32{1, 0}))
	require.NoError(t, idx.Upsert(ctx, "hr", types.DomainHR, []float32{1, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, map[types.Domain]bool{types.DomainHR: true})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "hr", hits[0].DocumentID)
}

func TestMemoryIndexTieBreakByID(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Upsert(ctx, "b", types.DomainPublic, []float32{1, 0}))
	require.NoError(t, idx.Upsert(ctx, "a", types.DomainPublic, []float32{1, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].DocumentID)
	assert.Equal(t, "b", hits[1].DocumentID)
}

func TestMemoryIndexEmptyQuery(t *testing.T) {
	idx := NewMemoryIndex()
	hits, err := idx.Search(context.Background(), nil, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBadgerIndexPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx, err := NewBadgerIndex(dir)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, "a", types.DomainFinance, []float32{1, 0, 0}))
	require.NoError(t, idx.Upsert(ctx, "b", types.DomainHR, []float32{0, 1, 0}))
	require.NoError(t, idx.Close())

	reopened, err := NewBadgerIndex(dir)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.Len())
	hits, err := reopened.Search(ctx, []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "a", hits[0].DocumentID)
}

// failingIndex always errors, to drive the breaker open.
type failingIndex struct{}

func (f *failingIndex) Upsert(context.Context, string, types.Domain, []float32) error {
	return nil
}

func (f *failingIndex) Search(context.Context, []float32, int, map[types.Domain]bool) ([]Hit, error) {
	return nil, errors.New("backend down")
}

func (f *failingIndex) Len() int { return 0 }

func (f *failingIndex) Close() error { return nil }

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	breaker := NewBreaker(&failingIndex{}, BreakerConfig{
		Timeout:     50 * time.Millisecond,
		OpenTimeout: time.Minute,
	}, testLogger())

	// Drive enough failures to trip the breaker.
	for i := 0; i < 5; i++ {
		_, err := breaker.Search(ctx, []float32{1}, 3, nil)
		require.Error(t, err)
	}

	_, err := breaker.Search(ctx, []float32{1}, 3, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

// slowIndex blocks until the context is done.
type slowIndex struct{}

func (s *slowIndex) Upsert(context.Context, string, types.Domain, []float32) error { return nil }

func (s *slowIndex) Search(ctx context.Context, _ []float32, _ int, _ map[types.Domain]bool) ([]Hit, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *slowIndex) Len() int { return 0 }

func (s *slowIndex) Close() error { return nil }

func TestBreakerTimesOutSlowSearch(t *testing.T) {
	breaker := NewBreaker(&slowIndex{}, BreakerConfig{Timeout: 20 * time.Millisecond}, testLogger())

	start := time.Now()
	_, err := breaker.Search(context.Background(), []float32{1}, 3, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBreakerPassesThroughResults(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.Upsert(ctx, "a", types.DomainPublic, []float32{1, 0}))

	breaker := NewBreaker(idx, BreakerConfig{}, testLogger())
	hits, err := breaker.Search(ctx, []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].DocumentID)
}
