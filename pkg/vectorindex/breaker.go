package vectorindex

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/veridoc/pkg/types"
)

// BreakerConfig configures the circuit breaker around index searches.
type BreakerConfig struct {
	// Timeout bounds a single search call. Zero means 300ms.
	Timeout time.Duration

	// MaxRequests, Interval, and OpenTimeout map onto gobreaker settings.
	MaxRequests uint32
	Interval    time.Duration
	OpenTimeout time.Duration

	// ReadyToTripRatio is the failure ratio at which the breaker opens.
	// Zero means 0.6.
	ReadyToTripRatio float64
}

const defaultSearchTimeout = 300 * time.Millisecond

// Breaker wraps an Index with a per-call timeout and a circuit breaker.
// While the breaker is open, Search fails fast with ErrUnavailable instead of
// waiting out the timeout on an index that is known to be down.
type Breaker struct {
	index  Index
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger

	timeout time.Duration
}

// NewBreaker wraps the given index.
func NewBreaker(index Index, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSearchTimeout
	}
	if cfg.ReadyToTripRatio <= 0 {
		cfg.ReadyToTripRatio = 0.6
	}

	st := gobreaker.Settings{
		Name:        "vector-index",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("vector index circuit breaker state change",
				"name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Breaker{
		index:   index,
		cb:      gobreaker.NewCircuitBreaker(st),
		logger:  logger,
		timeout: cfg.Timeout,
	}
}

// Upsert implements Index. Writes bypass the breaker; they happen during
// indexing, not on the query path.
func (b *Breaker) Upsert(ctx context.Context, id string, domain types.Domain, vector []float32) error {
	return b.index.Upsert(ctx, id, domain, vector)
}

// Search implements Index with the timeout and breaker applied.
func (b *Breaker) Search(ctx context.Context, queryVector []float32, k int, domainFilter map[types.Domain]bool) ([]Hit, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()
		return b.index.Search(callCtx, queryVector, k, domainFilter)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, ErrUnavailable
		}
		return nil, err
	}
	hits, _ := result.([]Hit)
	return hits, nil
}

// Len implements Index.
func (b *Breaker) Len() int {
	return b.index.Len()
}

// Close implements Index.
func (b *Breaker) Close() error {
	return b.index.Close()
}
