package vectorindex

import (
	"context"
	"errors"
	"math"

	"github.com/soundprediction/veridoc/pkg/types"
)

// ErrUnavailable is returned when the index cannot serve a search, for
// example when the circuit breaker is open.
var ErrUnavailable = errors.New("vector index unavailable")

// Hit is a single similarity-search result. Score is in [0, 1].
type Hit struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
}

// Index is the similarity-search collaborator consumed by the retriever.
type Index interface {
	// Upsert stores or replaces the vector for a document.
	Upsert(ctx context.Context, id string, domain types.Domain, vector []float32) error

	// Search returns up to k hits ordered by score descending, ties broken
	// by document id ascending. A non-empty domainFilter restricts results
	// to those domains.
	Search(ctx context.Context, queryVector []float32, k int, domainFilter map[types.Domain]bool) ([]Hit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Close releases backend resources.
	Close() error
}

// cosineSimilarity calculates the cosine similarity between two float32
// vectors. Returns 0 if vectors have different lengths, are empty, or either
// has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// similarityScore clamps cosine similarity into the [0, 1] score range the
// retriever expects.
func similarityScore(a, b []float32) float64 {
	s := cosineSimilarity(a, b)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
