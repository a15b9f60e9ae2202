package retriever

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/soundprediction/veridoc/pkg/corpus"
	"github.com/soundprediction/veridoc/pkg/embedder"
	"github.com/soundprediction/veridoc/pkg/lexical"
	"github.com/soundprediction/veridoc/pkg/types"
	"github.com/soundprediction/veridoc/pkg/vectorindex"
)

const (
	// DefaultSemanticWeight and DefaultLexicalWeight are the merge weights
	// applied when the config leaves them zero.
	DefaultSemanticWeight = 0.6
	DefaultLexicalWeight  = 0.4
)

// Config holds the merge weights for hybrid scoring.
type Config struct {
	SemanticWeight float64 `json:"semantic_weight"`
	LexicalWeight  float64 `json:"lexical_weight"`
}

// Retriever merges semantic and lexical search over a corpus snapshot.
// The vector index and embedder are optional: with either missing, the
// retriever runs lexical-only and marks the semantic axis absent.
type Retriever struct {
	index    vectorindex.Index
	embedder embedder.Client
	logger   *slog.Logger
	config   Config
}

// New creates a hybrid retriever.
func New(index vectorindex.Index, emb embedder.Client, config Config, logger *slog.Logger) *Retriever {
	if config.SemanticWeight <= 0 {
		config.SemanticWeight = DefaultSemanticWeight
	}
	if config.LexicalWeight <= 0 {
		config.LexicalWeight = DefaultLexicalWeight
	}
	return &Retriever{
		index:    index,
		embedder: emb,
		logger:   logger,
		config:   config,
	}
}

// Retrieve returns up to k candidates for the query, ordered by combined
// score descending with ties broken by document id ascending. degraded
// reports whether the semantic pass was unavailable for this call.
//
// Retrieval never fails: an empty corpus or zero matches yields an empty
// slice, and any vector-index error degrades to lexical-only.
func (r *Retriever) Retrieve(
	ctx context.Context,
	snap *corpus.Snapshot,
	scorer *lexical.Scorer,
	query string,
	k int,
	domainFilter map[types.Domain]bool,
) (candidates []types.RetrievalCandidate, degraded bool) {
	query = strings.TrimSpace(query)
	if query == "" || k <= 0 || snap == nil || snap.Len() == 0 {
		return nil, false
	}

	// The semantic and lexical passes are independent; run them in
	// parallel and join before merging.
	var (
		wg            sync.WaitGroup
		semanticHits  []vectorindex.Hit
		semanticOK    bool
		lexicalScores []lexical.DocScore
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		semanticHits, semanticOK = r.semanticSearch(ctx, query, k*2, domainFilter)
	}()
	go func() {
		defer wg.Done()
		lexicalScores = scorer.Score(query, domainFilter)
	}()
	wg.Wait()

	merged := r.merge(snap, semanticHits, semanticOK, lexicalScores)

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].CombinedScore != merged[j].CombinedScore {
			return merged[i].CombinedScore > merged[j].CombinedScore
		}
		return merged[i].Document.ID < merged[j].Document.ID
	})
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged, !semanticOK
}

// semanticSearch embeds the query and searches the vector index. ok is false
// when the semantic axis is unavailable for any reason.
func (r *Retriever) semanticSearch(ctx context.Context, query string, limit int, domainFilter map[types.Domain]bool) ([]vectorindex.Hit, bool) {
	if r.index == nil || r.embedder == nil {
		return nil, false
	}

	queryVector, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, falling back to lexical-only", "error", err)
		return nil, false
	}

	hits, err := r.index.Search(ctx, queryVector, limit, domainFilter)
	if err != nil {
		r.logger.Warn("vector index search failed, falling back to lexical-only", "error", err)
		return nil, false
	}
	return hits, true
}

// merge combines both ranked lists keyed by document id. A document never
// appears twice regardless of how many source lists surfaced it.
func (r *Retriever) merge(snap *corpus.Snapshot, semanticHits []vectorindex.Hit, semanticOK bool, lexicalScores []lexical.DocScore) []types.RetrievalCandidate {
	byID := make(map[string]*types.RetrievalCandidate)

	for _, hit := range semanticHits {
		doc, ok := snap.Get(hit.DocumentID)
		if !ok {
			// The index can lag behind a corpus reload; skip unknown ids.
			continue
		}
		byID[hit.DocumentID] = &types.RetrievalCandidate{
			Document:      doc,
			SemanticScore: hit.Score,
			LexicalScore:  0,
		}
	}

	for _, ls := range lexicalScores {
		if c, ok := byID[ls.ID]; ok {
			c.LexicalScore = ls.Score
			continue
		}
		doc, ok := snap.Get(ls.ID)
		if !ok {
			continue
		}
		semScore := 0.0
		if !semanticOK {
			semScore = types.ScoreAbsent
		}
		byID[ls.ID] = &types.RetrievalCandidate{
			Document:      doc,
			SemanticScore: semScore,
			LexicalScore:  ls.Score,
		}
	}

	out := make([]types.RetrievalCandidate, 0, len(byID))
	for _, c := range byID {
		if semanticOK {
			c.CombinedScore = r.config.SemanticWeight*max(c.SemanticScore, 0) + r.config.LexicalWeight*c.LexicalScore
		} else {
			// Lexical-only: rank by the lexical score at full weight so
			// degradation does not deflate every candidate.
			c.SemanticScore = types.ScoreAbsent
			c.CombinedScore = c.LexicalScore
		}
		if c.CombinedScore > 0 {
			out = append(out, *c)
		}
	}
	return out
}
