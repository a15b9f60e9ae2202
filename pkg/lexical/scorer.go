package lexical

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/soundprediction/veridoc/pkg/types"
)

// exactPhraseBonus is added when the document contains the whole query as a
// substring. It rewards exact hits that term weighting alone can underrate,
// and the final score is clamped to 1.
const exactPhraseBonus = 0.1

// DocScore is a lexical relevance score for one document.
type DocScore struct {
	ID    string
	Score float64
}

type indexedDoc struct {
	id      string
	domain  types.Domain
	vector  map[string]float64
	norm    float64
	lowered string
}

// Scorer is a TF-IDF index over a fixed document set.
type Scorer struct {
	docs []indexedDoc
	idf  map[string]float64
}

// NewScorer indexes the given documents. The slice is read during
// construction only; the scorer keeps no reference to it.
func NewScorer(docs []types.Document) *Scorer {
	df := make(map[string]int)
	tokenized := make([][]string, len(docs))
	for i, d := range docs {
		terms := termsOf(d.Title + " " + d.Content)
		tokenized[i] = terms
		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		// Smoothed IDF keeps terms that appear everywhere at a small
		// positive weight instead of zeroing them out.
		idf[term] = math.Log((n+1)/(float64(count)+1)) + 1
	}

	indexed := make([]indexedDoc, 0, len(docs))
	for i, d := range docs {
		vector := make(map[string]float64)
		for _, t := range tokenized[i] {
			vector[t]++
		}
		var norm float64
		for term, tf := range vector {
			w := tf * idf[term]
			vector[term] = w
			norm += w * w
		}
		indexed = append(indexed, indexedDoc{
			id:      d.ID,
			domain:  d.Domain,
			vector:  vector,
			norm:    math.Sqrt(norm),
			lowered: strings.ToLower(d.Content),
		})
	}

	return &Scorer{docs: indexed, idf: idf}
}

// Score ranks the indexed documents against the query. When domainFilter is
// non-empty, only documents in those domains are scored. Documents with zero
// relevance are omitted. Results are ordered by score descending, then by
// document id ascending.
func (s *Scorer) Score(query string, domainFilter map[types.Domain]bool) []DocScore {
	queryTerms := termsOf(query)
	if len(queryTerms) == 0 || len(s.docs) == 0 {
		return nil
	}

	queryVector := make(map[string]float64)
	for _, t := range queryTerms {
		queryVector[t]++
	}
	var queryNorm float64
	for term, tf := range queryVector {
		idf, ok := s.idf[term]
		if !ok {
			delete(queryVector, term)
			continue
		}
		w := tf * idf
		queryVector[term] = w
		queryNorm += w * w
	}
	if len(queryVector) == 0 {
		return nil
	}
	queryNorm = math.Sqrt(queryNorm)

	loweredQuery := strings.ToLower(strings.TrimSpace(query))

	var results []DocScore
	for _, d := range s.docs {
		if len(domainFilter) > 0 && !domainFilter[d.domain] {
			continue
		}
		score := cosine(queryVector, queryNorm, d)
		if score > 0 && loweredQuery != "" && strings.Contains(d.lowered, loweredQuery) {
			score = math.Min(1, score+exactPhraseBonus)
		}
		if score > 0 {
			results = append(results, DocScore{ID: d.id, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results
}

func cosine(queryVector map[string]float64, queryNorm float64, d indexedDoc) float64 {
	if d.norm == 0 || queryNorm == 0 {
		return 0
	}
	var dot float64
	for term, qw := range queryVector {
		if dw, ok := d.vector[term]; ok {
			dot += qw * dw
		}
	}
	return dot / (queryNorm * d.norm)
}

// termsOf tokenizes text into lowercase unigrams plus adjacent bigrams.
// Bigrams are stored as "a b" terms so phrase proximity influences scoring.
func termsOf(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, len(tokens)*2-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
