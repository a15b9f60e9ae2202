// Package lexical implements the keyword relevance scorer used by hybrid
// retrieval. Documents are indexed into TF-IDF vectors over unigrams and
// bigrams; queries are scored by cosine similarity against those vectors.
//
// The scorer is built once per corpus snapshot and is read-only afterwards,
// so concurrent queries can share it. Scores are normalized to [0, 1] and the
// ranking is fully deterministic: equal scores are ordered by document id
// ascending.
package lexical
