// Package vectorindex provides the similarity-search collaborator for hybrid
// retrieval.
//
// Two backends are provided: an in-memory index for tests and small corpora,
// and a badger-backed index that persists vectors across restarts. Both score
// by cosine similarity normalized to [0, 1].
//
// The Breaker wrapper bounds every search with a timeout and a circuit
// breaker. Retrieval treats any error from the index as "semantic score
// absent" and degrades to lexical-only ranking, so a slow or unreachable
// index can never fail a query.
package vectorindex
