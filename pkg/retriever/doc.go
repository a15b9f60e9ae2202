// Package retriever implements hybrid retrieval: a semantic similarity query
// against the vector index combined with a lexical TF-IDF pass over the
// corpus, merged into one ranked, deduplicated candidate list.
//
// The two passes are independent and run concurrently; correctness does not
// depend on their relative ordering because the merge keys on document id.
// If the vector index is unavailable or times out, retrieval degrades to
// lexical-only ranking and never fails the call.
//
// # Scoring
//
// combined = semanticWeight*semantic + lexicalWeight*lexical, with a
// document missing from one list contributing 0 on that axis. When the
// semantic pass is unavailable altogether, the lexical score is used at full
// weight and candidates carry types.ScoreAbsent on the semantic axis.
// Output is ordered by combined score descending, ties by document id
// ascending, truncated to k.
package retriever
