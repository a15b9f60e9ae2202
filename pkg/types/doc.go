// Package types defines the core data types for the veridoc validation pipeline.
//
// This package contains the fundamental types used throughout veridoc:
//   - Document: An immutable corpus document with domain and classification
//   - Principal: The requesting user with a department role and derived canonical role
//   - RetrievalCandidate: A per-query scored document produced by hybrid retrieval
//   - ValidationOutcome: The per-document authorization and redaction result
//   - PipelineStats: The decision-trail counters for a single pipeline run
//
// # Lifecycle
//
// Document values are loaded once at process start and are read-only for the
// life of the process. Principal, RetrievalCandidate, and ValidationOutcome are
// created fresh per query and discarded after the response is produced.
//
// # Validation
//
// Types provide Validate() methods for input validation:
//
//	doc := &types.Document{ID: "fin-001", Domain: types.DomainFinance}
//	if err := doc.Validate(); err != nil {
//	    // Handle validation error
//	}
package types
