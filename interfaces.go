package veridoc

import (
	"context"

	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/types"
)

// This file defines focused interfaces that follow the Interface Segregation
// Principle. The main Veridoc interface is composed from these smaller
// interfaces; consumers should depend on the smallest one that meets their
// needs.

// Querier runs validated retrieval. This is the interface the generation and
// API layers consume: everything it returns is already authorized and
// redacted for the requesting principal.
type Querier interface {
	// RetrieveAndValidate runs the full pipeline for one query.
	RetrieveAndValidate(ctx context.Context, query string, principal types.Principal, k int) (*types.PipelineResult, error)

	// RetrieveAndValidateCompliance additionally restricts domains to a
	// compliance framework's allowed set.
	RetrieveAndValidateCompliance(ctx context.Context, query string, principal types.Principal, k int, framework policy.Framework) (*types.PipelineResult, error)
}

// Reloader swaps in fresh corpus and policy state without interrupting
// in-flight requests.
type Reloader interface {
	// Reload rebuilds the corpus snapshot and policy tables atomically.
	Reload(ctx context.Context) error
}

// Inspector exposes read-only operational state.
type Inspector interface {
	// Stats describes the currently served corpus.
	Stats() Stats
}

// Ensure Veridoc composes all focused interfaces, and that Client satisfies
// all of them. This compile-time check keeps the facade honest.
var _ interface {
	Querier
	Reloader
	Inspector
} = (Veridoc)(nil)

var _ Veridoc = (*Client)(nil)
