package veridoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soundprediction/veridoc/pkg/audit"
	"github.com/soundprediction/veridoc/pkg/cache"
	"github.com/soundprediction/veridoc/pkg/corpus"
	"github.com/soundprediction/veridoc/pkg/embedder"
	"github.com/soundprediction/veridoc/pkg/lexical"
	"github.com/soundprediction/veridoc/pkg/metrics"
	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/redactor"
	"github.com/soundprediction/veridoc/pkg/retriever"
	"github.com/soundprediction/veridoc/pkg/types"
	"github.com/soundprediction/veridoc/pkg/validator"
	"github.com/soundprediction/veridoc/pkg/vectorindex"
)

// Veridoc is the main interface for retrieving and validating documents.
// RetrieveAndValidate is the sole read path: callers must never bypass it to
// reach document content directly.
type Veridoc interface {
	// RetrieveAndValidate runs the full pipeline for one query: hybrid
	// retrieval, per-document authorization, and redaction. The returned
	// result contains only documents the principal may read, already
	// masked for the principal's canonical role.
	RetrieveAndValidate(ctx context.Context, query string, principal types.Principal, k int) (*types.PipelineResult, error)

	// RetrieveAndValidateCompliance is RetrieveAndValidate with an extra
	// compliance framework restricting the allowed domains.
	RetrieveAndValidateCompliance(ctx context.Context, query string, principal types.Principal, k int, framework policy.Framework) (*types.PipelineResult, error)

	// Reload rebuilds the corpus snapshot (and policy tables, when file
	// backed) and swaps them in atomically. In-flight requests keep the
	// snapshot they started with.
	Reload(ctx context.Context) error

	// Stats describes the currently served corpus.
	Stats() Stats

	// Close releases the vector index, embedder, cache and audit writer.
	Close(ctx context.Context) error
}

// Stats describes the currently loaded corpus and policy.
type Stats struct {
	Documents   int            `json:"documents"`
	Domains     []types.Domain `json:"domains"`
	IndexedDocs int            `json:"indexed_docs"`
	Departments []string       `json:"departments"`
}

// Config holds configuration for the Client.
type Config struct {
	// DefaultK is used when a caller passes k <= 0.
	DefaultK int
	// MaxK caps the per-query result count.
	MaxK int
	// Retrieval holds the hybrid score weights.
	Retrieval retriever.Config
	// PolicyPath, when set, reloads policy tables from this file on Reload.
	PolicyPath string

	// Optional collaborators. Any of these may be nil.
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Audit   *audit.Writer
}

// pipelineState is the consistent view a single request operates on. Reload
// builds a complete replacement and swaps the pointer, never mutating a
// published state.
type pipelineState struct {
	snapshot  *corpus.Snapshot
	scorer    *lexical.Scorer
	tables    *policy.Tables
	validator *validator.Validator
	redactor  *redactor.Redactor
}

// Client is the main implementation of the Veridoc interface.
type Client struct {
	loader    corpus.Loader
	index     vectorindex.Index
	embedder  embedder.Client
	retriever *retriever.Retriever
	state     atomic.Pointer[pipelineState]
	config    *Config
	logger    *slog.Logger
}

var (
	// ErrInvalidPrincipal is returned when the principal has no username.
	ErrInvalidPrincipal = errors.New("invalid principal")
	// ErrEmptyQuery is returned when the query is blank.
	ErrEmptyQuery = errors.New("query cannot be empty")
)

// NewClient builds the pipeline. The initial corpus load and the policy
// tables are validated here: a malformed access table or an unloadable corpus
// refuses to construct rather than serving with partial policy.
func NewClient(
	ctx context.Context,
	loader corpus.Loader,
	index vectorindex.Index,
	embedderClient embedder.Client,
	tables *policy.Tables,
	config *Config,
	logger *slog.Logger,
) (*Client, error) {
	if loader == nil {
		return nil, errors.New("corpus loader is required")
	}
	if config == nil {
		config = &Config{}
	}
	if config.DefaultK <= 0 {
		config.DefaultK = 5
	}
	if config.MaxK <= 0 {
		config.MaxK = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tables == nil {
		tables = policy.Default()
	}

	c := &Client{
		loader:    loader,
		index:     index,
		embedder:  embedderClient,
		retriever: retriever.New(index, embedderClient, config.Retrieval, logger),
		config:    config,
		logger:    logger,
	}

	state, err := c.buildState(ctx, tables)
	if err != nil {
		return nil, err
	}
	c.state.Store(state)

	logger.Info("pipeline ready",
		"documents", state.snapshot.Len(),
		"domains", state.snapshot.Domains())
	return c, nil
}

// buildState loads the corpus and assembles a complete pipeline state around
// the given policy tables.
func (c *Client) buildState(ctx context.Context, tables *policy.Tables) (*pipelineState, error) {
	docs, err := c.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	snap, err := corpus.NewSnapshot(docs)
	if err != nil {
		return nil, err
	}
	if err := tables.Validate(snap.Domains()); err != nil {
		return nil, fmt.Errorf("policy tables do not cover the corpus: %w", err)
	}

	return &pipelineState{
		snapshot:  snap,
		scorer:    lexical.NewScorer(snap.Documents()),
		tables:    tables,
		validator: validator.New(tables, c.logger),
		redactor:  redactor.New(tables.Registry),
	}, nil
}

// RetrieveAndValidate implements Veridoc.
func (c *Client) RetrieveAndValidate(ctx context.Context, query string, principal types.Principal, k int) (*types.PipelineResult, error) {
	return c.run(ctx, query, principal, k, "")
}

// RetrieveAndValidateCompliance implements Veridoc.
func (c *Client) RetrieveAndValidateCompliance(ctx context.Context, query string, principal types.Principal, k int, framework policy.Framework) (*types.PipelineResult, error) {
	return c.run(ctx, query, principal, k, framework)
}

func (c *Client) run(ctx context.Context, query string, principal types.Principal, k int, framework policy.Framework) (*types.PipelineResult, error) {
	start := time.Now()

	if err := principal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = c.config.DefaultK
	}
	if k > c.config.MaxK {
		k = c.config.MaxK
	}

	state := c.state.Load()
	role := state.validator.ResolveRole(principal)

	key := cache.Key(query, role, k, framework)
	if c.config.Cache != nil {
		cached, hit, err := c.config.Cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("cache lookup failed", "error", err)
		}
		c.config.Metrics.RecordCache(hit)
		if hit {
			return cached, nil
		}
	}

	retrievalStart := time.Now()
	candidates, degraded := c.retriever.Retrieve(ctx, state.snapshot, state.scorer, query, k, nil)
	c.config.Metrics.ObserveRetrieval(time.Since(retrievalStart), degraded)
	if degraded {
		c.logger.Warn("retrieval degraded to lexical-only",
			"query_len", len(query),
			"username", principal.Username)
	}

	outcomes := state.validator.Authorize(candidates, principal, role, framework)

	result := &types.PipelineResult{
		Accepted: make([]types.ValidationOutcome, 0, len(outcomes)),
		Stats:    types.PipelineStats{Retrieved: len(outcomes)},
	}
	for i := range outcomes {
		o := &outcomes[i]
		if !o.Accepted {
			result.Stats.Denied++
			c.config.Metrics.RecordDenial(string(o.Document.Domain))
			continue
		}

		masked, labels := state.redactor.Mask(o.Document.Content, role)
		o.Document.Content = masked
		o.MaskedLabels = labels
		o.DetectedTerms = state.validator.DetectTerms(masked)
		if len(labels) > 0 {
			c.config.Metrics.RecordMasked()
		}

		result.Stats.Accepted++
		result.Accepted = append(result.Accepted, *o)
	}

	if c.config.Audit != nil {
		if err := c.config.Audit.Log(query, principal, role, string(framework), outcomes, result.Stats, degraded); err != nil {
			c.logger.Warn("audit write failed", "error", err)
		}
	}
	if c.config.Cache != nil {
		if err := c.config.Cache.Set(ctx, key, result); err != nil {
			c.logger.Warn("cache store failed", "error", err)
		}
	}

	c.config.Metrics.RecordQuery(string(role), result.Stats.Accepted, time.Since(start))
	c.logger.Info("query processed",
		"query_id", types.QueryIDFromContext(ctx),
		"username", principal.Username,
		"role", role,
		"retrieved", result.Stats.Retrieved,
		"accepted", result.Stats.Accepted,
		"denied", result.Stats.Denied,
		"degraded", degraded)
	return result, nil
}

// Reload implements Veridoc. The new state is built completely before the
// swap; a failed reload leaves the serving state untouched.
func (c *Client) Reload(ctx context.Context) error {
	tables := c.state.Load().tables
	if c.config.PolicyPath != "" {
		loaded, err := policy.LoadFile(c.config.PolicyPath)
		if err != nil {
			return fmt.Errorf("reload policy: %w", err)
		}
		tables = loaded
	}

	state, err := c.buildState(ctx, tables)
	if err != nil {
		return err
	}
	c.state.Store(state)

	// Cached results may reference documents or policy that no longer exist.
	if c.config.Cache != nil {
		if err := c.config.Cache.Clear(ctx); err != nil {
			c.logger.Warn("cache clear after reload failed", "error", err)
		}
	}

	c.logger.Info("corpus reloaded", "documents", state.snapshot.Len())
	return nil
}

// Stats implements Veridoc.
func (c *Client) Stats() Stats {
	state := c.state.Load()
	indexed := 0
	if c.index != nil {
		indexed = c.index.Len()
	}
	return Stats{
		Documents:   state.snapshot.Len(),
		Domains:     state.snapshot.Domains(),
		IndexedDocs: indexed,
		Departments: state.tables.Roles.Departments(),
	}
}

// Close implements Veridoc.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if c.index != nil {
		errs = append(errs, c.index.Close())
	}
	if c.embedder != nil {
		errs = append(errs, c.embedder.Close())
	}
	if c.config.Cache != nil {
		errs = append(errs, c.config.Cache.Close())
	}
	if c.config.Audit != nil {
		errs = append(errs, c.config.Audit.Close())
	}
	return errors.Join(errs...)
}
