package types

import (
	"errors"
	"fmt"
	"strings"
)

// Domain is a document category used as the unit of access control.
type Domain string

const (
	DomainFinance Domain = "finance"
	DomainHR      Domain = "hr"
	DomainHealth  Domain = "health"
	DomainLegal   Domain = "legal"
	DomainPublic  Domain = "public"
)

// Classification indicates the handling level of a document.
type Classification string

const (
	ClassificationPublic       Classification = "public"
	ClassificationInternal     Classification = "internal"
	ClassificationConfidential Classification = "confidential"
)

// CanonicalRole is the access-control role derived from a department-specific
// role. All authorization decisions use canonical roles, never department roles.
type CanonicalRole string

const (
	RoleAdmin    CanonicalRole = "admin"
	RoleAnalyst  CanonicalRole = "analyst"
	RoleManager  CanonicalRole = "manager"
	RoleEmployee CanonicalRole = "employee"

	// RoleGuest is the most restrictive role and the fail-closed default for
	// any (department, role) pair absent from the role mapping.
	RoleGuest CanonicalRole = "guest"
)

// CanonicalRoles lists every known canonical role, most privileged first.
var CanonicalRoles = []CanonicalRole{RoleAdmin, RoleAnalyst, RoleManager, RoleEmployee, RoleGuest}

// Document represents a single corpus document. Documents are immutable once
// loaded; the pipeline copies them before rewriting content during redaction.
type Document struct {
	ID             string            `json:"id" yaml:"id"`
	Title          string            `json:"title" yaml:"title"`
	Content        string            `json:"content" yaml:"content"`
	Domain         Domain            `json:"domain" yaml:"domain"`
	Classification Classification    `json:"classification" yaml:"classification"`
	Metadata       map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Validate checks that the document carries the fields the pipeline relies on.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("document id cannot be empty")
	}
	if d.Domain == "" {
		return fmt.Errorf("document %s: domain cannot be empty", d.ID)
	}
	return nil
}

// WithoutContent returns a copy of the document with the content field cleared.
// Used for denied documents so their text never leaves the validator.
func (d *Document) WithoutContent() Document {
	clone := *d
	clone.Content = ""
	return clone
}

// Principal is the requesting user. CanonicalRole is derived per request from
// (Department, DepartmentRole) via the role mapping and is never persisted.
type Principal struct {
	Username       string        `json:"username"`
	Department     string        `json:"department"`
	DepartmentRole string        `json:"department_role"`
	CanonicalRole  CanonicalRole `json:"canonical_role,omitempty"`
}

// Validate checks the fields the role mapping needs.
func (p *Principal) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return errors.New("principal username cannot be empty")
	}
	return nil
}

// RetrievalCandidate is a transient, per-query scored document. A score of -1
// marks the corresponding axis as absent (for example when the vector index is
// unavailable); absent scores contribute 0 to the combined score.
type RetrievalCandidate struct {
	Document      Document `json:"document"`
	SemanticScore float64  `json:"semantic_score"`
	LexicalScore  float64  `json:"lexical_score"`
	CombinedScore float64  `json:"combined_score"`
}

// ScoreAbsent marks a semantic or lexical score as not produced for a candidate.
const ScoreAbsent = -1.0

// DenialReason explains why a candidate was rejected.
type DenialReason string

const (
	DenialAccessDenied DenialReason = "access_denied"
)

// ValidationOutcome is the per-document result of authorization and redaction.
// For denied documents the embedded Document carries no content.
type ValidationOutcome struct {
	Document      Document     `json:"document"`
	Accepted      bool         `json:"accepted"`
	DenialReason  DenialReason `json:"denial_reason,omitempty"`
	MaskedLabels  []string     `json:"masked_labels,omitempty"`
	DetectedTerms []string     `json:"detected_terms,omitempty"`
}

// PipelineStats is the decision trail for a single pipeline execution.
type PipelineStats struct {
	Retrieved int `json:"retrieved"`
	Accepted  int `json:"accepted"`
	Denied    int `json:"denied"`
}

// PipelineResult is the final output of RetrieveAndValidate. Accepted contains
// only authorized, redacted outcomes; callers must treat it as the complete
// set of usable context.
type PipelineResult struct {
	Accepted []ValidationOutcome `json:"accepted"`
	Stats    PipelineStats       `json:"stats"`
}
