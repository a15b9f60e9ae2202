package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/soundprediction/veridoc/pkg/types"
)

// Pattern labels registered by the default tables. A label may be backed by
// more than one pattern (SSN covers both dashed and undashed forms).
const (
	LabelSSN        = "SSN"
	LabelCreditCard = "CREDIT_CARD"
	LabelPhone      = "PHONE"
	LabelAccountID  = "ACCOUNT_ID"
	LabelEmail      = "EMAIL"
	LabelAmount     = "AMOUNT"
)

// SensitivePattern pairs a detector with its label and mask token. Patterns
// are role-insensitive in detection; which labels actually get masked for a
// request is decided by the per-role masking policy.
type SensitivePattern struct {
	Label        string
	Matcher      *regexp.Regexp
	MaskTemplate string
}

// Registry is the ordered sensitive-pattern table plus the sensitive-term
// watchlist and the per-role masking policy. The pattern slice order is the
// label priority order: during redaction the earlier pattern claims a span
// and later patterns skip it.
type Registry struct {
	patterns []SensitivePattern
	terms    []string
	masking  map[types.CanonicalRole][]string
	labels   []string
}

// NewRegistry builds a registry from an ordered pattern list. The masking
// table maps a canonical role to the labels masked for that role; roles
// absent from the table mask every registered label.
func NewRegistry(patterns []SensitivePattern, terms []string, masking map[types.CanonicalRole][]string) (*Registry, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("pattern registry cannot be empty")
	}

	seen := make(map[string]bool)
	labels := make([]string, 0, len(patterns))
	for i, p := range patterns {
		if strings.TrimSpace(p.Label) == "" {
			return nil, fmt.Errorf("pattern %d: label cannot be empty", i)
		}
		if p.Matcher == nil {
			return nil, fmt.Errorf("pattern %s: matcher cannot be nil", p.Label)
		}
		if strings.TrimSpace(p.MaskTemplate) == "" {
			return nil, fmt.Errorf("pattern %s: mask template cannot be empty", p.Label)
		}
		// Mask tokens must not themselves match any pattern, otherwise
		// re-masking already-masked content would corrupt it.
		for _, q := range patterns {
			if q.Matcher != nil && q.Matcher.MatchString(p.MaskTemplate) {
				return nil, fmt.Errorf("mask template %q matches pattern %s; masking would not be idempotent", p.MaskTemplate, q.Label)
			}
		}
		if !seen[p.Label] {
			seen[p.Label] = true
			labels = append(labels, p.Label)
		}
	}

	for role, roleLabels := range masking {
		for _, l := range roleLabels {
			if !seen[l] {
				return nil, fmt.Errorf("masking policy for role %s references unknown label %s", role, l)
			}
		}
	}

	return &Registry{
		patterns: patterns,
		terms:    terms,
		masking:  masking,
		labels:   labels,
	}, nil
}

// Patterns returns every registered pattern in priority order.
func (r *Registry) Patterns() []SensitivePattern {
	return r.patterns
}

// PatternsFor returns the patterns whose labels are masked for the given
// canonical role, preserving priority order. A role without an explicit
// masking policy masks everything.
func (r *Registry) PatternsFor(role types.CanonicalRole) []SensitivePattern {
	allowed, ok := r.masking[role]
	if !ok {
		return r.patterns
	}
	set := make(map[string]bool, len(allowed))
	for _, l := range allowed {
		set[l] = true
	}
	out := make([]SensitivePattern, 0, len(r.patterns))
	for _, p := range r.patterns {
		if set[p.Label] {
			out = append(out, p)
		}
	}
	return out
}

// Labels returns the distinct pattern labels in priority order.
func (r *Registry) Labels() []string {
	return r.labels
}

// SensitiveTerms returns the plain-text watchlist scanned on accepted content.
func (r *Registry) SensitiveTerms() []string {
	return r.terms
}

// DetectTerms reports which sensitive terms occur in the text,
// case-insensitively, in registry order. Detection is advisory: it feeds the
// audit trail and never blocks access by itself.
func (r *Registry) DetectTerms(text string) []string {
	if text == "" || len(r.terms) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	var found []string
	for _, term := range r.terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	return found
}
