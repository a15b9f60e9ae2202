package policy

import (
	"fmt"

	"github.com/soundprediction/veridoc/pkg/types"
)

// Framework identifies a regulatory compliance framework. Frameworks further
// restrict the domain set before the role-based check runs.
type Framework string

const (
	FrameworkHIPAA   Framework = "hipaa"
	FrameworkGDPR    Framework = "gdpr"
	FrameworkSOX     Framework = "sox"
	FrameworkGeneral Framework = "general"
)

// Tables bundles every static policy table consumed by the pipeline. A Tables
// value is immutable after construction; reload builds a new value and swaps
// it atomically.
type Tables struct {
	Registry   *Registry
	Access     *AccessRules
	Roles      *RoleMapping
	compliance map[Framework]map[types.Domain]bool
}

// NewTables constructs and validates the full policy set.
func NewTables(
	patterns []SensitivePattern,
	terms []string,
	masking map[types.CanonicalRole][]string,
	access map[types.CanonicalRole][]types.Domain,
	roleMapping map[string]map[string]types.CanonicalRole,
	compliance map[Framework][]types.Domain,
) (*Tables, error) {
	registry, err := NewRegistry(patterns, terms, masking)
	if err != nil {
		return nil, fmt.Errorf("pattern registry: %w", err)
	}
	rules, err := NewAccessRules(access)
	if err != nil {
		return nil, err
	}
	roles, err := NewRoleMapping(roleMapping)
	if err != nil {
		return nil, err
	}

	comp := make(map[Framework]map[types.Domain]bool, len(compliance))
	for fw, domains := range compliance {
		set := make(map[types.Domain]bool, len(domains))
		for _, d := range domains {
			set[d] = true
		}
		comp[fw] = set
	}

	return &Tables{
		Registry:   registry,
		Access:     rules,
		Roles:      roles,
		compliance: comp,
	}, nil
}

// FrameworkAllows reports whether the framework permits the domain. An
// unknown framework falls back to the general rules, the most restrictive
// configured set.
func (t *Tables) FrameworkAllows(fw Framework, domain types.Domain) bool {
	set, ok := t.compliance[fw]
	if !ok {
		set = t.compliance[FrameworkGeneral]
	}
	return set[domain]
}

// Validate runs the startup invariants against the loaded corpus domains.
// It must be called before serving traffic; a failure here is fatal.
func (t *Tables) Validate(corpusDomains []types.Domain) error {
	if err := t.Access.ValidateCoverage(corpusDomains); err != nil {
		return err
	}
	return nil
}
