package policy

import (
	"fmt"
	"sort"

	"github.com/soundprediction/veridoc/pkg/types"
)

// AccessRules maps canonical roles to the document domains they may read.
type AccessRules struct {
	allowed map[types.CanonicalRole]map[types.Domain]bool
}

// NewAccessRules builds the access table. Every canonical role must have an
// entry and every entry must permit the public domain; anything less is a
// configuration error and the process should not serve traffic.
func NewAccessRules(rules map[types.CanonicalRole][]types.Domain) (*AccessRules, error) {
	allowed := make(map[types.CanonicalRole]map[types.Domain]bool, len(rules))
	for role, domains := range rules {
		set := make(map[types.Domain]bool, len(domains))
		for _, d := range domains {
			set[d] = true
		}
		allowed[role] = set
	}

	for _, role := range types.CanonicalRoles {
		set, ok := allowed[role]
		if !ok {
			return nil, fmt.Errorf("access rules: missing entry for canonical role %s", role)
		}
		if !set[types.DomainPublic] {
			return nil, fmt.Errorf("access rules: role %s must permit the public domain", role)
		}
	}

	return &AccessRules{allowed: allowed}, nil
}

// Allows reports whether the role may read documents in the domain. Roles
// without an entry fall back to the guest rule set.
func (a *AccessRules) Allows(role types.CanonicalRole, domain types.Domain) bool {
	set, ok := a.allowed[role]
	if !ok {
		set = a.allowed[types.RoleGuest]
	}
	return set[domain]
}

// Domains returns the sorted permitted domains for a role.
func (a *AccessRules) Domains(role types.CanonicalRole) []types.Domain {
	set, ok := a.allowed[role]
	if !ok {
		set = a.allowed[types.RoleGuest]
	}
	out := make([]types.Domain, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateCoverage checks that every given corpus domain is reachable by at
// least one role. An unreachable domain would make its documents permanently
// inaccessible, which is treated as a configuration error.
func (a *AccessRules) ValidateCoverage(domains []types.Domain) error {
	for _, d := range domains {
		reachable := false
		for _, set := range a.allowed {
			if set[d] {
				reachable = true
				break
			}
		}
		if !reachable {
			return fmt.Errorf("access rules: domain %s is not reachable by any role", d)
		}
	}
	return nil
}
