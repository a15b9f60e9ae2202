package policy

import (
	"fmt"
	"sort"

	"github.com/soundprediction/veridoc/pkg/types"
)

// RoleMapping resolves department-specific roles to canonical access-control
// roles. The table is keyed by department, then by department role.
type RoleMapping struct {
	table map[string]map[string]types.CanonicalRole
}

// NewRoleMapping builds the mapping and verifies that every target role is a
// known canonical role.
func NewRoleMapping(table map[string]map[string]types.CanonicalRole) (*RoleMapping, error) {
	known := make(map[types.CanonicalRole]bool, len(types.CanonicalRoles))
	for _, r := range types.CanonicalRoles {
		known[r] = true
	}
	for dept, roles := range table {
		for deptRole, canonical := range roles {
			if !known[canonical] {
				return nil, fmt.Errorf("role mapping: %s/%s maps to unknown canonical role %s", dept, deptRole, canonical)
			}
		}
	}
	return &RoleMapping{table: table}, nil
}

// Map resolves (department, departmentRole) to a canonical role. The function
// is total: any pair absent from the table resolves to guest, the most
// restrictive role. It never resolves to an elevated role by default.
func (m *RoleMapping) Map(department, departmentRole string) types.CanonicalRole {
	roles, ok := m.table[department]
	if !ok {
		return types.RoleGuest
	}
	canonical, ok := roles[departmentRole]
	if !ok {
		return types.RoleGuest
	}
	return canonical
}

// Departments returns the sorted department names known to the mapping.
func (m *RoleMapping) Departments() []string {
	out := make([]string, 0, len(m.table))
	for d := range m.table {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// RolesFor returns the sorted department roles configured for a department.
func (m *RoleMapping) RolesFor(department string) []string {
	roles, ok := m.table[department]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(roles))
	for r := range roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
