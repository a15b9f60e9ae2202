package policy

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/veridoc/pkg/types"
)

func TestDefaultTablesConstruct(t *testing.T) {
	tables := Default()
	require.NotNil(t, tables.Registry)
	require.NotNil(t, tables.Access)
	require.NotNil(t, tables.Roles)
}

func TestRoleMappingFailClosed(t *testing.T) {
	roles := Default().Roles

	tests := []struct {
		name       string
		department string
		deptRole   string
		want       types.CanonicalRole
	}{
		{"unknown department", "marketing", "manager", types.RoleGuest},
		{"unknown role in known department", "finance", "wizard", types.RoleGuest},
		{"empty pair", "", "", types.RoleGuest},
		{"accounting manager is analyst", "accounting", "manager", types.RoleAnalyst},
		{"legal manager is admin", "legal", "manager", types.RoleAdmin},
		{"health nurse is manager", "health", "nurse", types.RoleManager},
		{"hr general is guest", "hr", "general", types.RoleGuest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roles.Map(tt.department, tt.deptRole))
		})
	}
}

func TestRoleMappingRejectsUnknownCanonicalRole(t *testing.T) {
	_, err := NewRoleMapping(map[string]map[string]types.CanonicalRole{
		"finance": {"manager": types.CanonicalRole("superuser")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "superuser")
}

func TestAccessRulesRequirePublicForAllRoles(t *testing.T) {
	rules := defaultAccessRules()
	rules[types.RoleGuest] = []types.Domain{}

	_, err := NewAccessRules(rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public")
}

func TestAccessRulesRequireEveryRole(t *testing.T) {
	rules := defaultAccessRules()
	delete(rules, types.RoleEmployee)

	_, err := NewAccessRules(rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee")
}

func TestAccessRulesAllows(t *testing.T) {
	access := Default().Access

	assert.True(t, access.Allows(types.RoleAdmin, types.DomainLegal))
	assert.True(t, access.Allows(types.RoleAnalyst, types.DomainFinance))
	assert.False(t, access.Allows(types.RoleAnalyst, types.DomainHealth))
	assert.False(t, access.Allows(types.RoleManager, types.DomainFinance))
	assert.True(t, access.Allows(types.RoleGuest, types.DomainPublic))
	assert.False(t, access.Allows(types.RoleGuest, types.DomainFinance))

	// An unknown role must get the guest rule set, never more.
	assert.False(t, access.Allows(types.CanonicalRole("superuser"), types.DomainFinance))
	assert.True(t, access.Allows(types.CanonicalRole("superuser"), types.DomainPublic))
}

func TestValidateCoverage(t *testing.T) {
	access := Default().Access

	err := access.ValidateCoverage([]types.Domain{types.DomainFinance, types.DomainLegal, types.DomainPublic})
	assert.NoError(t, err)

	err = access.ValidateCoverage([]types.Domain{types.Domain("engineering")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engineering")
}

func TestRegistryPatternsForRole(t *testing.T) {
	registry := Default().Registry

	adminLabels := map[string]bool{}
	for _, p := range registry.PatternsFor(types.RoleAdmin) {
		adminLabels[p.Label] = true
	}
	assert.True(t, adminLabels[LabelSSN])
	assert.True(t, adminLabels[LabelAccountID])
	assert.False(t, adminLabels[LabelEmail])
	assert.False(t, adminLabels[LabelAmount])

	// Guest has no explicit policy entry, so every label is masked.
	guest := registry.PatternsFor(types.RoleGuest)
	assert.Len(t, guest, len(registry.Patterns()))
}

func TestRegistryRejectsSelfMatchingMaskTemplate(t *testing.T) {
	_, err := NewRegistry([]SensitivePattern{
		{Label: "DIGITS", Matcher: regexp.MustCompile(`\d+`), MaskTemplate: "[MASKED-123]"},
	}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idempotent")
}

func TestRegistryRejectsUnknownMaskingLabel(t *testing.T) {
	_, err := NewRegistry(defaultPatterns(), nil, map[types.CanonicalRole][]string{
		types.RoleAdmin: {"NO_SUCH_LABEL"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NO_SUCH_LABEL")
}

func TestDetectTerms(t *testing.T) {
	registry := Default().Registry

	found := registry.DetectTerms("The employee Salary schedule is Confidential.")
	assert.Contains(t, found, "Salary")
	assert.Contains(t, found, "Confidential")

	assert.Empty(t, registry.DetectTerms("A public announcement about the cafeteria."))
	assert.Empty(t, registry.DetectTerms(""))
}

func TestFrameworkAllows(t *testing.T) {
	tables := Default()

	assert.True(t, tables.FrameworkAllows(FrameworkHIPAA, types.DomainHealth))
	assert.False(t, tables.FrameworkAllows(FrameworkHIPAA, types.DomainFinance))
	assert.True(t, tables.FrameworkAllows(FrameworkSOX, types.DomainFinance))
	assert.False(t, tables.FrameworkAllows(FrameworkGDPR, types.DomainHR))

	// Unknown frameworks degrade to the general (public-only) set.
	assert.True(t, tables.FrameworkAllows(Framework("pci"), types.DomainPublic))
	assert.False(t, tables.FrameworkAllows(Framework("pci"), types.DomainFinance))
}

func TestLoadFileOverridesAccessOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := `
access:
  admin: [finance, hr, health, legal, public]
  analyst: [finance, public]
  manager: [hr, public]
  employee: [public]
  guest: [public]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tables, err := LoadFile(path)
	require.NoError(t, err)

	// Overridden section applies.
	assert.False(t, tables.Access.Allows(types.RoleAnalyst, types.DomainHR))
	// Omitted sections keep the defaults.
	assert.Equal(t, types.RoleAnalyst, tables.Roles.Map("finance", "manager"))
	assert.NotEmpty(t, tables.Registry.Patterns())
}

func TestLoadFileInvalidRegex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := `
patterns:
  - label: BAD
    regex: "([unclosed"
    mask: "[MASKED-BAD]"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}
