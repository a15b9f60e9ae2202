package validator

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/types"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	return New(policy.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func candidates(docs ...types.Document) []types.RetrievalCandidate {
	out := make([]types.RetrievalCandidate, 0, len(docs))
	for _, d := range docs {
		out = append(out, types.RetrievalCandidate{Document: d})
	}
	return out
}

func TestResolveRole(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		department     string
		departmentRole string
		want           types.CanonicalRole
	}{
		{"finance", "analyst", types.RoleAnalyst},
		{"finance", "manager", types.RoleAnalyst},
		{"hr", "manager", types.RoleManager},
		{"hr", "hr_specialist", types.RoleAnalyst},
		{"legal", "manager", types.RoleAdmin},
		{"health", "manager", types.RoleAdmin},
		{"health", "nurse", types.RoleManager},
		{"accounting", "manager", types.RoleAnalyst},
		{"hr", "employee", types.RoleEmployee},
		// Fail-closed: unknown pairs resolve to guest, never to an error.
		{"engineering", "director", types.RoleGuest},
		{"finance", "wizard", types.RoleGuest},
		{"", "", types.RoleGuest},
	}
	for _, tt := range tests {
		p := types.Principal{Username: "u", Department: tt.department, DepartmentRole: tt.departmentRole}
		assert.Equal(t, tt.want, v.ResolveRole(p), "%s/%s", tt.department, tt.departmentRole)
	}
}

func TestAuthorizeAllowsAndDenies(t *testing.T) {
	v := newValidator(t)
	principal := types.Principal{Username: "dana", Department: "finance", DepartmentRole: "analyst"}

	finance := types.Document{ID: "fin-001", Content: "secret numbers", Domain: types.DomainFinance}
	health := types.Document{ID: "med-001", Content: "patient record", Domain: types.DomainHealth}
	public := types.Document{ID: "pub-001", Content: "office notice", Domain: types.DomainPublic}

	outcomes := v.Authorize(candidates(finance, health, public), principal, types.RoleAnalyst, "")
	require.Len(t, outcomes, 3)

	assert.True(t, outcomes[0].Accepted)
	assert.Equal(t, "secret numbers", outcomes[0].Document.Content)

	assert.False(t, outcomes[1].Accepted)
	assert.Equal(t, types.DenialAccessDenied, outcomes[1].DenialReason)
	assert.Empty(t, outcomes[1].Document.Content, "denied document must not carry content")
	assert.Equal(t, "med-001", outcomes[1].Document.ID)

	assert.True(t, outcomes[2].Accepted)
}

func TestAuthorizePublicReadableByEveryRole(t *testing.T) {
	v := newValidator(t)
	doc := types.Document{ID: "pub-001", Content: "hello", Domain: types.DomainPublic}

	for _, role := range types.CanonicalRoles {
		outcomes := v.Authorize(candidates(doc), types.Principal{Username: "u"}, role, "")
		require.Len(t, outcomes, 1)
		assert.True(t, outcomes[0].Accepted, "role %s", role)
	}
}

func TestAuthorizeGuestDeniedEverythingButPublic(t *testing.T) {
	v := newValidator(t)
	docs := []types.Document{
		{ID: "a", Content: "x", Domain: types.DomainFinance},
		{ID: "b", Content: "x", Domain: types.DomainHR},
		{ID: "c", Content: "x", Domain: types.DomainHealth},
		{ID: "d", Content: "x", Domain: types.DomainLegal},
	}
	outcomes := v.Authorize(candidates(docs...), types.Principal{Username: "visitor"}, types.RoleGuest, "")
	for _, o := range outcomes {
		assert.False(t, o.Accepted)
		assert.Empty(t, o.Document.Content)
	}
}

func TestAuthorizeComplianceFrameworkRestricts(t *testing.T) {
	v := newValidator(t)
	finance := types.Document{ID: "fin-001", Content: "x", Domain: types.DomainFinance}
	health := types.Document{ID: "med-001", Content: "x", Domain: types.DomainHealth}

	// Admin can read everything, but hipaa narrows the set to health+public
	// before the role check runs.
	outcomes := v.Authorize(candidates(finance, health), types.Principal{Username: "root"}, types.RoleAdmin, policy.FrameworkHIPAA)
	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Accepted)
	assert.True(t, outcomes[1].Accepted)

	// sox permits finance again.
	outcomes = v.Authorize(candidates(finance), types.Principal{Username: "root"}, types.RoleAdmin, policy.FrameworkSOX)
	assert.True(t, outcomes[0].Accepted)
}

func TestAuthorizeUnknownFrameworkFallsBackToGeneral(t *testing.T) {
	v := newValidator(t)
	finance := types.Document{ID: "fin-001", Content: "x", Domain: types.DomainFinance}

	outcomes := v.Authorize(candidates(finance), types.Principal{Username: "root"}, types.RoleAdmin, policy.Framework("made-up"))
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Accepted)
}

func TestAuthorizePreservesOrderAndLength(t *testing.T) {
	v := newValidator(t)
	docs := []types.Document{
		{ID: "c", Domain: types.DomainPublic},
		{ID: "a", Domain: types.DomainHealth},
		{ID: "b", Domain: types.DomainPublic},
	}
	outcomes := v.Authorize(candidates(docs...), types.Principal{Username: "u"}, types.RoleEmployee, "")
	require.Len(t, outcomes, 3)
	assert.Equal(t, "c", outcomes[0].Document.ID)
	assert.Equal(t, "a", outcomes[1].Document.ID)
	assert.Equal(t, "b", outcomes[2].Document.ID)
}

func TestAuthorizeDeterministic(t *testing.T) {
	v := newValidator(t)
	docs := candidates(
		types.Document{ID: "a", Content: "x", Domain: types.DomainFinance},
		types.Document{ID: "b", Content: "y", Domain: types.DomainPublic},
	)
	p := types.Principal{Username: "u", Department: "finance", DepartmentRole: "analyst"}

	first := v.Authorize(docs, p, types.RoleAnalyst, "")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, v.Authorize(docs, p, types.RoleAnalyst, ""))
	}
}

func TestAuthorizeEmptyInput(t *testing.T) {
	v := newValidator(t)
	outcomes := v.Authorize(nil, types.Principal{Username: "u"}, types.RoleAdmin, "")
	assert.Empty(t, outcomes)
}

func TestDetectTerms(t *testing.T) {
	v := newValidator(t)

	terms := v.DetectTerms("This confidential memo lists every salary in the department.")
	assert.Contains(t, terms, "Confidential")
	assert.Contains(t, terms, "Salary")

	assert.Empty(t, v.DetectTerms("Nothing unusual here."))
}
