package validator

import (
	"log/slog"

	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/types"
)

// Validator authorizes retrieval candidates against the policy tables.
type Validator struct {
	tables *policy.Tables
	logger *slog.Logger
}

// New creates a Validator backed by the given policy tables.
func New(tables *policy.Tables, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		tables: tables,
		logger: logger,
	}
}

// ResolveRole maps the principal's (department, department role) pair to a
// canonical role. Pairs absent from the mapping resolve to guest.
func (v *Validator) ResolveRole(principal types.Principal) types.CanonicalRole {
	role := v.tables.Roles.Map(principal.Department, principal.DepartmentRole)
	if role == types.RoleGuest && principal.Department != "" {
		v.logger.Debug("unmapped principal resolved to guest",
			"username", principal.Username,
			"department", principal.Department,
			"department_role", principal.DepartmentRole)
	}
	return role
}

// Authorize evaluates every candidate for the given canonical role and
// returns one outcome per candidate, in the same order. Denied outcomes carry
// the document's metadata but never its content. The framework, when not
// empty, further restricts the allowed domains before the role check.
func (v *Validator) Authorize(
	candidates []types.RetrievalCandidate,
	principal types.Principal,
	role types.CanonicalRole,
	framework policy.Framework,
) []types.ValidationOutcome {
	outcomes := make([]types.ValidationOutcome, 0, len(candidates))
	for _, c := range candidates {
		outcomes = append(outcomes, v.authorizeOne(c.Document, principal, role, framework))
	}
	return outcomes
}

func (v *Validator) authorizeOne(
	doc types.Document,
	principal types.Principal,
	role types.CanonicalRole,
	framework policy.Framework,
) types.ValidationOutcome {
	if framework != "" && !v.tables.FrameworkAllows(framework, doc.Domain) {
		v.logger.Info("document denied by compliance framework",
			"document_id", doc.ID,
			"domain", doc.Domain,
			"framework", framework,
			"username", principal.Username)
		return types.ValidationOutcome{
			Document:     doc.WithoutContent(),
			Accepted:     false,
			DenialReason: types.DenialAccessDenied,
		}
	}

	if !v.tables.Access.Allows(role, doc.Domain) {
		v.logger.Info("document denied",
			"document_id", doc.ID,
			"domain", doc.Domain,
			"role", role,
			"username", principal.Username)
		return types.ValidationOutcome{
			Document:     doc.WithoutContent(),
			Accepted:     false,
			DenialReason: types.DenialAccessDenied,
		}
	}

	v.logger.Debug("document accepted",
		"document_id", doc.ID,
		"domain", doc.Domain,
		"role", role)
	return types.ValidationOutcome{
		Document: doc,
		Accepted: true,
	}
}

// DetectTerms scans accepted content for configured sensitive terms. Matches
// are recorded, never blocking: term detection informs the audit trail, not
// the access decision.
func (v *Validator) DetectTerms(content string) []string {
	return v.tables.Registry.DetectTerms(content)
}
