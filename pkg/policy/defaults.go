package policy

import (
	"regexp"

	"github.com/soundprediction/veridoc/pkg/types"
)

// defaultPatterns is the built-in detector table in label priority order.
// More specific patterns come first so that, for example, a credit card
// number is claimed before the undashed SSN pattern can bite a substring.
func defaultPatterns() []SensitivePattern {
	return []SensitivePattern{
		{Label: LabelSSN, Matcher: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), MaskTemplate: "[MASKED-SSN]"},
		{Label: LabelCreditCard, Matcher: regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`), MaskTemplate: "[MASKED-CC]"},
		{Label: LabelPhone, Matcher: regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`), MaskTemplate: "[MASKED-PHONE]"},
		{Label: LabelSSN, Matcher: regexp.MustCompile(`\b\d{9}\b`), MaskTemplate: "[MASKED-SSN]"},
		{Label: LabelAccountID, Matcher: regexp.MustCompile(`\b[A-Z]{2}\d{6}\b`), MaskTemplate: "[MASKED-ID]"},
		{Label: LabelEmail, Matcher: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), MaskTemplate: "[MASKED-EMAIL]"},
		{Label: LabelAmount, Matcher: regexp.MustCompile(`\$\d{1,3}(,\d{3})*(\.\d{2})?`), MaskTemplate: "[MASKED-AMOUNT]"},
	}
}

// defaultSensitiveTerms is the watchlist scanned on accepted content.
func defaultSensitiveTerms() []string {
	return []string{
		"SSN",
		"AccountNumber",
		"Salary",
		"PatientName",
		"Confidential",
		"Password",
		"CreditCard",
		"BankAccount",
	}
}

// defaultMasking is the per-role masking policy. Privileged roles mask only
// hard identifiers; employee and guest are absent and therefore mask every
// label.
func defaultMasking() map[types.CanonicalRole][]string {
	return map[types.CanonicalRole][]string{
		types.RoleAdmin:   {LabelSSN, LabelCreditCard, LabelAccountID},
		types.RoleAnalyst: {LabelSSN, LabelCreditCard, LabelAccountID},
		types.RoleManager: {LabelSSN, LabelCreditCard, LabelAccountID, LabelAmount},
	}
}

// defaultAccessRules is the canonical role to permitted domains table.
func defaultAccessRules() map[types.CanonicalRole][]types.Domain {
	return map[types.CanonicalRole][]types.Domain{
		types.RoleAdmin:    {types.DomainFinance, types.DomainHR, types.DomainHealth, types.DomainLegal, types.DomainPublic},
		types.RoleAnalyst:  {types.DomainFinance, types.DomainHR, types.DomainPublic},
		types.RoleManager:  {types.DomainHR, types.DomainPublic},
		types.RoleEmployee: {types.DomainPublic},
		types.RoleGuest:    {types.DomainPublic},
	}
}

// defaultRoleMapping maps department-specific roles to canonical roles.
// Note the deliberate asymmetries: an accounting manager has analyst-level
// access, legal and health managers have admin access.
func defaultRoleMapping() map[string]map[string]types.CanonicalRole {
	return map[string]map[string]types.CanonicalRole{
		"accounting": {
			"manager":           types.RoleAnalyst,
			"senior_accountant": types.RoleAnalyst,
			"accountant":        types.RoleManager,
			"employee":          types.RoleEmployee,
			"general":           types.RoleGuest,
		},
		"finance": {
			"manager":  types.RoleAnalyst,
			"analyst":  types.RoleAnalyst,
			"employee": types.RoleEmployee,
			"general":  types.RoleGuest,
		},
		"hr": {
			"manager":       types.RoleManager,
			"hr_specialist": types.RoleAnalyst,
			"employee":      types.RoleEmployee,
			"general":       types.RoleGuest,
		},
		"legal": {
			"manager":       types.RoleAdmin,
			"legal_counsel": types.RoleAnalyst,
			"paralegal":     types.RoleManager,
			"employee":      types.RoleEmployee,
			"general":       types.RoleGuest,
		},
		"health": {
			"manager":  types.RoleAdmin,
			"doctor":   types.RoleAnalyst,
			"nurse":    types.RoleManager,
			"employee": types.RoleEmployee,
			"general":  types.RoleGuest,
		},
	}
}

// defaultCompliance restricts the domain set per regulatory framework.
func defaultCompliance() map[Framework][]types.Domain {
	return map[Framework][]types.Domain{
		FrameworkHIPAA:   {types.DomainHealth, types.DomainPublic},
		FrameworkGDPR:    {types.DomainPublic},
		FrameworkSOX:     {types.DomainFinance, types.DomainPublic},
		FrameworkGeneral: {types.DomainPublic},
	}
}

// Default returns the built-in policy tables. Default never fails; the
// built-in tables are covered by tests that construct them.
func Default() *Tables {
	tables, err := NewTables(
		defaultPatterns(),
		defaultSensitiveTerms(),
		defaultMasking(),
		defaultAccessRules(),
		defaultRoleMapping(),
		defaultCompliance(),
	)
	if err != nil {
		panic("policy: built-in tables are invalid: " + err.Error())
	}
	return tables
}
