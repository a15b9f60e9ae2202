package redactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/types"
)

func newRedactor(t *testing.T) *Redactor {
	t.Helper()
	return New(policy.Default().Registry)
}

func TestMaskSSNForAnalyst(t *testing.T) {
	r := newRedactor(t)

	masked, labels := r.Mask("Employee SSN is 123-45-6789 on file.", types.RoleAnalyst)
	assert.Equal(t, "Employee SSN is [MASKED-SSN] on file.", masked)
	assert.Equal(t, []string{"SSN"}, labels)
}

func TestMaskAccountIDForAnalyst(t *testing.T) {
	r := newRedactor(t)

	masked, labels := r.Mask("Wire funds from AB123456 today.", types.RoleAnalyst)
	assert.Equal(t, "Wire funds from [MASKED-ID] today.", masked)
	assert.Contains(t, labels, "ACCOUNT_ID")
}

func TestAnalystKeepsAmountsAndEmails(t *testing.T) {
	r := newRedactor(t)

	content := "Contact dana@example.com about the $1,250.00 invoice."
	masked, labels := r.Mask(content, types.RoleAnalyst)
	assert.Equal(t, content, masked)
	assert.Empty(t, labels)
}

func TestManagerMasksAmounts(t *testing.T) {
	r := newRedactor(t)

	masked, labels := r.Mask("Approved a bonus of $5,000.00 for Q3.", types.RoleManager)
	assert.Equal(t, "Approved a bonus of [MASKED-AMOUNT] for Q3.", masked)
	assert.Equal(t, []string{"AMOUNT"}, labels)
}

func TestEmployeeMasksEverything(t *testing.T) {
	r := newRedactor(t)

	masked, labels := r.Mask(
		"Reach dana@example.com, SSN 123-45-6789, card 4111 1111 1111 1111, budget $900.",
		types.RoleEmployee,
	)
	assert.NotContains(t, masked, "dana@example.com")
	assert.NotContains(t, masked, "123-45-6789")
	assert.NotContains(t, masked, "4111")
	assert.NotContains(t, masked, "$900")
	assert.Contains(t, masked, "[MASKED-EMAIL]")
	assert.Contains(t, masked, "[MASKED-SSN]")
	assert.Contains(t, masked, "[MASKED-CC]")
	assert.Contains(t, masked, "[MASKED-AMOUNT]")
	assert.ElementsMatch(t, []string{"EMAIL", "SSN", "CREDIT_CARD", "AMOUNT"}, labels)
}

func TestCreditCardClaimedBeforeUndashedSSN(t *testing.T) {
	r := newRedactor(t)

	// 16 contiguous digits would also partially match the 9-digit pattern;
	// the card pattern is earlier in priority order and claims the span.
	masked, labels := r.Mask("Card 4111111111111111 on record.", types.RoleEmployee)
	assert.Equal(t, "Card [MASKED-CC] on record.", masked)
	assert.Equal(t, []string{"CREDIT_CARD"}, labels)
}

func TestMaskIdempotent(t *testing.T) {
	r := newRedactor(t)

	for _, role := range types.CanonicalRoles {
		once, _ := r.Mask("SSN 123-45-6789, email a@b.co, card 4111-1111-1111-1111, total $12.00", role)
		twice, labels := r.Mask(once, role)
		assert.Equal(t, once, twice, "role %s", role)
		assert.Empty(t, labels, "role %s", role)
	}
}

func TestMaskMultipleOccurrences(t *testing.T) {
	r := newRedactor(t)

	masked, _ := r.Mask("First 123-45-6789 then 987-65-4321.", types.RoleAdmin)
	assert.Equal(t, "First [MASKED-SSN] then [MASKED-SSN].", masked)
}

func TestMaskReportsOnlyMatchedLabels(t *testing.T) {
	r := newRedactor(t)

	// Admin policy covers SSN, CREDIT_CARD and ACCOUNT_ID but only an SSN
	// is present.
	_, labels := r.Mask("Just the SSN 123-45-6789 here.", types.RoleAdmin)
	assert.Equal(t, []string{"SSN"}, labels)
}

func TestMaskEmptyContent(t *testing.T) {
	r := newRedactor(t)

	masked, labels := r.Mask("", types.RoleGuest)
	assert.Empty(t, masked)
	assert.Empty(t, labels)
}

func TestMaskPhoneNotConfusedWithSSN(t *testing.T) {
	r := newRedactor(t)

	masked, labels := r.Mask("Call 555-123-4567 for details.", types.RoleEmployee)
	require.Contains(t, masked, "[MASKED-PHONE]")
	assert.Equal(t, []string{"PHONE"}, labels)
}
