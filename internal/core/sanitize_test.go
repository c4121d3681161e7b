package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTransactions(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	dated := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	in := []Transaction{
		// legacy setup record: no date, no category
		{ID: "1", Description: "Monthly salary", Amount: dec("2000"), Kind: Credit},
		{ID: "2", Description: "Rent", Amount: dec("900"), Kind: Debit, Date: dated, Category: "Moradia"},
		{ID: "3", Description: "Refund", Amount: dec("15"), Date: dated, Category: Leisure},
		{ID: "4", Description: "Gym", Amount: dec("-30"), Kind: Debit, Date: dated, Category: Health, RecurringRuleID: "r"},
	}
	out := SanitizeTransactions(in, now)
	require.Len(t, out, 4)

	assert.Equal(t, now, out[0].Date)
	assert.Equal(t, Other, out[0].Category)

	assert.Equal(t, Other, out[1].Category)
	assert.True(t, out[1].Amount.Equal(dec("-900")), "debit re-signed")

	assert.Equal(t, Credit, out[2].Kind)
	assert.Equal(t, Leisure, out[2].Category)

	assert.True(t, out[3].IsRecurring)

	for _, tx := range out {
		assert.NoError(t, tx.Validate(), tx.ID)
	}

	// input untouched
	assert.True(t, in[0].Date.IsZero())
	assert.Equal(t, Category("Moradia"), in[1].Category)
	assert.True(t, in[1].Amount.Equal(dec("900")))
}

func TestSanitizeRules(t *testing.T) {
	last := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)
	in := []RecurringRule{
		{ID: "r1", Description: "Internet", Amount: dec("-80"), DayOfMonth: 10},
		{ID: "r2", Description: "Salary", Kind: Credit, Amount: dec("3000"), DayOfMonth: 5, Category: Salary, LastGenerated: &last},
	}
	out := SanitizeRules(in)

	assert.Equal(t, Debit, out[0].Kind)
	assert.Equal(t, Other, out[0].Category)
	assert.True(t, out[0].Amount.Equal(dec("80")))

	assert.Equal(t, Credit, out[1].Kind)
	require.NotNil(t, out[1].LastGenerated)
	assert.Equal(t, last, *out[1].LastGenerated)
	assert.NotSame(t, in[1].LastGenerated, out[1].LastGenerated)

	assert.Equal(t, Kind(""), in[0].Kind)
}
