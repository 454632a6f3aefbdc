package recurring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekoparty/utgifter/recurring"
)

// =============================================================================
// AS-OF RESOLUTION TESTS
// =============================================================================

func TestResolveTerms_BaselineBeforeAnySnapshot(t *testing.T) {
	// GIVEN: A 500/month utility with a snapshot effective from 2025-03
	// WHEN: Resolving 2025-02
	// THEN: The baseline amount applies, sourced as "fixed"
	tpl := monthlyUtility("500")
	tpl.Terms = []recurring.TermsSnapshot{
		{ID: "ts-1", EffectiveFrom: key("2025-03"), Amount: decp("600")},
	}

	terms := tpl.ResolveTerms(key("2025-02"))
	assert.True(t, terms.Expected.Fixed.Equal(dec("500")))
	assert.Equal(t, recurring.SourceFixed, terms.Expected.Source)
	assert.Nil(t, terms.Snapshot)
}

func TestResolveTerms_SnapshotAppliesFromEffectivePeriod(t *testing.T) {
	// GIVEN: Baseline 500, snapshot 600 effective from 2025-03
	// THEN: 2025-03 and later resolve to 600; the source names the snapshot
	tpl := monthlyUtility("500")
	tpl.Terms = []recurring.TermsSnapshot{
		{ID: "ts-1", EffectiveFrom: key("2025-03"), Amount: decp("600")},
	}

	for _, k := range []string{"2025-03", "2025-04", "2026-01"} {
		terms := tpl.ResolveTerms(key(k))
		assert.True(t, terms.Expected.Fixed.Equal(dec("600")), "period %s", k)
		assert.Equal(t, "2025-03", terms.Expected.Source, "period %s", k)
	}
}

func TestResolveTerms_LatestSnapshotWins(t *testing.T) {
	tpl := monthlyUtility("500")
	tpl.Terms = []recurring.TermsSnapshot{
		{ID: "ts-1", EffectiveFrom: key("2025-03"), Amount: decp("600")},
		{ID: "ts-2", EffectiveFrom: key("2025-07"), Amount: decp("650")},
	}

	assert.True(t, tpl.ResolveTerms(key("2025-06")).Expected.Fixed.Equal(dec("600")))
	assert.True(t, tpl.ResolveTerms(key("2025-07")).Expected.Fixed.Equal(dec("650")))
}

func TestResolveTerms_AppendNeverChangesEarlierPeriods(t *testing.T) {
	// GIVEN: Resolved terms for 2025-02
	// WHEN: A new snapshot effective 2025-05 is appended
	// THEN: 2025-02 resolves identically
	tpl := monthlyUtility("500")
	before := tpl.ResolveTerms(key("2025-02"))

	tpl.Terms = recurring.UpsertTerms(tpl.Terms, recurring.TermsSnapshot{
		ID: "ts-1", EffectiveFrom: key("2025-05"), Amount: decp("999"),
	})

	after := tpl.ResolveTerms(key("2025-02"))
	assert.True(t, before.Expected.Fixed.Equal(after.Expected.Fixed))
	assert.Equal(t, before.Expected.Source, after.Expected.Source)
}

// =============================================================================
// PRICE GROUP OVERRIDE TESTS
// =============================================================================

func TestResolveTerms_EstimateRangeWinsOverFixed(t *testing.T) {
	// GIVEN: A utility with a baseline estimate range
	// THEN: Expected is the range, sourced as "estimate"
	tpl := monthlyUtility("0")
	tpl.EstimateMin = dec("400")
	tpl.EstimateMax = dec("900")

	terms := tpl.ResolveTerms(key("2025-01"))
	assert.Equal(t, recurring.SourceEstimate, terms.Expected.Source)
	assert.True(t, terms.Expected.HasRange())
	assert.True(t, terms.Expected.Min.Equal(dec("400")))
	assert.True(t, terms.Expected.Max.Equal(dec("900")))
}

func TestResolveTerms_FixedSnapshotClearsBaselineRange(t *testing.T) {
	// GIVEN: Baseline estimate range 400-900, snapshot setting only a fixed
	//        amount from 2025-06
	// WHEN: Resolving 2025-06
	// THEN: The fixed amount is in force; the stale range does not shadow it
	tpl := monthlyUtility("0")
	tpl.EstimateMin = dec("400")
	tpl.EstimateMax = dec("900")
	tpl.Terms = []recurring.TermsSnapshot{
		{ID: "ts-1", EffectiveFrom: key("2025-06"), Amount: decp("550")},
	}

	terms := tpl.ResolveTerms(key("2025-06"))
	assert.False(t, terms.Expected.HasRange())
	assert.True(t, terms.Expected.Fixed.Equal(dec("550")))
}

func TestResolveTerms_MortgageFieldsFallBackIndividually(t *testing.T) {
	// GIVEN: A mortgage snapshot changing only the interest rate
	// THEN: The recorded balance survives the override
	tpl := mortgageTemplate("1000000", "4", "6000")
	tpl.Terms = []recurring.TermsSnapshot{
		{ID: "ts-1", EffectiveFrom: key("2025-04"), InterestRate: decp("5.2")},
	}

	terms := tpl.ResolveTerms(key("2025-04"))
	assert.True(t, terms.InterestRate.Equal(dec("5.2")))
	assert.True(t, terms.RemainingBalance.Equal(dec("1000000")))
	assert.True(t, terms.Expected.Fixed.Equal(dec("6000")))
	// The payment came from the baseline, so the source stays "fixed"
	assert.Equal(t, recurring.SourceFixed, terms.Expected.Source)
}

func TestResolveTerms_MortgagePaymentSnapshotNamesSource(t *testing.T) {
	tpl := mortgageTemplate("1000000", "4", "6000")
	tpl.Terms = []recurring.TermsSnapshot{
		{ID: "ts-1", EffectiveFrom: key("2025-04"), Amount: decp("6500")},
	}

	terms := tpl.ResolveTerms(key("2025-04"))
	assert.True(t, terms.Expected.Fixed.Equal(dec("6500")))
	assert.Equal(t, "2025-04", terms.Expected.Source)
}

func TestResolveTerms_NonPriceSnapshotKeepsBaselineSource(t *testing.T) {
	// GIVEN: A utility whose snapshot touches only the fee fields
	// THEN: The expected value and its source come from the baseline
	tpl := monthlyUtility("500")
	fee := true
	tpl.Terms = []recurring.TermsSnapshot{
		{ID: "ts-1", EffectiveFrom: key("2025-03"), HasMonthlyFee: &fee, MonthlyFee: decp("49")},
	}

	terms := tpl.ResolveTerms(key("2025-03"))
	assert.True(t, terms.Expected.Fixed.Equal(dec("500")))
	assert.Equal(t, recurring.SourceFixed, terms.Expected.Source)
}

// =============================================================================
// UPSERT TESTS
// =============================================================================

func TestUpsertTerms_SameKeyReplaces(t *testing.T) {
	terms := recurring.UpsertTerms(nil, recurring.TermsSnapshot{
		ID: "ts-1", EffectiveFrom: key("2025-03"), Amount: decp("600"),
	})
	terms = recurring.UpsertTerms(terms, recurring.TermsSnapshot{
		ID: "ts-2", EffectiveFrom: key("2025-03"), Amount: decp("620"),
	})

	require.Len(t, terms, 1)
	assert.Equal(t, "ts-2", terms[0].ID)
	assert.True(t, terms[0].Amount.Equal(dec("620")))
}

func TestUpsertTerms_KeepsAscendingOrder(t *testing.T) {
	terms := recurring.UpsertTerms(nil, recurring.TermsSnapshot{
		ID: "ts-b", EffectiveFrom: key("2025-09"),
	})
	terms = recurring.UpsertTerms(terms, recurring.TermsSnapshot{
		ID: "ts-a", EffectiveFrom: key("2025-02"),
	})

	require.Len(t, terms, 2)
	assert.Equal(t, "ts-a", terms[0].ID)
	assert.Equal(t, "ts-b", terms[1].ID)
}
