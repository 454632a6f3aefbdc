/*
terms.go - As-of resolution of effective-dated term snapshots

PURPOSE:
  Given a template's ordered list of term snapshots, resolve the terms in
  force for any period: the snapshot with the greatest effective-from key
  less than or equal to the target period, falling back to the template's
  baseline fields when no snapshot applies yet.

  Because snapshots are append-only and forward-effective, adding a new
  snapshot never changes the resolved terms for periods strictly before
  its effective date.

EXPECTED VALUE PRECEDENCE (non-mortgage):
  A non-zero estimate range wins over the fixed amount. When a snapshot
  touches the price group, the whole group comes from the snapshot, so a
  fixed-amount change clears a baseline estimate range rather than being
  shadowed by it.

SEE ALSO:
  - types.go:    TermsSnapshot override semantics
  - mortgage.go: consumes the resolved mortgage fields
*/
package recurring

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gekoparty/utgifter/period"
)

// EffectiveTerms is the fully resolved terms in force for one period.
type EffectiveTerms struct {
	// Expected is the forecast value driven by these terms.
	Expected Expected

	// Mortgage inputs (meaningful for MORTGAGE templates only).
	RemainingBalance decimal.Decimal
	InterestRate     decimal.Decimal
	HasMonthlyFee    bool
	MonthlyFee       decimal.Decimal

	// Snapshot is the snapshot that produced these terms, nil when the
	// template baseline applied.
	Snapshot *TermsSnapshot
}

// ResolveTerms returns the terms in force for period k.
func (t Template) ResolveTerms(k period.Key) EffectiveTerms {
	snap := t.snapshotAsOf(k)

	amount := t.Amount
	estMin := t.EstimateMin
	estMax := t.EstimateMax
	balance := t.RemainingBalance
	rate := t.InterestRate
	hasFee := t.HasMonthlyFee
	fee := t.MonthlyFee

	if snap != nil {
		if snap.touchesPrice() {
			amount, estMin, estMax = decimal.Zero, decimal.Zero, decimal.Zero
			if snap.Amount != nil {
				amount = *snap.Amount
			}
			if snap.EstimateMin != nil {
				estMin = *snap.EstimateMin
			}
			if snap.EstimateMax != nil {
				estMax = *snap.EstimateMax
			}
		}
		if snap.RemainingBalance != nil {
			balance = *snap.RemainingBalance
		}
		if snap.InterestRate != nil {
			rate = *snap.InterestRate
		}
		if snap.HasMonthlyFee != nil {
			hasFee = *snap.HasMonthlyFee
		}
		if snap.MonthlyFee != nil {
			fee = *snap.MonthlyFee
		}
	}

	source := SourceFixed
	expected := Expected{Fixed: amount}
	if !t.Type.IsMortgage() && (!estMin.IsZero() || !estMax.IsZero()) {
		source = SourceEstimate
		expected = Expected{Min: estMin, Max: estMax}
	}
	// The source names the snapshot only when the snapshot produced the
	// expected value; a rate-only mortgage change leaves the payment (and
	// its source) at baseline.
	if snap != nil && snapshotSetsExpected(t.Type, *snap) {
		source = string(snap.EffectiveFrom)
	}
	expected.Source = source

	return EffectiveTerms{
		Expected:         expected,
		RemainingBalance: balance,
		InterestRate:     rate,
		HasMonthlyFee:    hasFee,
		MonthlyFee:       fee,
		Snapshot:         snap,
	}
}

// snapshotSetsExpected reports whether the snapshot overrode the fields the
// expected value is computed from: the price group for non-mortgage
// templates, the fixed payment for mortgages.
func snapshotSetsExpected(typ ExpenseType, snap TermsSnapshot) bool {
	if typ.IsMortgage() {
		return snap.Amount != nil
	}
	return snap.touchesPrice()
}

// snapshotAsOf returns the snapshot with the greatest EffectiveFrom <= k,
// or nil when none applies. Terms is kept sorted ascending, so this is the
// last entry at or before k.
func (t Template) snapshotAsOf(k period.Key) *TermsSnapshot {
	// First snapshot strictly after k; the one before it (if any) applies.
	i := sort.Search(len(t.Terms), func(i int) bool {
		return t.Terms[i].EffectiveFrom.After(k)
	})
	if i == 0 {
		return nil
	}
	return &t.Terms[i-1]
}

// SortTerms orders snapshots ascending by effective-from key. Stores call
// this after loading so resolution can binary-search.
func SortTerms(terms []TermsSnapshot) {
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].EffectiveFrom.Before(terms[j].EffectiveFrom)
	})
}

// UpsertTerms appends a snapshot, or replaces the existing snapshot with the
// same effective-from key (the change-terms operation is an upsert on that
// key). Returns the updated, sorted slice.
func UpsertTerms(terms []TermsSnapshot, snap TermsSnapshot) []TermsSnapshot {
	for i := range terms {
		if terms[i].EffectiveFrom == snap.EffectiveFrom {
			terms[i] = snap
			SortTerms(terms)
			return terms
		}
	}
	terms = append(terms, snap)
	SortTerms(terms)
	return terms
}
