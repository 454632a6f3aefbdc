/*
mortgage.go - Amortization estimates for mortgage templates

PURPOSE:
  Derives the monthly interest/principal split and an estimated
  months-remaining figure from the resolved mortgage terms:

    interest  = balance * rate/100/12
    principal = payment - interest - fee     (clamped to >= 0)

  A payment smaller than interest plus fee yields zero principal reduction.
  That is a degenerate case, not an error: the item is flagged and
  months-left is nil (the debt never resolves under current terms).

  Months-left is estimated by forward simulation: reduce the balance by the
  recomputed principal each month until it reaches zero. The simulation is
  capped so it always terminates.
*/
package recurring

import "github.com/shopspring/decimal"

// maxAmortizationMonths caps the forward simulation (50 years).
const maxAmortizationMonths = 600

var (
	hundred      = decimal.NewFromInt(100)
	twelve       = decimal.NewFromInt(12)
	monthDivisor = hundred.Mul(twelve) // rate% -> monthly fraction
)

// monthlyInterest returns balance * rate / 100 / 12.
func monthlyInterest(balance, annualRatePct decimal.Decimal) decimal.Decimal {
	return balance.Mul(annualRatePct).DivRound(monthDivisor, 8)
}

// DeriveMortgage computes the amortization estimate for one payment under
// the given effective terms. The payment is the fixed monthly amount the
// terms resolved to.
func DeriveMortgage(terms EffectiveTerms, payment decimal.Decimal) MortgageEstimate {
	fee := decimal.Zero
	if terms.HasMonthlyFee {
		fee = terms.MonthlyFee
	}

	interest := monthlyInterest(terms.RemainingBalance, terms.InterestRate)
	principal := payment.Sub(interest).Sub(fee)

	est := MortgageEstimate{Interest: interest.Round(2)}
	if principal.IsNegative() {
		est.Degenerate = true
		principal = decimal.Zero
	}
	est.Principal = principal.Round(2)

	if principal.IsPositive() && terms.RemainingBalance.IsPositive() {
		if n, ok := simulatePayoff(terms, payment, fee); ok {
			est.MonthsLeft = &n
		}
	}
	return est
}

// simulatePayoff walks the balance forward month by month, recomputing
// interest on the reduced balance, until the balance reaches zero. Returns
// false when the debt does not resolve within the cap — which also covers
// the case where the shrinking interest never lets principal go positive.
func simulatePayoff(terms EffectiveTerms, payment, fee decimal.Decimal) (int, bool) {
	balance := terms.RemainingBalance
	for months := 1; months <= maxAmortizationMonths; months++ {
		interest := monthlyInterest(balance, terms.InterestRate)
		principal := payment.Sub(interest).Sub(fee)
		if !principal.IsPositive() {
			return 0, false
		}
		balance = balance.Sub(principal)
		if !balance.IsPositive() {
			return months, true
		}
	}
	return 0, false
}
