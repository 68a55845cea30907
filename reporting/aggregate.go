/*
aggregate.go - Range sums and the weekly comparison

PURPOSE:
  The three aggregate operations behind the dashboard pages:
  - SumInRange:   total of all records inside a period
  - SumByMethod:  the same, split cash/card with both keys always present
  - CompareWeeks: this week vs last week with a three-way trend

NUMERIC POLICY:
  Records are summed as exact decimals and rounded to 2 places after the
  sum. The weekly diff is computed from the rounded totals so it matches
  what the page displays.

SEE ALSO:
  - clock.go: WeekOf / YesterdayRange boundary helpers
  - store/sqlite: FetchDatedAmounts supplies the record slices
*/
package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RANGE SUMS
// =============================================================================

// SumInRange totals every record whose date falls within the period,
// inclusive on both ends, rounded to 2 decimal places after summation.
func SumInRange(records []DatedAmount, p Period) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		if p.Contains(r.Date) {
			sum = sum.Add(r.Amount)
		}
	}
	return RoundMoney(sum)
}

// SumByMethod totals records within the period grouped by payment method.
// Both totals are present even when one method has no records.
func SumByMethod(records []DatedAmount, p Period) MethodTotals {
	cash, card := decimal.Zero, decimal.Zero
	for _, r := range records {
		if !p.Contains(r.Date) {
			continue
		}
		switch r.Method {
		case MethodCard:
			card = card.Add(r.Amount)
		default:
			cash = cash.Add(r.Amount)
		}
	}
	return MethodTotals{Cash: RoundMoney(cash), Card: RoundMoney(card)}
}

// =============================================================================
// WEEKLY COMPARISON
// =============================================================================

// Trend is the three-way classification of a week-over-week diff.
// It drives presentation only, but is part of the result so the
// classification is testable alongside the raw number.
type Trend string

const (
	TrendMore  Trend = "more"
	TrendLess  Trend = "less"
	TrendEqual Trend = "equal"
)

func trendOf(diff decimal.Decimal) Trend {
	switch diff.Sign() {
	case 1:
		return TrendMore
	case -1:
		return TrendLess
	default:
		return TrendEqual
	}
}

// WeeklyComparison is the single deterministic result of comparing the week
// containing the reference instant against the week before it.
type WeeklyComparison struct {
	ThisWeek Period
	LastWeek Period

	ThisTotal decimal.Decimal
	LastTotal decimal.Decimal
	ThisSplit MethodTotals
	LastSplit MethodTotals

	Diff  decimal.Decimal
	Trend Trend
}

// CompareWeeks computes the week-over-week comparison from already-fetched
// records. The reference instant is an explicit parameter so boundary logic
// is deterministic under test; callers pass "now" in production.
func CompareWeeks(records []DatedAmount, ref time.Time) WeeklyComparison {
	thisWeek := WeekOf(ref)
	lastWeek := thisWeek.Previous()

	thisSplit := SumByMethod(records, thisWeek)
	lastSplit := SumByMethod(records, lastWeek)

	diff := thisSplit.Total().Sub(lastSplit.Total())

	return WeeklyComparison{
		ThisWeek:  thisWeek,
		LastWeek:  lastWeek,
		ThisTotal: thisSplit.Total(),
		LastTotal: lastSplit.Total(),
		ThisSplit: thisSplit,
		LastSplit: lastSplit,
		Diff:      diff,
		Trend:     trendOf(diff),
	}
}
