/*
Package reporting provides the aggregation core for the workforce engine.

PURPOSE:
  This package contains the pure computations behind the reporting pages:
  summing dated monetary records over a period, splitting sales by payment
  method, and comparing the current week against the previous one. It never
  touches the database - callers fetch records first, then hand them in.

KEY CONCEPTS IN THIS FILE (types.go):
  - DatedAmount: A monetary record pinned to a calendar day
  - PaymentMethod: How a sale was paid (cash or card)
  - MethodTotals: A cash/card split where both totals are always present

DESIGN PRINCIPLES:
  1. Purity: Every function is a function of its inputs. No hidden clocks,
     no hidden store handles. "Today" is always a parameter.
  2. Precision: Uses decimal.Decimal; rounding happens once, at the
     reporting boundary, never mid-computation.
  3. Tenant safety: Anything that reaches the store must carry a company
     scope; see errors.go for the Unauthorized invariant.

SEE ALSO:
  - aggregate.go: Range sums and the weekly comparison
  - period.go: Inclusive date ranges
  - clock.go: Day and week boundary helpers
*/
package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT METHOD
// =============================================================================

type PaymentMethod string

const (
	MethodCash PaymentMethod = "cash"
	MethodCard PaymentMethod = "card"
)

// RecordKind distinguishes the two dated-amount tables.
type RecordKind string

const (
	KindSale RecordKind = "sale"
	KindCost RecordKind = "cost"
)

// =============================================================================
// DATED AMOUNT - One monetary record on one calendar day
// =============================================================================

// DatedAmount is a sale or cost row as fetched from the store.
// Method is empty for cost records.
type DatedAmount struct {
	Date   time.Time
	Amount decimal.Decimal
	Method PaymentMethod
}

// =============================================================================
// METHOD TOTALS - Cash/card split
// =============================================================================

// MethodTotals carries a total per payment method. Both fields always exist,
// so callers never have to check for a missing key when one method had no
// records in the period.
type MethodTotals struct {
	Cash decimal.Decimal
	Card decimal.Decimal
}

// Total returns cash + card.
func (m MethodTotals) Total() decimal.Decimal {
	return m.Cash.Add(m.Card)
}

// =============================================================================
// DISPLAY ROUNDING
// =============================================================================

// Money precision for reported amounts. Intermediate sums stay unrounded;
// these apply only when a figure crosses the reporting boundary.
const (
	MoneyPlaces = 2
	HourPlaces  = 1
)

func RoundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyPlaces) }
func RoundHours(d decimal.Decimal) decimal.Decimal { return d.Round(HourPlaces) }
