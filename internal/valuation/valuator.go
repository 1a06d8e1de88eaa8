package valuation

import (
	"sort"
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// Market prices arrive from the ingestion side denominated in USD.
const marketCurrency = "USD"

// Valuate computes initial value, current value and profit for one holding,
// normalized into the reference currency of the rate table. Bank deposits
// accrue interest from the acquisition date; market holdings are marked to
// the latest known price, falling back to the purchase price when no market
// data exists. Missing data never fails a valuation.
func Valuate(h *models.Holding, latestPrice decimal.Decimal, hasPrice bool, rates RateTable, asOf time.Time) *models.ValuatedHolding {
	v := &models.ValuatedHolding{Holding: h}

	if h.IsBank() {
		accrued := AccruedValue(h.Quantity, h.InterestRate, h.Compounding, h.AcquiredAt, asOf)

		initial, approx1 := rates.ToReference(h.Quantity, h.Currency)
		current, approx2 := rates.ToReference(accrued, h.Currency)

		v.InitialValue = initial
		v.CurrentValue = current
		// deposits are shown to the user in their original currency
		v.DisplayValue = accrued
		v.DisplayCurrency = h.Currency
		v.PriceApproximate = approx1 || approx2
	} else {
		price := h.UnitCost
		if hasPrice {
			price = latestPrice
		}

		initial, approx1 := rates.ToReference(h.Quantity.Mul(h.UnitCost), marketCurrency)
		current, approx2 := rates.ToReference(h.Quantity.Mul(price), marketCurrency)

		v.InitialValue = initial
		v.CurrentValue = current
		v.DisplayValue = h.Quantity.Mul(price)
		v.DisplayCurrency = marketCurrency
		v.PriceApproximate = !hasPrice || approx1 || approx2
	}

	v.Profit = v.CurrentValue.Sub(v.InitialValue)
	v.ProfitPercent = percentChange(v.InitialValue, v.CurrentValue)

	return v
}

// MonthlyProfitFor computes the trailing-30-day profit for a market holding
// from its price history: the latest price against the newest point at or
// before the 30-day cutoff, or the oldest available point when the history
// does not reach back that far. An empty history yields zero profit.
func MonthlyProfitFor(h *models.Holding, history []*models.PricePoint, now time.Time) models.MonthlyProfit {
	if len(history) == 0 {
		return models.MonthlyProfit{Profit: decimal.Zero, Percent: decimal.Zero}
	}

	sorted := SortedByTimeDesc(history)
	latest := sorted[0].Price
	cutoff := now.AddDate(0, 0, -30)

	monthAgo := sorted[len(sorted)-1].Price
	for _, p := range sorted {
		if !p.ObservedAt.After(cutoff) {
			monthAgo = p.Price
			break
		}
	}

	profit := h.Quantity.Mul(latest.Sub(monthAgo))
	return models.MonthlyProfit{
		Profit:  profit,
		Percent: percentChange(monthAgo, latest),
	}
}

// SortedByTimeDesc returns a copy of the price points ordered newest first.
// Histories arrive from the data layer possibly unsorted.
func SortedByTimeDesc(points []*models.PricePoint) []*models.PricePoint {
	sorted := make([]*models.PricePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ObservedAt.After(sorted[j].ObservedAt)
	})
	return sorted
}

// percentChange returns (to/from - 1) * 100, or zero when from is not
// positive. Never NaN, never an error.
func percentChange(from, to decimal.Decimal) decimal.Decimal {
	if !from.IsPositive() {
		return decimal.Zero
	}
	return to.Div(from).Sub(one).Mul(hundred)
}
