package valuation

import (
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// Aggregate sums valuated holdings into a portfolio snapshot: overall totals,
// profit, and a per-kind breakdown with percentages of the current total.
// Percentages sum to 100 when the total is positive and are zero for every
// kind otherwise.
func Aggregate(userID string, valuated []*models.ValuatedHolding, rates RateTable, asOf time.Time) *models.PortfolioSnapshot {
	snapshot := &models.PortfolioSnapshot{
		UserID:            userID,
		AsOf:              asOf,
		ReferenceCurrency: rates.Reference,
		TotalInitialValue: decimal.Zero,
		TotalCurrentValue: decimal.Zero,
		MonthlyProfit:     decimal.Zero,
		ByKind:            make(map[string]models.KindBreakdown, len(models.HoldingKinds)),
		Holdings:          valuated,
		DataQuality:       models.DataQualityEmpty,
	}

	for _, kind := range models.HoldingKinds {
		snapshot.ByKind[kind] = models.KindBreakdown{
			CurrentAmount: decimal.Zero,
			Percentage:    decimal.Zero,
		}
	}

	if len(valuated) == 0 {
		snapshot.TotalProfit = decimal.Zero
		snapshot.ProfitPercent = decimal.Zero
		return snapshot
	}

	approximate := false
	for _, v := range valuated {
		snapshot.TotalInitialValue = snapshot.TotalInitialValue.Add(v.InitialValue)
		snapshot.TotalCurrentValue = snapshot.TotalCurrentValue.Add(v.CurrentValue)

		kind := snapshot.ByKind[v.Holding.Kind]
		kind.CurrentAmount = kind.CurrentAmount.Add(v.CurrentValue)
		snapshot.ByKind[v.Holding.Kind] = kind

		if v.PriceApproximate {
			approximate = true
		}
	}

	snapshot.TotalProfit = snapshot.TotalCurrentValue.Sub(snapshot.TotalInitialValue)
	snapshot.ProfitPercent = percentChange(snapshot.TotalInitialValue, snapshot.TotalCurrentValue)

	if snapshot.TotalCurrentValue.IsPositive() {
		for name, kind := range snapshot.ByKind {
			kind.Percentage = kind.CurrentAmount.Div(snapshot.TotalCurrentValue).Mul(hundred)
			snapshot.ByKind[name] = kind
		}
	}

	if approximate {
		snapshot.DataQuality = models.DataQualityEstimated
	} else {
		snapshot.DataQuality = models.DataQualityReal
	}

	return snapshot
}
