package marketdata

import (
	"strings"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// RatesFromForexPoints assembles a conversion map into the reference currency
// from forex price points. Pair symbols are base+quote (e.g. USDBGN priced at
// 1.79 means 1 USD = 1.79 BGN). Pairs quoted in the reference currency map
// directly; pairs based in it are inverted. Anything else is skipped, the
// valuation layer covers the gaps with its fallback constants.
func RatesFromForexPoints(points []*models.PricePoint, reference string) map[string]decimal.Decimal {
	reference = strings.ToUpper(reference)
	rates := make(map[string]decimal.Decimal)

	for _, p := range points {
		symbol := strings.ToUpper(p.Symbol)
		if len(symbol) != 6 || !p.Price.IsPositive() {
			continue
		}
		base, quote := symbol[:3], symbol[3:]

		switch reference {
		case quote:
			rates[base] = p.Price
		case base:
			rates[quote] = decimal.NewFromInt(1).Div(p.Price)
		}
	}

	return rates
}
