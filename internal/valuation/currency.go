package valuation

import (
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// Reference currency presets supported by the fallback tables.
const (
	ReferenceBGN = "BGN"
	ReferenceUSD = "USD"
)

// Hardcoded fallback multipliers used when no live forex data is available.
// Keyed by reference currency, then by source currency.
var fallbackRates = map[string]map[string]decimal.Decimal{
	ReferenceBGN: {
		"USD": decimal.NewFromFloat(1.79),
		"EUR": decimal.NewFromFloat(1.96),
		"GBP": decimal.NewFromFloat(2.30),
	},
	ReferenceUSD: {
		"BGN": decimal.NewFromFloat(1.78),
		"EUR": decimal.NewFromFloat(0.91),
		"GBP": decimal.NewFromFloat(0.77),
	},
}

// RateTable converts amounts into a single reference currency. Live rates are
// preferred; a named constant preset covers the common currencies when live
// data is missing, and anything else passes through unconverted, flagged as
// approximate. Immutable for the duration of one aggregation call.
type RateTable struct {
	Reference string
	rates     map[string]decimal.Decimal
}

// NewRateTable builds a rate table for the given reference currency from a
// possibly partial map of live rates. A nil map is fine; every lookup then
// degrades to the constant preset.
func NewRateTable(reference string, live map[string]decimal.Decimal) RateTable {
	reference = strings.ToUpper(reference)
	rates := make(map[string]decimal.Decimal, len(live))
	for ccy, rate := range live {
		if rate.IsPositive() {
			rates[strings.ToUpper(ccy)] = rate
		}
	}
	return RateTable{Reference: reference, rates: rates}
}

// ToReference converts amount from the given currency into the reference
// currency. The second return value reports whether the result is approximate
// because no live rate and no preset constant covered the currency.
func (t RateTable) ToReference(amount decimal.Decimal, currency string) (decimal.Decimal, bool) {
	currency = strings.ToUpper(currency)
	if currency == t.Reference {
		return amount, false
	}

	if rate, ok := t.rates[currency]; ok {
		return amount.Mul(rate), false
	}

	if preset, ok := fallbackRates[t.Reference][currency]; ok {
		log.Printf("fx: no live rate for %s->%s, using fallback constant %s", currency, t.Reference, preset)
		return amount.Mul(preset), false
	}

	log.Printf("fx: no rate for %s->%s, passing amount through unconverted", currency, t.Reference)
	return amount, true
}
