package valuation

import (
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// SeriesMode selects how market holdings are valued inside a history bucket.
type SeriesMode string

const (
	// ModeNearestPrice values each bucket at the historical price point
	// closest in time to the bucket date. Preferred when history exists.
	ModeNearestPrice SeriesMode = "nearest"

	// ModeInterpolated spreads the growth between purchase and current value
	// linearly across the months held. A cheaper approximation for symbols
	// with thin history; output is tagged estimated.
	ModeInterpolated SeriesMode = "interpolated"
)

// Window is an inclusive month range for a history series.
type Window struct {
	Start time.Time
	End   time.Time
}

// TrailingWindow returns a window covering the given number of calendar
// months up to and including the month of end. The start is anchored to the
// first of the month so that month-end days cannot normalize into the wrong
// month and shorten the window.
func TrailingWindow(end time.Time, months int) Window {
	if months < 1 {
		months = 1
	}
	anchor := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: anchor.AddDate(0, -(months - 1), 0), End: end}
}

// BuildSeries produces a month-bucketed valuation series for charting: one
// label per calendar month in the window and one value array per holding
// kind. Holdings contribute nothing to buckets before their acquisition
// month. A series where every computed value is zero is tagged
// DataQualityEmpty so callers can decide what to render; the builder never
// substitutes fabricated data.
func BuildSeries(userID string, holdings []*models.Holding, historyBySymbol map[string][]*models.PricePoint, rates RateTable, window Window, mode SeriesMode) *models.HistorySeries {
	series := &models.HistorySeries{
		UserID:            userID,
		ReferenceCurrency: rates.Reference,
		ByKind:            make(map[string][]decimal.Decimal, len(models.HoldingKinds)),
	}

	buckets := monthBuckets(window)
	series.Labels = make([]string, len(buckets))
	for i, b := range buckets {
		series.Labels[i] = b.Format("Jan 2006")
	}
	for _, kind := range models.HoldingKinds {
		values := make([]decimal.Decimal, len(buckets))
		for i := range values {
			values[i] = decimal.Zero
		}
		series.ByKind[kind] = values
	}

	allZero := true
	approximate := mode == ModeInterpolated

	for _, h := range holdings {
		history := SortedByTimeDesc(historyBySymbol[h.Symbol])

		for i, bucket := range buckets {
			if calendarMonths(h.AcquiredAt, bucket) < 0 {
				continue
			}

			var value decimal.Decimal
			if h.IsBank() {
				accrued := AccruedValue(h.Quantity, h.InterestRate, h.Compounding, h.AcquiredAt, bucket)
				converted, approx := rates.ToReference(accrued, h.Currency)
				value = converted
				approximate = approximate || approx
			} else {
				raw, usedFallback := marketBucketValue(h, history, bucket, window.End, mode)
				converted, approx := rates.ToReference(raw, marketCurrency)
				value = converted
				approximate = approximate || approx || usedFallback
			}

			series.ByKind[h.Kind][i] = series.ByKind[h.Kind][i].Add(value)
			if !value.IsZero() {
				allZero = false
			}
		}
	}

	switch {
	case allZero:
		series.DataQuality = models.DataQualityEmpty
	case approximate:
		series.DataQuality = models.DataQualityEstimated
	default:
		series.DataQuality = models.DataQualityReal
	}

	return series
}

// marketBucketValue values one market holding for one bucket, in the market
// currency. The second return value reports whether a purchase-price
// fallback stood in for missing history.
func marketBucketValue(h *models.Holding, history []*models.PricePoint, bucket, windowEnd time.Time, mode SeriesMode) (decimal.Decimal, bool) {
	if mode == ModeInterpolated {
		return interpolatedValue(h, history, bucket, windowEnd)
	}

	price, ok := nearestPrice(history, bucket)
	if !ok {
		return h.Quantity.Mul(h.UnitCost), true
	}
	return h.Quantity.Mul(price), false
}

// interpolatedValue extrapolates linearly between purchase value and current
// value across the months held.
func interpolatedValue(h *models.Holding, history []*models.PricePoint, bucket, windowEnd time.Time) (decimal.Decimal, bool) {
	latest := h.UnitCost
	usedFallback := true
	if len(history) > 0 {
		latest = history[0].Price
		usedFallback = false
	}

	initial := h.Quantity.Mul(h.UnitCost)
	current := h.Quantity.Mul(latest)

	totalMonths := MonthsBetween(h.AcquiredAt, windowEnd)
	if totalMonths == 0 {
		return current, usedFallback
	}

	growthPerMonth := current.Sub(initial).Div(decimal.NewFromInt(int64(totalMonths)))
	monthsHeld := MonthsBetween(h.AcquiredAt, bucket)
	return initial.Add(growthPerMonth.Mul(decimal.NewFromInt(int64(monthsHeld)))), usedFallback
}

// nearestPrice finds the price point with the minimum absolute time distance
// from the target date.
func nearestPrice(history []*models.PricePoint, target time.Time) (decimal.Decimal, bool) {
	if len(history) == 0 {
		return decimal.Zero, false
	}

	best := history[0]
	bestDelta := absDuration(target.Sub(best.ObservedAt))
	for _, p := range history[1:] {
		delta := absDuration(target.Sub(p.ObservedAt))
		if delta < bestDelta {
			best = p
			bestDelta = delta
		}
	}
	return best.Price, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// monthBuckets expands a window into one date per calendar month, first of
// the month, start through end inclusive.
func monthBuckets(window Window) []time.Time {
	start := time.Date(window.Start.Year(), window.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(window.End.Year(), window.End.Month(), 1, 0, 0, 0, 0, time.UTC)

	var buckets []time.Time
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		buckets = append(buckets, cur)
	}
	return buckets
}
