package valuation

import (
	"testing"
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingWindow(t *testing.T) {
	end := date(2024, time.June, 15)

	w := TrailingWindow(end, 6)
	assert.Equal(t, time.January, w.Start.Month())
	assert.Equal(t, 2024, w.Start.Year())
	assert.Equal(t, end, w.End)

	w = TrailingWindow(end, 0)
	assert.Equal(t, time.June, w.Start.Month())

	t.Run("month-end days still cover every requested month", func(t *testing.T) {
		// Jul 31 minus 5 months must not normalize past February
		w := TrailingWindow(date(2024, time.July, 31), 6)
		assert.Equal(t, time.February, w.Start.Month())
		assert.Len(t, monthBuckets(w), 6)

		w = TrailingWindow(date(2024, time.March, 30), 2)
		assert.Equal(t, time.February, w.Start.Month())
		assert.Len(t, monthBuckets(w), 2)
	})
}

func TestBuildSeries(t *testing.T) {
	rates := NewRateTable("USD", nil)
	window := Window{Start: date(2024, time.January, 1), End: date(2024, time.June, 30)}

	t.Run("labels cover every month in the window in order", func(t *testing.T) {
		series := BuildSeries("user-1", nil, nil, rates, window, ModeNearestPrice)

		require.Equal(t, []string{
			"Jan 2024", "Feb 2024", "Mar 2024", "Apr 2024", "May 2024", "Jun 2024",
		}, series.Labels)
		for _, kind := range models.HoldingKinds {
			assert.Len(t, series.ByKind[kind], 6)
		}
	})

	t.Run("bank deposits accrue per bucket and skip pre-acquisition months", func(t *testing.T) {
		h := bankHolding(1200, 12, models.CompoundMonthly1, date(2024, time.March, 20))

		series := BuildSeries("user-1", []*models.Holding{h}, nil, rates, window, ModeNearestPrice)
		// BGN deposit under the USD preset: 1.78 per BGN
		rate := decimal.NewFromFloat(1.78)

		bank := series.ByKind[models.KindBank]
		assert.True(t, bank[0].IsZero(), "Jan precedes acquisition")
		assert.True(t, bank[1].IsZero(), "Feb precedes acquisition")
		assert.True(t, decimal.NewFromInt(1200).Mul(rate).Equal(bank[2]), "Mar is month zero: %s", bank[2])
		// May: 2 months held, 1200 * (1 + 0.12*2/12) = 1224
		assert.True(t, decimal.NewFromInt(1224).Mul(rate).Equal(bank[4]), "May: %s", bank[4])
		assert.Equal(t, models.DataQualityReal, series.DataQuality)
	})

	t.Run("nearest-price mode picks the closest point per bucket", func(t *testing.T) {
		h := stockHolding(2, 100)
		h.AcquiredAt = date(2024, time.January, 10)

		history := map[string][]*models.PricePoint{
			h.Symbol: {
				{Symbol: h.Symbol, Price: decimal.NewFromInt(110), ObservedAt: date(2024, time.January, 3)},
				{Symbol: h.Symbol, Price: decimal.NewFromInt(130), ObservedAt: date(2024, time.February, 25)},
				{Symbol: h.Symbol, Price: decimal.NewFromInt(150), ObservedAt: date(2024, time.May, 2)},
			},
		}

		series := BuildSeries("user-1", []*models.Holding{h}, history, rates, window, ModeNearestPrice)
		stocks := series.ByKind[models.KindStock]

		assert.True(t, decimal.NewFromInt(220).Equal(stocks[0]), "Jan nearest 110: %s", stocks[0])
		assert.True(t, decimal.NewFromInt(260).Equal(stocks[1]), "Feb 1 nearest Feb 25 point: %s", stocks[1])
		assert.True(t, decimal.NewFromInt(260).Equal(stocks[2]), "Mar nearest Feb 25 point: %s", stocks[2])
		assert.True(t, decimal.NewFromInt(300).Equal(stocks[4]), "May nearest May 2 point: %s", stocks[4])
		assert.True(t, decimal.NewFromInt(300).Equal(stocks[5]), "Jun nearest May 2 point: %s", stocks[5])
		assert.Equal(t, models.DataQualityReal, series.DataQuality)
	})

	t.Run("nearest-price mode without history falls back to purchase price", func(t *testing.T) {
		h := stockHolding(2, 100)
		h.AcquiredAt = date(2024, time.January, 10)

		series := BuildSeries("user-1", []*models.Holding{h}, nil, rates, window, ModeNearestPrice)

		for i, v := range series.ByKind[models.KindStock] {
			assert.True(t, decimal.NewFromInt(200).Equal(v), "bucket %d: %s", i, v)
		}
		assert.Equal(t, models.DataQualityEstimated, series.DataQuality)
	})

	t.Run("interpolation mode spreads growth linearly", func(t *testing.T) {
		h := stockHolding(1, 100)
		h.AcquiredAt = date(2024, time.January, 10)

		history := map[string][]*models.PricePoint{
			h.Symbol: {
				{Symbol: h.Symbol, Price: decimal.NewFromInt(150), ObservedAt: date(2024, time.June, 20)},
			},
		}

		series := BuildSeries("user-1", []*models.Holding{h}, history, rates, window, ModeInterpolated)
		stocks := series.ByKind[models.KindStock]

		// 5 months held, growth (150-100)/5 = 10 per month
		assert.True(t, decimal.NewFromInt(100).Equal(stocks[0]), "Jan: %s", stocks[0])
		assert.True(t, decimal.NewFromInt(110).Equal(stocks[1]), "Feb: %s", stocks[1])
		assert.True(t, decimal.NewFromInt(150).Equal(stocks[5]), "Jun: %s", stocks[5])
		assert.Equal(t, models.DataQualityEstimated, series.DataQuality)
	})

	t.Run("all-zero series is tagged empty, never fabricated", func(t *testing.T) {
		series := BuildSeries("user-1", nil, nil, rates, window, ModeNearestPrice)
		assert.Equal(t, models.DataQualityEmpty, series.DataQuality)

		for _, kind := range models.HoldingKinds {
			for _, v := range series.ByKind[kind] {
				assert.True(t, v.IsZero())
			}
		}
	})
}
