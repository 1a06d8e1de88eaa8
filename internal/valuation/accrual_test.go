package valuation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthsBetween(t *testing.T) {
	t.Run("whole calendar months ignore day of month", func(t *testing.T) {
		// deposit on the 31st valued on the 1st already counts as one month
		assert.Equal(t, 1, MonthsBetween(date(2023, time.January, 31), date(2023, time.February, 1)))
		assert.Equal(t, 0, MonthsBetween(date(2023, time.January, 1), date(2023, time.January, 31)))
		assert.Equal(t, 12, MonthsBetween(date(2023, time.January, 15), date(2024, time.January, 15)))
	})

	t.Run("crosses year boundaries", func(t *testing.T) {
		assert.Equal(t, 14, MonthsBetween(date(2022, time.November, 1), date(2024, time.January, 1)))
	})

	t.Run("clamps to zero when asOf precedes start", func(t *testing.T) {
		assert.Equal(t, 0, MonthsBetween(date(2024, time.June, 1), date(2024, time.January, 1)))
	})
}

func TestAccruedValue(t *testing.T) {
	principal := decimal.NewFromInt(1000)

	t.Run("zero rate accrues nothing", func(t *testing.T) {
		got := AccruedValue(principal, decimal.Zero, "monthly_1", date(2020, time.January, 1), date(2024, time.January, 1))
		assert.True(t, principal.Equal(got), "got %s", got)
	})

	t.Run("zero elapsed months accrues nothing", func(t *testing.T) {
		start := date(2023, time.March, 10)
		for _, policy := range []string{"daily", "monthly_1", "monthly_3", "monthly_6", "yearly"} {
			got := AccruedValue(principal, decimal.NewFromInt(5), policy, start, start)
			assert.True(t, principal.Equal(got), "policy %s: got %s", policy, got)
		}
	})

	t.Run("yearly credits whole years only", func(t *testing.T) {
		// 1000 at 12% yearly, held 12 months: 1 + 0.12*floor(12/12) = 1.12
		got := AccruedValue(principal, decimal.NewFromInt(12), "yearly", date(2023, time.January, 1), date(2024, time.January, 1))
		assert.True(t, decimal.NewFromInt(1120).Equal(got), "got %s", got)

		// 11 months held: no full year yet
		got = AccruedValue(principal, decimal.NewFromInt(12), "yearly", date(2023, time.January, 1), date(2023, time.December, 1))
		assert.True(t, principal.Equal(got), "got %s", got)
	})

	t.Run("quarterly credits whole quarters", func(t *testing.T) {
		// 500 at 8%, 7 months: floor(7/3)=2 quarters, 1 + 0.08*2/4 = 1.04
		got := AccruedValue(decimal.NewFromInt(500), decimal.NewFromInt(8), "monthly_3", date(2023, time.January, 1), date(2023, time.August, 1))
		assert.True(t, decimal.NewFromInt(520).Equal(got), "got %s", got)
	})

	t.Run("semiannual credits whole half-years", func(t *testing.T) {
		// 1000 at 6%, 13 months: floor(13/6)=2, 1 + 0.06*2/2 = 1.06
		got := AccruedValue(principal, decimal.NewFromInt(6), "monthly_6", date(2023, time.January, 1), date(2024, time.February, 1))
		assert.True(t, decimal.NewFromInt(1060).Equal(got), "got %s", got)
	})

	t.Run("monthly accrues pro-rata twelfths", func(t *testing.T) {
		// 1000 at 12%, 6 months: 1 + 0.12*6/12 = 1.06
		got := AccruedValue(principal, decimal.NewFromInt(12), "monthly_1", date(2023, time.January, 1), date(2023, time.July, 1))
		assert.True(t, decimal.NewFromInt(1060).Equal(got), "got %s", got)
	})

	t.Run("daily approximates 30-day months over a 365-day year", func(t *testing.T) {
		// 1000 at 3.65%, 1 month: 1 + 0.0365*30/365 = 1.003
		got := AccruedValue(principal, decimal.NewFromFloat(3.65), "daily", date(2023, time.January, 1), date(2023, time.February, 1))
		assert.True(t, decimal.NewFromInt(1003).Equal(got), "got %s", got)
	})

	t.Run("unknown policy falls back to yearly", func(t *testing.T) {
		got := AccruedValue(principal, decimal.NewFromInt(12), "weekly", date(2023, time.January, 1), date(2024, time.January, 1))
		assert.True(t, decimal.NewFromInt(1120).Equal(got), "got %s", got)
	})

	t.Run("valuation before the start date never under-accrues", func(t *testing.T) {
		got := AccruedValue(principal, decimal.NewFromInt(10), "monthly_1", date(2024, time.June, 1), date(2024, time.January, 1))
		assert.True(t, principal.Equal(got), "got %s", got)
	})
}
