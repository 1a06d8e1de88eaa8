package valuation

import (
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)

	daysPerMonth = decimal.NewFromInt(30)
	daysPerYear  = decimal.NewFromInt(365)
	twelve       = decimal.NewFromInt(12)
	four         = decimal.NewFromInt(4)
	two          = decimal.NewFromInt(2)
)

// MonthsBetween returns the whole calendar-month difference between start and
// asOf, ignoring day-of-month entirely: a deposit made on the 31st and valued
// on the 1st of the next month already counts as one month held. This is the
// accrual granularity the bank products are defined on, coarse on purpose.
// Negative differences clamp to zero.
func MonthsBetween(start, asOf time.Time) int {
	months := calendarMonths(start, asOf)
	if months < 0 {
		return 0
	}
	return months
}

// calendarMonths is the raw year*12+month difference, possibly negative.
func calendarMonths(start, asOf time.Time) int {
	return (asOf.Year()-start.Year())*12 + int(asOf.Month()) - int(start.Month())
}

// AccruedValue computes the value of a fixed-rate deposit held from start
// until asOf under the given compounding policy. Simple interest credited in
// whole periods; partial periods earn nothing. An unrecognized policy falls
// back to yearly. Rate is a percentage, never negative.
func AccruedValue(principal, ratePercent decimal.Decimal, policy string, start, asOf time.Time) decimal.Decimal {
	months := MonthsBetween(start, asOf)
	rate := ratePercent.Div(hundred)

	var accrued decimal.Decimal
	switch policy {
	case models.CompoundDaily:
		// days approximated as 30 per month
		days := decimal.NewFromInt(int64(months)).Mul(daysPerMonth)
		accrued = rate.Mul(days).Div(daysPerYear)
	case models.CompoundMonthly1:
		accrued = rate.Mul(decimal.NewFromInt(int64(months))).Div(twelve)
	case models.CompoundMonthly3:
		accrued = rate.Mul(decimal.NewFromInt(int64(months / 3))).Div(four)
	case models.CompoundMonthly6:
		accrued = rate.Mul(decimal.NewFromInt(int64(months / 6))).Div(two)
	default:
		accrued = rate.Mul(decimal.NewFromInt(int64(months / 12)))
	}

	return principal.Mul(one.Add(accrued))
}
