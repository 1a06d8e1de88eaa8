package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Data quality tags attached to engine output so the presentation layer can
// decide how to render degraded results.
const (
	DataQualityReal      = "real"
	DataQualityEstimated = "estimated"
	DataQualityEmpty     = "empty"
)

// ValuatedHolding is the per-holding valuation result. Monetary fields are
// expressed in the portfolio reference currency; DisplayValue keeps the
// holding's original currency for presentation.
type ValuatedHolding struct {
	Holding          *Holding        `json:"holding"`
	InitialValue     decimal.Decimal `json:"initial_value"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	Profit           decimal.Decimal `json:"profit"`
	ProfitPercent    decimal.Decimal `json:"profit_percent"`
	DisplayValue     decimal.Decimal `json:"display_value"`
	DisplayCurrency  string          `json:"display_currency"`
	PriceApproximate bool            `json:"price_approximate,omitempty"`
}

// MonthlyProfit is the trailing-30-day profit for one holding.
type MonthlyProfit struct {
	Profit  decimal.Decimal `json:"profit"`
	Percent decimal.Decimal `json:"percent"`
}

// KindBreakdown holds the aggregate for one holding kind within a snapshot.
type KindBreakdown struct {
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// PortfolioSnapshot is the per-request portfolio aggregate. Derived, never
// persisted; recomputed on every query.
type PortfolioSnapshot struct {
	UserID            string                   `json:"user_id"`
	AsOf              time.Time                `json:"as_of"`
	ReferenceCurrency string                   `json:"reference_currency"`
	TotalInitialValue decimal.Decimal          `json:"total_initial_value"`
	TotalCurrentValue decimal.Decimal          `json:"total_current_value"`
	TotalProfit       decimal.Decimal          `json:"total_profit"`
	ProfitPercent     decimal.Decimal          `json:"profit_percent"`
	MonthlyProfit     decimal.Decimal          `json:"monthly_profit"`
	ByKind            map[string]KindBreakdown `json:"by_kind"`
	Holdings          []*ValuatedHolding       `json:"holdings"`
	DataQuality       string                   `json:"data_quality"`
}

// HistorySeries is the month-bucketed valuation series for charting:
// one label per calendar month and one value array per holding kind.
type HistorySeries struct {
	UserID            string                       `json:"user_id"`
	ReferenceCurrency string                       `json:"reference_currency"`
	Labels            []string                     `json:"labels"`
	ByKind            map[string][]decimal.Decimal `json:"by_kind"`
	DataQuality       string                       `json:"data_quality"`
}
