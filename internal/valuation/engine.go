package valuation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// HoldingSource loads the holdings the engine valuates. Implemented by the
// database layer.
type HoldingSource interface {
	LoadHoldings(ctx context.Context, userID string) ([]*models.Holding, error)
}

// PriceSource provides market data to the engine. Implemented by the
// market-data layer; all lookups are best-effort and the engine degrades
// gracefully when they fail or come back empty.
type PriceSource interface {
	// LatestPrice returns the most recent price for a symbol. The boolean is
	// false when no price data exists for the symbol.
	LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error)

	// PriceHistory returns all known price points for a symbol, in no
	// particular order.
	PriceHistory(ctx context.Context, symbol string) ([]*models.PricePoint, error)

	// FxRates returns the freshest known conversion multipliers into the
	// given reference currency. The map may be partial or empty.
	FxRates(ctx context.Context, reference string, asOf time.Time) (map[string]decimal.Decimal, error)
}

// Engine is the portfolio valuation facade consumed by the HTTP layer. Pure
// computation over injected data sources; it owns no persistence, no network
// I/O and no caching.
type Engine struct {
	holdings  HoldingSource
	prices    PriceSource
	reference string
	window    int
}

// NewEngine creates a valuation engine normalizing into the given reference
// currency, with a default history window in months.
func NewEngine(holdings HoldingSource, prices PriceSource, referenceCurrency string, defaultWindowMonths int) *Engine {
	if defaultWindowMonths < 1 {
		defaultWindowMonths = 12
	}
	return &Engine{
		holdings:  holdings,
		prices:    prices,
		reference: referenceCurrency,
		window:    defaultWindowMonths,
	}
}

// PortfolioSnapshot valuates every holding of the user as of the given time
// and aggregates the results into totals and a per-kind breakdown.
func (e *Engine) PortfolioSnapshot(ctx context.Context, userID string, asOf time.Time) (*models.PortfolioSnapshot, error) {
	holdings, err := e.holdings.LoadHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings for user %s: %w", userID, err)
	}

	rates := e.rateTable(ctx, asOf)

	valuated := make([]*models.ValuatedHolding, 0, len(holdings))
	for _, h := range holdings {
		var price decimal.Decimal
		hasPrice := false
		if !h.IsBank() {
			price, hasPrice = e.latestPrice(ctx, h.Symbol)
		}
		valuated = append(valuated, Valuate(h, price, hasPrice, rates, asOf))
	}

	snapshot := Aggregate(userID, valuated, rates, asOf)
	snapshot.MonthlyProfit = e.monthlyProfit(ctx, holdings, rates, asOf)
	return snapshot, nil
}

// HistorySeries builds a month-bucketed valuation series for the user. A zero
// window defaults to the trailing configured number of months ending now.
func (e *Engine) HistorySeries(ctx context.Context, userID string, window Window, mode SeriesMode) (*models.HistorySeries, error) {
	holdings, err := e.holdings.LoadHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings for user %s: %w", userID, err)
	}

	if window.Start.IsZero() || window.End.IsZero() {
		window = TrailingWindow(time.Now(), e.window)
	}
	if mode == "" {
		mode = ModeNearestPrice
	}

	rates := e.rateTable(ctx, window.End)

	historyBySymbol := make(map[string][]*models.PricePoint)
	for _, h := range holdings {
		if h.IsBank() {
			continue
		}
		if _, done := historyBySymbol[h.Symbol]; done {
			continue
		}
		history, err := e.prices.PriceHistory(ctx, h.Symbol)
		if err != nil {
			log.Printf("valuation: price history lookup for %s failed, continuing without: %v", h.Symbol, err)
			continue
		}
		historyBySymbol[h.Symbol] = history
	}

	return BuildSeries(userID, holdings, historyBySymbol, rates, window, mode), nil
}

// monthlyProfit is the delta between the current aggregate valuation and the
// aggregate 30 days earlier: accrual delta for deposits, trailing price delta
// for market holdings.
func (e *Engine) monthlyProfit(ctx context.Context, holdings []*models.Holding, rates RateTable, asOf time.Time) decimal.Decimal {
	monthAgo := asOf.AddDate(0, 0, -30)
	total := decimal.Zero

	for _, h := range holdings {
		if h.IsBank() {
			now := AccruedValue(h.Quantity, h.InterestRate, h.Compounding, h.AcquiredAt, asOf)
			then := AccruedValue(h.Quantity, h.InterestRate, h.Compounding, h.AcquiredAt, monthAgo)
			delta, _ := rates.ToReference(now.Sub(then), h.Currency)
			total = total.Add(delta)
			continue
		}

		history, err := e.prices.PriceHistory(ctx, h.Symbol)
		if err != nil {
			log.Printf("valuation: price history lookup for %s failed, skipping monthly delta: %v", h.Symbol, err)
			continue
		}
		monthly := MonthlyProfitFor(h, history, asOf)
		delta, _ := rates.ToReference(monthly.Profit, marketCurrency)
		total = total.Add(delta)
	}

	return total
}

func (e *Engine) latestPrice(ctx context.Context, symbol string) (decimal.Decimal, bool) {
	price, ok, err := e.prices.LatestPrice(ctx, symbol)
	if err != nil {
		log.Printf("valuation: latest price lookup for %s failed, falling back to purchase price: %v", symbol, err)
		return decimal.Zero, false
	}
	return price, ok
}

func (e *Engine) rateTable(ctx context.Context, asOf time.Time) RateTable {
	live, err := e.prices.FxRates(ctx, e.reference, asOf)
	if err != nil {
		log.Printf("valuation: fx rate lookup failed, degrading to fallback constants: %v", err)
		live = nil
	}
	return NewRateTable(e.reference, live)
}
