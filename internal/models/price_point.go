package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset class constants for price points
const (
	ClassCrypto = "crypto"
	ClassStock  = "stock"
	ClassMetal  = "metal"
	ClassForex  = "forex"
)

// PricePoint represents one market price observation for a symbol.
// Forex points carry a currency pair symbol (e.g. USDBGN) and their price is
// the conversion multiplier. Ingestion keeps at most one canonical point per
// (symbol, calendar day); reads tolerate duplicates by taking the latest.
type PricePoint struct {
	ID         int             `json:"id"`
	Symbol     string          `json:"symbol"`
	AssetClass string          `json:"asset_class"`
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observed_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PriceTickEvent is the Kafka payload produced by the market-data fetchers.
// Price arrives as a string and is parsed into a decimal on ingestion.
type PriceTickEvent struct {
	EventType  string `json:"event_type"`
	Source     string `json:"source"`
	Symbol     string `json:"symbol"`
	AssetClass string `json:"asset_class"`
	Price      string `json:"price"`
	ObservedAt string `json:"observed_at,omitempty"`
}
