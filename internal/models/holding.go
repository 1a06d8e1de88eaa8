package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Holding kind constants
const (
	KindBank   = "bank"
	KindCrypto = "crypto"
	KindStock  = "stock"
	KindMetal  = "metal"
)

// HoldingKinds lists every supported kind in display order.
var HoldingKinds = []string{KindBank, KindCrypto, KindStock, KindMetal}

// Compounding policy constants for bank holdings
const (
	CompoundDaily    = "daily"
	CompoundMonthly1 = "monthly_1"
	CompoundMonthly3 = "monthly_3"
	CompoundMonthly6 = "monthly_6"
	CompoundYearly   = "yearly"
)

// Holding represents a user's position in one asset: a bank deposit or a
// market-priced asset (crypto, stock, metal). For bank holdings Quantity is
// the deposited principal and UnitCost is fixed at 1.
type Holding struct {
	ID         int             `json:"id"`
	UserID     string          `json:"user_id"`
	Kind       string          `json:"kind"`
	Symbol     string          `json:"symbol"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Currency   string          `json:"currency"`
	AcquiredAt time.Time       `json:"acquired_at"`
	Notes      string          `json:"notes,omitempty"`

	// Bank-only fields, zero-valued for market holdings
	InterestRate decimal.Decimal `json:"interest_rate,omitempty"`
	Compounding  string          `json:"compounding,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsBank reports whether the holding is a fixed-rate bank deposit.
func (h *Holding) IsBank() bool {
	return h.Kind == KindBank
}

var hundred = decimal.NewFromInt(100)

// Validate enforces the data-entry invariants. Holdings that fail validation
// never reach the valuation engine.
func (h *Holding) Validate() error {
	if h.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if !validKind(h.Kind) {
		return fmt.Errorf("invalid holding kind: %s", h.Kind)
	}
	if h.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if h.Quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("quantity must be positive")
	}
	if strings.TrimSpace(h.Currency) == "" {
		return fmt.Errorf("currency is required")
	}
	if h.AcquiredAt.After(time.Now()) {
		return fmt.Errorf("acquisition date cannot be in the future")
	}

	if h.IsBank() {
		if h.InterestRate.IsNegative() || h.InterestRate.GreaterThan(hundred) {
			return fmt.Errorf("interest rate must be between 0 and 100")
		}
		if !validCompounding(h.Compounding) {
			return fmt.Errorf("invalid compounding policy: %s", h.Compounding)
		}
	} else {
		if h.UnitCost.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("unit cost must be positive")
		}
	}

	return nil
}

// Normalize fills in derived defaults: bank deposits get a synthesized
// BANK_<CCY> symbol and a unit cost of 1.
func (h *Holding) Normalize() {
	h.Currency = strings.ToUpper(strings.TrimSpace(h.Currency))
	if h.IsBank() {
		if h.Symbol == "" || !strings.HasPrefix(h.Symbol, "BANK_") {
			h.Symbol = "BANK_" + h.Currency
		}
		h.UnitCost = decimal.NewFromInt(1)
	} else {
		h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
	}
}

func validKind(kind string) bool {
	switch kind {
	case KindBank, KindCrypto, KindStock, KindMetal:
		return true
	}
	return false
}

func validCompounding(policy string) bool {
	switch policy {
	case CompoundDaily, CompoundMonthly1, CompoundMonthly3, CompoundMonthly6, CompoundYearly:
		return true
	}
	return false
}

// HoldingEvent represents a Kafka event for holding changes
type HoldingEvent struct {
	EventType string    `json:"event_type"`
	Holding   *Holding  `json:"holding,omitempty"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
