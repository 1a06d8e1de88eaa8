package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/database"
	"github.com/ivpenchev/portfolio-tracker/internal/models"
	"github.com/shopspring/decimal"
)

// Store is the subset of the database layer the source reads from
type Store interface {
	GetLatestPricePoint(ctx context.Context, symbol string) (*models.PricePoint, error)
	GetPriceHistory(ctx context.Context, symbol string) ([]*models.PricePoint, error)
	GetLatestForexPoints(ctx context.Context) ([]*models.PricePoint, error)
}

// Source implements the valuation engine's PriceSource over the database,
// with an optional cache in front of the hot lookups (latest price, fx
// rates). Cache failures degrade to direct reads and are never fatal.
type Source struct {
	store Store
	cache Cache
	ttl   time.Duration
}

// NewSource creates a price source. cache may be nil, which disables caching.
func NewSource(store Store, cache Cache, ttl time.Duration) *Source {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Source{store: store, cache: cache, ttl: ttl}
}

// LatestPrice returns the most recent price for a symbol. The boolean is
// false when no observation exists.
func (s *Source) LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	key := "price:latest:" + symbol

	if cached, ok := s.cacheGet(ctx, key); ok {
		price, err := decimal.NewFromString(cached)
		if err == nil {
			return price, true, nil
		}
		log.Printf("marketdata: discarding malformed cache entry %s: %v", key, err)
	}

	point, err := s.store.GetLatestPricePoint(ctx, symbol)
	if errors.Is(err, database.ErrNoPriceData) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	s.cacheSet(ctx, key, point.Price.String())
	return point.Price, true, nil
}

// PriceHistory returns all known price points for a symbol
func (s *Source) PriceHistory(ctx context.Context, symbol string) ([]*models.PricePoint, error) {
	return s.store.GetPriceHistory(ctx, symbol)
}

// FxRates assembles the freshest conversion multipliers into the reference
// currency from ingested forex points. The asOf parameter is accepted for
// interface compatibility; rates are always built from the freshest points
// since the table is recomputed per request anyway.
func (s *Source) FxRates(ctx context.Context, reference string, asOf time.Time) (map[string]decimal.Decimal, error) {
	key := "fx:" + reference

	if cached, ok := s.cacheGet(ctx, key); ok {
		rates, err := decodeRates(cached)
		if err == nil {
			return rates, nil
		}
		log.Printf("marketdata: discarding malformed cache entry %s: %v", key, err)
	}

	points, err := s.store.GetLatestForexPoints(ctx)
	if err != nil {
		return nil, err
	}

	rates := RatesFromForexPoints(points, reference)
	if encoded, err := encodeRates(rates); err == nil {
		s.cacheSet(ctx, key, encoded)
	}
	return rates, nil
}

func (s *Source) cacheGet(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, fresh, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("marketdata: cache get %s failed, reading through: %v", key, err)
		return "", false
	}
	return value, fresh
}

func (s *Source) cacheSet(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		log.Printf("marketdata: cache set %s failed: %v", key, err)
	}
}

func encodeRates(rates map[string]decimal.Decimal) (string, error) {
	plain := make(map[string]string, len(rates))
	for ccy, rate := range rates {
		plain[ccy] = rate.String()
	}
	data, err := json.Marshal(plain)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeRates(encoded string) (map[string]decimal.Decimal, error) {
	var plain map[string]string
	if err := json.Unmarshal([]byte(encoded), &plain); err != nil {
		return nil, err
	}
	rates := make(map[string]decimal.Decimal, len(plain))
	for ccy, raw := range plain {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		rates[ccy] = rate
	}
	return rates, nil
}
