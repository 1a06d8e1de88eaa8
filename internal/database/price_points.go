package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
)

// ErrNoPriceData indicates no price observations exist for a symbol. Callers
// treat it as a degradation, not a failure.
var ErrNoPriceData = errors.New("no price data")

// UpsertPricePoint inserts a price observation, keeping one canonical point
// per (symbol, calendar day). A second observation on the same day replaces
// the first.
func (db *DB) UpsertPricePoint(ctx context.Context, p *models.PricePoint) error {
	query := `
		INSERT INTO price_points (symbol, asset_class, price, observed_at, observed_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, observed_on) DO UPDATE SET
			asset_class = EXCLUDED.asset_class,
			price = EXCLUDED.price,
			observed_at = EXCLUDED.observed_at
		RETURNING id
	`
	observedOn := p.ObservedAt.UTC().Truncate(24 * time.Hour)
	err := db.conn.QueryRowContext(ctx, query,
		p.Symbol, p.AssetClass, p.Price, p.ObservedAt, observedOn, time.Now(),
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert price point: %w", err)
	}
	return nil
}

// GetLatestPricePoint retrieves the most recent price point for a symbol
func (db *DB) GetLatestPricePoint(ctx context.Context, symbol string) (*models.PricePoint, error) {
	query := `
		SELECT id, symbol, asset_class, price, observed_at, created_at
		FROM price_points
		WHERE symbol = $1
		ORDER BY observed_at DESC
		LIMIT 1
	`
	var p models.PricePoint
	err := db.conn.QueryRowContext(ctx, query, symbol).Scan(
		&p.ID, &p.Symbol, &p.AssetClass, &p.Price, &p.ObservedAt, &p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w for %s", ErrNoPriceData, symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price point: %w", err)
	}
	return &p, nil
}

// GetPriceHistory retrieves all price points for a symbol, newest first
func (db *DB) GetPriceHistory(ctx context.Context, symbol string) ([]*models.PricePoint, error) {
	query := `
		SELECT id, symbol, asset_class, price, observed_at, created_at
		FROM price_points
		WHERE symbol = $1
		ORDER BY observed_at DESC
	`
	return db.queryPricePoints(ctx, query, symbol)
}

// GetPriceHistoryRange retrieves price points for a symbol within a time
// range, oldest first
func (db *DB) GetPriceHistoryRange(ctx context.Context, symbol string, start, end time.Time) ([]*models.PricePoint, error) {
	query := `
		SELECT id, symbol, asset_class, price, observed_at, created_at
		FROM price_points
		WHERE symbol = $1 AND observed_at >= $2 AND observed_at <= $3
		ORDER BY observed_at ASC
	`
	return db.queryPricePoints(ctx, query, symbol, start, end)
}

// GetLatestForexPoints retrieves the freshest price point per forex pair,
// used to assemble the per-request fx rate table
func (db *DB) GetLatestForexPoints(ctx context.Context) ([]*models.PricePoint, error) {
	query := `
		SELECT DISTINCT ON (symbol) id, symbol, asset_class, price, observed_at, created_at
		FROM price_points
		WHERE asset_class = $1
		ORDER BY symbol, observed_at DESC
	`
	return db.queryPricePoints(ctx, query, models.ClassForex)
}

// DeletePricePointsOlderThan removes price points older than the given date
func (db *DB) DeletePricePointsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM price_points WHERE observed_at < $1`
	result, err := db.conn.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price points: %w", err)
	}
	return result.RowsAffected()
}

func (db *DB) queryPricePoints(ctx context.Context, query string, args ...interface{}) ([]*models.PricePoint, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price points: %w", err)
	}
	defer rows.Close()

	var points []*models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		err := rows.Scan(&p.ID, &p.Symbol, &p.AssetClass, &p.Price, &p.ObservedAt, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, &p)
	}

	return points, rows.Err()
}
