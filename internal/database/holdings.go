package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/models"
)

// ErrHoldingNotFound indicates the holding does not exist or is not owned by
// the requesting user. Handlers map it to a 404.
var ErrHoldingNotFound = errors.New("holding not found")

const holdingColumns = `
	id, user_id, kind, symbol, quantity, unit_cost, currency, acquired_at,
	notes, interest_rate, compounding, created_at, updated_at
`

// CreateHolding inserts a new holding record
func (db *DB) CreateHolding(ctx context.Context, h *models.Holding) error {
	query := `
		INSERT INTO holdings (
			user_id, kind, symbol, quantity, unit_cost, currency, acquired_at,
			notes, interest_rate, compounding, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	err := db.conn.QueryRowContext(ctx, query,
		h.UserID, h.Kind, h.Symbol, h.Quantity, h.UnitCost, h.Currency, h.AcquiredAt,
		h.Notes, h.InterestRate, h.Compounding, now, now,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	return nil
}

// GetHoldingByID retrieves a holding by ID
func (db *DB) GetHoldingByID(ctx context.Context, id int) (*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE id = $1`

	h, err := scanHolding(db.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrHoldingNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return h, nil
}

// LoadHoldings retrieves all holdings for a user, ordered by acquisition date
// descending. Implements the valuation engine's HoldingSource.
func (db *DB) LoadHoldings(ctx context.Context, userID string) ([]*models.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE user_id = $1 ORDER BY acquired_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	return holdings, rows.Err()
}

// UpdateHolding replaces the mutable fields of an existing holding
func (db *DB) UpdateHolding(ctx context.Context, h *models.Holding) error {
	query := `
		UPDATE holdings SET
			kind = $1, symbol = $2, quantity = $3, unit_cost = $4, currency = $5,
			acquired_at = $6, notes = $7, interest_rate = $8, compounding = $9,
			updated_at = $10
		WHERE id = $11 AND user_id = $12
	`
	result, err := db.conn.ExecContext(ctx, query,
		h.Kind, h.Symbol, h.Quantity, h.UnitCost, h.Currency,
		h.AcquiredAt, h.Notes, h.InterestRate, h.Compounding,
		time.Now(), h.ID, h.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrHoldingNotFound, h.ID)
	}
	return nil
}

// DeleteHolding removes a holding owned by the given user
func (db *DB) DeleteHolding(ctx context.Context, id int, userID string) error {
	query := `DELETE FROM holdings WHERE id = $1 AND user_id = $2`
	result, err := db.conn.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrHoldingNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHolding(row rowScanner) (*models.Holding, error) {
	var h models.Holding
	var notes, compounding sql.NullString

	err := row.Scan(
		&h.ID, &h.UserID, &h.Kind, &h.Symbol, &h.Quantity, &h.UnitCost,
		&h.Currency, &h.AcquiredAt, &notes, &h.InterestRate, &compounding,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.Notes = notes.String
	h.Compounding = compounding.String
	return &h, nil
}
