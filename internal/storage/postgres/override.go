package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/lunchbox-orders/internal/pricing"
)

const (
	listOverridesSQL = `SELECT user_id, product_id, price, hidden
		FROM price_overrides WHERE user_id = $1`

	upsertOverrideSQL = `INSERT INTO price_overrides (user_id, product_id, price, hidden)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET price = EXCLUDED.price, hidden = EXCLUDED.hidden`
)

var _ pricing.Store = (*OverrideRepository)(nil)

// OverrideRepository implements pricing.Store backed by PostgreSQL.
type OverrideRepository struct {
	pool *pgxpool.Pool
}

// NewOverrideRepository returns an OverrideRepository that uses the given pool.
func NewOverrideRepository(pool *pgxpool.Pool) *OverrideRepository {
	return &OverrideRepository{pool: pool}
}

// ListForUser returns all price overrides for the user in one query.
func (r *OverrideRepository) ListForUser(ctx context.Context, userID int64) ([]pricing.Override, error) {
	rows, err := r.pool.Query(ctx, listOverridesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing overrides for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOverride)
}

// Upsert creates or replaces the override for the (user, product) pair.
// Used by seeding tooling; the serving path only reads.
func (r *OverrideRepository) Upsert(ctx context.Context, ov pricing.Override) error {
	_, err := r.pool.Exec(ctx, upsertOverrideSQL, ov.UserID, ov.ProductID, ov.Price, ov.Hidden)
	if err != nil {
		return fmt.Errorf("upserting override (%d, %d): %w", ov.UserID, ov.ProductID, err)
	}
	return nil
}

func scanOverride(row pgx.CollectableRow) (pricing.Override, error) {
	var (
		ov     pricing.Override
		price  *decimal.Decimal
		hidden *bool
	)
	err := row.Scan(&ov.UserID, &ov.ProductID, &price, &hidden)
	ov.Price = price
	if hidden != nil {
		ov.Hidden = *hidden
	}
	return ov, err
}
