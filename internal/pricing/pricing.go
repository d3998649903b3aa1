// Package pricing computes the effective per-user price and visibility of
// catalog products by merging catalog base prices with stored overrides.
//
// Effective values are always derived at read time and never persisted, so
// historical reads reflect the current pricing policy.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/lunchbox-orders/internal/catalog"
)

// Override is a per-user, per-product pricing exception. At most one exists
// per (user, product) pair. A nil Price means the catalog base price applies;
// Hidden suppresses the product entirely for that user.
type Override struct {
	UserID    int64
	ProductID int64
	Price     *decimal.Decimal
	Hidden    bool
}

// Store provides read access to stored overrides. The write side is owned by
// a separate component.
type Store interface {
	ListForUser(ctx context.Context, userID int64) ([]Override, error)
}

// Effective is the derived price and visibility of one product for one user.
type Effective struct {
	UnitPrice decimal.Decimal
	Hidden    bool
}

// Resolver resolves effective prices against an override store.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver backed by the given override store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// OverridesFor fetches all of a user's overrides in a single query and
// indexes them by product ID.
func (r *Resolver) OverridesFor(ctx context.Context, userID int64) (map[int64]Override, error) {
	overrides, err := r.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[int64]Override, len(overrides))
	for _, ov := range overrides {
		byProduct[ov.ProductID] = ov
	}
	return byProduct, nil
}

// Resolve returns the effective price and visibility of every given product
// for the user. Overrides are fetched once; the merge itself is pure.
func (r *Resolver) Resolve(ctx context.Context, userID int64, products []catalog.Product) (map[int64]Effective, error) {
	overrides, err := r.OverridesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Merge(products, overrides), nil
}

// Merge combines catalog base prices with an override index. A product with
// no override keeps its base price and stays visible; an override price of
// nil falls back to the base price.
func Merge(products []catalog.Product, overrides map[int64]Override) map[int64]Effective {
	effective := make(map[int64]Effective, len(products))
	for _, p := range products {
		eff := Effective{UnitPrice: p.Price}
		if ov, ok := overrides[p.ID]; ok {
			if ov.Price != nil {
				eff.UnitPrice = *ov.Price
			}
			eff.Hidden = ov.Hidden
		}
		effective[p.ID] = eff
	}
	return effective
}
