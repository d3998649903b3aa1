// Package catalog provides access to the remote product catalog, the external
// source of truth for product identity, names, and base prices.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrEmpty is returned when the catalog responds successfully but carries no
// products. It is a distinct condition from transport or server failures so
// callers can surface a different message for each.
var ErrEmpty = errors.New("catalog is empty")

// UnavailableError indicates the catalog could not be reached or answered
// with a failure status. Status is zero for transport-level errors.
type UnavailableError struct {
	Status int
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog unavailable: status %d", e.Status)
	}
	return fmt.Sprintf("catalog unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Product is a catalog item snapshot. The catalog is volatile: products may
// disappear or change price between fetches, and nothing here is cached.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Gateway fetches the full product listing from the catalog.
type Gateway interface {
	ListProducts(ctx context.Context) ([]Product, error)
}
