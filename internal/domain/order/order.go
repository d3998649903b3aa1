package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the wire format for delivery dates: a calendar date with no
// time component.
const DateFormat = "2006-01-02"

// Order is a stored order header with its line items. Orders are immutable
// after creation; a user may place any number of orders for the same
// delivery date.
type Order struct {
	ID           int64
	UserID       int64
	DeliveryDate time.Time
	Comment      string
	Lines        []Line
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Line is one product+quantity entry within an order. It carries no price or
// product name: both are resolved live at read time against the catalog and
// the user's overrides.
type Line struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int32
}

// View is the read model of an order: stored lines joined with the current
// catalog snapshot and override policy. TotalAmount is recomputed on every
// read and covers visible lines only.
type View struct {
	ID           int64
	DeliveryDate time.Time
	Comment      string
	TotalAmount  decimal.Decimal
	Lines        []LineView
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LineView is a visible order line with its effective amount.
type LineView struct {
	ID          int64
	ProductID   int64
	ProductName string
	Quantity    int32
	Amount      decimal.Decimal
}

// Repository defines persistence operations for orders.
//
// Create must persist the header and all lines as one atomic unit: either
// everything commits or nothing does. FindByUserAndDate returns orders with
// lines populated, ordered by ID ascending.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	FindByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]Order, error)
}
