package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/lunchbox-orders/internal/catalog"
	"github.com/xenking/lunchbox-orders/internal/pricing"
)

// Sentinel errors for order validation and lookup.
var (
	ErrEmptyItems  = errors.New("items required")
	ErrInvalidDate = errors.New("invalid date format")
	ErrNoOrders    = errors.New("no orders for this date")

	// ErrCreationFailed is the generic error reported to callers when order
	// creation fails for a non-validation reason (catalog dependency or
	// storage). The distinguishing cause is logged, never returned.
	ErrCreationFailed = errors.New("order creation failed")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// InvalidProductsError indicates requested product IDs that are absent from
// the catalog. It names every offending ID, not just the first.
type InvalidProductsError struct {
	ProductIDs []int64
}

func (e *InvalidProductsError) Error() string {
	ids := make([]string, len(e.ProductIDs))
	for i, id := range e.ProductIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return "order contains invalid products: " + strings.Join(ids, ", ")
}

// ItemRequest is one requested product+quantity pair.
type ItemRequest struct {
	ProductID int64
	Quantity  int32
}

// CreateRequest holds the input for placing an order.
type CreateRequest struct {
	UserID       int64
	DeliveryDate string
	Comment      string
	Items        []ItemRequest
}

// Service encapsulates order placement and order reconstruction.
type Service struct {
	catalog catalog.Gateway
	prices  *pricing.Resolver
	orders  Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(gw catalog.Gateway, prices *pricing.Resolver, orders Repository) *Service {
	return &Service{
		catalog: gw,
		prices:  prices,
		orders:  orders,
	}
}

// CreateOrder validates the requested items against the live catalog and
// persists the order header plus all lines in one atomic transaction.
//
// Validation failures are detected before any I/O. Catalog and storage
// failures both surface as ErrCreationFailed; the cause is logged.
func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
	}
	date, err := time.Parse(DateFormat, req.DeliveryDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	// Catalog validation happens strictly before the transaction opens so the
	// write lock duration never includes network latency.
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		zctx.From(ctx).Error("Catalog fetch failed during order creation", zap.Error(err))
		return nil, ErrCreationFailed
	}

	known := make(map[int64]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
	}

	var invalid []int64
	reported := make(map[int64]struct{})
	for _, item := range req.Items {
		if _, ok := known[item.ProductID]; ok {
			continue
		}
		if _, dup := reported[item.ProductID]; dup {
			continue
		}
		reported[item.ProductID] = struct{}{}
		invalid = append(invalid, item.ProductID)
	}
	if len(invalid) > 0 {
		return nil, &InvalidProductsError{ProductIDs: invalid}
	}

	o := &Order{
		UserID:       req.UserID,
		DeliveryDate: date,
		Comment:      req.Comment,
		Lines:        make([]Line, len(req.Items)),
	}
	for i, item := range req.Items {
		o.Lines[i] = Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		zctx.From(ctx).Error("Order write failed", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, ErrCreationFailed
	}

	return o, nil
}

// FindOrders reconstructs all of a user's orders for the given delivery date.
//
// The catalog and the user's overrides are each fetched once for the whole
// batch. Lines whose product vanished from the catalog, and lines hidden by
// an override, are dropped from the view and contribute nothing to totals.
func (s *Service) FindOrders(ctx context.Context, userID int64, deliveryDate string) ([]View, error) {
	date, err := time.Parse(DateFormat, deliveryDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	stored, err := s.orders.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}
	if len(stored) == 0 {
		return nil, ErrNoOrders
	}

	var (
		products  []catalog.Product
		overrides map[int64]pricing.Override
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := s.catalog.ListProducts(gctx)
		if err != nil {
			return errors.Wrap(err, "fetch catalog")
		}
		products = ps
		return nil
	})
	g.Go(func() error {
		ovs, err := s.prices.OverridesFor(gctx, userID)
		if err != nil {
			return errors.Wrap(err, "fetch overrides")
		}
		overrides = ovs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int64]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	effective := pricing.Merge(products, overrides)

	views := make([]View, 0, len(stored))
	for _, o := range stored {
		v := View{
			ID:           o.ID,
			DeliveryDate: o.DeliveryDate,
			Comment:      o.Comment,
			TotalAmount:  decimal.Zero,
			CreatedAt:    o.CreatedAt,
			UpdatedAt:    o.UpdatedAt,
		}
		for _, line := range o.Lines {
			p, ok := byID[line.ProductID]
			if !ok {
				// Product no longer exists upstream; the stored line stays but
				// is invisible in views.
				continue
			}
			eff := effective[line.ProductID]
			if eff.Hidden {
				continue
			}
			amount := eff.UnitPrice.Mul(decimal.NewFromInt32(line.Quantity))
			v.Lines = append(v.Lines, LineView{
				ID:          line.ID,
				ProductID:   line.ProductID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				Amount:      amount,
			})
			v.TotalAmount = v.TotalAmount.Add(amount)
		}
		views = append(views, v)
	}

	return views, nil
}
