package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/lunchbox-orders/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (user_id, delivery_date, comment)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	insertLineSQL = `INSERT INTO order_lines (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id`

	findOrdersSQL = `SELECT id, user_id, delivery_date, comment, created_at, updated_at
		FROM orders WHERE user_id = $1 AND delivery_date = $2 ORDER BY id`

	findLinesSQL = `SELECT id, order_id, product_id, quantity
		FROM order_lines WHERE order_id = ANY($1) ORDER BY id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and all of its lines in one transaction.
// On success the store-assigned IDs and timestamps are written back into o.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, insertOrderSQL, o.UserID, o.DeliveryDate, o.Comment)
		if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return fmt.Errorf("insert order header: %w", err)
		}

		b := &pgx.Batch{}
		for _, line := range o.Lines {
			b.Queue(insertLineSQL, o.ID, line.ProductID, line.Quantity)
		}

		br := tx.SendBatch(ctx, b)
		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
			if err := br.QueryRow().Scan(&o.Lines[i].ID); err != nil {
				br.Close() //nolint:errcheck // already failing
				return fmt.Errorf("insert order line %d: %w", i, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return fmt.Errorf("creating order for user %d: %w", o.UserID, err)
	}
	return nil
}

// FindByUserAndDate returns all orders for the user and delivery date, lines
// populated, ordered by ID ascending. Lines for the whole batch are fetched
// in a single query.
func (r *OrderRepository) FindByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, findOrdersSQL, userID, date)
	if err != nil {
		return nil, fmt.Errorf("finding orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("finding orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err = r.pool.Query(ctx, findLinesSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("finding order lines: %w", err)
	}
	lines, err := pgx.CollectRows(rows, scanLine)
	if err != nil {
		return nil, fmt.Errorf("finding order lines: %w", err)
	}

	for _, line := range lines {
		i := index[line.OrderID]
		orders[i].Lines = append(orders[i].Lines, line)
	}
	return orders, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.UserID, &o.DeliveryDate, &o.Comment, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func scanLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity)
	return l, err
}
