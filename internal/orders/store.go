package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"corpfood-backend/pkg/money"
)

// Conf is the postgres-backed order store.
type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

const orderColumns = `o.id, o.order_number, o.status, o.total_amount_cents,
	o.estimated_preparation_time, o.special_instructions, o.payment_status,
	o.payment_method, o.customer_id, o.cafe_id, c.name, o.created_at, o.updated_at`

func (c *Conf) Create(ctx context.Context, order *Order) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		queryOrder := `
			INSERT INTO orders (order_number, status, total_amount_cents,
				estimated_preparation_time, special_instructions, payment_status,
				customer_id, cafe_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, queryOrder,
			order.OrderNumber, order.Status, int64(order.TotalAmount),
			order.EstimatedPrepTime, nullIfEmpty(order.SpecialInstructions),
			order.PaymentStatus, order.CustomerID, order.CafeID,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		queryItem := `
			INSERT INTO order_items (order_id, menu_item_id, name_snapshot,
				quantity, unit_price_cents, total_price_cents, special_instructions)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		for i := range order.Items {
			item := &order.Items[i]
			err := tx.QueryRowContext(ctx, queryItem,
				order.ID, item.MenuItemID, item.Name, item.Quantity,
				int64(item.UnitPrice), int64(item.TotalPrice),
				nullIfEmpty(item.SpecialInstructions),
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}
		return nil
	})
}

func (c *Conf) Get(ctx context.Context, id int64) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN cafes c ON c.id = o.cafe_id
		WHERE o.id = $1
	`
	return c.getOne(ctx, query, id)
}

func (c *Conf) GetForCustomer(ctx context.Context, id, customerID int64) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN cafes c ON c.id = o.cafe_id
		WHERE o.id = $1 AND o.customer_id = $2
	`
	return c.getOne(ctx, query, id, customerID)
}

func (c *Conf) GetForOwner(ctx context.Context, id, ownerID int64) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN cafes c ON c.id = o.cafe_id
		WHERE o.id = $1 AND c.owner_id = $2
	`
	return c.getOne(ctx, query, id, ownerID)
}

func (c *Conf) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN cafes c ON c.id = o.cafe_id
		WHERE o.customer_id = $1
		ORDER BY o.created_at DESC
	`
	return c.list(ctx, query, customerID)
}

func (c *Conf) ListByOwner(ctx context.Context, ownerID int64, status *Status) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN cafes c ON c.id = o.cafe_id
		WHERE c.owner_id = $1
	`
	args := []any{ownerID}
	if status != nil {
		query += ` AND o.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY o.created_at DESC`
	return c.list(ctx, query, args...)
}

func (c *Conf) UpdateStatus(ctx context.Context, id int64, status Status, estPrepTime *int) error {
	query := `
		UPDATE orders
		SET status = $1,
		    estimated_preparation_time = COALESCE($2, estimated_preparation_time),
		    updated_at = NOW()
		WHERE id = $3
	`
	res, err := c.db.ExecContext(ctx, query, status, estPrepTime, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Conf) SetPayment(ctx context.Context, id int64, paymentStatus, method string) error {
	query := `
		UPDATE orders
		SET payment_status = $1, payment_method = $2, updated_at = NOW()
		WHERE id = $3
	`
	res, err := c.db.ExecContext(ctx, query, paymentStatus, method, id)
	if err != nil {
		return fmt.Errorf("failed to update order payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Conf) getOne(ctx context.Context, query string, args ...any) (*Order, error) {
	var order Order
	err := c.scanOrder(c.db.QueryRowContext(ctx, query, args...), &order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if err := c.loadItems(ctx, []*Order{&order}); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Conf) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		var order Order
		if err := c.scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	refs := make([]*Order, len(result))
	for i := range result {
		refs[i] = &result[i]
	}
	if err := c.loadItems(ctx, refs); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (c *Conf) scanOrder(row rowScanner, order *Order) error {
	var (
		totalCents   int64
		instructions sql.NullString
		method       sql.NullString
	)
	err := row.Scan(&order.ID, &order.OrderNumber, &order.Status, &totalCents,
		&order.EstimatedPrepTime, &instructions, &order.PaymentStatus,
		&method, &order.CustomerID, &order.CafeID, &order.CafeName,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}
	order.TotalAmount = money.Amount(totalCents)
	order.SpecialInstructions = instructions.String
	order.PaymentMethod = method.String
	return nil
}

func (c *Conf) loadItems(ctx context.Context, refs []*Order) error {
	for _, order := range refs {
		query := `
			SELECT id, menu_item_id, name_snapshot, quantity,
				unit_price_cents, total_price_cents, special_instructions
			FROM order_items
			WHERE order_id = $1
			ORDER BY id
		`
		rows, err := c.db.QueryContext(ctx, query, order.ID)
		if err != nil {
			return fmt.Errorf("failed to query order items: %w", err)
		}
		for rows.Next() {
			var (
				item         Item
				unit, total  int64
				instructions sql.NullString
			)
			if err := rows.Scan(&item.ID, &item.MenuItemID, &item.Name,
				&item.Quantity, &unit, &total, &instructions); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan order item: %w", err)
			}
			item.UnitPrice = money.Amount(unit)
			item.TotalPrice = money.Amount(total)
			item.SpecialInstructions = instructions.String
			order.Items = append(order.Items, item)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("error iterating order items: %w", err)
		}
		rows.Close()
	}
	return nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
