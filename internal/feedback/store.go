package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Conf is the postgres-backed feedback store.
type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

const feedbackColumns = `id, order_id, customer_id, cafe_id, rating, COALESCE(feedback_text, ''), created_at`

func (c *Conf) Insert(ctx context.Context, fb *Feedback) error {
	query := `
		INSERT INTO order_feedbacks (order_id, customer_id, cafe_id, rating, feedback_text, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	var text any
	if fb.Text != "" {
		text = fb.Text
	}
	err := c.db.QueryRowContext(ctx, query, fb.OrderID, fb.CustomerID,
		fb.CafeID, fb.Rating, text).Scan(&fb.ID, &fb.CreatedAt)
	if err != nil {
		// The UNIQUE(order_id) constraint is the backstop against two
		// concurrent submissions racing past the service-level check.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyGiven
		}
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (c *Conf) GetByOrder(ctx context.Context, orderID int64) (Feedback, error) {
	var fb Feedback
	query := `SELECT ` + feedbackColumns + ` FROM order_feedbacks WHERE order_id = $1`
	err := c.db.QueryRowContext(ctx, query, orderID).
		Scan(&fb.ID, &fb.OrderID, &fb.CustomerID, &fb.CafeID, &fb.Rating, &fb.Text, &fb.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Feedback{}, ErrNotFound
		}
		return Feedback{}, fmt.Errorf("failed to query feedback: %w", err)
	}
	return fb, nil
}

func (c *Conf) ListByCafe(ctx context.Context, cafeID int64) ([]Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM order_feedbacks WHERE cafe_id = $1 ORDER BY created_at DESC`
	return c.list(ctx, query, cafeID)
}

func (c *Conf) ListByCustomer(ctx context.Context, customerID int64) ([]Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM order_feedbacks WHERE customer_id = $1 ORDER BY created_at DESC`
	return c.list(ctx, query, customerID)
}

func (c *Conf) list(ctx context.Context, query string, args ...any) ([]Feedback, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedbacks: %w", err)
	}
	defer rows.Close()

	var result []Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.OrderID, &fb.CustomerID, &fb.CafeID,
			&fb.Rating, &fb.Text, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}
