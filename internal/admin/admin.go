// Package admin serves the super-admin platform surface: aggregate stats
// and cross-tenant management queries.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"corpfood-backend/pkg/money"
)

var ErrNotFound = errors.New("record not found")

// Stats is the platform-wide dashboard snapshot.
type Stats struct {
	TotalUsers      int64        `json:"total_users"`
	TotalCafes      int64        `json:"total_cafes"`
	ActiveCafes     int64        `json:"active_cafes"`
	TotalOrders     int64        `json:"total_orders"`
	PendingOrders   int64        `json:"pending_orders"`
	CancelledOrders int64        `json:"cancelled_orders"`
	TotalFeedbacks  int64        `json:"total_feedbacks"`
	AverageRating   float64      `json:"average_rating"`
	TotalRevenue    money.Amount `json:"total_revenue_cents"`
}

// UserRow is the admin view of an account.
type UserRow struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	UserType   string    `json:"user_type"`
	IsActive   bool      `json:"is_active"`
	OrderCount int64     `json:"order_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// CafeRow is the admin view of a cafe with its owner resolved.
type CafeRow struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	OwnerID    int64   `json:"owner_id"`
	OwnerName  string  `json:"owner_name"`
	IsActive   bool    `json:"is_active"`
	OrderCount int64   `json:"order_count"`
	ItemCount  int64   `json:"item_count"`
	AvgRating  float64 `json:"average_rating"`
}

// OrderRow is the platform-wide order view with customer and cafe resolved.
type OrderRow struct {
	ID            int64        `json:"id"`
	OrderNumber   string       `json:"order_number"`
	CustomerID    int64        `json:"customer_id"`
	CustomerName  string       `json:"customer_name"`
	CafeID        int64        `json:"cafe_id"`
	CafeName      string       `json:"cafe_name"`
	Status        string       `json:"status"`
	PaymentStatus string       `json:"payment_status"`
	TotalAmount   money.Amount `json:"total_amount_cents"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ItemRow is the platform-wide menu item view.
type ItemRow struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	CafeID            int64        `json:"cafe_id"`
	CafeName          string       `json:"cafe_name"`
	Price             money.Amount `json:"price_cents"`
	AvailableQuantity int          `json:"available_quantity"`
	IsAvailable       bool         `json:"is_available"`
}

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

// PlatformStats assembles the dashboard counters in one round trip.
// Revenue counts completed payments only; failed and refunded attempts in
// the transaction log do not contribute.
func (c *Conf) PlatformStats(ctx context.Context) (Stats, error) {
	var stats Stats
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM cafes),
			(SELECT COUNT(*) FROM cafes WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = 'PENDING'),
			(SELECT COUNT(*) FROM orders WHERE status = 'CANCELLED'),
			(SELECT COUNT(*) FROM order_feedbacks),
			(SELECT COALESCE(AVG(rating), 0) FROM order_feedbacks),
			(SELECT COALESCE(SUM(total_amount_cents), 0) FROM orders WHERE payment_status = 'completed')
	`
	var revenue int64
	err := c.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalUsers, &stats.TotalCafes, &stats.ActiveCafes,
		&stats.TotalOrders, &stats.PendingOrders, &stats.CancelledOrders,
		&stats.TotalFeedbacks, &stats.AverageRating, &revenue,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query platform stats: %w", err)
	}
	stats.TotalRevenue = money.Amount(revenue)
	return stats, nil
}

// ListUsers returns every account with its order count, newest first.
func (c *Conf) ListUsers(ctx context.Context) ([]UserRow, error) {
	query := `
		SELECT u.id, u.email, u.username, u.full_name, u.user_type, u.is_active,
			COUNT(o.id), u.created_at
		FROM users u
		LEFT JOIN orders o ON o.customer_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var result []UserRow
	for rows.Next() {
		var row UserRow
		if err := rows.Scan(&row.ID, &row.Email, &row.Username, &row.FullName,
			&row.UserType, &row.IsActive, &row.OrderCount, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// SetUserActive enables or disables an account.
func (c *Conf) SetUserActive(ctx context.Context, userID int64, active bool) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE users SET is_active = $1 WHERE id = $2`, active, userID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCafes returns every cafe with owner, volume and rating aggregates.
func (c *Conf) ListCafes(ctx context.Context) ([]CafeRow, error) {
	query := `
		SELECT cf.id, cf.name, cf.owner_id, u.full_name, cf.is_active,
			(SELECT COUNT(*) FROM orders o WHERE o.cafe_id = cf.id),
			(SELECT COUNT(*) FROM menu_items mi WHERE mi.cafe_id = cf.id),
			(SELECT COALESCE(AVG(f.rating), 0) FROM order_feedbacks f WHERE f.cafe_id = cf.id)
		FROM cafes cf
		JOIN users u ON u.id = cf.owner_id
		ORDER BY cf.name
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cafes: %w", err)
	}
	defer rows.Close()

	var result []CafeRow
	for rows.Next() {
		var row CafeRow
		if err := rows.Scan(&row.ID, &row.Name, &row.OwnerID, &row.OwnerName,
			&row.IsActive, &row.OrderCount, &row.ItemCount, &row.AvgRating); err != nil {
			return nil, fmt.Errorf("failed to scan cafe: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ListOrders returns orders across every cafe, newest first, optionally
// narrowed to one status.
func (c *Conf) ListOrders(ctx context.Context, status string) ([]OrderRow, error) {
	query := `
		SELECT o.id, o.order_number, o.customer_id, u.full_name,
			o.cafe_id, cf.name, o.status, o.payment_status,
			o.total_amount_cents, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.customer_id
		JOIN cafes cf ON cf.id = o.cafe_id
		WHERE ($1 = '' OR o.status = $1)
		ORDER BY o.created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []OrderRow
	for rows.Next() {
		var (
			row    OrderRow
			amount int64
		)
		if err := rows.Scan(&row.ID, &row.OrderNumber, &row.CustomerID, &row.CustomerName,
			&row.CafeID, &row.CafeName, &row.Status, &row.PaymentStatus,
			&amount, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		row.TotalAmount = money.Amount(amount)
		result = append(result, row)
	}
	return result, rows.Err()
}

// ListItems returns every menu item across every cafe.
func (c *Conf) ListItems(ctx context.Context) ([]ItemRow, error) {
	query := `
		SELECT mi.id, mi.name, mi.cafe_id, cf.name,
			mi.price_cents, mi.available_quantity, mi.is_available
		FROM menu_items mi
		JOIN cafes cf ON cf.id = mi.cafe_id
		ORDER BY cf.name, mi.name
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var result []ItemRow
	for rows.Next() {
		var (
			row   ItemRow
			price int64
		)
		if err := rows.Scan(&row.ID, &row.Name, &row.CafeID, &row.CafeName,
			&price, &row.AvailableQuantity, &row.IsAvailable); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		row.Price = money.Amount(price)
		result = append(result, row)
	}
	return result, rows.Err()
}

// SetCafeActive enables or disables a cafe platform-wide.
func (c *Conf) SetCafeActive(ctx context.Context, cafeID int64, active bool) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE cafes SET is_active = $1 WHERE id = $2`, active, cafeID)
	if err != nil {
		return fmt.Errorf("failed to update cafe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
