package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"corpfood-backend/pkg/money"
)

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

func (c *Conf) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	var existing int64
	err := c.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = $1`, nc.Name).Scan(&existing)
	if err == nil {
		return Category{}, ErrCategoryExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Category{}, fmt.Errorf("failed to query category: %w", err)
	}

	var cat Category
	query := `
		INSERT INTO categories (name, description, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, name, COALESCE(description, ''), created_at
	`
	err = c.db.QueryRowContext(ctx, query, nc.Name, nullIfEmpty(nc.Description)).
		Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt)
	if err != nil {
		return Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return cat, nil
}

func (c *Conf) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}

// InsertItem creates a menu item for an owner's cafe, starting its available
// quantity at the daily maximum.
func (c *Conf) InsertItem(ctx context.Context, cafeID, ownerID int64, ni NewItem) (Item, error) {
	var cafeName string
	err := c.db.QueryRowContext(ctx,
		`SELECT name FROM cafes WHERE id = $1 AND owner_id = $2`, cafeID, ownerID).Scan(&cafeName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrCafeNotFound
		}
		return Item{}, fmt.Errorf("failed to verify cafe ownership: %w", err)
	}

	var categoryID int64
	err = c.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = $1`, ni.CategoryID).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrCategoryNotFound
		}
		return Item{}, fmt.Errorf("failed to verify category: %w", err)
	}

	prepTime := ni.PreparationTime
	if prepTime <= 0 {
		prepTime = 15
	}

	var item Item
	query := `
		INSERT INTO menu_items (name, description, price_cents, available_quantity,
			max_daily_quantity, is_available, preparation_time, cafe_id, category_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4, TRUE, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err = c.db.QueryRowContext(ctx, query, ni.Name, nullIfEmpty(ni.Description),
		ni.PriceCents, ni.MaxDailyQuantity, prepTime, cafeID, ni.CategoryID).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, fmt.Errorf("failed to insert menu item: %w", err)
	}

	item.Name = ni.Name
	item.Description = ni.Description
	item.Price = money.Amount(ni.PriceCents)
	item.AvailableQuantity = ni.MaxDailyQuantity
	item.MaxDailyQuantity = ni.MaxDailyQuantity
	item.IsAvailable = true
	item.PreparationTime = prepTime
	item.CafeID = cafeID
	item.CafeName = cafeName
	item.CategoryID = ni.CategoryID
	return item, nil
}

const itemColumns = `m.id, m.name, COALESCE(m.description, ''), m.price_cents,
	m.available_quantity, m.max_daily_quantity, m.is_available, m.preparation_time,
	m.cafe_id, c.name, m.category_id, cat.name, m.created_at, m.updated_at`

const itemJoins = `
	FROM menu_items m
	JOIN cafes c ON c.id = m.cafe_id
	JOIN categories cat ON cat.id = m.category_id`

// ListForOwner returns every item of the cafe, unavailable ones included.
func (c *Conf) ListForOwner(ctx context.Context, cafeID, ownerID int64) ([]Item, error) {
	query := `SELECT ` + itemColumns + itemJoins + `
		WHERE m.cafe_id = $1 AND c.owner_id = $2
		ORDER BY m.name`
	return c.listItems(ctx, query, cafeID, ownerID)
}

// ListPublic returns the orderable items of an active cafe.
func (c *Conf) ListPublic(ctx context.Context, cafeID int64) ([]Item, error) {
	query := `SELECT ` + itemColumns + itemJoins + `
		WHERE m.cafe_id = $1 AND c.is_active = TRUE
		  AND m.is_available = TRUE AND m.available_quantity > 0
		ORDER BY m.name`
	return c.listItems(ctx, query, cafeID)
}

// ListFiltered applies the employee-facing filter across active cafes.
func (c *Conf) ListFiltered(ctx context.Context, f Filter) ([]Item, error) {
	query := `SELECT ` + itemColumns + itemJoins + ` WHERE c.is_active = TRUE`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CafeID > 0 {
		query += ` AND m.cafe_id = ` + arg(f.CafeID)
	}
	if f.CategoryID > 0 {
		query += ` AND m.category_id = ` + arg(f.CategoryID)
	}
	if f.MinPriceCents != nil {
		query += ` AND m.price_cents >= ` + arg(*f.MinPriceCents)
	}
	if f.MaxPriceCents != nil {
		query += ` AND m.price_cents <= ` + arg(*f.MaxPriceCents)
	}
	if f.AvailableOnly {
		query += ` AND m.is_available = TRUE AND m.available_quantity > 0`
	}
	query += ` ORDER BY m.name`
	return c.listItems(ctx, query, args...)
}

// Search matches item name or description across active cafes.
func (c *Conf) Search(ctx context.Context, term string) ([]Item, error) {
	query := `SELECT ` + itemColumns + itemJoins + `
		WHERE c.is_active = TRUE AND m.is_available = TRUE AND m.available_quantity > 0
		  AND (m.name ILIKE $1 OR m.description ILIKE $1)
		ORDER BY m.name`
	return c.listItems(ctx, query, "%"+strings.TrimSpace(term)+"%")
}

func (c *Conf) GetItem(ctx context.Context, itemID int64) (Item, error) {
	query := `SELECT ` + itemColumns + itemJoins + ` WHERE m.id = $1`
	items, err := c.listItems(ctx, query, itemID)
	if err != nil {
		return Item{}, err
	}
	if len(items) == 0 {
		return Item{}, ErrNotFound
	}
	return items[0], nil
}

// UpdateItem applies the provided fields to an owner's item.
func (c *Conf) UpdateItem(ctx context.Context, itemID, ownerID int64, upd UpdateItem) (Item, error) {
	query := `
		UPDATE menu_items m
		SET name = COALESCE($1, m.name),
		    description = COALESCE($2, m.description),
		    price_cents = COALESCE($3, m.price_cents),
		    max_daily_quantity = COALESCE($4, m.max_daily_quantity),
		    category_id = COALESCE($5, m.category_id),
		    is_available = COALESCE($6, m.is_available),
		    updated_at = NOW()
		FROM cafes c
		WHERE m.id = $7 AND c.id = m.cafe_id AND c.owner_id = $8
	`
	res, err := c.db.ExecContext(ctx, query, upd.Name, upd.Description, upd.PriceCents,
		upd.MaxDailyQuantity, upd.CategoryID, upd.IsAvailable, itemID, ownerID)
	if err != nil {
		return Item{}, fmt.Errorf("failed to update menu item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Item{}, ErrNotFound
	}
	return c.GetItem(ctx, itemID)
}

// DeleteItem removes an item, or marks it unavailable when historical orders
// reference it so old order lines keep a valid target.
func (c *Conf) DeleteItem(ctx context.Context, itemID, ownerID int64) (deleted bool, err error) {
	err = c.withTx(ctx, func(tx *sql.Tx) error {
		var id int64
		query := `
			SELECT m.id FROM menu_items m
			JOIN cafes c ON c.id = m.cafe_id
			WHERE m.id = $1 AND c.owner_id = $2
			FOR UPDATE OF m
		`
		if err := tx.QueryRowContext(ctx, query, itemID, ownerID).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to query menu item: %w", err)
		}

		var referenced int64
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM order_items WHERE menu_item_id = $1 LIMIT 1`, itemID).Scan(&referenced)
		switch {
		case err == nil:
			_, err = tx.ExecContext(ctx, `
				UPDATE menu_items
				SET is_available = FALSE, available_quantity = 0, updated_at = NOW()
				WHERE id = $1`, itemID)
			if err != nil {
				return fmt.Errorf("failed to retire menu item: %w", err)
			}
			deleted = false
			return nil
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, itemID); err != nil {
				return fmt.Errorf("failed to delete menu item: %w", err)
			}
			deleted = true
			return nil
		default:
			return fmt.Errorf("failed to check order references: %w", err)
		}
	})
	return deleted, err
}

// SetAvailability toggles whether an item can be ordered.
func (c *Conf) SetAvailability(ctx context.Context, itemID, ownerID int64, available bool) (Item, error) {
	query := `
		UPDATE menu_items m
		SET is_available = $1, updated_at = NOW()
		FROM cafes c
		WHERE m.id = $2 AND c.id = m.cafe_id AND c.owner_id = $3
	`
	res, err := c.db.ExecContext(ctx, query, available, itemID, ownerID)
	if err != nil {
		return Item{}, fmt.Errorf("failed to update availability: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Item{}, ErrNotFound
	}
	return c.GetItem(ctx, itemID)
}

// RestockItem refills the available quantity (to the given amount, or to the
// daily maximum when quantity is nil) and re-enables the item.
func (c *Conf) RestockItem(ctx context.Context, itemID, ownerID int64, quantity *int) (Item, error) {
	query := `
		UPDATE menu_items m
		SET available_quantity = COALESCE($1, m.max_daily_quantity),
		    is_available = TRUE,
		    updated_at = NOW()
		FROM cafes c
		WHERE m.id = $2 AND c.id = m.cafe_id AND c.owner_id = $3
	`
	res, err := c.db.ExecContext(ctx, query, quantity, itemID, ownerID)
	if err != nil {
		return Item{}, fmt.Errorf("failed to restock menu item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Item{}, ErrNotFound
	}
	return c.GetItem(ctx, itemID)
}

// Reserve is the authoritative stock check at order-creation time: in one
// transaction it row-locks every requested item, verifies availability and
// quantity, decrements the counters, and returns the price/name snapshots.
// Any shortfall fails the whole reservation and rolls everything back.
func (c *Conf) Reserve(ctx context.Context, cafeID int64, lines []ReserveLine) ([]ReservedItem, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("no lines to reserve")
	}
	// A non-positive quantity would pass the shortfall check below and add
	// stock on decrement; reject it before touching any row.
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: menu item %d", ErrInvalidQuantity, line.MenuItemID)
		}
	}

	var reserved []ReservedItem
	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var active bool
		err := tx.QueryRowContext(ctx, `SELECT is_active FROM cafes WHERE id = $1`, cafeID).Scan(&active)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCafeNotFound
			}
			return fmt.Errorf("failed to query cafe: %w", err)
		}
		if !active {
			return ErrCafeNotFound
		}

		for _, line := range lines {
			var (
				name       string
				priceCents int64
				available  int
				prepTime   int
				isAvail    bool
			)
			query := `
				SELECT name, price_cents, available_quantity, preparation_time, is_available
				FROM menu_items
				WHERE id = $1 AND cafe_id = $2
				FOR UPDATE
			`
			err := tx.QueryRowContext(ctx, query, line.MenuItemID, cafeID).
				Scan(&name, &priceCents, &available, &prepTime, &isAvail)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("%w: menu item %d", ErrNotFound, line.MenuItemID)
				}
				return fmt.Errorf("failed to query menu item: %w", err)
			}
			if !isAvail {
				return fmt.Errorf("%w: %s", ErrItemUnavailable, name)
			}
			if available < line.Quantity {
				return fmt.Errorf("%w: %s has %d left, %d requested",
					ErrInsufficientStock, name, available, line.Quantity)
			}

			_, err = tx.ExecContext(ctx, `
				UPDATE menu_items
				SET available_quantity = available_quantity - $1, updated_at = NOW()
				WHERE id = $2`, line.Quantity, line.MenuItemID)
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}

			reserved = append(reserved, ReservedItem{
				MenuItemID:      line.MenuItemID,
				Name:            name,
				UnitPrice:       money.Amount(priceCents),
				PreparationTime: prepTime,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reserved, nil
}

// Restock adds cancelled quantities back. Quantities are clamped to the
// daily maximum so repeated events cannot overfill.
func (c *Conf) Restock(ctx context.Context, lines []ReserveLine) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		for _, line := range lines {
			if line.Quantity < 1 {
				continue
			}
			_, err := tx.ExecContext(ctx, `
				UPDATE menu_items
				SET available_quantity = LEAST(available_quantity + $1, max_daily_quantity),
				    updated_at = NOW()
				WHERE id = $2`, line.Quantity, line.MenuItemID)
			if err != nil {
				return fmt.Errorf("failed to restock menu item %d: %w", line.MenuItemID, err)
			}
		}
		return nil
	})
}

func (c *Conf) listItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		var (
			item       Item
			priceCents int64
		)
		err := rows.Scan(&item.ID, &item.Name, &item.Description, &priceCents,
			&item.AvailableQuantity, &item.MaxDailyQuantity, &item.IsAvailable,
			&item.PreparationTime, &item.CafeID, &item.CafeName,
			&item.CategoryID, &item.CategoryName, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		item.Price = money.Amount(priceCents)
		result = append(result, item)
	}
	return result, rows.Err()
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
