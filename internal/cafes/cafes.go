// Package cafes manages the vendor registry.
package cafes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("cafe not found")

type Cafe struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	IsActive    bool      `json:"is_active"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewCafe struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
}

type UpdateCafe struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	IsActive    *bool   `json:"is_active"`
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

const cafeColumns = `id, name, COALESCE(description, ''), COALESCE(address, ''),
	COALESCE(phone, ''), is_active, owner_id, created_at`

func (c *Conf) Insert(ctx context.Context, ownerID int64, nc NewCafe) (Cafe, error) {
	var cafe Cafe
	query := `
		INSERT INTO cafes (name, description, address, phone, is_active, owner_id, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, NOW())
		RETURNING ` + cafeColumns
	err := c.db.QueryRowContext(ctx, query, nc.Name, nullIfEmpty(nc.Description),
		nullIfEmpty(nc.Address), nullIfEmpty(nc.Phone), ownerID).
		Scan(&cafe.ID, &cafe.Name, &cafe.Description, &cafe.Address,
			&cafe.Phone, &cafe.IsActive, &cafe.OwnerID, &cafe.CreatedAt)
	if err != nil {
		return Cafe{}, fmt.Errorf("failed to insert cafe: %w", err)
	}
	return cafe, nil
}

func (c *Conf) Get(ctx context.Context, cafeID int64) (Cafe, error) {
	query := `SELECT ` + cafeColumns + ` FROM cafes WHERE id = $1`
	return c.getOne(ctx, query, cafeID)
}

func (c *Conf) GetForOwner(ctx context.Context, cafeID, ownerID int64) (Cafe, error) {
	query := `SELECT ` + cafeColumns + ` FROM cafes WHERE id = $1 AND owner_id = $2`
	return c.getOne(ctx, query, cafeID, ownerID)
}

func (c *Conf) ListByOwner(ctx context.Context, ownerID int64) ([]Cafe, error) {
	query := `SELECT ` + cafeColumns + ` FROM cafes WHERE owner_id = $1 ORDER BY name`
	return c.list(ctx, query, ownerID)
}

// ListActive is the public cafe directory employees browse.
func (c *Conf) ListActive(ctx context.Context) ([]Cafe, error) {
	query := `SELECT ` + cafeColumns + ` FROM cafes WHERE is_active = TRUE ORDER BY name`
	return c.list(ctx, query)
}

func (c *Conf) Update(ctx context.Context, cafeID, ownerID int64, upd UpdateCafe) (Cafe, error) {
	query := `
		UPDATE cafes
		SET name = COALESCE($1, name),
		    description = COALESCE($2, description),
		    address = COALESCE($3, address),
		    phone = COALESCE($4, phone),
		    is_active = COALESCE($5, is_active)
		WHERE id = $6 AND owner_id = $7
	`
	res, err := c.db.ExecContext(ctx, query, upd.Name, upd.Description,
		upd.Address, upd.Phone, upd.IsActive, cafeID, ownerID)
	if err != nil {
		return Cafe{}, fmt.Errorf("failed to update cafe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Cafe{}, ErrNotFound
	}
	return c.Get(ctx, cafeID)
}

func (c *Conf) getOne(ctx context.Context, query string, args ...any) (Cafe, error) {
	var cafe Cafe
	err := c.db.QueryRowContext(ctx, query, args...).
		Scan(&cafe.ID, &cafe.Name, &cafe.Description, &cafe.Address,
			&cafe.Phone, &cafe.IsActive, &cafe.OwnerID, &cafe.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cafe{}, ErrNotFound
		}
		return Cafe{}, fmt.Errorf("failed to query cafe: %w", err)
	}
	return cafe, nil
}

func (c *Conf) list(ctx context.Context, query string, args ...any) ([]Cafe, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cafes: %w", err)
	}
	defer rows.Close()

	var result []Cafe
	for rows.Next() {
		var cafe Cafe
		if err := rows.Scan(&cafe.ID, &cafe.Name, &cafe.Description, &cafe.Address,
			&cafe.Phone, &cafe.IsActive, &cafe.OwnerID, &cafe.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cafe: %w", err)
		}
		result = append(result, cafe)
	}
	return result, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
