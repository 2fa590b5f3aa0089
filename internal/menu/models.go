package menu

import (
	"errors"
	"time"

	"corpfood-backend/pkg/money"
)

var (
	ErrNotFound          = errors.New("menu item not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryExists    = errors.New("category with this name already exists")
	ErrCafeNotFound      = errors.New("cafe not found or not active")
	ErrItemUnavailable   = errors.New("menu item not available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Item is a menu item. AvailableQuantity is the authoritative remaining-units
// counter; every reservation decrements it and every restock/cancel refills it.
type Item struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description,omitempty"`
	Price             money.Amount `json:"price_cents"`
	AvailableQuantity int          `json:"available_quantity"`
	MaxDailyQuantity  int          `json:"max_daily_quantity"`
	IsAvailable       bool         `json:"is_available"`
	PreparationTime   int          `json:"preparation_time"`
	CafeID            int64        `json:"cafe_id"`
	CafeName          string       `json:"cafe_name,omitempty"`
	CategoryID        int64        `json:"category_id"`
	CategoryName      string       `json:"category_name,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

type NewCategory struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type NewItem struct {
	Name             string `json:"name" validate:"required"`
	Description      string `json:"description"`
	PriceCents       int64  `json:"price_cents" validate:"required,min=0"`
	MaxDailyQuantity int    `json:"max_daily_quantity" validate:"required,min=0"`
	PreparationTime  int    `json:"preparation_time"`
	CategoryID       int64  `json:"category_id" validate:"required,min=1"`
}

// UpdateItem carries optional fields; nil means leave unchanged.
type UpdateItem struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	PriceCents       *int64  `json:"price_cents"`
	MaxDailyQuantity *int    `json:"max_daily_quantity"`
	CategoryID       *int64  `json:"category_id"`
	IsAvailable      *bool   `json:"is_available"`
}

// Filter narrows public item listings.
type Filter struct {
	CafeID        int64
	CategoryID    int64
	MinPriceCents *int64
	MaxPriceCents *int64
	AvailableOnly bool
}

// ReserveLine is one quantity to reserve or restock.
type ReserveLine struct {
	MenuItemID int64 `json:"menu_item_id" validate:"required,min=1"`
	Quantity   int   `json:"quantity" validate:"required,min=1"`
}

// ReservedItem is the snapshot handed back to the order service.
type ReservedItem struct {
	MenuItemID      int64        `json:"menu_item_id"`
	Name            string       `json:"name"`
	UnitPrice       money.Amount `json:"unit_price_cents"`
	PreparationTime int          `json:"preparation_time"`
}
