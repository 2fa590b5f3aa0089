package orders

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"corpfood-backend/pkg/money"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be at least 1")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidState      = errors.New("operation not allowed in current order status")
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrInsufficientStock = errors.New("insufficient stock for one or more items")
)

// Status is the order lifecycle state. The happy path is linear:
// PENDING -> ACCEPTED -> PREPARING -> READY -> DELIVERED. CANCELLED is
// reachable only from PENDING, only by the customer, and is terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates a status string supplied by an operator.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// IsTerminal reports whether no further status updates are allowed.
// Only CANCELLED freezes an order; operators may move any other status to
// any other value. A stricter transition table is a possible future
// hardening, deliberately not imposed here.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled
}

// CanCancel reports whether the customer may still cancel.
func (s Status) CanCancel() bool {
	return s == StatusPending
}

// FeedbackEligible reports whether the order has reached a state where the
// customer may rate it.
func (s Status) FeedbackEligible() bool {
	return s == StatusReady || s == StatusDelivered
}

// Payment settlement states recorded on the order.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Order is a server-persisted snapshot of a checkout. Line names and prices
// are frozen at creation time and never recomputed from the live catalog.
type Order struct {
	ID                  int64        `json:"id"`
	OrderNumber         string       `json:"order_number"`
	Status              Status       `json:"status"`
	TotalAmount         money.Amount `json:"total_amount_cents"`
	EstimatedPrepTime   *int         `json:"estimated_preparation_time,omitempty"`
	SpecialInstructions string       `json:"special_instructions,omitempty"`
	PaymentStatus       string       `json:"payment_status"`
	PaymentMethod       string       `json:"payment_method,omitempty"`
	CustomerID          int64        `json:"customer_id"`
	CafeID              int64        `json:"cafe_id"`
	CafeName            string       `json:"cafe_name,omitempty"`
	Items               []Item       `json:"order_items"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// Item is one order line with its immutable snapshot.
type Item struct {
	ID                  int64        `json:"id"`
	MenuItemID          int64        `json:"menu_item_id"`
	Name                string       `json:"name"`
	Quantity            int          `json:"quantity"`
	UnitPrice           money.Amount `json:"unit_price_cents"`
	TotalPrice          money.Amount `json:"total_price_cents"`
	SpecialInstructions string       `json:"special_instructions,omitempty"`
}

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderNumber builds the display identifier, e.g. ORD-493021-X7QJ.
func GenerateOrderNumber(now time.Time, rnd *rand.Rand) string {
	ts := fmt.Sprintf("%d", now.Unix())
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = orderNumberCharset[rnd.Intn(len(orderNumberCharset))]
	}
	return fmt.Sprintf("ORD-%s-%s", ts, suffix)
}
