package kafka

import "time"

// Topics produced and consumed across the platform.
const (
	TopicAccountCreated = `user-service.account-created`
	TopicOrderPlaced    = `order-service.order-placed`
	TopicOrderPaid      = `order-service.order-paid`
	TopicOrderCancelled = `order-service.order-cancelled`

	ConsumerGroupMenu = `menu-service`
)

type AccountCreatedEvent struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	UserType  string    `json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderLineEvent struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

type OrderPlacedEvent struct {
	OrderID          int64            `json:"order_id"`
	OrderNumber      string           `json:"order_number"`
	CafeID           int64            `json:"cafe_id"`
	CustomerID       int64            `json:"customer_id"`
	TotalAmountCents int64            `json:"total_amount_cents"`
	Items            []OrderLineEvent `json:"items"`
	CreatedAt        time.Time        `json:"created_at"`
}

type OrderPaidEvent struct {
	OrderID       int64     `json:"order_id"`
	TransactionID string    `json:"transaction_id"`
	Method        string    `json:"method"`
	AmountCents   int64     `json:"amount_cents"`
	PaidAt        time.Time `json:"paid_at"`
}

// OrderCancelledEvent carries the ordered quantities so the menu service can
// restock them.
type OrderCancelledEvent struct {
	OrderID     int64            `json:"order_id"`
	CafeID      int64            `json:"cafe_id"`
	Items       []OrderLineEvent `json:"items"`
	CancelledAt time.Time        `json:"cancelled_at"`
}
