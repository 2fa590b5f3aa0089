package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"corpfood-backend/internal/stores/kafka"
	"corpfood-backend/pkg/logkey"
	"corpfood-backend/pkg/money"
)

// CreateLine is one requested order line, as sent by the client.
type CreateLine struct {
	MenuItemID          int64  `json:"menu_item_id" validate:"required,min=1"`
	Quantity            int    `json:"quantity" validate:"required,min=1"`
	SpecialInstructions string `json:"special_instructions"`
}

// CreateRequest is the cart snapshot submitted at checkout.
type CreateRequest struct {
	CafeID              int64        `json:"cafe_id" validate:"required,min=1"`
	Items               []CreateLine `json:"items"`
	SpecialInstructions string       `json:"special_instructions"`
}

// ReservedItem is the authoritative snapshot returned by the inventory
// service once quantities have been checked and decremented.
type ReservedItem struct {
	MenuItemID      int64        `json:"menu_item_id"`
	Name            string       `json:"name"`
	UnitPrice       money.Amount `json:"unit_price_cents"`
	PreparationTime int          `json:"preparation_time"`
}

// Inventory is the menu service's reservation contract. Reserve atomically
// verifies and decrements available quantities for all lines, failing the
// whole reservation on any shortfall.
type Inventory interface {
	Reserve(ctx context.Context, cafeID int64, lines []CreateLine) ([]ReservedItem, error)
}

// Store persists orders.
type Store interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id int64) (*Order, error)
	GetForCustomer(ctx context.Context, id, customerID int64) (*Order, error)
	GetForOwner(ctx context.Context, id, ownerID int64) (*Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	ListByOwner(ctx context.Context, ownerID int64, status *Status) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status, estPrepTime *int) error
	SetPayment(ctx context.Context, id int64, paymentStatus, method string) error
}

// EventProducer publishes order lifecycle events. A nil producer disables
// publishing.
type EventProducer interface {
	ProduceMessage(topic string, key, value []byte) error
}

// Service owns the order lifecycle.
type Service struct {
	store     Store
	inventory Inventory
	events    EventProducer
	now       func() time.Time
	rnd       *rand.Rand
}

func NewService(store Store, inventory Inventory, events EventProducer) *Service {
	return &Service{
		store:     store,
		inventory: inventory,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create validates the cart snapshot against live inventory, reserves stock,
// and persists a new PENDING order with prices and names frozen.
func (s *Service) Create(ctx context.Context, customerID int64, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: menu item %d", ErrInvalidQuantity, line.MenuItemID)
		}
	}

	reserved, err := s.inventory.Reserve(ctx, req.CafeID, req.Items)
	if err != nil {
		return nil, fmt.Errorf("reserving inventory: %w", err)
	}

	byID := make(map[int64]ReservedItem, len(reserved))
	for _, r := range reserved {
		byID[r.MenuItemID] = r
	}

	now := s.now()
	order := &Order{
		OrderNumber:         GenerateOrderNumber(now, s.rnd),
		Status:              StatusPending,
		PaymentStatus:       PaymentPending,
		SpecialInstructions: req.SpecialInstructions,
		CustomerID:          customerID,
		CafeID:              req.CafeID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var estPrep int
	for _, line := range req.Items {
		r, ok := byID[line.MenuItemID]
		if !ok {
			return nil, fmt.Errorf("menu item %d missing from reservation", line.MenuItemID)
		}
		item := Item{
			MenuItemID:          line.MenuItemID,
			Name:                r.Name,
			Quantity:            line.Quantity,
			UnitPrice:           r.UnitPrice,
			TotalPrice:          r.UnitPrice.Mul(line.Quantity),
			SpecialInstructions: line.SpecialInstructions,
		}
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.TotalPrice)
		if r.PreparationTime > estPrep {
			estPrep = r.PreparationTime
		}
	}
	if estPrep > 0 {
		order.EstimatedPrepTime = &estPrep
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persisting order: %w", err)
	}

	s.publish(kafka.TopicOrderPlaced, order.ID, kafka.OrderPlacedEvent{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		CafeID:           order.CafeID,
		CustomerID:       order.CustomerID,
		TotalAmountCents: int64(order.TotalAmount),
		Items:            eventLines(order.Items),
		CreatedAt:        now,
	})

	return order, nil
}

// Cancel moves a PENDING order to CANCELLED. The emitted event instructs the
// menu service to restock the reserved quantities.
func (s *Service) Cancel(ctx context.Context, orderID, customerID int64) (*Order, error) {
	order, err := s.store.GetForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanCancel() {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled", ErrInvalidState)
	}

	if err := s.store.UpdateStatus(ctx, orderID, StatusCancelled, nil); err != nil {
		return nil, fmt.Errorf("cancelling order: %w", err)
	}
	order.Status = StatusCancelled

	s.publish(kafka.TopicOrderCancelled, order.ID, kafka.OrderCancelledEvent{
		OrderID:     order.ID,
		CafeID:      order.CafeID,
		Items:       eventLines(order.Items),
		CancelledAt: s.now(),
	})

	return order, nil
}

// UpdateStatus applies an operator-initiated status change. The only guard
// is that the order is not already terminal; arbitrary non-terminal
// transitions are permitted.
func (s *Service) UpdateStatus(ctx context.Context, orderID, ownerID int64, statusStr string, estPrepTime *int) (*Order, error) {
	newStatus, err := ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}

	order, err := s.store.GetForOwner(ctx, orderID, ownerID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidState, order.Status)
	}

	if err := s.store.UpdateStatus(ctx, orderID, newStatus, estPrepTime); err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	order.Status = newStatus
	if estPrepTime != nil {
		order.EstimatedPrepTime = estPrepTime
	}
	return order, nil
}

// MarkPaid records a successful payment. The order stays PENDING; payment
// success does not advance the lifecycle.
func (s *Service) MarkPaid(ctx context.Context, orderID, customerID int64, method, transactionID string) (*Order, error) {
	order, err := s.store.GetForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == PaymentCompleted {
		return nil, ErrAlreadyPaid
	}

	if err := s.store.SetPayment(ctx, orderID, PaymentCompleted, method); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}
	order.PaymentStatus = PaymentCompleted
	order.PaymentMethod = method

	s.publish(kafka.TopicOrderPaid, order.ID, kafka.OrderPaidEvent{
		OrderID:       order.ID,
		TransactionID: transactionID,
		Method:        method,
		AmountCents:   int64(order.TotalAmount),
		PaidAt:        s.now(),
	})

	return order, nil
}

// MarkPaymentFailed records a declined payment attempt. The PENDING order is
// left in place; reconciliation is the caller's responsibility.
func (s *Service) MarkPaymentFailed(ctx context.Context, orderID, customerID int64, method string) error {
	if _, err := s.store.GetForCustomer(ctx, orderID, customerID); err != nil {
		return err
	}
	if err := s.store.SetPayment(ctx, orderID, PaymentFailed, method); err != nil {
		return fmt.Errorf("recording failed payment: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, orderID, customerID int64) (*Order, error) {
	return s.store.GetForCustomer(ctx, orderID, customerID)
}

func (s *Service) ListMine(ctx context.Context, customerID int64) ([]Order, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

func (s *Service) ListForOwner(ctx context.Context, ownerID int64, status *Status) ([]Order, error) {
	return s.store.ListByOwner(ctx, ownerID, status)
}

// publish sends an event best-effort; a broker outage never fails the
// request that triggered it.
func (s *Service) publish(topic string, orderID int64, event any) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("marshalling order event", slog.String(logkey.Topic, topic), slog.String(logkey.ERROR, err.Error()))
		return
	}
	key := []byte(fmt.Sprintf("%d", orderID))
	if err := s.events.ProduceMessage(topic, key, payload); err != nil {
		slog.Error("producing order event", slog.String(logkey.Topic, topic), slog.String(logkey.ERROR, err.Error()))
	}
}

func eventLines(items []Item) []kafka.OrderLineEvent {
	lines := make([]kafka.OrderLineEvent, 0, len(items))
	for _, item := range items {
		lines = append(lines, kafka.OrderLineEvent{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
	}
	return lines
}
