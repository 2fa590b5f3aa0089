package orders

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"corpfood-backend/internal/stores/kafka"
	"corpfood-backend/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	orders map[int64]*Order
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[int64]*Order), nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, order *Order) error {
	order.ID = f.nextID
	f.nextID++
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeStore) GetForCustomer(ctx context.Context, id, customerID int64) (*Order, error) {
	order, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, ErrNotFound
	}
	return order, nil
}

func (f *fakeStore) GetForOwner(ctx context.Context, id, _ int64) (*Order, error) {
	return f.Get(ctx, id)
}

func (f *fakeStore) ListByCustomer(_ context.Context, customerID int64) ([]Order, error) {
	var result []Order
	for _, order := range f.orders {
		if order.CustomerID == customerID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeStore) ListByOwner(_ context.Context, _ int64, status *Status) ([]Order, error) {
	var result []Order
	for _, order := range f.orders {
		if status == nil || order.Status == *status {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status Status, estPrepTime *int) error {
	order, ok := f.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	if estPrepTime != nil {
		order.EstimatedPrepTime = estPrepTime
	}
	return nil
}

func (f *fakeStore) SetPayment(_ context.Context, id int64, paymentStatus, method string) error {
	order, ok := f.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.PaymentStatus = paymentStatus
	order.PaymentMethod = method
	return nil
}

type fakeInventory struct {
	items map[int64]ReservedItem
	err   error
	calls int
}

func (f *fakeInventory) Reserve(_ context.Context, _ int64, lines []CreateLine) ([]ReservedItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var reserved []ReservedItem
	for _, line := range lines {
		item, ok := f.items[line.MenuItemID]
		if !ok {
			return nil, ErrNotFound
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

type capturedEvent struct {
	topic string
	value []byte
}

type fakeProducer struct {
	events []capturedEvent
}

func (f *fakeProducer) ProduceMessage(topic string, _, value []byte) error {
	f.events = append(f.events, capturedEvent{topic: topic, value: value})
	return nil
}

func newTestService(store Store, inv Inventory, events EventProducer) *Service {
	s := NewService(store, inv, events)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	s.rnd = rand.New(rand.NewSource(1))
	return s
}

func sandwichInventory() *fakeInventory {
	return &fakeInventory{items: map[int64]ReservedItem{
		1: {MenuItemID: 1, Name: "Club Sandwich", UnitPrice: 450, PreparationTime: 15},
		2: {MenuItemID: 2, Name: "Lemonade", UnitPrice: 200, PreparationTime: 5},
	}}
}

func TestCreateOrder(t *testing.T) {
	store := newFakeStore()
	producer := &fakeProducer{}
	svc := newTestService(store, sandwichInventory(), producer)

	order, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items: []CreateLine{
			{MenuItemID: 1, Quantity: 2},
			{MenuItemID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, PaymentPending, order.PaymentStatus)
	assert.Equal(t, money.Amount(1100), order.TotalAmount)
	assert.Regexp(t, `^ORD-\d{1,6}-[A-Z0-9]{4}$`, order.OrderNumber)

	// Names and prices are frozen on the order lines.
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Club Sandwich", order.Items[0].Name)
	assert.Equal(t, money.Amount(900), order.Items[0].TotalPrice)

	// Estimated prep time is the slowest line, not the sum.
	require.NotNil(t, order.EstimatedPrepTime)
	assert.Equal(t, 15, *order.EstimatedPrepTime)

	require.Len(t, producer.events, 1)
	assert.Equal(t, kafka.TopicOrderPlaced, producer.events[0].topic)
	var event kafka.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(producer.events[0].value, &event))
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, int64(1100), event.TotalAmountCents)
}

func TestCreateOrderValidation(t *testing.T) {
	store := newFakeStore()
	inv := sandwichInventory()
	svc := newTestService(store, inv, nil)

	_, err := svc.Create(context.Background(), 42, CreateRequest{CafeID: 10})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// Validation fails before inventory is touched.
	assert.Equal(t, 0, inv.calls)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	store := newFakeStore()
	inv := &fakeInventory{err: ErrInsufficientStock}
	svc := newTestService(store, inv, nil)

	_, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 500}},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, store.orders)
}

func TestCancelPendingOrder(t *testing.T) {
	store := newFakeStore()
	producer := &fakeProducer{}
	svc := newTestService(store, sandwichInventory(), producer)

	order, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), order.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// The cancel event carries the quantities for restocking.
	require.Len(t, producer.events, 2)
	assert.Equal(t, kafka.TopicOrderCancelled, producer.events[1].topic)
	var event kafka.OrderCancelledEvent
	require.NoError(t, json.Unmarshal(producer.events[1].value, &event))
	require.Len(t, event.Items, 1)
	assert.Equal(t, 2, event.Items[0].Quantity)
}

func TestCancelOnlyWhilePending(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sandwichInventory(), nil)

	order, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	for _, status := range []Status{StatusAccepted, StatusPreparing, StatusReady, StatusDelivered} {
		require.NoError(t, store.UpdateStatus(context.Background(), order.ID, status, nil))
		_, err := svc.Cancel(context.Background(), order.ID, 42)
		assert.ErrorIs(t, err, ErrInvalidState, "status %s", status)
	}
}

func TestCancelWrongCustomer(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sandwichInventory(), nil)

	order, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sandwichInventory(), nil)

	order, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	prep := 20
	updated, err := svc.UpdateStatus(context.Background(), order.ID, 5, "ACCEPTED", &prep)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, updated.Status)
	assert.Equal(t, 20, *updated.EstimatedPrepTime)

	// Backwards moves are allowed; only CANCELLED freezes an order.
	updated, err = svc.UpdateStatus(context.Background(), order.ID, 5, "PENDING", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), order.ID, 5, "BURNT", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatusCancelledIsTerminal(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sandwichInventory(), nil)

	order, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, 42)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, 5, "ACCEPTED", nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMarkPaid(t *testing.T) {
	store := newFakeStore()
	producer := &fakeProducer{}
	svc := newTestService(store, sandwichInventory(), producer)

	order, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), order.ID, 42, "paypal", "TXN-1")
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, paid.PaymentStatus)
	assert.Equal(t, "paypal", paid.PaymentMethod)
	// Payment success does not advance the lifecycle.
	assert.Equal(t, StatusPending, paid.Status)

	_, err = svc.MarkPaid(context.Background(), order.ID, 42, "paypal", "TXN-2")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestMarkPaymentFailed(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sandwichInventory(), nil)

	order, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaymentFailed(context.Background(), order.ID, 42, "credit_card"))

	got, err := svc.Get(context.Background(), order.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, PaymentFailed, got.PaymentStatus)
	assert.Equal(t, StatusPending, got.Status)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusPending.CanCancel())
	assert.False(t, StatusAccepted.CanCancel())

	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusDelivered.IsTerminal())

	assert.True(t, StatusReady.FeedbackEligible())
	assert.True(t, StatusDelivered.FeedbackEligible())
	assert.False(t, StatusPreparing.FeedbackEligible())
	assert.False(t, StatusCancelled.FeedbackEligible())
}

func TestGenerateOrderNumber(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := GenerateOrderNumber(now, rnd)
	second := GenerateOrderNumber(now, rnd)
	assert.Regexp(t, `^ORD-\d{6}-[A-Z0-9]{4}$`, first)
	assert.NotEqual(t, first, second)
}

func TestCreateWithoutProducer(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, sandwichInventory(), nil)

	_, err := svc.Create(context.Background(), 42, CreateRequest{
		CafeID: 10,
		Items:  []CreateLine{{MenuItemID: 1, Quantity: 1}},
	})
	assert.NoError(t, err)
}
