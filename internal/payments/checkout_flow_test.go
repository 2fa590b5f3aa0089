package payments

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"corpfood-backend/internal/cart"
	"corpfood-backend/internal/orders"
	"corpfood-backend/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flowOrderStore struct {
	orders map[int64]*orders.Order
	nextID int64
}

func (f *flowOrderStore) Create(_ context.Context, order *orders.Order) error {
	order.ID = f.nextID
	f.nextID++
	cp := *order
	f.orders[order.ID] = &cp
	return nil
}

func (f *flowOrderStore) Get(_ context.Context, id int64) (*orders.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *flowOrderStore) GetForCustomer(ctx context.Context, id, customerID int64) (*orders.Order, error) {
	order, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, orders.ErrNotFound
	}
	return order, nil
}

func (f *flowOrderStore) GetForOwner(ctx context.Context, id, _ int64) (*orders.Order, error) {
	return f.Get(ctx, id)
}

func (f *flowOrderStore) ListByCustomer(_ context.Context, customerID int64) ([]orders.Order, error) {
	var result []orders.Order
	for _, order := range f.orders {
		if order.CustomerID == customerID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *flowOrderStore) ListByOwner(_ context.Context, _ int64, _ *orders.Status) ([]orders.Order, error) {
	return nil, nil
}

func (f *flowOrderStore) UpdateStatus(_ context.Context, id int64, status orders.Status, _ *int) error {
	f.orders[id].Status = status
	return nil
}

func (f *flowOrderStore) SetPayment(_ context.Context, id int64, paymentStatus, method string) error {
	f.orders[id].PaymentStatus = paymentStatus
	f.orders[id].PaymentMethod = method
	return nil
}

type flowInventory struct{}

func (flowInventory) Reserve(_ context.Context, _ int64, lines []orders.CreateLine) ([]orders.ReservedItem, error) {
	var reserved []orders.ReservedItem
	for _, line := range lines {
		reserved = append(reserved, orders.ReservedItem{
			MenuItemID:      line.MenuItemID,
			Name:            "Club Sandwich",
			UnitPrice:       450,
			PreparationTime: 15,
		})
	}
	return reserved, nil
}

// TestCheckoutFlow walks the full two-phase checkout: build a cart, submit
// it as an order, pay, and confirm the order is settled but still PENDING.
func TestCheckoutFlow(t *testing.T) {
	ctx := context.Background()
	const customerID = 42

	// Employee builds a cart: two club sandwiches at $4.50.
	carts := cart.NewStore()
	carts.With(customerID, func(c *cart.Cart) {
		c.AddItem(cart.Line{ItemID: 1, Name: "Club Sandwich", UnitPrice: 450, CafeID: 10}, "Deli")
		c.AddItem(cart.Line{ItemID: 1, Name: "Club Sandwich", UnitPrice: 450, CafeID: 10}, "Deli")
	})
	snapshot := carts.Snapshot(customerID)
	require.Equal(t, money.Amount(900), snapshot.Total())
	require.Equal(t, "9.00", snapshot.Total().String())

	// Checkout phase one: the cart becomes a PENDING order.
	orderStore := &flowOrderStore{orders: make(map[int64]*orders.Order), nextID: 1}
	orderSvc := orders.NewService(orderStore, flowInventory{}, nil)

	req := orders.CreateRequest{CafeID: snapshot.CafeID}
	for _, line := range snapshot.Lines {
		req.Items = append(req.Items, orders.CreateLine{MenuItemID: line.ItemID, Quantity: line.Quantity})
	}
	order, err := orderSvc.Create(ctx, customerID, req)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, order.Status)
	assert.Equal(t, money.Amount(900), order.TotalAmount)

	// The cart is cleared once the order exists.
	carts.Drop(customerID)
	assert.Empty(t, carts.Snapshot(customerID).Lines)

	// Checkout phase two: payment settles against the order.
	gateway := NewGatewayWithSource(rand.New(fixedSource{v: 0}),
		func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	paySvc := NewService(&fakeTxnStore{}, orderSvc, gateway)

	receipt, err := paySvc.Process(ctx, customerID, order.ID, "corporate_account")
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.Equal(t, money.Amount(900), receipt.Amount)

	// Payment success settles the balance but never advances the lifecycle;
	// the cafe still has to accept the order.
	settled, err := orderSvc.Get(ctx, order.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, settled.Status)
	assert.Equal(t, orders.PaymentCompleted, settled.PaymentStatus)
	assert.Equal(t, "corporate_account", settled.PaymentMethod)

	// A second attempt is refused.
	_, err = paySvc.Process(ctx, customerID, order.ID, "corporate_account")
	assert.ErrorIs(t, err, orders.ErrAlreadyPaid)
}
