package payments

import (
	"context"
	"testing"

	"corpfood-backend/internal/orders"
	"corpfood-backend/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTxnStore struct {
	txns []Transaction
}

func (f *fakeTxnStore) Insert(_ context.Context, txn *Transaction) error {
	txn.ID = int64(len(f.txns) + 1)
	f.txns = append(f.txns, *txn)
	return nil
}

func (f *fakeTxnStore) ListByOrder(_ context.Context, orderID int64) ([]Transaction, error) {
	var result []Transaction
	for _, txn := range f.txns {
		if txn.OrderID == orderID {
			result = append(result, txn)
		}
	}
	return result, nil
}

func (f *fakeTxnStore) ListByCustomer(_ context.Context, customerID int64) ([]Transaction, error) {
	var result []Transaction
	for _, txn := range f.txns {
		if txn.CustomerID == customerID {
			result = append(result, txn)
		}
	}
	return result, nil
}

func (f *fakeTxnStore) LatestCapturedByOrder(_ context.Context, orderID int64) (Transaction, error) {
	for i := len(f.txns) - 1; i >= 0; i-- {
		if f.txns[i].OrderID == orderID && f.txns[i].Success && f.txns[i].Amount > 0 {
			return f.txns[i], nil
		}
	}
	return Transaction{}, ErrNotFound
}

type fakeOrders struct {
	order         *orders.Order
	paid          bool
	paidMethod    string
	failed        bool
	failedMethod  string
	transactionID string
}

func (f *fakeOrders) Get(_ context.Context, orderID, customerID int64) (*orders.Order, error) {
	if f.order == nil || f.order.ID != orderID || f.order.CustomerID != customerID {
		return nil, orders.ErrNotFound
	}
	cp := *f.order
	return &cp, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, _, _ int64, method, transactionID string) (*orders.Order, error) {
	f.paid = true
	f.paidMethod = method
	f.transactionID = transactionID
	f.order.PaymentStatus = orders.PaymentCompleted
	return f.order, nil
}

func (f *fakeOrders) MarkPaymentFailed(_ context.Context, _, _ int64, method string) error {
	f.failed = true
	f.failedMethod = method
	f.order.PaymentStatus = orders.PaymentFailed
	return nil
}

func pendingOrder() *orders.Order {
	return &orders.Order{
		ID:            7,
		Status:        orders.StatusPending,
		PaymentStatus: orders.PaymentPending,
		TotalAmount:   money.Amount(900),
		CustomerID:    42,
		CafeID:        10,
	}
}

func TestProcessSuccess(t *testing.T) {
	store := &fakeTxnStore{}
	ord := &fakeOrders{order: pendingOrder()}
	svc := NewService(store, ord, approvingGateway())

	receipt, err := svc.Process(context.Background(), 42, 7, "paypal")
	require.NoError(t, err)

	assert.True(t, receipt.Success)
	assert.Equal(t, money.Amount(900), receipt.Amount)
	assert.Regexp(t, `^TXN-`, receipt.TransactionID)

	assert.True(t, ord.paid)
	assert.Equal(t, "paypal", ord.paidMethod)
	assert.Equal(t, receipt.TransactionID, ord.transactionID)
	assert.False(t, ord.failed)

	require.Len(t, store.txns, 1)
	assert.True(t, store.txns[0].Success)
	assert.Equal(t, int64(7), store.txns[0].OrderID)
}

func TestProcessDeclined(t *testing.T) {
	store := &fakeTxnStore{}
	ord := &fakeOrders{order: pendingOrder()}
	svc := NewService(store, ord, decliningGateway())

	receipt, err := svc.Process(context.Background(), 42, 7, "credit_card")
	require.NoError(t, err)

	// A decline is a recorded outcome, not an error; the order stays in
	// place for a retry or cancellation.
	assert.False(t, receipt.Success)
	assert.NotEmpty(t, receipt.ErrorCode)
	assert.False(t, ord.paid)
	assert.True(t, ord.failed)
	assert.Equal(t, "credit_card", ord.failedMethod)

	require.Len(t, store.txns, 1)
	assert.False(t, store.txns[0].Success)
	assert.NotEmpty(t, store.txns[0].TransactionID)
}

func TestProcessOrderNotFound(t *testing.T) {
	svc := NewService(&fakeTxnStore{}, &fakeOrders{}, approvingGateway())

	_, err := svc.Process(context.Background(), 42, 7, "paypal")
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestProcessAlreadyPaid(t *testing.T) {
	order := pendingOrder()
	order.PaymentStatus = orders.PaymentCompleted
	svc := NewService(&fakeTxnStore{}, &fakeOrders{order: order}, approvingGateway())

	_, err := svc.Process(context.Background(), 42, 7, "paypal")
	assert.ErrorIs(t, err, orders.ErrAlreadyPaid)
}

func TestProcessInvalidAmount(t *testing.T) {
	order := pendingOrder()
	order.TotalAmount = MaxCharge + 1
	store := &fakeTxnStore{}
	svc := NewService(store, &fakeOrders{order: order}, approvingGateway())

	_, err := svc.Process(context.Background(), 42, 7, "paypal")
	assert.ErrorIs(t, err, ErrAmountTooHigh)
	assert.Empty(t, store.txns)
}

func TestRefundFlow(t *testing.T) {
	store := &fakeTxnStore{}
	ord := &fakeOrders{order: pendingOrder()}
	svc := NewService(store, ord, approvingGateway())

	_, err := svc.Process(context.Background(), 42, 7, "paypal")
	require.NoError(t, err)

	receipt, err := svc.Refund(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	assert.Regexp(t, `^REF-`, receipt.TransactionID)
	assert.Equal(t, money.Amount(900), receipt.Amount)

	// The refund is logged as a negative-amount transaction.
	require.Len(t, store.txns, 2)
	assert.Equal(t, money.Amount(-900), store.txns[1].Amount)
}

func TestRefundWithoutCapture(t *testing.T) {
	svc := NewService(&fakeTxnStore{}, &fakeOrders{order: pendingOrder()}, approvingGateway())

	_, err := svc.Refund(context.Background(), 42, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryAndOrderTransactions(t *testing.T) {
	store := &fakeTxnStore{}
	ord := &fakeOrders{order: pendingOrder()}
	svc := NewService(store, ord, decliningGateway())

	_, err := svc.Process(context.Background(), 42, 7, "credit_card")
	require.NoError(t, err)

	history, err := svc.History(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	txns, err := svc.OrderTransactions(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	_, err = svc.OrderTransactions(context.Background(), 99, 7)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}
