package feedback

import (
	"context"
	"strings"
	"testing"

	"corpfood-backend/internal/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	byOrder map[int64]Feedback
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{byOrder: make(map[int64]Feedback), nextID: 1}
}

func (f *fakeStore) Insert(_ context.Context, fb *Feedback) error {
	if _, ok := f.byOrder[fb.OrderID]; ok {
		return ErrAlreadyGiven
	}
	fb.ID = f.nextID
	f.nextID++
	f.byOrder[fb.OrderID] = *fb
	return nil
}

func (f *fakeStore) GetByOrder(_ context.Context, orderID int64) (Feedback, error) {
	fb, ok := f.byOrder[orderID]
	if !ok {
		return Feedback{}, ErrNotFound
	}
	return fb, nil
}

func (f *fakeStore) ListByCafe(_ context.Context, cafeID int64) ([]Feedback, error) {
	var result []Feedback
	for _, fb := range f.byOrder {
		if fb.CafeID == cafeID {
			result = append(result, fb)
		}
	}
	return result, nil
}

func (f *fakeStore) ListByCustomer(_ context.Context, customerID int64) ([]Feedback, error) {
	var result []Feedback
	for _, fb := range f.byOrder {
		if fb.CustomerID == customerID {
			result = append(result, fb)
		}
	}
	return result, nil
}

type fakeOrderGetter struct {
	order *orders.Order
}

func (f *fakeOrderGetter) Get(_ context.Context, orderID, customerID int64) (*orders.Order, error) {
	if f.order == nil || f.order.ID != orderID || f.order.CustomerID != customerID {
		return nil, orders.ErrNotFound
	}
	cp := *f.order
	return &cp, nil
}

func testOrder(status orders.Status) *orders.Order {
	return &orders.Order{
		ID:         7,
		Status:     status,
		CustomerID: 42,
		CafeID:     10,
	}
}

func TestEligibilityLifecycle(t *testing.T) {
	store := newFakeStore()
	getter := &fakeOrderGetter{order: testOrder(orders.StatusPending)}
	svc := NewService(store, getter)

	// Too early: the order has not been fulfilled yet.
	for _, status := range []orders.Status{orders.StatusPending, orders.StatusAccepted, orders.StatusPreparing} {
		getter.order.Status = status
		eligibility, err := svc.CanGive(context.Background(), 7, 42)
		require.NoError(t, err)
		assert.False(t, eligibility.CanFeedback, "status %s", status)
		assert.NotEmpty(t, eligibility.Reason)
	}

	// Fulfilled: the gate opens.
	getter.order.Status = orders.StatusReady
	eligibility, err := svc.CanGive(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.True(t, eligibility.CanFeedback)
	assert.Empty(t, eligibility.Reason)

	// Submitted once: the gate closes for good.
	_, err = svc.Create(context.Background(), 7, 42, CreateRequest{Rating: 5, Text: "great"})
	require.NoError(t, err)

	eligibility, err = svc.CanGive(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.False(t, eligibility.CanFeedback)
	assert.NotEmpty(t, eligibility.Reason)
}

func TestEligibilityUnknownOrder(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeOrderGetter{})

	_, err := svc.CanGive(context.Background(), 7, 42)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestCreateValidatesRating(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeOrderGetter{order: testOrder(orders.StatusDelivered)})

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := svc.Create(context.Background(), 7, 42, CreateRequest{Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}
	assert.Empty(t, store.byOrder)
}

func TestCreateValidatesTextLength(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeOrderGetter{order: testOrder(orders.StatusDelivered)})

	_, err := svc.Create(context.Background(), 7, 42, CreateRequest{
		Rating: 4,
		Text:   strings.Repeat("a", 501),
	})
	assert.ErrorIs(t, err, ErrTextTooLong)

	// Exactly 500 characters is accepted.
	fb, err := svc.Create(context.Background(), 7, 42, CreateRequest{
		Rating: 4,
		Text:   strings.Repeat("a", 500),
	})
	require.NoError(t, err)
	assert.Len(t, fb.Text, 500)
}

func TestCreateRejectsIneligibleStatus(t *testing.T) {
	getter := &fakeOrderGetter{order: testOrder(orders.StatusPreparing)}
	svc := NewService(newFakeStore(), getter)

	_, err := svc.Create(context.Background(), 7, 42, CreateRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrNotEligible)

	getter.order.Status = orders.StatusCancelled
	_, err = svc.Create(context.Background(), 7, 42, CreateRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestCreateOncePerOrder(t *testing.T) {
	getter := &fakeOrderGetter{order: testOrder(orders.StatusDelivered)}
	svc := NewService(newFakeStore(), getter)

	fb, err := svc.Create(context.Background(), 7, 42, CreateRequest{Rating: 3, Text: "ok"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), fb.CafeID)
	assert.Equal(t, 3, fb.Rating)

	_, err = svc.Create(context.Background(), 7, 42, CreateRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrAlreadyGiven)
}

func TestCreateWrongCustomer(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeOrderGetter{order: testOrder(orders.StatusDelivered)})

	_, err := svc.Create(context.Background(), 7, 99, CreateRequest{Rating: 5})
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestGetByOrder(t *testing.T) {
	getter := &fakeOrderGetter{order: testOrder(orders.StatusDelivered)}
	svc := NewService(newFakeStore(), getter)

	_, err := svc.GetByOrder(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(context.Background(), 7, 42, CreateRequest{Rating: 5})
	require.NoError(t, err)

	fb, err := svc.GetByOrder(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Rating)

	_, err = svc.GetByOrder(context.Background(), 7, 99)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}
