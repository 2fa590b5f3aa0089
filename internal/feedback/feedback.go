// Package feedback handles post-fulfilment order ratings.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"corpfood-backend/internal/orders"
)

var (
	ErrNotFound      = errors.New("feedback not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrTextTooLong   = errors.New("feedback text exceeds 500 characters")
	ErrAlreadyGiven  = errors.New("feedback already submitted for this order")
	ErrNotEligible   = errors.New("order is not eligible for feedback")
)

const maxTextLen = 500

// Feedback is one immutable rating of a completed order.
type Feedback struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	CafeID     int64     `json:"cafe_id"`
	Rating     int       `json:"rating"`
	Text       string    `json:"feedback_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateRequest is the client payload for a new rating.
type CreateRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"feedback_text" validate:"max=500"`
}

// Eligibility answers the pre-submission check the client renders the
// feedback form from.
type Eligibility struct {
	CanFeedback bool   `json:"can_feedback"`
	Reason      string `json:"reason,omitempty"`
}

// Store persists feedback rows.
type Store interface {
	Insert(ctx context.Context, fb *Feedback) error
	GetByOrder(ctx context.Context, orderID int64) (Feedback, error)
	ListByCafe(ctx context.Context, cafeID int64) ([]Feedback, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Feedback, error)
}

// OrderGetter resolves an order scoped to its customer.
type OrderGetter interface {
	Get(ctx context.Context, orderID, customerID int64) (*orders.Order, error)
}

// Service enforces the eligibility gate: only the order's customer, only
// once the order is READY or DELIVERED, and only once per order.
type Service struct {
	store  Store
	orders OrderGetter
}

func NewService(store Store, ord OrderGetter) *Service {
	return &Service{store: store, orders: ord}
}

// CanGive reports whether the customer may submit feedback for the order,
// with a human-readable reason when they may not. An order the customer
// cannot see yields an error, not an eligibility answer.
func (s *Service) CanGive(ctx context.Context, orderID, customerID int64) (Eligibility, error) {
	order, err := s.orders.Get(ctx, orderID, customerID)
	if err != nil {
		return Eligibility{}, err
	}

	if !order.Status.FeedbackEligible() {
		return Eligibility{
			Reason: fmt.Sprintf("feedback is available once the order is ready; current status is %s", order.Status),
		}, nil
	}

	_, err = s.store.GetByOrder(ctx, orderID)
	switch {
	case err == nil:
		return Eligibility{Reason: "feedback has already been submitted for this order"}, nil
	case errors.Is(err, ErrNotFound):
		return Eligibility{CanFeedback: true}, nil
	default:
		return Eligibility{}, err
	}
}

// Create submits a rating after re-running the eligibility gate.
func (s *Service) Create(ctx context.Context, orderID, customerID int64, req CreateRequest) (Feedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return Feedback{}, ErrInvalidRating
	}
	if utf8.RuneCountInString(req.Text) > maxTextLen {
		return Feedback{}, ErrTextTooLong
	}

	order, err := s.orders.Get(ctx, orderID, customerID)
	if err != nil {
		return Feedback{}, err
	}
	if !order.Status.FeedbackEligible() {
		return Feedback{}, fmt.Errorf("%w: order status is %s", ErrNotEligible, order.Status)
	}

	if _, err := s.store.GetByOrder(ctx, orderID); err == nil {
		return Feedback{}, ErrAlreadyGiven
	} else if !errors.Is(err, ErrNotFound) {
		return Feedback{}, err
	}

	fb := Feedback{
		OrderID:    orderID,
		CustomerID: customerID,
		CafeID:     order.CafeID,
		Rating:     req.Rating,
		Text:       req.Text,
	}
	if err := s.store.Insert(ctx, &fb); err != nil {
		return Feedback{}, err
	}
	return fb, nil
}

// GetByOrder returns the feedback for an order the customer owns.
func (s *Service) GetByOrder(ctx context.Context, orderID, customerID int64) (Feedback, error) {
	if _, err := s.orders.Get(ctx, orderID, customerID); err != nil {
		return Feedback{}, err
	}
	return s.store.GetByOrder(ctx, orderID)
}

// ListByCafe lists a cafe's feedback for its owner dashboard.
func (s *Service) ListByCafe(ctx context.Context, cafeID int64) ([]Feedback, error) {
	return s.store.ListByCafe(ctx, cafeID)
}

// ListMine lists everything the customer has submitted.
func (s *Service) ListMine(ctx context.Context, customerID int64) ([]Feedback, error) {
	return s.store.ListByCustomer(ctx, customerID)
}
