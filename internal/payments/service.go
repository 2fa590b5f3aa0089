package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"corpfood-backend/internal/orders"
	"corpfood-backend/pkg/logkey"
	"corpfood-backend/pkg/money"
)

// Store persists the transaction log.
type Store interface {
	Insert(ctx context.Context, txn *Transaction) error
	ListByOrder(ctx context.Context, orderID int64) ([]Transaction, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Transaction, error)
	LatestCapturedByOrder(ctx context.Context, orderID int64) (Transaction, error)
}

// Orders is the slice of the order service the payment flow needs: resolve
// the amount due and reconcile the settlement outcome back onto the order.
type Orders interface {
	Get(ctx context.Context, orderID, customerID int64) (*orders.Order, error)
	MarkPaid(ctx context.Context, orderID, customerID int64, method, transactionID string) (*orders.Order, error)
	MarkPaymentFailed(ctx context.Context, orderID, customerID int64, method string) error
}

// Receipt is the client-facing outcome of a charge or refund attempt.
type Receipt struct {
	Success       bool         `json:"success"`
	TransactionID string       `json:"transaction_id,omitempty"`
	OrderID       int64        `json:"order_id"`
	Amount        money.Amount `json:"amount_cents"`
	Method        string       `json:"method"`
	ErrorCode     string       `json:"error_code,omitempty"`
	Message       string       `json:"message"`
	ProcessedAt   time.Time    `json:"processed_at"`
}

// Service drives the two-phase checkout: the order is created first and
// stays PENDING; payment settles against it afterwards.
type Service struct {
	store   Store
	orders  Orders
	gateway *Gateway
}

func NewService(store Store, ord Orders, gateway *Gateway) *Service {
	return &Service{store: store, orders: ord, gateway: gateway}
}

// Process charges the order's total with the given method. A declined charge
// is a normal outcome, returned as an unsuccessful receipt; the order keeps
// its PENDING status either way, with payment_status reconciled to match.
func (s *Service) Process(ctx context.Context, customerID, orderID int64, method string) (Receipt, error) {
	order, err := s.orders.Get(ctx, orderID, customerID)
	if err != nil {
		return Receipt{}, err
	}
	if order.PaymentStatus == orders.PaymentCompleted {
		return Receipt{}, orders.ErrAlreadyPaid
	}

	result, err := s.gateway.Charge(method, order.TotalAmount)
	if err != nil {
		return Receipt{}, err
	}

	txn := Transaction{
		TransactionID: result.TransactionID,
		OrderID:       orderID,
		CustomerID:    customerID,
		Method:        method,
		Amount:        order.TotalAmount,
		Success:       result.Success,
		ErrorCode:     result.ErrorCode,
		Message:       result.Message,
		ProcessedAt:   result.ProcessedAt,
	}
	if txn.TransactionID == "" {
		txn.TransactionID = fmt.Sprintf("TXN-FAILED-%d-%d", orderID, result.ProcessedAt.UnixNano())
	}
	if err := s.store.Insert(ctx, &txn); err != nil {
		return Receipt{}, fmt.Errorf("recording transaction: %w", err)
	}

	if result.Success {
		if _, err := s.orders.MarkPaid(ctx, orderID, customerID, method, result.TransactionID); err != nil {
			return Receipt{}, fmt.Errorf("reconciling payment: %w", err)
		}
	} else {
		// The PENDING order is left in place on decline; the customer can
		// retry payment or cancel.
		if err := s.orders.MarkPaymentFailed(ctx, orderID, customerID, method); err != nil {
			slog.Error("marking payment failed",
				slog.Int64(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		}
	}

	return Receipt{
		Success:       result.Success,
		TransactionID: result.TransactionID,
		OrderID:       orderID,
		Amount:        order.TotalAmount,
		Method:        method,
		ErrorCode:     result.ErrorCode,
		Message:       result.Message,
		ProcessedAt:   result.ProcessedAt,
	}, nil
}

// Refund reverses the latest captured charge on an order.
func (s *Service) Refund(ctx context.Context, customerID, orderID int64) (Receipt, error) {
	order, err := s.orders.Get(ctx, orderID, customerID)
	if err != nil {
		return Receipt{}, err
	}

	captured, err := s.store.LatestCapturedByOrder(ctx, orderID)
	if err != nil {
		return Receipt{}, err
	}

	result, err := s.gateway.Refund(captured.TransactionID, captured.Amount)
	if err != nil {
		return Receipt{}, err
	}

	if result.Success {
		txn := Transaction{
			TransactionID: result.RefundID,
			OrderID:       orderID,
			CustomerID:    customerID,
			Method:        captured.Method,
			Amount:        -captured.Amount,
			Success:       true,
			Message:       result.Message,
			ProcessedAt:   result.ProcessedAt,
		}
		if err := s.store.Insert(ctx, &txn); err != nil {
			return Receipt{}, fmt.Errorf("recording refund: %w", err)
		}
	}

	return Receipt{
		Success:       result.Success,
		TransactionID: result.RefundID,
		OrderID:       order.ID,
		Amount:        captured.Amount,
		Method:        captured.Method,
		Message:       result.Message,
		ProcessedAt:   result.ProcessedAt,
	}, nil
}

// History lists the customer's transactions, newest first.
func (s *Service) History(ctx context.Context, customerID int64) ([]Transaction, error) {
	return s.store.ListByCustomer(ctx, customerID)
}

// OrderTransactions lists every charge attempt against one order.
func (s *Service) OrderTransactions(ctx context.Context, customerID, orderID int64) ([]Transaction, error) {
	if _, err := s.orders.Get(ctx, orderID, customerID); err != nil {
		return nil, err
	}
	return s.store.ListByOrder(ctx, orderID)
}
