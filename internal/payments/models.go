// Package payments processes order payments through a simulated gateway
// and keeps a persistent transaction log.
package payments

import (
	"errors"
	"time"

	"corpfood-backend/pkg/money"
)

var (
	ErrInvalidAmount = errors.New("invalid payment amount")
	ErrAmountTooHigh = errors.New("payment amount exceeds maximum limit")
	ErrInvalidMethod = errors.New("payment method is required")
	ErrNotFound      = errors.New("transaction not found")
)

// Failure codes returned by the gateway on a declined charge.
const (
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeCardDeclined      = "CARD_DECLINED"
	CodeNetworkError      = "NETWORK_ERROR"
	CodeInvalidCard       = "INVALID_CARD"
)

// MaxCharge caps a single charge at $1000.
const MaxCharge money.Amount = 100_000

// Transaction is one recorded charge attempt, successful or not.
type Transaction struct {
	ID            int64        `json:"id"`
	TransactionID string       `json:"transaction_id"`
	OrderID       int64        `json:"order_id"`
	CustomerID    int64        `json:"customer_id"`
	Method        string       `json:"method"`
	Amount        money.Amount `json:"amount_cents"`
	Success       bool         `json:"success"`
	ErrorCode     string       `json:"error_code,omitempty"`
	Message       string       `json:"message,omitempty"`
	ProcessedAt   time.Time    `json:"processed_at"`
}

// Method describes one accepted payment method for the client picker.
type Method struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	FeePercent  float64 `json:"fee_percent"`
	SuccessRate float64 `json:"success_rate"`
}

// Methods returns the accepted payment methods, in display order.
func Methods() []Method {
	return []Method{
		{ID: "credit_card", Name: "Credit Card", Description: "Visa, Mastercard, Amex", FeePercent: 2.9, SuccessRate: 0.95},
		{ID: "paypal", Name: "PayPal", Description: "Pay with your PayPal account", FeePercent: 3.4, SuccessRate: 0.98},
		{ID: "corporate_account", Name: "Corporate Account", Description: "Charge to your corporate meal allowance", FeePercent: 0, SuccessRate: 0.99},
		{ID: "apple_pay", Name: "Apple Pay", Description: "Pay with Apple Pay", FeePercent: 2.9, SuccessRate: 0.97},
		{ID: "google_pay", Name: "Google Pay", Description: "Pay with Google Pay", FeePercent: 2.9, SuccessRate: 0.97},
	}
}
