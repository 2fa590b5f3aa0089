package payments

import (
	"fmt"
	"math/rand"
	"time"

	"corpfood-backend/pkg/money"
)

// successRates maps a payment method id to its simulated approval rate.
// Methods the gateway has never heard of still get a conservative default,
// matching real acquirers that route unknown schemes through a fallback.
var successRates = map[string]float64{
	"credit_card":       0.95,
	"paypal":            0.98,
	"corporate_account": 0.99,
	"apple_pay":         0.97,
	"google_pay":        0.97,
}

const defaultSuccessRate = 0.90

var failureCodes = []struct {
	code    string
	message string
}{
	{CodeInsufficientFunds, "Insufficient funds in account"},
	{CodeCardDeclined, "Card was declined by issuer"},
	{CodeNetworkError, "Payment network temporarily unavailable"},
	{CodeInvalidCard, "Card details could not be validated"},
}

// ChargeResult is the gateway's answer to a single charge attempt.
type ChargeResult struct {
	Success       bool
	TransactionID string
	ErrorCode     string
	Message       string
	ProcessedAt   time.Time
}

// RefundResult is the gateway's answer to a refund request.
type RefundResult struct {
	Success     bool
	RefundID    string
	Message     string
	ProcessedAt time.Time
}

// Gateway simulates an external payment processor. The random source and
// clock are injectable so tests can drive deterministic outcomes.
type Gateway struct {
	rnd *rand.Rand
	now func() time.Time
}

func NewGateway() *Gateway {
	return &Gateway{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// NewGatewayWithSource builds a gateway over a caller-supplied random source
// and clock.
func NewGatewayWithSource(rnd *rand.Rand, now func() time.Time) *Gateway {
	return &Gateway{rnd: rnd, now: now}
}

// Charge attempts to capture amount with the given method. Validation
// failures return an error; a declined charge returns a failed result with
// an error code, not an error.
func (g *Gateway) Charge(method string, amount money.Amount) (ChargeResult, error) {
	if method == "" {
		return ChargeResult{}, ErrInvalidMethod
	}
	if amount <= 0 {
		return ChargeResult{}, ErrInvalidAmount
	}
	if amount > MaxCharge {
		return ChargeResult{}, ErrAmountTooHigh
	}

	now := g.now()
	rate, ok := successRates[method]
	if !ok {
		rate = defaultSuccessRate
	}

	if g.rnd.Float64() < rate {
		return ChargeResult{
			Success:       true,
			TransactionID: g.transactionID(now),
			Message:       "Payment processed successfully",
			ProcessedAt:   now,
		}, nil
	}

	failure := failureCodes[g.rnd.Intn(len(failureCodes))]
	return ChargeResult{
		Success:     false,
		ErrorCode:   failure.code,
		Message:     failure.message,
		ProcessedAt: now,
	}, nil
}

// Refund reverses a captured charge. Simulated at a 98% success rate.
func (g *Gateway) Refund(transactionID string, amount money.Amount) (RefundResult, error) {
	if transactionID == "" {
		return RefundResult{}, ErrNotFound
	}
	if amount <= 0 {
		return RefundResult{}, ErrInvalidAmount
	}

	now := g.now()
	if g.rnd.Float64() < 0.98 {
		return RefundResult{
			Success:     true,
			RefundID:    g.refundID(now),
			Message:     "Refund processed successfully",
			ProcessedAt: now,
		}, nil
	}
	return RefundResult{
		Success:     false,
		Message:     "Refund could not be processed, contact support",
		ProcessedAt: now,
	}, nil
}

func (g *Gateway) transactionID(now time.Time) string {
	return fmt.Sprintf("TXN-%d-%06d", now.Unix()%100_000_000, g.rnd.Intn(1_000_000))
}

func (g *Gateway) refundID(now time.Time) string {
	return fmt.Sprintf("REF-%d-%06d", now.Unix()%100_000_000, g.rnd.Intn(1_000_000))
}
