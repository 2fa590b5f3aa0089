package payments

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource always yields the same value, pinning Float64 below or above
// any success rate.
type fixedSource struct{ v int64 }

func (f fixedSource) Int63() int64 { return f.v }
func (f fixedSource) Seed(int64)   {}

func approvingGateway() *Gateway {
	// Float64 of 0 is below every success rate.
	return NewGatewayWithSource(rand.New(fixedSource{v: 0}),
		func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
}

func decliningGateway() *Gateway {
	// 1<<63 - 1<<10 maps to a Float64 just under 1, above every success rate.
	return NewGatewayWithSource(rand.New(fixedSource{v: 1<<63 - 1<<10}),
		func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
}

func TestChargeValidation(t *testing.T) {
	g := approvingGateway()

	_, err := g.Charge("", 500)
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, err = g.Charge("credit_card", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = g.Charge("credit_card", -100)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = g.Charge("credit_card", MaxCharge+1)
	assert.ErrorIs(t, err, ErrAmountTooHigh)

	// The maximum itself is chargeable.
	result, err := g.Charge("credit_card", MaxCharge)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestChargeSuccess(t *testing.T) {
	g := approvingGateway()

	for _, method := range []string{"credit_card", "paypal", "corporate_account", "apple_pay", "google_pay"} {
		result, err := g.Charge(method, 900)
		require.NoError(t, err)
		assert.True(t, result.Success, method)
		assert.Regexp(t, `^TXN-\d+-\d{6}$`, result.TransactionID)
		assert.Empty(t, result.ErrorCode)
	}
}

func TestChargeUnknownMethodStillWorks(t *testing.T) {
	// Unknown schemes route through the fallback rate instead of erroring.
	result, err := approvingGateway().Charge("diners_club", 900)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestChargeDeclined(t *testing.T) {
	result, err := decliningGateway().Charge("credit_card", 900)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, result.TransactionID)
	assert.Contains(t, []string{
		CodeInsufficientFunds, CodeCardDeclined, CodeNetworkError, CodeInvalidCard,
	}, result.ErrorCode)
	assert.NotEmpty(t, result.Message)
}

func TestRefund(t *testing.T) {
	result, err := approvingGateway().Refund("TXN-12345678-000001", 900)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Regexp(t, `^REF-\d+-\d{6}$`, result.RefundID)

	_, err = approvingGateway().Refund("", 900)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = approvingGateway().Refund("TXN-12345678-000001", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRefundDeclined(t *testing.T) {
	result, err := decliningGateway().Refund("TXN-12345678-000001", 900)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.RefundID)
}

func TestMethodsCatalog(t *testing.T) {
	methods := Methods()
	require.Len(t, methods, 5)

	ids := make([]string, 0, len(methods))
	for _, m := range methods {
		ids = append(ids, m.ID)
		assert.Greater(t, m.SuccessRate, 0.9)
	}
	assert.Equal(t, []string{"credit_card", "paypal", "corporate_account", "apple_pay", "google_pay"}, ids)
}
