package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountArithmetic(t *testing.T) {
	assert.Equal(t, Amount(900), Amount(450).Mul(2))
	assert.Equal(t, Amount(999), Amount(333).Mul(3))
	assert.Equal(t, Amount(1250), Amount(900).Add(350))

	// Large quantities stay exact; no drift is possible with integer cents.
	assert.Equal(t, Amount(333000), Amount(333).Mul(1000))
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "9.00", Amount(900).String())
	assert.Equal(t, "4.50", Amount(450).String())
	assert.Equal(t, "0.05", Amount(5).String())
	assert.Equal(t, "0.00", Amount(0).String())
	assert.Equal(t, "-12.34", Amount(-1234).String())
	assert.Equal(t, "3330.00", Amount(333).Mul(1000).String())
}
