package handlers

import (
	"testing"

	"corpfood-backend/internal/menu"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The dive into ReserveLine must reject non-positive quantities before the
// request reaches the stock decrement.
func TestReserveRequestValidation(t *testing.T) {
	validate := validator.New()

	ok := reserveRequest{
		CafeID: 10,
		Items:  []menu.ReserveLine{{MenuItemID: 1, Quantity: 2}},
	}
	require.NoError(t, validate.Struct(ok))

	negative := reserveRequest{
		CafeID: 10,
		Items:  []menu.ReserveLine{{MenuItemID: 1, Quantity: -50}},
	}
	assert.Error(t, validate.Struct(negative))

	zero := reserveRequest{
		CafeID: 10,
		Items:  []menu.ReserveLine{{MenuItemID: 1, Quantity: 0}},
	}
	assert.Error(t, validate.Struct(zero))

	empty := reserveRequest{CafeID: 10}
	assert.Error(t, validate.Struct(empty))
}
