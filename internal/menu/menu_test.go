package menu

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reserve must reject non-positive quantities up front: a negative line would
// slip past the shortfall comparison and add stock on decrement.
func TestReserveRejectsInvalidQuantity(t *testing.T) {
	c := &Conf{}

	for _, quantity := range []int{0, -1, -50} {
		_, err := c.Reserve(context.Background(), 10, []ReserveLine{
			{MenuItemID: 1, Quantity: quantity},
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", quantity)
	}

	// One bad line fails the whole reservation, valid lines included.
	_, err := c.Reserve(context.Background(), 10, []ReserveLine{
		{MenuItemID: 1, Quantity: 2},
		{MenuItemID: 2, Quantity: -50},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestReserveRejectsEmptyLines(t *testing.T) {
	c := &Conf{}

	_, err := c.Reserve(context.Background(), 10, nil)
	assert.Error(t, err)
}

func TestReserveLineValidation(t *testing.T) {
	validate := validator.New()

	require.NoError(t, validate.Struct(ReserveLine{MenuItemID: 1, Quantity: 1}))

	assert.Error(t, validate.Struct(ReserveLine{MenuItemID: 1, Quantity: -50}))
	assert.Error(t, validate.Struct(ReserveLine{MenuItemID: 1, Quantity: 0}))
	assert.Error(t, validate.Struct(ReserveLine{MenuItemID: 0, Quantity: 1}))
}
