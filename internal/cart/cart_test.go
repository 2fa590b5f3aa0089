package cart

import (
	"testing"

	"corpfood-backend/pkg/money"

	"github.com/stretchr/testify/assert"
)

func line(id int64, price money.Amount, cafeID int64) Line {
	return Line{ItemID: id, Name: "item", UnitPrice: price, CafeID: cafeID}
}

func TestAddItemStartsAtOneAndIncrements(t *testing.T) {
	var c Cart
	c.AddItem(line(1, 450, 10), "Deli")

	assert.Equal(t, int64(10), c.CafeID)
	assert.Equal(t, "Deli", c.CafeName)
	assert.Equal(t, 1, c.Lines[0].Quantity)

	c.AddItem(line(1, 450, 10), "Deli")
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, money.Amount(900), c.Total())
}

func TestAddItemFromOtherCafeReplacesCart(t *testing.T) {
	var c Cart
	c.AddItem(line(1, 450, 10), "Deli")
	c.AddItem(line(1, 450, 10), "Deli")
	c.AddItem(line(2, 200, 10), "Deli")

	// Switching cafes drops everything; the new cart holds one unit of the
	// newly added item only.
	c.AddItem(line(7, 300, 20), "Bakery")
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, int64(7), c.Lines[0].ItemID)
	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Equal(t, int64(20), c.CafeID)
	assert.Equal(t, "Bakery", c.CafeName)
	assert.Equal(t, money.Amount(300), c.Total())
}

func TestUpdateQuantity(t *testing.T) {
	var c Cart
	c.AddItem(line(1, 333, 10), "Deli")

	c.UpdateQuantity(1, 1000)
	assert.Equal(t, money.Amount(333000), c.Total())
	assert.Equal(t, 1000, c.TotalQuantity())
	assert.Equal(t, 1, c.ItemCount())

	// Unknown line is a no-op.
	c.UpdateQuantity(99, 5)
	assert.Equal(t, 1000, c.TotalQuantity())
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	var c Cart
	c.AddItem(line(1, 450, 10), "Deli")
	c.AddItem(line(2, 200, 10), "Deli")

	c.UpdateQuantity(1, 0)
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, int64(2), c.Lines[0].ItemID)

	c.UpdateQuantity(2, -3)
	assert.Empty(t, c.Lines)
	assert.Equal(t, int64(0), c.CafeID)
	assert.Equal(t, "", c.CafeName)
}

func TestRemoveLastItemUnbindsCafe(t *testing.T) {
	var c Cart
	c.AddItem(line(1, 450, 10), "Deli")
	c.RemoveItem(1)

	assert.Empty(t, c.Lines)
	assert.Equal(t, int64(0), c.CafeID)
	assert.Equal(t, "", c.CafeName)
	assert.Equal(t, money.Amount(0), c.Total())

	// An empty cart accepts any cafe again.
	c.AddItem(line(7, 300, 20), "Bakery")
	assert.Equal(t, int64(20), c.CafeID)
}

func TestClear(t *testing.T) {
	var c Cart
	c.AddItem(line(1, 450, 10), "Deli")
	c.AddItem(line(2, 200, 10), "Deli")
	c.Clear()

	assert.Empty(t, c.Lines)
	assert.Equal(t, int64(0), c.CafeID)
	assert.Equal(t, 0, c.ItemCount())
	assert.Equal(t, 0, c.TotalQuantity())
}

func TestTotalIsExactOverManyLines(t *testing.T) {
	var c Cart
	c.AddItem(line(1, 333, 10), "Deli")
	c.UpdateQuantity(1, 333)
	c.AddItem(line(2, 1, 10), "Deli")
	c.UpdateQuantity(2, 7)

	assert.Equal(t, money.Amount(333*333+7), c.Total())
	assert.Equal(t, 2, c.ItemCount())
	assert.Equal(t, 340, c.TotalQuantity())
}

func TestTotalIsExactOverThousandAdditions(t *testing.T) {
	var c Cart
	for i := 0; i < 1000; i++ {
		c.AddItem(line(1, 333, 10), "Deli")
	}

	// 1000 x $3.33 lands on exactly $3330.00, no drift.
	assert.Equal(t, money.Amount(333000), c.Total())
	assert.Equal(t, "3330.00", c.Total().String())
	assert.Equal(t, 1000, c.TotalQuantity())
}

func TestStoreIsolatesUsers(t *testing.T) {
	s := NewStore()
	s.With(1, func(c *Cart) {
		c.AddItem(line(1, 450, 10), "Deli")
	})
	s.With(2, func(c *Cart) {
		c.AddItem(line(7, 300, 20), "Bakery")
	})

	first := s.Snapshot(1)
	second := s.Snapshot(2)
	assert.Equal(t, int64(10), first.CafeID)
	assert.Equal(t, int64(20), second.CafeID)

	s.Drop(1)
	assert.Empty(t, s.Snapshot(1).Lines)
	assert.Len(t, s.Snapshot(2).Lines, 1)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := NewStore()
	s.With(1, func(c *Cart) {
		c.AddItem(line(1, 450, 10), "Deli")
	})

	snapshot := s.Snapshot(1)
	snapshot.Lines[0].Quantity = 99

	assert.Equal(t, 1, s.Snapshot(1).Lines[0].Quantity)
}
