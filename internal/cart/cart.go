// Package cart holds the in-progress selection of menu items for a single
// cafe. The aggregate is advisory only: it never talks to other services and
// performs no stock validation itself; the menu service remains the source of
// truth, re-checked at order creation.
package cart

import "corpfood-backend/pkg/money"

// Line is one menu item in the cart.
type Line struct {
	ItemID    int64        `json:"menu_item_id"`
	Name      string       `json:"name"`
	UnitPrice money.Amount `json:"unit_price_cents"`
	Quantity  int          `json:"quantity"`
	CafeID    int64        `json:"cafe_id"`
}

// Cart binds an ordered list of lines to exactly one cafe. CafeID is zero
// iff the cart is empty.
type Cart struct {
	Lines    []Line `json:"items"`
	CafeID   int64  `json:"cafe_id"`
	CafeName string `json:"cafe_name"`
}

// AddItem puts one unit of the item into the cart. Adding an item from a
// different cafe replaces the whole cart with that single item; there is no
// merge step. An item already present gets its quantity bumped by one.
func (c *Cart) AddItem(item Line, cafeName string) {
	if c.CafeID != 0 && c.CafeID != item.CafeID {
		item.Quantity = 1
		c.Lines = []Line{item}
		c.CafeID = item.CafeID
		c.CafeName = cafeName
		return
	}

	for i := range c.Lines {
		if c.Lines[i].ItemID == item.ItemID {
			c.Lines[i].Quantity++
			return
		}
	}

	item.Quantity = 1
	c.Lines = append(c.Lines, item)
	c.CafeID = item.CafeID
	c.CafeName = cafeName
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line. No stock clamp is applied here; callers pre-check availability.
func (c *Cart) UpdateQuantity(itemID int64, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(itemID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

// RemoveItem drops the line. Removing the last line unbinds the cafe.
func (c *Cart) RemoveItem(itemID int64) {
	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.ItemID != itemID {
			kept = append(kept, line)
		}
	}
	c.Lines = kept
	if len(c.Lines) == 0 {
		c.CafeID = 0
		c.CafeName = ""
	}
}

// Clear resets to the empty cart unconditionally.
func (c *Cart) Clear() {
	c.Lines = nil
	c.CafeID = 0
	c.CafeName = ""
}

// Total is the exact sum of unit price times quantity over all lines.
func (c *Cart) Total() money.Amount {
	var total money.Amount
	for _, line := range c.Lines {
		total = total.Add(line.UnitPrice.Mul(line.Quantity))
	}
	return total
}

// ItemCount is the number of distinct lines, used for the cart badge.
func (c *Cart) ItemCount() int {
	return len(c.Lines)
}

// TotalQuantity is the sum of units across all lines.
func (c *Cart) TotalQuantity() int {
	var total int
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}
