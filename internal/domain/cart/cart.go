// Package cart implements the working line-item collection for an in-progress
// order and the in-memory session store that owns active carts.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/provision-api/internal/domain/item"
)

// Cart owns the line items of one in-progress order. It is not safe for
// concurrent use; the Store serializes access per session.
type Cart struct {
	items []item.LineItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add merges li into the cart. When an existing entry shares li's identity
// the quantities are summed; otherwise li is appended as-is, including its
// key. Quantity sign is the caller's responsibility.
func (c *Cart) Add(li item.LineItem) {
	for i := range c.items {
		if c.items[i].Identity.Equal(li.Identity) {
			c.items[i].Quantity = c.items[i].Quantity.Add(li.Quantity)
			return
		}
	}
	c.items = append(c.items, li)
}

// SetQuantity replaces the quantity of the entry addressed by key.
// Unknown keys are a silent no-op.
func (c *Cart) SetQuantity(key string, quantity decimal.Decimal) {
	for i := range c.items {
		if c.items[i].Key == key {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// Remove drops the entry addressed by key. Absent keys are not an error.
func (c *Cart) Remove(key string) {
	for i := range c.items {
		if c.items[i].Key == key {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Append adds items without identity reconciliation. Spreadsheet import uses
// it: imported rows never merge against existing cart state, and two rows
// naming the same ingredient stay two entries.
func (c *Cart) Append(items ...item.LineItem) {
	c.items = append(c.items, items...)
}

// ApplyList merges a saved list's items into the cart, one by one: quantities
// sum on an identity match, and appended entries keep the list item's
// resolved identity under a fresh list- key. Partial application on error is
// possible by contract; there is nothing to roll back here.
func (c *Cart) ApplyList(listItems []item.LineItem) {
	for _, li := range listItems {
		appended := li
		if id, ok := li.Identity.IngredientID(); ok {
			appended.Key = item.NewListKey(id)
		} else {
			appended.Key = item.NewListKey(0)
		}
		c.Add(appended)
	}
}

// Items returns a copy of the cart's entries in insertion order.
func (c *Cart) Items() []item.LineItem {
	out := make([]item.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct entries.
func (c *Cart) Len() int { return len(c.items) }

// ItemCount returns the sum of quantities over all entries.
func (c *Cart) ItemCount() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.items {
		total = total.Add(li.Quantity)
	}
	return total
}

// TotalCost returns the sum of quantity × unit price over all entries.
// Entries that never resolved a price carry zero and contribute nothing.
func (c *Cart) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.items {
		total = total.Add(li.Cost())
	}
	return total
}

// Snapshot returns a copy of the entries for handing off to order
// submission. The cart itself is left untouched; the caller clears it once
// the order is persisted.
func (c *Cart) Snapshot() []item.LineItem {
	return c.Items()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}
