// Package cart holds the in-session basket a customer builds before
// submitting an order.
package cart

import (
	"fmt"

	"foodtruck-order-service/internal/domain"
)

type Line struct {
	Item     domain.MenuItem `json:"item"`
	Quantity int             `json:"quantity"`
}

func (l Line) Subtotal() domain.Money {
	return l.Item.Price.Mul(l.Quantity)
}

// Cart keeps one line per menu item id, in insertion order. It is owned by
// a single session and is not safe for concurrent use.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of item in the cart, incrementing an existing line.
func (c *Cart) Add(item domain.MenuItem) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
}

// ChangeQuantity adjusts a line by delta; a result below one removes it.
// Unknown ids are ignored.
func (c *Cart) ChangeQuantity(itemID string, delta int) {
	i := c.index(itemID)
	if i < 0 {
		return
	}
	next := c.lines[i].Quantity + delta
	if next < 1 {
		c.removeAt(i)
		return
	}
	c.lines[i].Quantity = next
}

func (c *Cart) Remove(itemID string) {
	if i := c.index(itemID); i >= 0 {
		c.removeAt(i)
	}
}

// CheckedTotal is Total with overflow detection; ok is false when a line
// or the sum does not fit in Money.
func (c *Cart) CheckedTotal() (domain.Money, bool) {
	var total domain.Money
	for _, line := range c.lines {
		sub, ok := line.Item.Price.MulChecked(line.Quantity)
		if !ok {
			return 0, false
		}
		if total, ok = total.AddChecked(sub); !ok {
			return 0, false
		}
	}
	return total, true
}

func (c *Cart) Total() domain.Money {
	var total domain.Money
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(itemID string) int {
	for i, line := range c.lines {
		if line.Item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// RequestItem is a cart line as sent by a client.
type RequestItem struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// DefaultMaxQuantity is the per-line cap used when none is configured.
const DefaultMaxQuantity = 99

// FromRequest rebuilds a cart from client lines using the catalog's current
// prices. Repeated ids accumulate, and no line may exceed maxQuantity units
// (DefaultMaxQuantity when maxQuantity <= 0).
func FromRequest(items []RequestItem, catalog map[string]domain.MenuItem, maxQuantity int) (*Cart, error) {
	if maxQuantity <= 0 {
		maxQuantity = DefaultMaxQuantity
	}
	c := New()
	for i, req := range items {
		field := fmt.Sprintf("items[%d].quantity", i)
		if req.Quantity < 1 {
			return nil, domain.Invalid(field, "must be at least 1")
		}
		if req.Quantity > maxQuantity {
			return nil, domain.Invalid(field, fmt.Sprintf("must be at most %d", maxQuantity))
		}
		item, ok := catalog[req.MenuItemID]
		if !ok {
			return nil, domain.Invalid("items", "unknown menu item "+req.MenuItemID)
		}
		if !item.Available {
			return nil, domain.Invalid("items", item.Name+" is not available")
		}
		if j := c.index(item.ID); j >= 0 && c.lines[j].Quantity+req.Quantity > maxQuantity {
			return nil, domain.Invalid(field, fmt.Sprintf("must be at most %d per item", maxQuantity))
		}
		c.Add(item)
		c.ChangeQuantity(item.ID, req.Quantity-1)
	}
	return c, nil
}
