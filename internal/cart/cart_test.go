package cart

import (
	"errors"
	"testing"

	"foodtruck-order-service/internal/domain"
)

var (
	burger = domain.MenuItem{ID: "burger", Name: "Burger", Price: 450, Available: true}
	fries  = domain.MenuItem{ID: "fries", Name: "Frites", Price: 300, Available: true}
	soda   = domain.MenuItem{ID: "soda", Name: "Soda", Price: 250, Available: false}
)

func TestAddIncrementsExistingLine(t *testing.T) {
	c := New()
	c.Add(burger)
	c.Add(burger)
	c.Add(burger)

	lines := c.Lines()
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("expected one line with quantity 3, got %#v", lines)
	}
	if c.Total() != 1350 {
		t.Fatalf("expected 1350, got %d", c.Total())
	}
}

func TestChangeQuantityRemovesBelowOne(t *testing.T) {
	c := New()
	c.Add(burger)
	c.Add(fries)
	c.ChangeQuantity("burger", 2)
	if c.Lines()[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", c.Lines()[0].Quantity)
	}

	c.ChangeQuantity("burger", -3)
	lines := c.Lines()
	if len(lines) != 1 || lines[0].Item.ID != "fries" {
		t.Fatalf("expected only fries left, got %#v", lines)
	}

	c.ChangeQuantity("unknown", 5)
	if c.Len() != 1 {
		t.Fatalf("unknown id must be ignored")
	}
}

func TestTotalEqualsSumOfLines(t *testing.T) {
	c := New()
	c.Add(fries)
	c.Add(burger)
	c.ChangeQuantity("fries", 1)

	var sum domain.Money
	for _, line := range c.Lines() {
		if line.Quantity < 1 {
			t.Fatalf("quantity below one in cart")
		}
		sum += line.Item.Price.Mul(line.Quantity)
	}
	if c.Total() != sum || sum != 1050 {
		t.Fatalf("expected 1050, got total %d sum %d", c.Total(), sum)
	}
	if c.Lines()[0].Item.ID != "fries" {
		t.Fatalf("expected insertion order kept")
	}
}

func TestCheckedTotalDetectsOverflow(t *testing.T) {
	c := New()
	c.Add(burger)
	c.ChangeQuantity("burger", 2)
	if total, ok := c.CheckedTotal(); !ok || total != 1350 {
		t.Fatalf("expected 1350, got %d ok=%v", total, ok)
	}

	c.ChangeQuantity("burger", 1<<61)
	if _, ok := c.CheckedTotal(); ok {
		t.Fatalf("expected overflow to be reported")
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	c.Add(burger)
	c.Add(fries)
	c.Remove("burger")
	if c.Len() != 1 {
		t.Fatalf("expected one line, got %d", c.Len())
	}
	c.Clear()
	if !c.IsEmpty() || c.Total() != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestLinesReturnsCopy(t *testing.T) {
	c := New()
	c.Add(burger)
	lines := c.Lines()
	lines[0].Quantity = 99
	if c.Lines()[0].Quantity != 1 {
		t.Fatalf("cart mutated through Lines copy")
	}
}

func TestFromRequest(t *testing.T) {
	catalog := map[string]domain.MenuItem{"burger": burger, "fries": fries, "soda": soda}

	c, err := FromRequest([]RequestItem{{MenuItemID: "burger", Quantity: 2}, {MenuItemID: "fries", Quantity: 1}, {MenuItemID: "burger", Quantity: 1}}, catalog, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 || c.Total() != 1650 {
		t.Fatalf("expected 2 lines totalling 1650, got %d lines %d", c.Len(), c.Total())
	}

	cases := []struct {
		name  string
		items []RequestItem
		field string
	}{
		{"unknown", []RequestItem{{MenuItemID: "pizza", Quantity: 1}}, "items"},
		{"unavailable", []RequestItem{{MenuItemID: "soda", Quantity: 1}}, "items"},
		{"zero quantity", []RequestItem{{MenuItemID: "burger", Quantity: 0}}, "items[0].quantity"},
		{"above line cap", []RequestItem{{MenuItemID: "burger", Quantity: 100}}, "items[0].quantity"},
		{"quantity that would wrap the total", []RequestItem{{MenuItemID: "burger", Quantity: 1 << 61}}, "items[0].quantity"},
		{"repeated lines above cap", []RequestItem{{MenuItemID: "fries", Quantity: 60}, {MenuItemID: "fries", Quantity: 40}}, "items[1].quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromRequest(tc.items, catalog, 0)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tc.field {
				t.Fatalf("expected validation error on %s, got %v", tc.field, err)
			}
		})
	}
}
