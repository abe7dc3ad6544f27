package cart

import (
	"testing"

	"storefront/internal/model"
)

var (
	mug   = model.Product{ID: 1, Title: "Mug", Price: 999, Category: "kitchen"}
	plate = model.Product{ID: 2, Title: "Plate", Price: 500, Category: "kitchen"}
)

func TestAddSameProductMergesLines(t *testing.T) {
	var c Cart
	c.Add(mug)
	c.Add(mug)

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1", len(lines))
	}
	if lines[0].ProductID != 1 {
		t.Errorf("ProductID = %d, want 1", lines[0].ProductID)
	}
	if lines[0].Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", lines[0].Quantity)
	}
}

func TestAddDistinctProductsAppendLines(t *testing.T) {
	var c Cart
	c.Add(mug)
	c.Add(plate)
	c.Add(mug)

	lines := c.Lines()
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	// Insertion order is preserved
	if lines[0].ProductID != 1 || lines[1].ProductID != 2 {
		t.Errorf("line order = [%d, %d], want [1, 2]", lines[0].ProductID, lines[1].ProductID)
	}
	if lines[0].Quantity != 2 || lines[1].Quantity != 1 {
		t.Errorf("quantities = [%d, %d], want [2, 1]", lines[0].Quantity, lines[1].Quantity)
	}
}

func TestSubtotal(t *testing.T) {
	var c Cart

	if c.Subtotal() != 0 {
		t.Errorf("empty Subtotal() = %d, want 0", c.Subtotal())
	}

	// $10 item ×2 plus $5 item ×1 → $25.00
	ten := model.Product{ID: 10, Title: "Ten", Price: 1000}
	five := model.Product{ID: 11, Title: "Five", Price: 500}
	c.Add(ten)
	c.Add(ten)
	c.Add(five)

	if got := c.Subtotal(); got != 2500 {
		t.Errorf("Subtotal() = %d, want 2500", got)
	}
	if model.FormatCents(c.Subtotal()) != "$25.00" {
		t.Errorf("formatted subtotal = %s, want $25.00", model.FormatCents(c.Subtotal()))
	}
}

func TestLineCapturesProductData(t *testing.T) {
	var c Cart
	c.Add(mug)

	line := c.Lines()[0]
	if line.Title != "Mug" {
		t.Errorf("Title = %s, want Mug", line.Title)
	}
	if line.Price != 999 {
		t.Errorf("Price = %d, want 999", line.Price)
	}
}

func TestLinesReturnsCopy(t *testing.T) {
	var c Cart
	c.Add(mug)

	lines := c.Lines()
	lines[0].Quantity = 99

	if c.Lines()[0].Quantity != 1 {
		t.Error("mutating Lines() result leaked into the cart")
	}
}

func TestUnitsAndEmpty(t *testing.T) {
	var c Cart
	if !c.Empty() {
		t.Error("new cart Empty() = false, want true")
	}
	if c.Units() != 0 {
		t.Errorf("Units() = %d, want 0", c.Units())
	}

	c.Add(mug)
	c.Add(mug)
	c.Add(plate)

	if c.Empty() {
		t.Error("Empty() = true after adds, want false")
	}
	if c.Units() != 3 {
		t.Errorf("Units() = %d, want 3", c.Units())
	}
}

func TestClear(t *testing.T) {
	var c Cart
	c.Add(mug)
	c.Add(plate)

	c.Clear()

	if !c.Empty() {
		t.Error("Empty() = false after Clear(), want true")
	}
	if c.Subtotal() != 0 {
		t.Errorf("Subtotal() = %d after Clear(), want 0", c.Subtotal())
	}
}
