package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

// Line is one product in the cart. Quantity is always at least 1.
type Line struct {
	Product  smartsales.Product `json:"product"`
	Quantity int                `json:"quantity"`
}

// Subtotal returns price × quantity without rounding.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Decimal.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line per product id, in the order products were first added.
type Cart struct {
	Lines []Line `json:"lines"`
}

// TotalItems sums line quantities.
func (c Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums line subtotals exactly. Callers round only when rendering.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// CheckoutItems snapshots the cart as (product, quantity) pairs.
func (c Cart) CheckoutItems() []smartsales.CheckoutItem {
	items := make([]smartsales.CheckoutItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, smartsales.CheckoutItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}
	return items
}

func (c Cart) clone() Cart {
	if c.Lines == nil {
		return Cart{}
	}
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}

func (c Cart) indexOf(productID int64) int {
	for i, line := range c.Lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) add(product smartsales.Product) {
	if idx := c.indexOf(product.ID); idx >= 0 {
		c.Lines[idx].Quantity++
		return
	}
	c.Lines = append(c.Lines, Line{Product: product, Quantity: 1})
}

func (c *Cart) remove(productID int64) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
}

func (c *Cart) setQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		c.remove(productID)
		return
	}
	if idx := c.indexOf(productID); idx >= 0 {
		c.Lines[idx].Quantity = quantity
	}
}

// normalize drops lines a stale or hand-edited snapshot could carry: non-positive
// quantities and repeated product ids (the first occurrence wins).
func (c *Cart) normalize() {
	if len(c.Lines) == 0 {
		c.Lines = nil
		return
	}
	seen := make(map[int64]struct{}, len(c.Lines))
	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.Quantity <= 0 {
			continue
		}
		if _, dup := seen[line.Product.ID]; dup {
			continue
		}
		seen[line.Product.ID] = struct{}{}
		kept = append(kept, line)
	}
	c.Lines = kept
}
