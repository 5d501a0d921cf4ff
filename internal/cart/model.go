package cart

import (
	"github.com/shopspring/decimal"
)

// Product is the catalog data needed to put an item in the cart.
type Product struct {
	ID    uint
	Name  string
	Price decimal.Decimal
	Image string
}

// Line is one product in the basket. ProductID is unique within a cart.
type Line struct {
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  string          `json:"imageRef"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) valid() bool {
	return l.ProductID != 0 && l.Quantity >= 1 && !l.UnitPrice.IsNegative()
}

// State is an immutable view of the cart. ItemCount and Total are derived on every call.
type State struct {
	Lines []Line `json:"lines"`
}

// ItemCount is the sum of quantities.
func (s State) ItemCount() int {
	count := 0
	for _, line := range s.Lines {
		count += line.Quantity
	}
	return count
}

// Total is the sum of line subtotals.
func (s State) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart holds no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Find returns the line for productID.
func (s State) Find(productID uint) (Line, bool) {
	for _, line := range s.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return Line{}, false
}

func (s State) validate() bool {
	seen := make(map[uint]struct{}, len(s.Lines))
	for _, line := range s.Lines {
		if !line.valid() {
			return false
		}
		if _, dup := seen[line.ProductID]; dup {
			return false
		}
		seen[line.ProductID] = struct{}{}
	}
	return true
}

func cloneLines(lines []Line) []Line {
	if len(lines) == 0 {
		return []Line{}
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
