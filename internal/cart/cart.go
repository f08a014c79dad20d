package cart

import "github.com/shopspring/decimal"

// LineItem is one cart row: a dish id with the display name and unit
// price captured at add time. The price is a snapshot for the badge and
// sidebar; it is never sent at checkout, the server stays the price
// authority.
type LineItem struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Cart is an ordered list of line items, unique by dish id.
type Cart []LineItem

// Find returns the index of the line item for the given dish id, or -1.
func (c Cart) Find(id int) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Total is the sum of price×quantity over all line items, recomputed on
// every call rather than cached.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ItemCount is the badge number: the sum of quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, it := range c {
		n += it.Quantity
	}
	return n
}

// Clone returns an independent copy.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}
