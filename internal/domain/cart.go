package domain

// MaxCartQty is the largest quantity a cart entry may hold
const MaxCartQty = 10

// CartEntry is a product in the cart together with its quantity
type CartEntry struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// CartState maps a product key to its cart entry.
// Entries with a zero quantity are never stored.
type CartState map[string]CartEntry

// ClampQty limits a quantity to [0, MaxCartQty]
func ClampQty(qty int) int {
	if qty < 0 {
		return 0
	}
	if qty > MaxCartQty {
		return MaxCartQty
	}
	return qty
}

// Qty returns the quantity held for id, or 0
func (c CartState) Qty(id string) int {
	return c[id].Qty
}

// Clone returns a shallow copy of the cart
func (c CartState) Clone() CartState {
	next := make(CartState, len(c)+1)
	for k, v := range c {
		next[k] = v
	}
	return next
}
