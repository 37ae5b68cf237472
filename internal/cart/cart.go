package cart

import (
	"github.com/shopspring/decimal"

	"github.com/jtrevino/storefront-backend/pkg/db/models"
)

// Cart is the session cart: product id (string form) mapped to quantity.
// It is an explicit value object so checkout can be handed a snapshot
// instead of reading ambient session state.
type Cart map[string]int

// New returns an empty cart.
func New() Cart {
	return Cart{}
}

// Add increments the stored quantity for the product, creating the entry if
// absent. Quantities below one count as a single unit.
func (c Cart) Add(productID string, qty int) {
	if productID == "" {
		return
	}
	if qty < 1 {
		qty = 1
	}
	c[productID] += qty
}

// Update sets the quantity directly; zero or negative removes the entry.
func (c Cart) Update(productID string, qty int) {
	if productID == "" {
		return
	}
	if qty <= 0 {
		delete(c, productID)
		return
	}
	c[productID] = qty
}

// Remove deletes the entry unconditionally. Absent entries are not an error.
func (c Cart) Remove(productID string) {
	delete(c, productID)
}

// Quantity returns the stored quantity, zero when absent.
func (c Cart) Quantity(productID string) int {
	return c[productID]
}

// IsEmpty reports whether the cart holds no entries.
func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// Clone returns an independent copy of the cart.
func (c Cart) Clone() Cart {
	copied := make(Cart, len(c))
	for id, qty := range c {
		copied[id] = qty
	}
	return copied
}

// Total sums price x quantity over entries whose product id resolves in the
// lookup. Entries referencing a missing product contribute zero; callers that
// need to surface those use MissingProducts.
func Total(c Cart, products map[string]models.Product) decimal.Decimal {
	total := decimal.Zero
	for id, qty := range c {
		product, ok := products[id]
		if !ok {
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// MissingProducts returns the cart entries that do not resolve in the lookup,
// so views can flag unavailable lines instead of silently dropping them.
func MissingProducts(c Cart, products map[string]models.Product) []string {
	var missing []string
	for id := range c {
		if _, ok := products[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
