package usecase

import "github.com/preciosya/backend/internal/domain"

// Overrides is an immutable snapshot of the products a user picked instead
// of the default match. The zero value is an empty snapshot.
type Overrides struct {
	entries map[domain.OverrideKey]string
}

// NewOverrides returns an empty override snapshot
func NewOverrides() Overrides {
	return Overrides{}
}

// Get returns the overriding product id for (retailer, query).
// ok is false when the default product is in effect.
func (o Overrides) Get(retailer domain.RetailerID, query string) (string, bool) {
	id, ok := o.entries[domain.NewOverrideKey(retailer, query)]
	return id, ok
}

// With returns a new snapshot with (retailer, query) mapped to productID.
// The receiver is left untouched.
func (o Overrides) With(retailer domain.RetailerID, query string, productID string) Overrides {
	next := make(map[domain.OverrideKey]string, len(o.entries)+1)
	for k, v := range o.entries {
		next[k] = v
	}
	next[domain.NewOverrideKey(retailer, query)] = productID
	return Overrides{entries: next}
}

// Len returns the number of overridden list lines
func (o Overrides) Len() int {
	return len(o.entries)
}

// Map renders the snapshot keyed by "retailer::query"
func (o Overrides) Map() map[string]string {
	out := make(map[string]string, len(o.entries))
	for k, v := range o.entries {
		out[k.String()] = v
	}
	return out
}
