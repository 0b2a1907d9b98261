package usecase

import (
	"context"
	"fmt"

	"github.com/preciosya/backend/internal/domain"
)

// PickerState is the state of the alternative picker
type PickerState int

const (
	// PickerIdle means no picker is open
	PickerIdle PickerState = iota
	// PickerOpen means alternatives for one (retailer, query) are showing
	PickerOpen
)

func (s PickerState) String() string {
	if s == PickerOpen {
		return "open"
	}
	return "idle"
}

// CartEditor is the part of the cart the picker needs to reconcile overrides
type CartEditor interface {
	Qty(id string) int
	RemoveItem(ctx context.Context, id string) error
}

// OverrideSession drives the alternative picker: opening it for one
// retailer and list line, tracking the highlighted candidate and committing
// it as an override. Calls whose preconditions do not hold are ignored.
type OverrideSession struct {
	catalog   *Store[*domain.CatalogResponse]
	overrides *Store[Overrides]
	cart      CartEditor

	state       PickerState
	retailer    domain.RetailerID
	query       string
	highlighted string
}

// NewOverrideSession creates an idle picker over the given stores
func NewOverrideSession(
	catalog *Store[*domain.CatalogResponse],
	overrides *Store[Overrides],
	cart CartEditor,
) *OverrideSession {
	return &OverrideSession{
		catalog:   catalog,
		overrides: overrides,
		cart:      cart,
	}
}

// State returns the picker state
func (s *OverrideSession) State() PickerState {
	return s.state
}

// Target returns the (retailer, query) the picker was last opened for
func (s *OverrideSession) Target() (domain.RetailerID, string) {
	return s.retailer, s.query
}

// Highlighted returns the highlighted candidate id; ok is false when none is set
func (s *OverrideSession) Highlighted() (string, bool) {
	return s.highlighted, s.highlighted != ""
}

// Options returns the live candidate list for the current target
func (s *OverrideSession) Options() []domain.Product {
	if s.retailer == "" || s.query == "" {
		return []domain.Product{}
	}
	return OptionsFor(s.catalog.Get(), s.retailer, s.query)
}

// OpenOptions opens (or re-targets) the picker with current highlighted
func (s *OverrideSession) OpenOptions(retailer domain.RetailerID, query string, current domain.Product) {
	s.retailer = retailer
	s.query = query
	s.highlighted = current.Key()
	s.state = PickerOpen
}

// SetHighlighted changes the highlighted candidate while the picker is open
func (s *OverrideSession) SetHighlighted(id string) {
	if s.state != PickerOpen {
		return
	}
	s.highlighted = id
}

// Close dismisses the picker without touching the overrides
func (s *OverrideSession) Close() {
	s.state = PickerIdle
}

// ApplyOption commits the highlighted candidate as the override for the
// current target. Whatever product was in effect before (the previous
// override, or else the default) is removed from the cart entirely when
// present, whatever its quantity. The returned error only reports a cart
// persistence failure; the override is committed regardless.
func (s *OverrideSession) ApplyOption(ctx context.Context) error {
	if s.state != PickerOpen || s.highlighted == "" || s.retailer == "" || s.query == "" {
		return nil
	}
	catalog := s.catalog.Get()
	if catalog == nil {
		return nil
	}

	current := s.overrides.Get()
	previous, ok := current.Get(s.retailer, s.query)
	if !ok || previous == "" {
		previous = DefaultProductID(catalog, s.retailer, s.query)
	}

	var cartErr error
	if previous != "" && s.cart != nil && s.cart.Qty(previous) > 0 {
		if err := s.cart.RemoveItem(ctx, previous); err != nil {
			cartErr = fmt.Errorf("remove superseded product %q: %w", previous, err)
		}
	}

	s.overrides.Set(current.With(s.retailer, s.query, s.highlighted))
	s.state = PickerIdle

	return cartErr
}
