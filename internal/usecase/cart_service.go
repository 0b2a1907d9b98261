package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/preciosya/backend/internal/domain"
)

// cartStorageKey is the key-value entry holding the serialized cart
const cartStorageKey = "cart"

// otherRetailerGroup groups cart entries whose product has no retailer
const otherRetailerGroup = "Otros"

// CartGroup is a slice of the cart belonging to one retailer
type CartGroup struct {
	Source  string             `json:"source"`
	Entries []domain.CartEntry `json:"entries"`
	Units   int                `json:"units"`
	Total   float64            `json:"total"`
}

// CartService owns the process-wide cart. Every mutation derives a new
// snapshot and writes it to the key-value store before returning.
type CartService struct {
	mu     sync.Mutex
	state  *Store[domain.CartState]
	kv     domain.KeyValueStore
	logger *slog.Logger
}

// NewCartService loads the persisted cart from kv. A missing or unreadable
// entry starts an empty cart.
func NewCartService(ctx context.Context, kv domain.KeyValueStore, logger *slog.Logger) (*CartService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	initial := domain.CartState{}
	raw, err := kv.Get(ctx, cartStorageKey)
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
	case err != nil:
		return nil, fmt.Errorf("load cart: %w", err)
	default:
		if err := json.Unmarshal(raw, &initial); err != nil {
			logger.Warn("discarding unreadable cart", slog.Any("error", err))
			initial = domain.CartState{}
		}
		for id, entry := range initial {
			if entry.Qty = domain.ClampQty(entry.Qty); entry.Qty == 0 {
				delete(initial, id)
				continue
			}
			initial[id] = entry
		}
	}

	logger.Info("cart loaded", slog.Int("entries", len(initial)))

	return &CartService{
		state:  NewStore(initial),
		kv:     kv,
		logger: logger,
	}, nil
}

// Snapshot returns the current cart. Callers must not modify it.
func (s *CartService) Snapshot() domain.CartState {
	return s.state.Get()
}

// Subscribe registers fn for cart changes
func (s *CartService) Subscribe(fn func(domain.CartState)) func() {
	return s.state.Subscribe(fn)
}

// Qty returns the quantity of id in the cart
func (s *CartService) Qty(id string) int {
	return s.state.Get().Qty(id)
}

// Count returns the number of distinct products in the cart
func (s *CartService) Count() int {
	return len(s.state.Get())
}

// Units returns the sum of all quantities
func (s *CartService) Units() int {
	units := 0
	for _, entry := range s.state.Get() {
		units += entry.Qty
	}
	return units
}

// Total returns the sum of price times quantity
func (s *CartService) Total() float64 {
	total := 0.0
	for _, entry := range s.state.Get() {
		total += entry.Product.PriceValue() * float64(entry.Qty)
	}
	return total
}

// Groups splits the cart by retailer, sorted by retailer name
func (s *CartService) Groups() []CartGroup {
	byRetailer := make(map[string]*CartGroup)
	for _, entry := range s.state.Get() {
		source := entry.Product.Retailer
		if source == "" {
			source = otherRetailerGroup
		}
		group, ok := byRetailer[source]
		if !ok {
			group = &CartGroup{Source: source}
			byRetailer[source] = group
		}
		group.Entries = append(group.Entries, entry)
		group.Units += entry.Qty
		group.Total += entry.Product.PriceValue() * float64(entry.Qty)
	}

	groups := make([]CartGroup, 0, len(byRetailer))
	for _, group := range byRetailer {
		sort.Slice(group.Entries, func(i, j int) bool {
			a, b := group.Entries[i].Product, group.Entries[j].Product
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.Key() < b.Key()
		})
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Source < groups[j].Source
	})
	return groups
}

// AddOne increments the quantity of product, up to the maximum
func (s *CartService) AddOne(ctx context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := product.Key()
	cart := s.state.Get()
	next := domain.ClampQty(cart.Qty(id) + 1)
	if next == cart.Qty(id) {
		return nil
	}

	updated := cart.Clone()
	updated[id] = domain.CartEntry{Product: product, Qty: next}
	return s.commit(ctx, updated)
}

// RemoveOne decrements the quantity of id, removing the entry at zero
func (s *CartService) RemoveOne(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state.Get()
	entry, ok := cart[id]
	if !ok {
		return nil
	}

	updated := cart.Clone()
	if next := domain.ClampQty(entry.Qty - 1); next == 0 {
		delete(updated, id)
	} else {
		entry.Qty = next
		updated[id] = entry
	}
	return s.commit(ctx, updated)
}

// SetQty sets the quantity of product, clamped; zero removes the entry
func (s *CartService) SetQty(ctx context.Context, product domain.Product, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := product.Key()
	cart := s.state.Get()
	next := domain.ClampQty(qty)
	if next == 0 {
		if _, ok := cart[id]; !ok {
			return nil
		}
		updated := cart.Clone()
		delete(updated, id)
		return s.commit(ctx, updated)
	}

	updated := cart.Clone()
	updated[id] = domain.CartEntry{Product: product, Qty: next}
	return s.commit(ctx, updated)
}

// UpdateQty sets the quantity of an entry already in the cart.
// It reports false when id is not in the cart.
func (s *CartService) UpdateQty(ctx context.Context, id string, qty int) (bool, error) {
	entry, ok := s.state.Get()[id]
	if !ok {
		return false, nil
	}
	return true, s.SetQty(ctx, entry.Product, qty)
}

// RemoveItem deletes the entry for id whatever its quantity
func (s *CartService) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.state.Get()
	if _, ok := cart[id]; !ok {
		return nil
	}
	updated := cart.Clone()
	delete(updated, id)
	return s.commit(ctx, updated)
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, domain.CartState{})
}

// commit publishes the new snapshot and persists it. The in-memory cart
// stays authoritative when the write fails.
func (s *CartService) commit(ctx context.Context, next domain.CartState) error {
	s.state.Set(next)

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, cartStorageKey, data); err != nil {
		s.logger.Error("cart persistence failed", slog.Any("error", err))
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
