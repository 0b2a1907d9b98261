package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/preciosya/backend/internal/domain"
)

// ListSearcher performs list searches for a session
type ListSearcher interface {
	SearchList(ctx context.Context, retailers []domain.RetailerID, items []string, limit int) (*domain.CatalogResponse, error)
}

// SessionCart is the cart as seen by a shopping session
type SessionCart interface {
	CartEditor
	AddOne(ctx context.Context, product domain.Product) error
}

// RetailerView is one row of the list comparison
type RetailerView struct {
	Retailer       domain.RetailerID   `json:"retailer"`
	Meta           domain.RetailerMeta `json:"meta"`
	IsBest         bool                `json:"isBest"`
	Selection      RetailerSelection   `json:"selection"`
	Total          float64             `json:"total"`
	TotalFormatted string              `json:"totalFormatted"`
	Missing        int                 `json:"missing"`
	Matched        int                 `json:"matched"`
	ItemCount      int                 `json:"itemCount"`
	InCart         int                 `json:"inCart"`
	AllInCart      bool                `json:"allInCart"`
}

// PickerView is the state of the alternative picker
type PickerView struct {
	State       string            `json:"state"`
	Retailer    domain.RetailerID `json:"retailer,omitempty"`
	Query       string            `json:"query,omitempty"`
	Highlighted string            `json:"highlighted,omitempty"`
	Options     []domain.Product  `json:"options"`
}

// SessionView is everything a client needs to render a session
type SessionView struct {
	ID         string              `json:"id"`
	Retailers  []domain.RetailerID `json:"retailers"`
	HasResults bool                `json:"hasResults"`
	Items      []string            `json:"items"`
	Best       *domain.RetailerID  `json:"best"`
	Rows       []RetailerView      `json:"rows"`
	Overrides  map[string]string   `json:"overrides"`
	Picker     PickerView          `json:"picker"`
}

// ShoppingSession is one user's list-shopping state: enabled retailers, the
// current catalog, overrides and the picker. Replacing the catalog clears
// the overrides and closes the picker.
type ShoppingSession struct {
	id   string
	mu   sync.Mutex
	cart SessionCart

	retailers []domain.RetailerID
	catalog   *Store[*domain.CatalogResponse]
	overrides *Store[Overrides]
	picker    *OverrideSession

	searchGen    uint64
	cancelSearch context.CancelFunc
	lastUsed     time.Time
}

// NewShoppingSession creates a session with the given retailers enabled
func NewShoppingSession(id string, cart SessionCart, retailers []domain.RetailerID) *ShoppingSession {
	catalog := NewStore[*domain.CatalogResponse](nil)
	overrides := NewStore(NewOverrides())

	s := &ShoppingSession{
		id:        id,
		cart:      cart,
		retailers: uniqueRetailers(retailers),
		catalog:   catalog,
		overrides: overrides,
		picker:    NewOverrideSession(catalog, overrides, cart),
		lastUsed:  time.Now(),
	}

	// Product ids are not stable across searches
	catalog.Subscribe(func(*domain.CatalogResponse) {
		overrides.Set(NewOverrides())
		s.picker.Close()
	})

	return s
}

// ID returns the session identifier
func (s *ShoppingSession) ID() string {
	return s.id
}

// Retailers returns the enabled retailers
func (s *ShoppingSession) Retailers() []domain.RetailerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.retailers)
}

// Catalog returns the current catalog, nil before the first list search
func (s *ShoppingSession) Catalog() *domain.CatalogResponse {
	return s.catalog.Get()
}

// Overrides returns the current override snapshot
func (s *ShoppingSession) Overrides() Overrides {
	return s.overrides.Get()
}

// ToggleRetailer enables or disables one retailer
func (s *ShoppingSession) ToggleRetailer(retailer domain.RetailerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.retailers, retailer); i >= 0 {
		s.retailers = slices.Delete(slices.Clone(s.retailers), i, i+1)
	} else {
		s.retailers = append(slices.Clone(s.retailers), retailer)
	}
	s.afterRetailerChangeLocked()
}

// SetRetailers replaces the enabled retailer set
func (s *ShoppingSession) SetRetailers(retailers []domain.RetailerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.retailers = uniqueRetailers(retailers)
	s.afterRetailerChangeLocked()
}

// afterRetailerChangeLocked invalidates search state once no retailer is left
func (s *ShoppingSession) afterRetailerChangeLocked() {
	if len(s.retailers) == 0 {
		s.resetLocked()
	}
}

// Reset cancels any in-flight search and drops the catalog
func (s *ShoppingSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *ShoppingSession) resetLocked() {
	s.searchGen++
	if s.cancelSearch != nil {
		s.cancelSearch()
		s.cancelSearch = nil
	}
	s.catalog.Set(nil)
}

// Search runs a list search with the enabled retailers and installs the
// result as the session catalog. A failed search leaves no catalog behind.
// A search replaced by a newer one or by a reset returns ErrSearchSuperseded.
func (s *ShoppingSession) Search(ctx context.Context, searcher ListSearcher, items []string, limit int) (*domain.CatalogResponse, error) {
	s.mu.Lock()
	if len(s.retailers) == 0 {
		s.mu.Unlock()
		return nil, domain.ErrNoRetailers
	}
	if s.cancelSearch != nil {
		s.cancelSearch()
	}
	s.searchGen++
	gen := s.searchGen
	searchCtx, cancel := context.WithCancel(ctx)
	s.cancelSearch = cancel
	retailers := slices.Clone(s.retailers)
	s.mu.Unlock()

	defer cancel()
	resp, err := searcher.SearchList(searchCtx, retailers, items, limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.searchGen {
		return nil, domain.ErrSearchSuperseded
	}
	s.cancelSearch = nil

	if err != nil {
		s.catalog.Set(nil)
		return nil, err
	}
	s.catalog.Set(resp)
	return resp, nil
}

// ApplyCatalog installs resp as the session catalog
func (s *ShoppingSession) ApplyCatalog(resp *domain.CatalogResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.Set(resp)
}

// Selection returns the current selection for retailer
func (s *ShoppingSession) Selection(retailer domain.RetailerID) RetailerSelection {
	return BuildRetailerSelection(s.catalog.Get(), retailer, s.overrides.Get())
}

// OpenOptions opens the picker on (retailer, query) with productID highlighted.
// An empty productID highlights the product currently selected for query.
func (s *ShoppingSession) OpenOptions(retailer domain.RetailerID, query string, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog := s.catalog.Get()
	if catalog == nil {
		return domain.ErrNoCatalog
	}

	options := OptionsFor(catalog, retailer, query)
	if len(options) == 0 {
		return fmt.Errorf("%w: no options for %s %q", domain.ErrInvalidRequest, retailer, query)
	}

	current, ok := s.currentProductLocked(catalog, retailer, query, options, productID)
	if !ok {
		return fmt.Errorf("%w: unknown product %q", domain.ErrInvalidRequest, productID)
	}
	s.picker.OpenOptions(retailer, query, current)
	return nil
}

func (s *ShoppingSession) currentProductLocked(
	catalog *domain.CatalogResponse,
	retailer domain.RetailerID,
	query string,
	options []domain.Product,
	productID string,
) (domain.Product, bool) {
	if productID != "" {
		for _, p := range options {
			if p.Key() == productID {
				return p, true
			}
		}
		return domain.Product{}, false
	}
	chosenID, _ := s.overrides.Get().Get(retailer, query)
	return PickChosenProduct(options, chosenID)
}

// SetHighlighted changes the highlighted candidate of the open picker
func (s *ShoppingSession) SetHighlighted(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picker.SetHighlighted(productID)
}

// CloseOptions dismisses the picker
func (s *ShoppingSession) CloseOptions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picker.Close()
}

// ApplyOption commits the highlighted candidate
func (s *ShoppingSession) ApplyOption(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.picker.ApplyOption(ctx)
}

// ToggleRetailerCart adds every product of retailer's selection to the cart,
// or removes them all when they are all already there. It reports whether
// products were added.
func (s *ShoppingSession) ToggleRetailerCart(ctx context.Context, retailer domain.RetailerID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := BuildRetailerSelection(s.catalog.Get(), retailer, s.overrides.Get()).Products()
	if len(products) == 0 {
		return false, nil
	}

	if s.inCartLocked(products) == len(products) {
		for _, p := range products {
			if err := s.cart.RemoveItem(ctx, p.Key()); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	for _, p := range products {
		if err := s.cart.AddOne(ctx, p); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *ShoppingSession) inCartLocked(products []domain.Product) int {
	n := 0
	for _, p := range products {
		if s.cart.Qty(p.Key()) > 0 {
			n++
		}
	}
	return n
}

// View renders the session. Everything is recomputed from the catalog and
// the current overrides.
func (s *ShoppingSession) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog := s.catalog.Get()
	overrides := s.overrides.Get()

	view := SessionView{
		ID:        s.id,
		Retailers: slices.Clone(s.retailers),
		Items:     []string{},
		Rows:      []RetailerView{},
		Overrides: overrides.Map(),
		Picker:    s.pickerViewLocked(),
	}
	if catalog == nil {
		return view
	}

	view.HasResults = true
	view.Items = slices.Clone(catalog.Items)

	summaries := ComputeSummaries(catalog, overrides)
	best, hasBest := BestRetailer(catalog, summaries)
	if hasBest {
		view.Best = &best
	}

	for _, entry := range catalog.Ranking {
		selection := BuildRetailerSelection(catalog, entry.Retailer, overrides)
		summary := summaries[entry.Retailer]
		inCart := s.inCartLocked(selection.Products())

		view.Rows = append(view.Rows, RetailerView{
			Retailer:       entry.Retailer,
			Meta:           entry.Retailer.Meta(),
			IsBest:         hasBest && best == entry.Retailer && len(selection.Items) > 0,
			Selection:      selection,
			Total:          summary.Total,
			TotalFormatted: domain.FormatMoney(summary.Total),
			Missing:        summary.Missing,
			Matched:        len(catalog.Items) - summary.Missing,
			ItemCount:      len(catalog.Items),
			InCart:         inCart,
			AllInCart:      len(selection.Items) > 0 && inCart == len(selection.Items),
		})
	}
	return view
}

func (s *ShoppingSession) pickerViewLocked() PickerView {
	retailer, query := s.picker.Target()
	highlighted, _ := s.picker.Highlighted()
	pv := PickerView{
		State:   s.picker.State().String(),
		Options: []domain.Product{},
	}
	if s.picker.State() == PickerOpen {
		pv.Retailer = retailer
		pv.Query = query
		pv.Highlighted = highlighted
		pv.Options = s.picker.Options()
	}
	return pv
}

// Picker returns the picker state
func (s *ShoppingSession) Picker() PickerView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickerViewLocked()
}

func (s *ShoppingSession) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = now
}

func (s *ShoppingSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
