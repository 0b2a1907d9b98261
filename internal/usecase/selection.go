package usecase

import (
	"slices"
	"strings"

	"github.com/preciosya/backend/internal/domain"
)

// UnnamedQuery labels a result line whose query came back blank
const UnnamedQuery = "Ítem sin nombre"

// SelectedItem pairs a shopping list line with the product chosen for it
type SelectedItem struct {
	Query   string         `json:"query"`
	Product domain.Product `json:"product"`
}

// RetailerSelection is what buying the whole list at one retailer looks like
type RetailerSelection struct {
	Items   []SelectedItem `json:"items"`
	Missing []string       `json:"missing"`
	Total   float64        `json:"total"`
}

// Products returns the chosen products in list order
func (s RetailerSelection) Products() []domain.Product {
	out := make([]domain.Product, 0, len(s.Items))
	for _, item := range s.Items {
		out = append(out, item.Product)
	}
	return out
}

// PickChosenProduct resolves which candidate is in effect. The candidate whose
// key equals chosenID wins; otherwise, including for stale ids, the first
// candidate is the default. ok is false when there are no candidates.
func PickChosenProduct(products []domain.Product, chosenID string) (domain.Product, bool) {
	if len(products) == 0 {
		return domain.Product{}, false
	}
	if chosenID != "" {
		for _, p := range products {
			if p.Key() == chosenID {
				return p, true
			}
		}
	}
	return products[0], true
}

// BuildRetailerSelection walks the catalog in list order and picks one
// product per query for retailer, honouring overrides. Queries with no
// candidates are reported once in Missing. A product already picked for an
// earlier query is not emitted twice and does not count twice in Total.
func BuildRetailerSelection(
	catalog *domain.CatalogResponse,
	retailer domain.RetailerID,
	overrides Overrides,
) RetailerSelection {
	selection := RetailerSelection{
		Items:   []SelectedItem{},
		Missing: []string{},
	}
	if catalog == nil {
		return selection
	}

	seenProducts := make(map[string]bool)
	seenMissing := make(map[string]bool)
	covered := make(map[string]bool)

	addMissing := func(query string) {
		if seenMissing[query] {
			return
		}
		seenMissing[query] = true
		selection.Missing = append(selection.Missing, query)
	}

	for _, detail := range catalog.Detail {
		query := detailQuery(detail)
		covered[query] = true

		chosenID, _ := overrides.Get(retailer, query)
		chosen, ok := PickChosenProduct(retailerProducts(detail, retailer), chosenID)
		if !ok {
			addMissing(query)
			continue
		}

		key := chosen.Key()
		if seenProducts[key] {
			continue
		}
		seenProducts[key] = true

		selection.Items = append(selection.Items, SelectedItem{Query: query, Product: chosen})
		selection.Total += chosen.PriceValue()
	}

	// Listed queries the service returned no detail for have no products anywhere
	for _, item := range catalog.Items {
		query := strings.TrimSpace(item)
		if query == "" || covered[query] {
			continue
		}
		addMissing(query)
	}

	return selection
}

// OptionsFor returns the candidates retailer offered for query.
// The returned slice is a copy.
func OptionsFor(catalog *domain.CatalogResponse, retailer domain.RetailerID, query string) []domain.Product {
	if catalog == nil {
		return []domain.Product{}
	}
	query = strings.TrimSpace(query)
	for _, detail := range catalog.Detail {
		if detailQuery(detail) == query {
			return slices.Clone(retailerProducts(detail, retailer))
		}
	}
	return []domain.Product{}
}

// DefaultProductID returns the key of the first candidate, or "" when there is none
func DefaultProductID(catalog *domain.CatalogResponse, retailer domain.RetailerID, query string) string {
	options := OptionsFor(catalog, retailer, query)
	if len(options) == 0 {
		return ""
	}
	return options[0].Key()
}

func detailQuery(detail domain.QueryDetail) string {
	query := strings.TrimSpace(detail.Query)
	if query == "" {
		return UnnamedQuery
	}
	return query
}

func retailerProducts(detail domain.QueryDetail, retailer domain.RetailerID) []domain.Product {
	for _, result := range detail.Results {
		if result.Retailer == retailer {
			return result.Products
		}
	}
	return nil
}
