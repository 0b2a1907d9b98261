package usecase

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/preciosya/backend/internal/domain"
)

// SortOrder is the price ordering of single item results
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// ParseSortOrder returns the order named by s, defaulting to ascending
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDescending)) {
		return SortDescending
	}
	return SortAscending
}

// FlattenProducts concatenates the products of every retailer result
func FlattenProducts(results []domain.RetailerResult) []domain.Product {
	var products []domain.Product
	for _, r := range results {
		products = append(products, r.Products...)
	}
	if products == nil {
		return []domain.Product{}
	}
	return products
}

// SortProducts returns a copy of products ordered by price. Products without
// a price always go last; equal prices are ordered by name (Spanish collation).
func SortProducts(products []domain.Product, order SortOrder) []domain.Product {
	sorted := make([]domain.Product, len(products))
	copy(sorted, products)

	collator := collate.New(language.Spanish)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.HasPrice() != b.HasPrice() {
			return a.HasPrice()
		}
		if a.HasPrice() && a.PriceValue() != b.PriceValue() {
			if order == SortDescending {
				return a.PriceValue() > b.PriceValue()
			}
			return a.PriceValue() < b.PriceValue()
		}
		return collator.CompareString(a.Name, b.Name) < 0
	})
	return sorted
}

// BestPrice returns the lowest finite price among products
func BestPrice(products []domain.Product) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, p := range products {
		if !p.HasPrice() {
			continue
		}
		if !found || p.PriceValue() < best {
			best, found = p.PriceValue(), true
		}
	}
	return best, found
}

// FailedRetailers returns the retailers whose search reported an error
func FailedRetailers(results []domain.RetailerResult) []domain.RetailerID {
	failed := []domain.RetailerID{}
	for _, r := range results {
		if r.Error != "" {
			failed = append(failed, r.Retailer)
		}
	}
	return failed
}
