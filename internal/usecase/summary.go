package usecase

import "github.com/preciosya/backend/internal/domain"

// Summary is the per-retailer headline of a list search
type Summary struct {
	Total   float64 `json:"total"`
	Missing int     `json:"missing"`
}

// ComputeSummaries builds the selection of every ranked retailer under the
// given overrides and records its total and missing count.
func ComputeSummaries(catalog *domain.CatalogResponse, overrides Overrides) map[domain.RetailerID]Summary {
	summaries := make(map[domain.RetailerID]Summary)
	if catalog == nil {
		return summaries
	}

	for _, entry := range catalog.Ranking {
		selection := BuildRetailerSelection(catalog, entry.Retailer, overrides)
		summaries[entry.Retailer] = Summary{
			Total:   selection.Total,
			Missing: len(selection.Missing),
		}
	}
	return summaries
}

// BestRetailer walks the ranking in order and keeps the retailer with the
// fewest missing items, breaking ties by the lower total. Full ties keep the
// earliest retailer. ok is false when the ranking is empty.
func BestRetailer(catalog *domain.CatalogResponse, summaries map[domain.RetailerID]Summary) (domain.RetailerID, bool) {
	if catalog == nil {
		return "", false
	}

	var (
		best     domain.RetailerID
		bestSum  Summary
		haveBest bool
	)
	for _, entry := range catalog.Ranking {
		s, ok := summaries[entry.Retailer]
		if !ok {
			s = Summary{Missing: len(catalog.Items)}
		}

		switch {
		case !haveBest:
			best, bestSum, haveBest = entry.Retailer, s, true
		case s.Missing < bestSum.Missing:
			best, bestSum = entry.Retailer, s
		case s.Missing == bestSum.Missing && s.Total < bestSum.Total:
			best, bestSum = entry.Retailer, s
		}
	}
	return best, haveBest
}
