package retailers

import (
	"strings"

	"github.com/preciosya/backend/internal/domain"
)

// wireRetailerResult is a retailer entry as sent by the search service.
// Retailer names are free text until normalized.
type wireRetailerResult struct {
	Retailer string           `json:"retailer"`
	Products []domain.Product `json:"products"`
	Error    string           `json:"error,omitempty"`
}

type wireItemResponse struct {
	Results []wireRetailerResult `json:"results"`
}

type wireQueryDetail struct {
	Query   string               `json:"query"`
	Results []wireRetailerResult `json:"results"`
}

type wireRankingEntry struct {
	Retailer string `json:"retailer"`
}

type wireListResponse struct {
	Items   []string           `json:"items"`
	Detail  []wireQueryDetail  `json:"detail"`
	Ranking []wireRankingEntry `json:"ranking"`
}

type wireError struct {
	Message string `json:"message"`
}

// MapItemResponse converts a single item search response to the domain model
func MapItemResponse(w *wireItemResponse) *domain.ItemResponse {
	return &domain.ItemResponse{Results: mapResults(w.Results)}
}

// MapListResponse converts a list search response to the domain model.
// Every retailer name is normalized and missing slices become empty.
func MapListResponse(w *wireListResponse) *domain.CatalogResponse {
	resp := &domain.CatalogResponse{
		Items:   make([]string, 0, len(w.Items)),
		Detail:  make([]domain.QueryDetail, 0, len(w.Detail)),
		Ranking: make([]domain.RankingEntry, 0, len(w.Ranking)),
	}

	for _, item := range w.Items {
		resp.Items = append(resp.Items, strings.TrimSpace(item))
	}
	for _, d := range w.Detail {
		resp.Detail = append(resp.Detail, domain.QueryDetail{
			Query:   d.Query,
			Results: mapResults(d.Results),
		})
	}
	for _, r := range w.Ranking {
		resp.Ranking = append(resp.Ranking, domain.RankingEntry{
			Retailer: domain.NormalizeRetailer(r.Retailer),
		})
	}
	return resp
}

// mapResults normalizes retailer names. A retailer that reported an error is
// kept with no products.
func mapResults(results []wireRetailerResult) []domain.RetailerResult {
	out := make([]domain.RetailerResult, 0, len(results))
	for _, r := range results {
		products := r.Products
		if products == nil || r.Error != "" {
			products = []domain.Product{}
		}
		out = append(out, domain.RetailerResult{
			Retailer: domain.NormalizeRetailer(r.Retailer),
			Products: products,
			Error:    r.Error,
		})
	}
	return out
}
