package domain

// RetailerResult holds the products one retailer returned for a query.
// Error is set when that retailer could not be queried; Products is then empty.
type RetailerResult struct {
	Retailer RetailerID `json:"retailer"`
	Products []Product  `json:"products"`
	Error    string     `json:"error,omitempty"`
}

// QueryDetail holds the per-retailer results for one shopping list line
type QueryDetail struct {
	Query   string           `json:"query"`
	Results []RetailerResult `json:"results"`
}

// RankingEntry is one position of the server-computed retailer ranking
type RankingEntry struct {
	Retailer RetailerID `json:"retailer"`
}

// CatalogResponse is the immutable result of a list search
type CatalogResponse struct {
	Items   []string       `json:"items"`
	Detail  []QueryDetail  `json:"detail"`
	Ranking []RankingEntry `json:"ranking"`
}

// ItemResponse is the result of a single item search
type ItemResponse struct {
	Results []RetailerResult `json:"results"`
}

// ItemRequest represents a single item search against the search service
type ItemRequest struct {
	Query     string       `json:"query"`
	Limit     int          `json:"limit,omitempty"`
	Retailers []RetailerID `json:"retailers"`
}

// ListRequest represents a shopping list search against the search service
type ListRequest struct {
	Items     []string     `json:"items"`
	Limit     int          `json:"limit,omitempty"`
	Retailers []RetailerID `json:"retailers"`
}
