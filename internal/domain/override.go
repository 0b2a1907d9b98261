package domain

import "strings"

// OverrideKey identifies the list line of one retailer a user override applies to
type OverrideKey struct {
	Retailer RetailerID
	Query    string
}

// NewOverrideKey builds a key with the query trimmed
func NewOverrideKey(retailer RetailerID, query string) OverrideKey {
	return OverrideKey{Retailer: retailer, Query: strings.TrimSpace(query)}
}

// String renders the key as "retailer::query"
func (k OverrideKey) String() string {
	return string(k.Retailer) + "::" + k.Query
}
