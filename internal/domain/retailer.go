package domain

import (
	"fmt"
	"strings"
)

// RetailerID identifies one of the supported supermarket chains
type RetailerID string

// Supported retailers
const (
	RetailerDia       RetailerID = "dia"
	RetailerCarrefour RetailerID = "carrefour"
	RetailerJumbo     RetailerID = "jumbo"
	RetailerVea       RetailerID = "vea"
)

// Retailers lists every supported retailer in display order
var Retailers = []RetailerID{
	RetailerDia,
	RetailerCarrefour,
	RetailerJumbo,
	RetailerVea,
}

// RetailerMeta holds display information for a retailer
type RetailerMeta struct {
	ID    RetailerID `json:"id"`
	Label string     `json:"label"`
	Logo  string     `json:"logo"`
	Color string     `json:"color"`
}

var retailerMeta = map[RetailerID]RetailerMeta{
	RetailerDia:       {ID: RetailerDia, Label: "DIA", Logo: "/images/dia.png", Color: "red"},
	RetailerCarrefour: {ID: RetailerCarrefour, Label: "Carrefour", Logo: "/images/carrefour.png", Color: "blue"},
	RetailerJumbo:     {ID: RetailerJumbo, Label: "Jumbo", Logo: "/images/jumbo.png", Color: "green"},
	RetailerVea:       {ID: RetailerVea, Label: "Vea", Logo: "/images/vea.png", Color: "yellow"},
}

// Meta returns display metadata; unknown ids get the fallback retailer's metadata
func (r RetailerID) Meta() RetailerMeta {
	if m, ok := retailerMeta[r]; ok {
		return m
	}
	return retailerMeta[RetailerDia]
}

// IsKnown reports whether r is one of the supported retailers
func (r RetailerID) IsKnown() bool {
	_, ok := retailerMeta[r]
	return ok
}

// NormalizeRetailer maps a free-text retailer name to a RetailerID.
// Matching is case-insensitive by substring; anything unrecognized maps to dia.
func NormalizeRetailer(name string) RetailerID {
	t := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(t, "carrefour"):
		return RetailerCarrefour
	case strings.Contains(t, "jumbo"):
		return RetailerJumbo
	case strings.Contains(t, "vea"):
		return RetailerVea
	default:
		return RetailerDia
	}
}

// ParseRetailer strictly parses a retailer id supplied by a client
func ParseRetailer(s string) (RetailerID, error) {
	r := RetailerID(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRetailer, s)
	}
	return r, nil
}
