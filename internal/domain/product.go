package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Product represents a single retailer offer returned by the search service
type Product struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Price    *float64 `json:"price,omitempty"`
	Retailer string   `json:"retailer"`
	Link     string   `json:"link,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// UnmarshalJSON accepts ids encoded as strings or numbers and treats a
// missing or non-numeric price as absent.
func (p *Product) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID       json.RawMessage `json:"id"`
		Name     string          `json:"name"`
		Price    json.RawMessage `json:"price"`
		Retailer string          `json:"retailer"`
		Link     string          `json:"link"`
		Image    string          `json:"image"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*p = Product{
		ID:       decodeProductID(wire.ID),
		Name:     wire.Name,
		Price:    decodePrice(wire.Price),
		Retailer: wire.Retailer,
		Link:     wire.Link,
		Image:    wire.Image,
	}
	return nil
}

func decodeProductID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	// Numeric ids keep their literal form
	return string(raw)
}

func decodePrice(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var f float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	} else if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// HasID reports whether the search service supplied an identifier
func (p Product) HasID() bool {
	return p.ID != ""
}

// Key returns the identity used for deduplication, overrides and the cart:
// the product id when present, otherwise "retailer-name-price".
func (p Product) Key() string {
	if p.HasID() {
		return p.ID
	}
	price := ""
	if p.Price != nil {
		price = strconv.FormatFloat(*p.Price, 'f', -1, 64)
	}
	return p.Retailer + "-" + p.Name + "-" + price
}

// PriceValue returns the price, or 0 when it is absent or not finite
func (p Product) PriceValue() float64 {
	if p.Price == nil || math.IsNaN(*p.Price) || math.IsInf(*p.Price, 0) {
		return 0
	}
	return *p.Price
}

// HasPrice reports whether the product carries a usable price
func (p Product) HasPrice() bool {
	return p.Price != nil && !math.IsNaN(*p.Price) && !math.IsInf(*p.Price, 0)
}

// Float64Ptr is a convenience for building products with a price
func Float64Ptr(v float64) *float64 {
	return &v
}
