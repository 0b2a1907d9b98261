package usecase

import (
	"context"
	"sync"

	"github.com/preciosya/backend/internal/domain"
)

const (
	retailerX = domain.RetailerDia
	retailerY = domain.RetailerCarrefour
	retailerZ = domain.RetailerJumbo
)

func newProduct(id string, price float64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "Producto " + id,
		Price:    domain.Float64Ptr(price),
		Retailer: "dia",
	}
}

func results(retailer domain.RetailerID, products ...domain.Product) domain.RetailerResult {
	if products == nil {
		products = []domain.Product{}
	}
	return domain.RetailerResult{Retailer: retailer, Products: products}
}

func detail(query string, rr ...domain.RetailerResult) domain.QueryDetail {
	return domain.QueryDetail{Query: query, Results: rr}
}

func ranking(retailers ...domain.RetailerID) []domain.RankingEntry {
	out := make([]domain.RankingEntry, 0, len(retailers))
	for _, r := range retailers {
		out = append(out, domain.RankingEntry{Retailer: r})
	}
	return out
}

// lecheCatalog offers two candidates for "leche" at retailerX
func lecheCatalog() *domain.CatalogResponse {
	return &domain.CatalogResponse{
		Items: []string{"leche"},
		Detail: []domain.QueryDetail{
			detail("leche", results(retailerX, newProduct("1", 100), newProduct("2", 150))),
		},
		Ranking: ranking(retailerX),
	}
}

// MockKeyValueStore is a mock implementation of domain.KeyValueStore
type MockKeyValueStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	getError error
	setError error
	setCalls int
}

func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{data: make(map[string][]byte)}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return v, nil
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockKeyValueStore) Close() error {
	return nil
}

// MockCartEditor is a mock implementation of CartEditor
type MockCartEditor struct {
	qty       map[string]int
	removed   []string
	removeErr error
}

func NewMockCartEditor(qty map[string]int) *MockCartEditor {
	if qty == nil {
		qty = map[string]int{}
	}
	return &MockCartEditor{qty: qty}
}

func (m *MockCartEditor) Qty(id string) int {
	return m.qty[id]
}

func (m *MockCartEditor) RemoveItem(ctx context.Context, id string) error {
	m.removed = append(m.removed, id)
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.qty, id)
	return nil
}
