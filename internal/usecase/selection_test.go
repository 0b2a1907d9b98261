package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preciosya/backend/internal/domain"
)

func TestPickChosenProduct(t *testing.T) {
	a, b := newProduct("1", 10), newProduct("2", 20)

	tests := []struct {
		name     string
		products []domain.Product
		chosenID string
		wantID   string
		wantOK   bool
	}{
		{"no candidates", nil, "1", "", false},
		{"no override picks first", []domain.Product{a, b}, "", "1", true},
		{"override hit", []domain.Product{a, b}, "2", "2", true},
		{"stale override falls back to first", []domain.Product{a, b}, "999", "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickChosenProduct(tt.products, tt.chosenID)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestBuildRetailerSelection_Defaults(t *testing.T) {
	catalog := &domain.CatalogResponse{
		Items: []string{"leche", "pan", "arroz"},
		Detail: []domain.QueryDetail{
			detail("leche", results(retailerX, newProduct("1", 100), newProduct("2", 150))),
			detail("pan", results(retailerX, newProduct("3", 50))),
			detail("arroz", results(retailerX, newProduct("4", 70))),
		},
		Ranking: ranking(retailerX),
	}

	sel := BuildRetailerSelection(catalog, retailerX, NewOverrides())

	require.Len(t, sel.Items, 3)
	assert.Equal(t, "leche", sel.Items[0].Query)
	assert.Equal(t, "1", sel.Items[0].Product.ID)
	assert.Equal(t, "pan", sel.Items[1].Query)
	assert.Equal(t, "arroz", sel.Items[2].Query)
	assert.Empty(t, sel.Missing)
	assert.Equal(t, 220.0, sel.Total)
}

func TestBuildRetailerSelection_Deterministic(t *testing.T) {
	catalog := lecheCatalog()
	overrides := NewOverrides().With(retailerX, "leche", "2")

	first := BuildRetailerSelection(catalog, retailerX, overrides)
	second := BuildRetailerSelection(catalog, retailerX, overrides)

	assert.Equal(t, first, second)
}

func TestBuildRetailerSelection_OverridePrecedence(t *testing.T) {
	overrides := NewOverrides().With(retailerX, "leche", "2")

	sel := BuildRetailerSelection(lecheCatalog(), retailerX, overrides)

	require.Len(t, sel.Items, 1)
	assert.Equal(t, "2", sel.Items[0].Product.ID)
	assert.Equal(t, 150.0, sel.Total)
}

func TestBuildRetailerSelection_StaleOverrideFallsBack(t *testing.T) {
	overrides := NewOverrides().With(retailerX, "leche", "999")

	sel := BuildRetailerSelection(lecheCatalog(), retailerX, overrides)

	require.Len(t, sel.Items, 1)
	assert.Equal(t, "1", sel.Items[0].Product.ID)
	assert.Equal(t, 100.0, sel.Total)
}

func TestBuildRetailerSelection_OverrideForOtherRetailerIgnored(t *testing.T) {
	overrides := NewOverrides().With(retailerY, "leche", "2")

	sel := BuildRetailerSelection(lecheCatalog(), retailerX, overrides)

	assert.Equal(t, "1", sel.Items[0].Product.ID)
}

func TestBuildRetailerSelection_MissingDeduplicated(t *testing.T) {
	catalog := &domain.CatalogResponse{
		Items: []string{"leche", "yerba"},
		Detail: []domain.QueryDetail{
			detail("leche", results(retailerX)),
			detail("leche ", results(retailerX)),
			detail("yerba", results(retailerY, newProduct("9", 10))),
		},
		Ranking: ranking(retailerX),
	}

	sel := BuildRetailerSelection(catalog, retailerX, NewOverrides())

	assert.Equal(t, []string{"leche", "yerba"}, sel.Missing)
	assert.Empty(t, sel.Items)
	assert.Zero(t, sel.Total)
}

func TestBuildRetailerSelection_CrossQueryDedup(t *testing.T) {
	shared := newProduct("42", 300)
	catalog := &domain.CatalogResponse{
		Items: []string{"gaseosa", "coca cola"},
		Detail: []domain.QueryDetail{
			detail("gaseosa", results(retailerX, shared)),
			detail("coca cola", results(retailerX, shared, newProduct("43", 280))),
		},
		Ranking: ranking(retailerX),
	}

	sel := BuildRetailerSelection(catalog, retailerX, NewOverrides())

	require.Len(t, sel.Items, 1)
	assert.Equal(t, "42", sel.Items[0].Product.ID)
	assert.Equal(t, "gaseosa", sel.Items[0].Query)
	assert.Empty(t, sel.Missing)
	assert.Equal(t, 300.0, sel.Total)
}

func TestBuildRetailerSelection_SyntheticKeyDedup(t *testing.T) {
	noID := domain.Product{Name: "Pan", Retailer: "dia", Price: domain.Float64Ptr(50)}
	catalog := &domain.CatalogResponse{
		Items: []string{"pan", "pan lactal"},
		Detail: []domain.QueryDetail{
			detail("pan", results(retailerX, noID)),
			detail("pan lactal", results(retailerX, noID)),
		},
		Ranking: ranking(retailerX),
	}

	sel := BuildRetailerSelection(catalog, retailerX, NewOverrides())

	assert.Len(t, sel.Items, 1)
	assert.Equal(t, 50.0, sel.Total)
}

func TestBuildRetailerSelection_AbsentPriceCountsZero(t *testing.T) {
	catalog := &domain.CatalogResponse{
		Items: []string{"leche", "pan"},
		Detail: []domain.QueryDetail{
			detail("leche", results(retailerX, domain.Product{ID: "1", Name: "Leche"})),
			detail("pan", results(retailerX, newProduct("2", 80))),
		},
		Ranking: ranking(retailerX),
	}

	sel := BuildRetailerSelection(catalog, retailerX, NewOverrides())

	assert.Len(t, sel.Items, 2)
	assert.Equal(t, 80.0, sel.Total)
}

func TestBuildRetailerSelection_DegradesOnMissingData(t *testing.T) {
	t.Run("nil catalog", func(t *testing.T) {
		sel := BuildRetailerSelection(nil, retailerX, NewOverrides())
		assert.NotNil(t, sel.Items)
		assert.NotNil(t, sel.Missing)
		assert.Empty(t, sel.Items)
	})

	t.Run("retailer absent and errored retailer", func(t *testing.T) {
		catalog := &domain.CatalogResponse{
			Items: []string{"leche", "pan"},
			Detail: []domain.QueryDetail{
				detail("leche", results(retailerY, newProduct("1", 10))),
				detail("pan", domain.RetailerResult{Retailer: retailerX, Error: "timeout"}),
			},
		}
		sel := BuildRetailerSelection(catalog, retailerX, NewOverrides())
		assert.Equal(t, []string{"leche", "pan"}, sel.Missing)
	})

	t.Run("listed query without detail", func(t *testing.T) {
		catalog := &domain.CatalogResponse{
			Items:  []string{"leche", "azucar"},
			Detail: []domain.QueryDetail{detail("leche", results(retailerX, newProduct("1", 10)))},
		}
		sel := BuildRetailerSelection(catalog, retailerX, NewOverrides())
		assert.Len(t, sel.Items, 1)
		assert.Equal(t, []string{"azucar"}, sel.Missing)
	})

	t.Run("blank query is labelled", func(t *testing.T) {
		catalog := &domain.CatalogResponse{
			Detail: []domain.QueryDetail{detail("  ", results(retailerX, newProduct("1", 10)))},
		}
		sel := BuildRetailerSelection(catalog, retailerX, NewOverrides())
		require.Len(t, sel.Items, 1)
		assert.Equal(t, UnnamedQuery, sel.Items[0].Query)
	})
}

func TestOptionsFor(t *testing.T) {
	catalog := lecheCatalog()

	options := OptionsFor(catalog, retailerX, " leche ")
	require.Len(t, options, 2)
	assert.Equal(t, "1", options[0].ID)

	options[0] = newProduct("mutated", 1)
	assert.Equal(t, "1", catalog.Detail[0].Results[0].Products[0].ID, "options must be a copy")

	assert.Empty(t, OptionsFor(catalog, retailerY, "leche"))
	assert.Empty(t, OptionsFor(catalog, retailerX, "pan"))
	assert.Empty(t, OptionsFor(nil, retailerX, "leche"))
}

func TestDefaultProductID(t *testing.T) {
	catalog := lecheCatalog()

	assert.Equal(t, "1", DefaultProductID(catalog, retailerX, "leche"))
	assert.Equal(t, "", DefaultProductID(catalog, retailerY, "leche"))
}

func TestOverrides_CopyOnWrite(t *testing.T) {
	base := NewOverrides()
	first := base.With(retailerX, "leche", "1")
	second := first.With(retailerX, "leche", "2")

	_, ok := base.Get(retailerX, "leche")
	assert.False(t, ok)

	id, _ := first.Get(retailerX, "leche")
	assert.Equal(t, "1", id)

	id, _ = second.Get(retailerX, " leche ")
	assert.Equal(t, "2", id)
	assert.Equal(t, 1, second.Len())
	assert.Equal(t, map[string]string{"dia::leche": "2"}, second.Map())
}
