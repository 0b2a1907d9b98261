package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preciosya/backend/internal/domain"
)

// searcherFunc adapts a function to ListSearcher
type searcherFunc func(ctx context.Context, retailers []domain.RetailerID, items []string, limit int) (*domain.CatalogResponse, error)

func (f searcherFunc) SearchList(ctx context.Context, retailers []domain.RetailerID, items []string, limit int) (*domain.CatalogResponse, error) {
	return f(ctx, retailers, items, limit)
}

func staticSearcher(resp *domain.CatalogResponse) ListSearcher {
	return searcherFunc(func(context.Context, []domain.RetailerID, []string, int) (*domain.CatalogResponse, error) {
		return resp, nil
	})
}

func newTestSession(t *testing.T, retailers ...domain.RetailerID) (*ShoppingSession, *CartService) {
	t.Helper()
	cart, _ := newTestCart(t)
	return NewShoppingSession("s1", cart, retailers), cart
}

// twoRetailerCatalog: leche at X and Y, pan only at X
func twoRetailerCatalog() *domain.CatalogResponse {
	return &domain.CatalogResponse{
		Items: []string{"leche", "pan"},
		Detail: []domain.QueryDetail{
			detail("leche",
				results(retailerX, newProduct("x1", 100), newProduct("x2", 80)),
				results(retailerY, newProduct("y1", 90))),
			detail("pan",
				results(retailerX, newProduct("x3", 50)),
				results(retailerY)),
		},
		Ranking: ranking(retailerX, retailerY),
	}
}

func TestShoppingSession_Search(t *testing.T) {
	session, _ := newTestSession(t, retailerX, retailerY)

	var gotRetailers []domain.RetailerID
	searcher := searcherFunc(func(_ context.Context, retailers []domain.RetailerID, items []string, _ int) (*domain.CatalogResponse, error) {
		gotRetailers = retailers
		return twoRetailerCatalog(), nil
	})

	resp, err := session.Search(context.Background(), searcher, []string{"leche", "pan"}, 0)

	require.NoError(t, err)
	assert.Equal(t, []domain.RetailerID{retailerX, retailerY}, gotRetailers)
	assert.Same(t, resp, session.Catalog())
}

func TestShoppingSession_SearchRequiresRetailers(t *testing.T) {
	session, _ := newTestSession(t)

	_, err := session.Search(context.Background(), staticSearcher(lecheCatalog()), []string{"leche"}, 0)

	assert.ErrorIs(t, err, domain.ErrNoRetailers)
}

func TestShoppingSession_FailedSearchClearsCatalog(t *testing.T) {
	session, _ := newTestSession(t, retailerX)
	session.ApplyCatalog(lecheCatalog())

	failing := searcherFunc(func(context.Context, []domain.RetailerID, []string, int) (*domain.CatalogResponse, error) {
		return nil, &domain.SearchError{StatusCode: 500}
	})
	_, err := session.Search(context.Background(), failing, []string{"leche"}, 0)

	assert.ErrorIs(t, err, domain.ErrSearchAPIFailure)
	assert.Nil(t, session.Catalog())
}

func TestShoppingSession_SupersededSearch(t *testing.T) {
	session, _ := newTestSession(t, retailerX)

	entered := make(chan struct{})
	slow := searcherFunc(func(ctx context.Context, _ []domain.RetailerID, _ []string, _ int) (*domain.CatalogResponse, error) {
		close(entered)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	errc := make(chan error, 1)
	go func() {
		_, err := session.Search(context.Background(), slow, []string{"leche"}, 0)
		errc <- err
	}()
	<-entered

	fresh := twoRetailerCatalog()
	_, err := session.Search(context.Background(), staticSearcher(fresh), []string{"leche", "pan"}, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, <-errc, domain.ErrSearchSuperseded)
	assert.Same(t, fresh, session.Catalog())
}

func TestShoppingSession_ResubmittedListWhileSearching(t *testing.T) {
	session, _ := newTestSession(t, retailerX)

	client := NewMockSearchClient()
	client.listResult = lecheCatalog()
	client.started = make(chan struct{}, 2)
	client.release = make(chan struct{})
	svc := NewSearchService(NewMockCacheRepository(), client, SearchServiceConfig{}, nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := session.Search(context.Background(), svc, []string{"leche"}, 0)
		firstErr <- err
	}()
	<-client.started

	secondErr := make(chan error, 1)
	go func() {
		_, err := session.Search(context.Background(), svc, []string{"leche"}, 0)
		secondErr <- err
	}()

	// the older search is cancelled by the newer one
	assert.ErrorIs(t, <-firstErr, domain.ErrSearchSuperseded)

	time.Sleep(20 * time.Millisecond)
	close(client.release)

	require.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), client.calls.Load())
	assert.Equal(t, lecheCatalog(), session.Catalog())
}

func TestShoppingSession_NewCatalogClearsOverridesAndPicker(t *testing.T) {
	session, _ := newTestSession(t, retailerX)
	session.ApplyCatalog(lecheCatalog())

	require.NoError(t, session.OpenOptions(retailerX, "leche", ""))
	session.SetHighlighted("2")
	require.NoError(t, session.ApplyOption(context.Background()))
	assert.Equal(t, 1, session.Overrides().Len())

	require.NoError(t, session.OpenOptions(retailerX, "leche", ""))
	session.ApplyCatalog(lecheCatalog())

	assert.Zero(t, session.Overrides().Len())
	assert.Equal(t, "idle", session.Picker().State)
}

func TestShoppingSession_RetailerToggles(t *testing.T) {
	session, _ := newTestSession(t, retailerX)

	session.ToggleRetailer(retailerY)
	assert.Equal(t, []domain.RetailerID{retailerX, retailerY}, session.Retailers())

	session.ApplyCatalog(twoRetailerCatalog())
	session.ToggleRetailer(retailerX)
	assert.NotNil(t, session.Catalog(), "catalog survives while a retailer is enabled")

	session.ToggleRetailer(retailerY)
	assert.Empty(t, session.Retailers())
	assert.Nil(t, session.Catalog())

	session.SetRetailers([]domain.RetailerID{retailerZ, retailerZ, retailerX})
	assert.Equal(t, []domain.RetailerID{retailerZ, retailerX}, session.Retailers())
}

func TestShoppingSession_OpenOptions(t *testing.T) {
	session, _ := newTestSession(t, retailerX)

	assert.ErrorIs(t, session.OpenOptions(retailerX, "leche", ""), domain.ErrNoCatalog)

	session.ApplyCatalog(lecheCatalog())
	assert.ErrorIs(t, session.OpenOptions(retailerX, "yerba", ""), domain.ErrInvalidRequest)
	assert.ErrorIs(t, session.OpenOptions(retailerX, "leche", "99"), domain.ErrInvalidRequest)

	require.NoError(t, session.OpenOptions(retailerX, "leche", ""))
	picker := session.Picker()
	assert.Equal(t, "open", picker.State)
	assert.Equal(t, "1", picker.Highlighted)
	assert.Len(t, picker.Options, 2)

	session.CloseOptions()
	assert.Equal(t, "idle", session.Picker().State)
}

func TestShoppingSession_View(t *testing.T) {
	session, cart := newTestSession(t, retailerX, retailerY)

	view := session.View()
	assert.False(t, view.HasResults)
	assert.Nil(t, view.Best)
	assert.Empty(t, view.Rows)

	session.ApplyCatalog(twoRetailerCatalog())
	require.NoError(t, cart.AddOne(context.Background(), newProduct("x1", 100)))

	view = session.View()
	require.True(t, view.HasResults)
	require.NotNil(t, view.Best)
	assert.Equal(t, retailerX, *view.Best)
	require.Len(t, view.Rows, 2)

	x := view.Rows[0]
	assert.Equal(t, retailerX, x.Retailer)
	assert.True(t, x.IsBest)
	assert.Equal(t, 150.0, x.Total)
	assert.Equal(t, "$150", x.TotalFormatted)
	assert.Equal(t, 2, x.Matched)
	assert.Equal(t, 1, x.InCart)
	assert.False(t, x.AllInCart)

	y := view.Rows[1]
	assert.False(t, y.IsBest)
	assert.Equal(t, 1, y.Missing)
	assert.Equal(t, 1, y.Matched)
	assert.Equal(t, []string{"pan"}, y.Selection.Missing)
}

func TestShoppingSession_OverrideChangesView(t *testing.T) {
	session, cart := newTestSession(t, retailerX)
	ctx := context.Background()
	session.ApplyCatalog(twoRetailerCatalog())
	require.NoError(t, cart.AddOne(ctx, newProduct("x1", 100)))

	require.NoError(t, session.OpenOptions(retailerX, "leche", ""))
	session.SetHighlighted("x2")
	require.NoError(t, session.ApplyOption(ctx))

	assert.Zero(t, cart.Qty("x1"), "superseded default leaves the cart")
	row := session.View().Rows[0]
	assert.Equal(t, 130.0, row.Total)
	assert.Equal(t, "x2", row.Selection.Items[0].Product.ID)
	assert.Equal(t, map[string]string{"dia::leche": "x2"}, session.View().Overrides)
}

func TestShoppingSession_ToggleRetailerCart(t *testing.T) {
	session, cart := newTestSession(t, retailerX)
	ctx := context.Background()

	added, err := session.ToggleRetailerCart(ctx, retailerX)
	require.NoError(t, err)
	assert.False(t, added, "no catalog, nothing to add")

	session.ApplyCatalog(twoRetailerCatalog())
	require.NoError(t, cart.AddOne(ctx, newProduct("x1", 100)))

	added, err = session.ToggleRetailerCart(ctx, retailerX)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 2, cart.Qty("x1"))
	assert.Equal(t, 1, cart.Qty("x3"))
	assert.True(t, session.View().Rows[0].AllInCart)

	added, err = session.ToggleRetailerCart(ctx, retailerX)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Zero(t, cart.Count())
}

func TestShoppingSession_ToggleRetailerCartError(t *testing.T) {
	kv := NewMockKeyValueStore()
	cart, err := NewCartService(context.Background(), kv, nil)
	require.NoError(t, err)
	session := NewShoppingSession("s1", cart, []domain.RetailerID{retailerX})
	session.ApplyCatalog(twoRetailerCatalog())
	kv.setError = errors.New("read-only")

	_, err = session.ToggleRetailerCart(context.Background(), retailerX)

	assert.Error(t, err)
}
