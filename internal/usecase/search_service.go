package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/preciosya/backend/internal/domain"
)

// DefaultResultLimit is the per-retailer result count used when none is given
const DefaultResultLimit = 15

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	CacheTTL     time.Duration
	DefaultLimit int
	CallTimeout  time.Duration // bound on one shared upstream call
}

// SearchService fronts the retailer search service. Identical requests
// (same retailer set, query text and limit) share one upstream call and
// successful responses are cached.
type SearchService struct {
	cache        domain.CacheRepository
	client       domain.SearchClient
	group        singleflight.Group
	cacheTTL     time.Duration
	defaultLimit int
	callTimeout  time.Duration
	logger       *slog.Logger
}

// NewSearchService creates a new search service with dependencies
func NewSearchService(
	cache domain.CacheRepository,
	client domain.SearchClient,
	config SearchServiceConfig,
	logger *slog.Logger,
) *SearchService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	limit := config.DefaultLimit
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	callTimeout := config.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SearchService{
		cache:        cache,
		client:       client,
		cacheTTL:     cacheTTL,
		defaultLimit: limit,
		callTimeout:  callTimeout,
		logger:       logger,
	}
}

// SearchItem looks up a single product query across retailers.
// Flow: validate -> cache -> shared upstream call -> cache -> return
func (s *SearchService) SearchItem(
	ctx context.Context,
	retailers []domain.RetailerID,
	query string,
	limit int,
) (*domain.ItemResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}
	retailers = uniqueRetailers(retailers)
	if len(retailers) == 0 {
		return nil, domain.ErrNoRetailers
	}

	req := &domain.ItemRequest{Query: query, Limit: s.limit(limit), Retailers: retailers}
	key := cacheKey("item", retailers, query, req.Limit)

	var resp domain.ItemResponse
	err := s.fetch(ctx, key, &resp, func(ctx context.Context) (any, error) {
		return s.client.SearchItem(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchList looks up every line of a shopping list across retailers.
// Lines are trimmed, blank lines dropped and duplicates removed first.
func (s *SearchService) SearchList(
	ctx context.Context,
	retailers []domain.RetailerID,
	items []string,
	limit int,
) (*domain.CatalogResponse, error) {
	items = CleanItems(items)
	if len(items) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	retailers = uniqueRetailers(retailers)
	if len(retailers) == 0 {
		return nil, domain.ErrNoRetailers
	}

	req := &domain.ListRequest{Items: items, Limit: s.limit(limit), Retailers: retailers}
	key := cacheKey("list", retailers, strings.Join(items, "|"), req.Limit)

	var resp domain.CatalogResponse
	err := s.fetch(ctx, key, &resp, func(ctx context.Context) (any, error) {
		return s.client.SearchList(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// fetch serves key from cache or runs call once for all concurrent callers,
// decoding the result into out. The shared call is detached from the caller
// that started it, so one caller giving up never fails the others.
func (s *SearchService) fetch(
	ctx context.Context,
	key string,
	out any,
	call func(context.Context) (any, error),
) error {
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if err := json.Unmarshal(cached, out); err == nil {
			s.logger.Debug("search cache hit", slog.String("key", key))
			return nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	ch := s.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
		defer cancel()

		resp, err := call(callCtx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("encode search response: %w", err)
		}
		if err := s.cache.Set(callCtx, key, data, s.cacheTTL); err != nil {
			// Log but don't fail if caching fails
			s.logger.Warn("search cache write failed", slog.String("key", key), slog.Any("error", err))
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		if res.Shared {
			s.logger.Debug("search shared with concurrent caller", slog.String("key", key))
		}
		return json.Unmarshal(res.Val.([]byte), out)
	}
}

func (s *SearchService) limit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	return limit
}

// cacheKey builds the dedup key from the sorted retailer set, the query text
// and the limit. Format: "retailers:{kind}:{r1,r2}:{query}:{limit}"
func cacheKey(kind string, retailers []domain.RetailerID, query string, limit int) string {
	names := make([]string, 0, len(retailers))
	for _, r := range retailers {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return "retailers:" + kind + ":" + strings.Join(names, ",") + ":" + query + ":" + strconv.Itoa(limit)
}

// uniqueRetailers drops repeated retailers, keeping request order
func uniqueRetailers(retailers []domain.RetailerID) []domain.RetailerID {
	seen := make(map[domain.RetailerID]bool, len(retailers))
	out := make([]domain.RetailerID, 0, len(retailers))
	for _, r := range retailers {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
