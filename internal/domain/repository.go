package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching encoded search responses
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KeyValueStore is the durable storage behind the cart.
// Get returns ErrKeyNotFound for keys that were never written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// SearchClient defines the interface for the external retailer search service
type SearchClient interface {
	SearchItem(ctx context.Context, req *ItemRequest) (*ItemResponse, error)
	SearchList(ctx context.Context, req *ListRequest) (*CatalogResponse, error)
}
