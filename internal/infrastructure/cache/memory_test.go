package cache

import (
	"context"
	"testing"
	"time"

	"github.com/preciosya/backend/internal/domain"
)

func newTestCache(t *testing.T) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewMemoryCache(ctx, time.Minute)
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{
			name:  "store and retrieve item response",
			key:   "retailers:item:dia:leche:15",
			value: []byte(`{"results":[]}`),
			ttl:   time.Minute,
		},
		{
			name:  "store and retrieve list response",
			key:   "retailers:list:dia,vea:leche|pan:15",
			value: []byte(`{"items":["leche","pan"],"detail":[],"ranking":[]}`),
			ttl:   time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %s, want %s", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestCache(t)

	_, err := cache.Get(context.Background(), "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if err := cache.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := cache.Get(ctx, "k"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after expiry error = %v, want cache miss", err)
	}
	if exists, _ := cache.Exists(ctx, "k"); exists {
		t.Errorf("Exists() after expiry = true, want false")
	}

	cache.removeExpired()
	if cache.Size() != 0 {
		t.Errorf("Size() after cleanup = %d, want 0", cache.Size())
	}
}

func TestMemoryCache_ValueIsCopied(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	value := []byte("original")
	if err := cache.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("Get() = %s, want original", got)
	}

	got[0] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("cached value was mutated through Get() result: %s", again)
	}
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), time.Minute)
	_ = cache.Set(ctx, "b", []byte("2"), time.Minute)

	if err := cache.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if exists, _ := cache.Exists(ctx, "a"); exists {
		t.Errorf("Exists(a) after delete = true")
	}
	if exists, _ := cache.Exists(ctx, "b"); !exists {
		t.Errorf("Exists(b) = false, want true")
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear() = %d, want 0", cache.Size())
	}
}
