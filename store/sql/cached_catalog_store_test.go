package sqlstore

import (
	"context"
	"sync"
	"testing"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-redeem/core"
)

type countingCatalogStore struct {
	*core.MemoryCatalogStore

	mu       sync.Mutex
	getCalls int
}

func (s *countingCatalogStore) Get(ctx context.Context, owner string) (core.Catalog, error) {
	s.mu.Lock()
	s.getCalls++
	s.mu.Unlock()
	return s.MemoryCatalogStore.Get(ctx, owner)
}

func (s *countingCatalogStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

func TestCachedCatalogStore_Get_MissFetchThenHit(t *testing.T) {
	ctx := context.Background()
	base := &countingCatalogStore{MemoryCatalogStore: core.NewMemoryCatalogStore()}
	store, err := NewCachedCatalogStore(base, newTestCatalogCacheService(t))
	if err != nil {
		t.Fatalf("new cached catalog store: %v", err)
	}
	if _, err := store.Create(ctx, core.Catalog{Owner: "alice", Capacity: 2}); err != nil {
		t.Fatalf("create catalog: %v", err)
	}

	if _, err := store.Get(ctx, "alice"); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if base.calls() != 1 {
		t.Fatalf("expected first get to read base store once, got %d", base.calls())
	}
	if _, err := store.Get(ctx, " alice "); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if base.calls() != 1 {
		t.Fatalf("expected second get to be a cache hit, base get calls=%d", base.calls())
	}
}

func TestCachedCatalogStore_Update_InvalidatesCachedOwner(t *testing.T) {
	ctx := context.Background()
	base := &countingCatalogStore{MemoryCatalogStore: core.NewMemoryCatalogStore()}
	store, err := NewCachedCatalogStore(base, newTestCatalogCacheService(t))
	if err != nil {
		t.Fatalf("new cached catalog store: %v", err)
	}
	if _, err := store.Create(ctx, core.Catalog{Owner: "alice", Capacity: 2}); err != nil {
		t.Fatalf("create catalog: %v", err)
	}
	if _, err := store.Get(ctx, "alice"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	if _, err := store.Update(ctx, "alice", func(catalog *core.Catalog) error {
		_, err := catalog.IncreaseCapacity(5)
		return err
	}); err != nil {
		t.Fatalf("update through cached store: %v", err)
	}

	catalog, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if base.calls() != 2 {
		t.Fatalf("expected invalidated owner to force a second base read, got %d", base.calls())
	}
	if catalog.Capacity != 5 {
		t.Fatalf("expected refreshed capacity 5, got %d", catalog.Capacity)
	}
}

func TestCachedCatalogStore_ReturnedCatalogIsACopy(t *testing.T) {
	ctx := context.Background()
	base := &countingCatalogStore{MemoryCatalogStore: core.NewMemoryCatalogStore()}
	store, err := NewCachedCatalogStore(base, newTestCatalogCacheService(t))
	if err != nil {
		t.Fatalf("new cached catalog store: %v", err)
	}
	if _, err := store.Create(ctx, core.Catalog{Owner: "alice", Capacity: 2}); err != nil {
		t.Fatalf("create catalog: %v", err)
	}
	if _, err := store.Update(ctx, "alice", func(catalog *core.Catalog) error {
		_, err := catalog.AddItemType("Can", "CAN", "https://x/can.json")
		return err
	}); err != nil {
		t.Fatalf("add item type: %v", err)
	}

	first, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	first.ItemTypes[0].Name = "mutated"

	second, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if second.ItemTypes[0].Name != "Can" {
		t.Fatalf("expected cached catalog to be isolated from callers, got %q", second.ItemTypes[0].Name)
	}
}

func TestCachedCatalogStore_RequiresDependencies(t *testing.T) {
	if _, err := NewCachedCatalogStore(nil, newTestCatalogCacheService(t)); err == nil {
		t.Fatalf("expected missing base store error")
	}
	if _, err := NewCachedCatalogStore(core.NewMemoryCatalogStore(), nil); err == nil {
		t.Fatalf("expected missing cache service error")
	}
	if _, err := CatalogCacheKey("  "); err == nil {
		t.Fatalf("expected blank owner cache key error")
	}
	key, err := CatalogCacheKey("a/b")
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}
	if key != "go-redeem::catalog::v1::a%2Fb" {
		t.Fatalf("unexpected cache key %q", key)
	}
}

func newTestCatalogCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
