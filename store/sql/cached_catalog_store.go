package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-redeem/core"
)

const catalogCacheKeyPrefix = "go-redeem::catalog::v1"

// CachedCatalogStore serves Get through a read-through cache and drops the
// owner's entry after every successful Create or Update.
type CachedCatalogStore struct {
	base  core.CatalogStore
	cache repositorycache.CacheService
}

func NewCachedCatalogStore(base core.CatalogStore, cacheService repositorycache.CacheService) (*CachedCatalogStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base catalog store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: catalog cache service is required")
	}
	return &CachedCatalogStore{base: base, cache: cacheService}, nil
}

// CatalogCacheKey returns go-redeem::catalog::v1::<owner> with the owner
// URL-path escaped.
func CatalogCacheKey(owner string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", fmt.Errorf("sqlstore: catalog owner is required for cache key")
	}
	return catalogCacheKeyPrefix + "::" + url.PathEscape(owner), nil
}

func (s *CachedCatalogStore) Get(ctx context.Context, owner string) (core.Catalog, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Catalog{}, fmt.Errorf("sqlstore: cached catalog store is not configured")
	}
	cacheKey, err := CatalogCacheKey(owner)
	if err != nil {
		return core.Catalog{}, core.CatalogNotFoundError(owner)
	}
	catalog, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Catalog, error) {
		fetched, fetchErr := s.base.Get(ctx, owner)
		if fetchErr != nil {
			return core.Catalog{}, fetchErr
		}
		return fetched.Clone(), nil
	})
	if err != nil {
		return core.Catalog{}, err
	}
	return catalog.Clone(), nil
}

func (s *CachedCatalogStore) Create(ctx context.Context, catalog core.Catalog) (core.Catalog, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Catalog{}, fmt.Errorf("sqlstore: cached catalog store is not configured")
	}
	created, err := s.base.Create(ctx, catalog)
	if err != nil {
		return core.Catalog{}, err
	}
	if err := s.invalidate(ctx, created.Owner); err != nil {
		return core.Catalog{}, err
	}
	return created, nil
}

func (s *CachedCatalogStore) Update(ctx context.Context, owner string, mutate core.CatalogMutation) (core.Catalog, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Catalog{}, fmt.Errorf("sqlstore: cached catalog store is not configured")
	}
	updated, err := s.base.Update(ctx, owner, mutate)
	if err != nil {
		return core.Catalog{}, err
	}
	if err := s.invalidate(ctx, owner); err != nil {
		return core.Catalog{}, err
	}
	return updated, nil
}

func (s *CachedCatalogStore) invalidate(ctx context.Context, owner string) error {
	cacheKey, err := CatalogCacheKey(owner)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}
