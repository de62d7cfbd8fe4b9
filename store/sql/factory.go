package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-redeem/core"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db    *bun.DB
	cache repositorycache.CacheService

	catalogStore       *CatalogStore
	cachedCatalogStore *CachedCatalogStore
	auditStore         *AuditStore
}

type FactoryOption func(*RepositoryFactory)

// WithCatalogCache makes CatalogStore() return the cached decorator.
func WithCatalogCache(cacheService repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cache = cacheService
	}
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, opt := range opts {
		if opt != nil {
			opt(factory)
		}
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.catalogStore != nil && f.auditStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) CatalogStore() core.CatalogStore {
	if f == nil {
		return nil
	}
	if f.cachedCatalogStore != nil {
		return f.cachedCatalogStore
	}
	if f.catalogStore == nil {
		return nil
	}
	return f.catalogStore
}

func (f *RepositoryFactory) AuditSink() core.AuditSink {
	if f == nil || f.auditStore == nil {
		return nil
	}
	return f.auditStore
}

func (f *RepositoryFactory) AuditStore() *AuditStore {
	if f == nil {
		return nil
	}
	return f.auditStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	catalogStore, err := NewCatalogStore(f.db)
	if err != nil {
		return err
	}
	f.catalogStore = catalogStore
	if f.cache != nil {
		cached, err := NewCachedCatalogStore(catalogStore, f.cache)
		if err != nil {
			return err
		}
		f.cachedCatalogStore = cached
	}
	auditStore, err := NewAuditStore(f.db)
	if err != nil {
		return err
	}
	f.auditStore = auditStore
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
