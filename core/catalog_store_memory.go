package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCatalogStore keeps catalogs in process. Update serializes writers per
// store and applies mutations to a copy, so a failed mutation leaves the
// stored catalog untouched.
type MemoryCatalogStore struct {
	mu       sync.Mutex
	catalogs map[string]Catalog
	Now      func() time.Time
}

func NewMemoryCatalogStore() *MemoryCatalogStore {
	return &MemoryCatalogStore{
		catalogs: map[string]Catalog{},
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *MemoryCatalogStore) Get(_ context.Context, owner string) (Catalog, error) {
	if s == nil {
		return Catalog{}, fmt.Errorf("core: catalog store is not configured")
	}
	owner = normalizePrincipal(owner)
	s.mu.Lock()
	defer s.mu.Unlock()
	catalog, ok := s.catalogs[owner]
	if !ok {
		return Catalog{}, catalogNotFound(owner)
	}
	return catalog.Clone(), nil
}

func (s *MemoryCatalogStore) Create(_ context.Context, catalog Catalog) (Catalog, error) {
	if s == nil {
		return Catalog{}, fmt.Errorf("core: catalog store is not configured")
	}
	owner := normalizePrincipal(catalog.Owner)
	if owner == "" {
		return Catalog{}, NewRedeemError(ErrorBadInput, "core: catalog owner is required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.catalogs[owner]; exists {
		return Catalog{}, catalogExists(owner)
	}
	now := s.now()
	stored := catalog.Clone()
	stored.Owner = owner
	if stored.ItemTypes == nil {
		stored.ItemTypes = []ItemType{}
	}
	stored.Version = 1
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.catalogs[owner] = stored
	return stored.Clone(), nil
}

func (s *MemoryCatalogStore) Update(_ context.Context, owner string, mutate CatalogMutation) (Catalog, error) {
	if s == nil {
		return Catalog{}, fmt.Errorf("core: catalog store is not configured")
	}
	if mutate == nil {
		return Catalog{}, fmt.Errorf("core: catalog mutation is required")
	}
	owner = normalizePrincipal(owner)
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.catalogs[owner]
	if !ok {
		return Catalog{}, catalogNotFound(owner)
	}
	working := current.Clone()
	if err := mutate(&working); err != nil {
		return Catalog{}, err
	}
	working.Owner = current.Owner
	working.Key = current.Key
	working.CreatedAt = current.CreatedAt
	working.Version = current.Version + 1
	working.UpdatedAt = s.now()
	s.catalogs[owner] = working
	return working.Clone(), nil
}

func (s *MemoryCatalogStore) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func catalogNotFound(owner string) error {
	return NewRedeemError(ErrorCatalogNotFound, fmt.Sprintf("core: catalog for owner %q not found", owner),
		map[string]any{"owner": owner},
	)
}

func catalogExists(owner string) error {
	return NewRedeemError(ErrorCatalogExists, fmt.Sprintf("core: catalog for owner %q already exists", owner),
		map[string]any{"owner": owner},
	)
}

// CatalogNotFoundError and CatalogExistsError let storage adapters report the
// same error kinds as the in-memory store.
func CatalogNotFoundError(owner string) error {
	return catalogNotFound(normalizePrincipal(owner))
}

func CatalogExistsError(owner string) error {
	return catalogExists(normalizePrincipal(owner))
}
