package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-redeem/core"
	"github.com/uptrace/bun"
)

// CatalogStore persists catalogs and their ordered item types. Update runs the
// mutation inside a transaction and commits only when the stored version is
// still the one the mutation was applied to.
type CatalogStore struct {
	db        *bun.DB
	repo      repository.Repository[*catalogRecord]
	itemTypes repository.Repository[*itemTypeRecord]
	Now       func() time.Time
}

func NewCatalogStore(db *bun.DB) (*CatalogStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*catalogRecord](db, catalogHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid catalog repository wiring: %w", err)
		}
	}
	itemTypes := repository.NewRepository[*itemTypeRecord](db, itemTypeHandlers())
	if validator, ok := itemTypes.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid item type repository wiring: %w", err)
		}
	}
	return &CatalogStore{
		db:        db,
		repo:      repo,
		itemTypes: itemTypes,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *CatalogStore) Get(ctx context.Context, owner string) (core.Catalog, error) {
	if s == nil || s.db == nil {
		return core.Catalog{}, fmt.Errorf("sqlstore: catalog store is not configured")
	}
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return core.Catalog{}, core.CatalogNotFoundError(owner)
	}
	record, items, err := loadCatalog(ctx, s.db, owner)
	if err != nil {
		return core.Catalog{}, err
	}
	return record.toDomain(items)
}

func (s *CatalogStore) Create(ctx context.Context, catalog core.Catalog) (core.Catalog, error) {
	if s == nil || s.db == nil || s.repo == nil {
		return core.Catalog{}, fmt.Errorf("sqlstore: catalog store is not configured")
	}
	owner := strings.TrimSpace(catalog.Owner)
	if owner == "" {
		return core.Catalog{}, core.NewRedeemError(core.ErrorBadInput, "sqlstore: catalog owner is required", nil)
	}
	catalog.Owner = owner
	now := s.now()

	var created core.Catalog
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*catalogRecord)(nil)).
			Where("?TableAlias.owner = ?", owner).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return core.CatalogExistsError(owner)
		}

		record := newCatalogRecord(catalog, now)
		inserted, err := s.repo.CreateTx(ctx, tx, record)
		if err != nil {
			if isUniqueConstraintError(err) {
				return core.CatalogExistsError(owner)
			}
			return err
		}
		items, err := s.insertItemTypes(ctx, tx, inserted.ID, catalog.ItemTypes, now)
		if err != nil {
			return err
		}
		created, err = inserted.toDomain(items)
		return err
	})
	if err != nil {
		return core.Catalog{}, err
	}
	return created, nil
}

func (s *CatalogStore) Update(ctx context.Context, owner string, mutate core.CatalogMutation) (core.Catalog, error) {
	if s == nil || s.db == nil {
		return core.Catalog{}, fmt.Errorf("sqlstore: catalog store is not configured")
	}
	if mutate == nil {
		return core.Catalog{}, fmt.Errorf("sqlstore: catalog mutation is required")
	}
	owner = strings.TrimSpace(owner)
	now := s.now()

	var updated core.Catalog
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, items, err := loadCatalog(ctx, tx, owner)
		if err != nil {
			return err
		}
		current, err := record.toDomain(items)
		if err != nil {
			return err
		}
		working := current.Clone()
		if err := mutate(&working); err != nil {
			return err
		}

		res, err := tx.NewUpdate().
			Model((*catalogRecord)(nil)).
			Set("capacity = ?", working.Capacity).
			Set("credit_asset = ?", strings.TrimSpace(working.CreditAsset)).
			Set("holding_account = ?", strings.TrimSpace(working.HoldingAccount)).
			Set("version = ?", record.Version+1).
			Set("updated_at = ?", now).
			Where("id = ?", record.ID).
			Where("version = ?", record.Version).
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return core.NewRedeemError(core.ErrorCatalogConflict,
				fmt.Sprintf("sqlstore: concurrent update of catalog for owner %q", owner),
				map[string]any{"owner": owner, "version": record.Version},
			)
		}

		if _, err := tx.NewDelete().
			Model((*itemTypeRecord)(nil)).
			Where("catalog_id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}
		stored, err := s.insertItemTypes(ctx, tx, record.ID, working.ItemTypes, now)
		if err != nil {
			return err
		}

		record.Capacity = working.Capacity
		record.CreditAsset = strings.TrimSpace(working.CreditAsset)
		record.HoldingAccount = strings.TrimSpace(working.HoldingAccount)
		record.Version++
		record.UpdatedAt = now
		updated, err = record.toDomain(stored)
		return err
	})
	if err != nil {
		return core.Catalog{}, err
	}
	return updated, nil
}

func (s *CatalogStore) insertItemTypes(
	ctx context.Context,
	tx bun.Tx,
	catalogID string,
	items []core.ItemType,
	now time.Time,
) ([]*itemTypeRecord, error) {
	records := newItemTypeRecords(catalogID, items, now)
	stored := make([]*itemTypeRecord, 0, len(records))
	for _, record := range records {
		inserted, err := s.itemTypes.CreateTx(ctx, tx, record)
		if err != nil {
			return nil, err
		}
		stored = append(stored, inserted)
	}
	return stored, nil
}

func (s *CatalogStore) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func loadCatalog(ctx context.Context, db bun.IDB, owner string) (*catalogRecord, []*itemTypeRecord, error) {
	record := &catalogRecord{}
	err := db.NewSelect().
		Model(record).
		Where("?TableAlias.owner = ?", owner).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, core.CatalogNotFoundError(owner)
		}
		return nil, nil, err
	}

	items := make([]*itemTypeRecord, 0)
	if err := db.NewSelect().
		Model(&items).
		Where("?TableAlias.catalog_id = ?", record.ID).
		OrderExpr("?TableAlias.position ASC").
		Scan(ctx); err != nil {
		return nil, nil, err
	}
	return record, items, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "unique") || strings.Contains(text, "duplicate")
}
