package sqlstore

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-redeem/core"
	"github.com/uptrace/bun"
)

const defaultAuditPageSize = 50

type AuditStore struct {
	db   *bun.DB
	repo repository.Repository[*auditRecord]
}

func NewAuditStore(db *bun.DB) (*AuditStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*auditRecord](db, auditHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid audit repository wiring: %w", err)
		}
	}
	return &AuditStore{db: db, repo: repo}, nil
}

func (s *AuditStore) Append(ctx context.Context, record core.AuditRecord) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: audit store is not configured")
	}
	if strings.TrimSpace(record.Operation) == "" {
		return fmt.Errorf("sqlstore: audit operation is required")
	}
	_, err := s.repo.Create(ctx, newAuditRecord(record))
	return err
}

func (s *AuditStore) ListAudit(ctx context.Context, query core.AuditQuery) (core.AuditPage, error) {
	if s == nil || s.repo == nil {
		return core.AuditPage{}, fmt.Errorf("sqlstore: audit store is not configured")
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	selectors := []repository.SelectCriteria{
		repository.OrderBy("occurred_at DESC"),
		repository.SelectPaginate(limit, offset),
	}
	if owner := strings.TrimSpace(query.Owner); owner != "" {
		selectors = append(selectors, repository.SelectBy("owner", "=", owner))
	}
	if operation := strings.TrimSpace(query.Operation); operation != "" {
		selectors = append(selectors, repository.SelectBy("operation", "=", operation))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.AuditPage{}, err
	}
	items := make([]core.AuditRecord, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDomain())
	}
	return core.AuditPage{Items: items, Total: total}, nil
}
