package sqlstore

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-redeem/core"
	"github.com/google/uuid"
)

func newCatalogRecord(catalog core.Catalog, now time.Time) *catalogRecord {
	createdAt := catalog.CreatedAt.UTC()
	if catalog.CreatedAt.IsZero() {
		createdAt = now
	}
	return &catalogRecord{
		ID:             uuid.NewString(),
		Owner:          strings.TrimSpace(catalog.Owner),
		CatalogKey:     strings.TrimSpace(catalog.Key),
		Capacity:       catalog.Capacity,
		CreditAsset:    strings.TrimSpace(catalog.CreditAsset),
		HoldingAccount: strings.TrimSpace(catalog.HoldingAccount),
		Version:        1,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}
}

func (r *catalogRecord) toDomain(items []*itemTypeRecord) (core.Catalog, error) {
	catalog := core.Catalog{
		Key:            r.CatalogKey,
		Owner:          r.Owner,
		Capacity:       r.Capacity,
		ItemTypes:      make([]core.ItemType, 0, len(items)),
		CreditAsset:    r.CreditAsset,
		HoldingAccount: r.HoldingAccount,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	for _, item := range items {
		itemType, err := item.toDomain()
		if err != nil {
			return core.Catalog{}, err
		}
		catalog.ItemTypes = append(catalog.ItemTypes, itemType)
	}
	return catalog, nil
}

func newItemTypeRecords(catalogID string, items []core.ItemType, now time.Time) []*itemTypeRecord {
	records := make([]*itemTypeRecord, 0, len(items))
	for position, item := range items {
		record := &itemTypeRecord{
			ID:        uuid.NewString(),
			CatalogID: catalogID,
			Position:  position,
			Name:      item.Name,
			Symbol:    item.Symbol,
			URI:       item.URI,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if item.RewardRate != nil {
			rate := strconv.FormatUint(*item.RewardRate, 10)
			record.RewardRate = &rate
		}
		records = append(records, record)
	}
	return records
}

func (r *itemTypeRecord) toDomain() (core.ItemType, error) {
	item := core.ItemType{
		Name:   r.Name,
		Symbol: r.Symbol,
		URI:    r.URI,
	}
	if r.RewardRate != nil {
		rate, err := strconv.ParseUint(strings.TrimSpace(*r.RewardRate), 10, 64)
		if err != nil {
			return core.ItemType{}, core.NewRedeemError(core.ErrorInternal,
				"sqlstore: stored reward rate is not a valid uint64",
				map[string]any{"item_type_id": r.ID, "reward_rate": *r.RewardRate},
			)
		}
		item.RewardRate = &rate
	}
	return item, nil
}

func newAuditRecord(record core.AuditRecord) *auditRecord {
	id := strings.TrimSpace(record.ID)
	if id == "" {
		id = uuid.NewString()
	}
	occurredAt := record.OccurredAt.UTC()
	if record.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	fields := copyAnyMap(record.Fields)
	if fields == nil {
		fields = map[string]any{}
	}
	return &auditRecord{
		ID:         id,
		Operation:  strings.TrimSpace(record.Operation),
		Actor:      strings.TrimSpace(record.Actor),
		Owner:      strings.TrimSpace(record.Owner),
		Status:     string(record.Status),
		ErrorCode:  strings.TrimSpace(record.ErrorCode),
		Fields:     fields,
		OccurredAt: occurredAt,
	}
}

func (r *auditRecord) toDomain() core.AuditRecord {
	return core.AuditRecord{
		ID:         r.ID,
		Operation:  r.Operation,
		Actor:      r.Actor,
		Owner:      r.Owner,
		Status:     core.AuditStatus(r.Status),
		ErrorCode:  r.ErrorCode,
		Fields:     copyAnyMap(r.Fields),
		OccurredAt: r.OccurredAt.UTC(),
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
