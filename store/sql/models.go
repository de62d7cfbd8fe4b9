package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type catalogRecord struct {
	bun.BaseModel `bun:"table:redeem_catalogs,alias:rc"`

	ID             string    `bun:"id,pk"`
	Owner          string    `bun:"owner,notnull"`
	CatalogKey     string    `bun:"catalog_key,notnull"`
	Capacity       int       `bun:"capacity,notnull"`
	CreditAsset    string    `bun:"credit_asset,notnull"`
	HoldingAccount string    `bun:"holding_account,notnull"`
	Version        int64     `bun:"version,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// itemTypeRecord stores reward_rate as decimal text so the full uint64 range
// survives signed BIGINT columns. NULL means the rate was never configured.
type itemTypeRecord struct {
	bun.BaseModel `bun:"table:redeem_item_types,alias:rit"`

	ID         string    `bun:"id,pk"`
	CatalogID  string    `bun:"catalog_id,notnull"`
	Position   int       `bun:"position,notnull"`
	Name       string    `bun:"name,notnull"`
	Symbol     string    `bun:"symbol,notnull"`
	URI        string    `bun:"uri,notnull"`
	RewardRate *string   `bun:"reward_rate"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type auditRecord struct {
	bun.BaseModel `bun:"table:redeem_audit_records,alias:rar"`

	ID         string         `bun:"id,pk"`
	Operation  string         `bun:"operation,notnull"`
	Actor      string         `bun:"actor,notnull"`
	Owner      string         `bun:"owner,notnull"`
	Status     string         `bun:"status,notnull"`
	ErrorCode  string         `bun:"error_code,notnull"`
	Fields     map[string]any `bun:"fields,type:jsonb,notnull"`
	OccurredAt time.Time      `bun:"occurred_at,nullzero,notnull,default:current_timestamp"`
}
