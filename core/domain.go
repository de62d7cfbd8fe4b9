package core

import (
	"strings"
	"time"
)

const (
	MinCatalogCapacity        = 1
	MaxInitialCatalogCapacity = 10

	// Item field bounds are in bytes, not characters; multibyte UTF-8 text
	// reaches them sooner.
	MaxItemNameLength   = 32
	MaxItemSymbolLength = 10
	MaxItemURILength    = 200
)

type ItemType struct {
	Name       string
	Symbol     string
	URI        string
	RewardRate *uint64
}

func (t ItemType) HasRewardRate() bool {
	return t.RewardRate != nil
}

// Rate returns the configured reward rate, or zero when unset.
func (t ItemType) Rate() uint64 {
	if t.RewardRate == nil {
		return 0
	}
	return *t.RewardRate
}

func (t ItemType) Clone() ItemType {
	out := t
	if t.RewardRate != nil {
		rate := *t.RewardRate
		out.RewardRate = &rate
	}
	return out
}

type Catalog struct {
	Key            string
	Owner          string
	Capacity       int
	ItemTypes      []ItemType
	CreditAsset    string
	HoldingAccount string
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c Catalog) Clone() Catalog {
	out := c
	if c.ItemTypes != nil {
		out.ItemTypes = make([]ItemType, len(c.ItemTypes))
		for index, item := range c.ItemTypes {
			out.ItemTypes[index] = item.Clone()
		}
	}
	return out
}

func (c Catalog) Remaining() int {
	remaining := c.Capacity - len(c.ItemTypes)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Descriptor is the identity record held by the metadata store for one
// issued item instance.
type Descriptor struct {
	InstanceKey          string
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []string
	Collection           string
	MaxSupply            *uint64
}

type CreateCatalogRequest struct {
	Caller         string
	Capacity       int
	CreditAsset    string
	HoldingAccount string
}

type IncreaseCapacityRequest struct {
	Caller   string
	Owner    string
	Capacity int
}

type CapacityChange struct {
	Owner string
	Old   int
	New   int
}

type AddItemTypeRequest struct {
	Caller string
	Owner  string
	Name   string
	Symbol string
	URI    string
}

type ItemTypeAdded struct {
	Owner    string
	Index    int
	ItemType ItemType
}

type SetRewardRateRequest struct {
	Caller string
	Owner  string
	Index  int
	Rate   uint64
}

type RewardRateChange struct {
	Owner string
	Index int
	Old   uint64
	New   uint64
}

type IssuanceStage string

const (
	IssuanceStagePending           IssuanceStage = "pending"
	IssuanceStageDescriptorCreated IssuanceStage = "descriptor_created"
	IssuanceStageSupplyFixed       IssuanceStage = "supply_fixed"
	IssuanceStageMinted            IssuanceStage = "minted"
)

type IssueRequest struct {
	Caller      string
	Owner       string
	Index       int
	Quantity    uint64
	InstanceKey string
}

type Issuance struct {
	Owner       string
	InstanceKey string
	Recipient   string
	Index       int
	ItemType    ItemType
	Quantity    uint64
	Stage       IssuanceStage
}

type RedemptionState string

const (
	RedemptionPresented RedemptionState = "presented"
	RedemptionMatched   RedemptionState = "matched"
	RedemptionComputed  RedemptionState = "computed"
	RedemptionSettled   RedemptionState = "settled"
	RedemptionRejected  RedemptionState = "rejected"
)

type RedeemRequest struct {
	Caller      string
	Owner       string
	InstanceKey string
	Quantity    uint64
}

type Redemption struct {
	Owner       string
	Holder      string
	InstanceKey string
	Index       int
	ItemType    ItemType
	Quantity    uint64
	Rate        uint64
	Total       uint64
	State       RedemptionState
}

type MintSupplyRequest struct {
	Caller string
	Owner  string
	Amount uint64
}

type SupplyMint struct {
	Owner       string
	CreditAsset string
	Recipient   string
	Amount      uint64
}

type HolderInfoRequest struct {
	InstanceAsset string
	CreditAsset   string
	Holder        string
}

type HolderInfo struct {
	Holder        string
	ItemBalance   uint64
	CreditBalance uint64
}

// CatalogAddresses holds the derived keys of a catalog. ItemAssets are one
// address per item type, keyed by position. They name the type, not an issued
// instance: Issue keys every instance with its own instance key, so balances
// are read against that key and never against an ItemAssets entry.
type CatalogAddresses struct {
	Owner       string
	CatalogKey  string
	CreditAsset string
	ItemAssets  []string
}

type AuditStatus string

const (
	AuditStatusSucceeded AuditStatus = "succeeded"
	AuditStatusFailed    AuditStatus = "failed"
)

// AuditRecord is one state-changing operation. Unsigned quantities, amounts
// and rates in Fields are decimal strings.
type AuditRecord struct {
	ID         string
	Operation  string
	Actor      string
	Owner      string
	Status     AuditStatus
	ErrorCode  string
	Fields     map[string]any
	OccurredAt time.Time
}

type AuditQuery struct {
	Owner     string
	Operation string
	Limit     int
	Offset    int
}

type AuditPage struct {
	Items []AuditRecord
	Total int
}

func normalizePrincipal(value string) string {
	return strings.TrimSpace(value)
}
