package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type RedeemService interface {
	CreateCatalog(ctx context.Context, req CreateCatalogRequest) (Catalog, error)
	IncreaseCapacity(ctx context.Context, req IncreaseCapacityRequest) (CapacityChange, error)
	AddItemType(ctx context.Context, req AddItemTypeRequest) (ItemTypeAdded, error)
	SetRewardRate(ctx context.Context, req SetRewardRateRequest) (RewardRateChange, error)
	EditRewardRate(ctx context.Context, req SetRewardRateRequest) (RewardRateChange, error)
	Issue(ctx context.Context, req IssueRequest) (Issuance, error)
	Redeem(ctx context.Context, req RedeemRequest) (Redemption, error)
	MintSupply(ctx context.Context, req MintSupplyRequest) (SupplyMint, error)
	GetCatalog(ctx context.Context, owner string) (Catalog, error)
	GetHolderInfo(ctx context.Context, req HolderInfoRequest) (HolderInfo, error)
	DeriveAddresses(ctx context.Context, owner string) (CatalogAddresses, error)
	ListAuditRecords(ctx context.Context, query AuditQuery) (AuditPage, error)
}

// CatalogMutation edits a working copy of a catalog. Returning an error
// discards the copy.
type CatalogMutation func(catalog *Catalog) error

// CatalogStore persists catalogs keyed by owner. Update must commit the
// mutated catalog all-or-nothing.
type CatalogStore interface {
	Get(ctx context.Context, owner string) (Catalog, error)
	Create(ctx context.Context, catalog Catalog) (Catalog, error)
	Update(ctx context.Context, owner string, mutate CatalogMutation) (Catalog, error)
}

type MetadataStore interface {
	CreateDescriptor(ctx context.Context, descriptor Descriptor) error
	FixMaxSupply(ctx context.Context, instanceKey string, maxSupply uint64) error
	ReadDescriptor(ctx context.Context, instanceKey string) (Descriptor, error)
}

type MintInstruction struct {
	Asset     string
	To        string
	Authority string
	Quantity  uint64
}

type BurnInstruction struct {
	Asset     string
	From      string
	Authority string
	Quantity  uint64
}

type TransferInstruction struct {
	Asset     string
	From      string
	To        string
	Authority string
	Amount    uint64
}

type AssetLedger interface {
	Mint(ctx context.Context, instruction MintInstruction) error
	Burn(ctx context.Context, instruction BurnInstruction) error
	Transfer(ctx context.Context, instruction TransferInstruction) error
	Balance(ctx context.Context, asset string, holder string) (uint64, error)
}

type SettlementInstruction struct {
	Burn     BurnInstruction
	Transfer TransferInstruction
}

// AtomicSettler is implemented by ledgers able to commit a burn and its
// matching credit transfer as one unit.
type AtomicSettler interface {
	Settle(ctx context.Context, instruction SettlementInstruction) error
}

type AuditSink interface {
	Append(ctx context.Context, record AuditRecord) error
}

type AuditReader interface {
	ListAudit(ctx context.Context, query AuditQuery) (AuditPage, error)
}

type StoreProvider interface {
	CatalogStore() CatalogStore
	AuditSink() AuditSink
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
