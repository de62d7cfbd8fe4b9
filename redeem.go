package redeem

import "github.com/goliatone/go-redeem/core"

type Config = core.Config

type DerivationConfig = core.DerivationConfig

type AuditConfig = core.AuditConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Catalog = core.Catalog

type ItemType = core.ItemType

type Descriptor = core.Descriptor

type CatalogStore = core.CatalogStore

type MetadataStore = core.MetadataStore

type AssetLedger = core.AssetLedger

type AtomicSettler = core.AtomicSettler

type AuditSink = core.AuditSink

type CreateCatalogRequest = core.CreateCatalogRequest

type IncreaseCapacityRequest = core.IncreaseCapacityRequest

type AddItemTypeRequest = core.AddItemTypeRequest

type SetRewardRateRequest = core.SetRewardRateRequest

type IssueRequest = core.IssueRequest

type RedeemRequest = core.RedeemRequest

type MintSupplyRequest = core.MintSupplyRequest

type HolderInfoRequest = core.HolderInfoRequest

type AuditQuery = core.AuditQuery

var (
	WithLogger               = core.WithLogger
	WithLoggerProvider       = core.WithLoggerProvider
	WithMetricsRecorder      = core.WithMetricsRecorder
	WithErrorFactory         = core.WithErrorFactory
	WithErrorMapper          = core.WithErrorMapper
	WithPersistenceClient    = core.WithPersistenceClient
	WithRepositoryFactory    = core.WithRepositoryFactory
	WithConfigProvider       = core.WithConfigProvider
	WithOptionsResolver      = core.WithOptionsResolver
	WithCatalogStore         = core.WithCatalogStore
	WithMetadataStore        = core.WithMetadataStore
	WithAssetLedger          = core.WithAssetLedger
	WithAuditSink            = core.WithAuditSink
	WithInstanceKeyGenerator = core.WithInstanceKeyGenerator
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
