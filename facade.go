package redeem

import (
	"fmt"

	redeemcommand "github.com/goliatone/go-redeem/command"
	redeemquery "github.com/goliatone/go-redeem/query"
)

type CommandQueryService interface {
	redeemcommand.MutatingService
	redeemquery.CatalogReader
	redeemquery.HolderInfoReader
	redeemquery.AddressDeriver
}

type Commands struct {
	CreateCatalog    *redeemcommand.CreateCatalogCommand
	IncreaseCapacity *redeemcommand.IncreaseCapacityCommand
	AddItemType      *redeemcommand.AddItemTypeCommand
	SetRewardRate    *redeemcommand.SetRewardRateCommand
	EditRewardRate   *redeemcommand.EditRewardRateCommand
	Issue            *redeemcommand.IssueCommand
	Redeem           *redeemcommand.RedeemCommand
	MintSupply       *redeemcommand.MintSupplyCommand
}

type Queries struct {
	GetCatalog       *redeemquery.GetCatalogQuery
	GetHolderInfo    *redeemquery.GetHolderInfoQuery
	DeriveAddresses  *redeemquery.DeriveAddressesQuery
	ListAuditRecords *redeemquery.ListAuditRecordsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	auditReader redeemquery.AuditRecordReader
}

// WithAuditReader overrides the reader behind ListAuditRecords. By default the
// service itself is used when it can list audit records.
func WithAuditReader(reader redeemquery.AuditRecordReader) FacadeOption {
	return func(options *facadeOptions) {
		options.auditReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("redeem: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.auditReader
	if reader == nil {
		if candidate, ok := service.(redeemquery.AuditRecordReader); ok {
			reader = candidate
		}
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateCatalog:    redeemcommand.NewCreateCatalogCommand(service),
		IncreaseCapacity: redeemcommand.NewIncreaseCapacityCommand(service),
		AddItemType:      redeemcommand.NewAddItemTypeCommand(service),
		SetRewardRate:    redeemcommand.NewSetRewardRateCommand(service),
		EditRewardRate:   redeemcommand.NewEditRewardRateCommand(service),
		Issue:            redeemcommand.NewIssueCommand(service),
		Redeem:           redeemcommand.NewRedeemCommand(service),
		MintSupply:       redeemcommand.NewMintSupplyCommand(service),
	}
	facade.queries = Queries{
		GetCatalog:       redeemquery.NewGetCatalogQuery(service),
		GetHolderInfo:    redeemquery.NewGetHolderInfoQuery(service),
		DeriveAddresses:  redeemquery.NewDeriveAddressesQuery(service),
		ListAuditRecords: redeemquery.NewListAuditRecordsQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
