package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-redeem/core"
)

type MutatingService interface {
	CreateCatalog(ctx context.Context, req core.CreateCatalogRequest) (core.Catalog, error)
	IncreaseCapacity(ctx context.Context, req core.IncreaseCapacityRequest) (core.CapacityChange, error)
	AddItemType(ctx context.Context, req core.AddItemTypeRequest) (core.ItemTypeAdded, error)
	SetRewardRate(ctx context.Context, req core.SetRewardRateRequest) (core.RewardRateChange, error)
	EditRewardRate(ctx context.Context, req core.SetRewardRateRequest) (core.RewardRateChange, error)
	Issue(ctx context.Context, req core.IssueRequest) (core.Issuance, error)
	Redeem(ctx context.Context, req core.RedeemRequest) (core.Redemption, error)
	MintSupply(ctx context.Context, req core.MintSupplyRequest) (core.SupplyMint, error)
}

type CreateCatalogCommand struct {
	service MutatingService
}

func NewCreateCatalogCommand(service MutatingService) *CreateCatalogCommand {
	return &CreateCatalogCommand{service: service}
}

func (c *CreateCatalogCommand) Execute(ctx context.Context, msg CreateCatalogMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create catalog service is required")
	}
	out, err := c.service.CreateCatalog(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type IncreaseCapacityCommand struct {
	service MutatingService
}

func NewIncreaseCapacityCommand(service MutatingService) *IncreaseCapacityCommand {
	return &IncreaseCapacityCommand{service: service}
}

func (c *IncreaseCapacityCommand) Execute(ctx context.Context, msg IncreaseCapacityMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: increase capacity service is required")
	}
	out, err := c.service.IncreaseCapacity(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AddItemTypeCommand struct {
	service MutatingService
}

func NewAddItemTypeCommand(service MutatingService) *AddItemTypeCommand {
	return &AddItemTypeCommand{service: service}
}

func (c *AddItemTypeCommand) Execute(ctx context.Context, msg AddItemTypeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: add item type service is required")
	}
	out, err := c.service.AddItemType(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetRewardRateCommand struct {
	service MutatingService
}

func NewSetRewardRateCommand(service MutatingService) *SetRewardRateCommand {
	return &SetRewardRateCommand{service: service}
}

func (c *SetRewardRateCommand) Execute(ctx context.Context, msg SetRewardRateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: set reward rate service is required")
	}
	out, err := c.service.SetRewardRate(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type EditRewardRateCommand struct {
	service MutatingService
}

func NewEditRewardRateCommand(service MutatingService) *EditRewardRateCommand {
	return &EditRewardRateCommand{service: service}
}

func (c *EditRewardRateCommand) Execute(ctx context.Context, msg EditRewardRateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: edit reward rate service is required")
	}
	out, err := c.service.EditRewardRate(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type IssueCommand struct {
	service MutatingService
}

func NewIssueCommand(service MutatingService) *IssueCommand {
	return &IssueCommand{service: service}
}

func (c *IssueCommand) Execute(ctx context.Context, msg IssueMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: issue service is required")
	}
	out, err := c.service.Issue(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RedeemCommand struct {
	service MutatingService
}

func NewRedeemCommand(service MutatingService) *RedeemCommand {
	return &RedeemCommand{service: service}
}

func (c *RedeemCommand) Execute(ctx context.Context, msg RedeemMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: redeem service is required")
	}
	out, err := c.service.Redeem(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type MintSupplyCommand struct {
	service MutatingService
}

func NewMintSupplyCommand(service MutatingService) *MintSupplyCommand {
	return &MintSupplyCommand{service: service}
}

func (c *MintSupplyCommand) Execute(ctx context.Context, msg MintSupplyMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: mint supply service is required")
	}
	out, err := c.service.MintSupply(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
