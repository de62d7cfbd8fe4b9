package command

import (
	"strings"

	"github.com/goliatone/go-redeem/core"
)

const (
	TypeCreateCatalog    = "redeem.command.catalog.create"
	TypeIncreaseCapacity = "redeem.command.catalog.increase_capacity"
	TypeAddItemType      = "redeem.command.item_type.add"
	TypeSetRewardRate    = "redeem.command.reward_rate.set"
	TypeEditRewardRate   = "redeem.command.reward_rate.edit"
	TypeIssue            = "redeem.command.item.issue"
	TypeRedeem           = "redeem.command.item.redeem"
	TypeMintSupply       = "redeem.command.supply.mint"
)

// Messages only check that the principals are present. Domain rules are left
// to the engine so the authority guard keeps running first.

type CreateCatalogMessage struct {
	Request core.CreateCatalogRequest
}

func (CreateCatalogMessage) Type() string { return TypeCreateCatalog }

func (m CreateCatalogMessage) Validate() error {
	return requirePrincipal("caller", m.Request.Caller)
}

type IncreaseCapacityMessage struct {
	Request core.IncreaseCapacityRequest
}

func (IncreaseCapacityMessage) Type() string { return TypeIncreaseCapacity }

func (m IncreaseCapacityMessage) Validate() error {
	return validateCallerAndOwner(m.Request.Caller, m.Request.Owner)
}

type AddItemTypeMessage struct {
	Request core.AddItemTypeRequest
}

func (AddItemTypeMessage) Type() string { return TypeAddItemType }

func (m AddItemTypeMessage) Validate() error {
	return validateCallerAndOwner(m.Request.Caller, m.Request.Owner)
}

type SetRewardRateMessage struct {
	Request core.SetRewardRateRequest
}

func (SetRewardRateMessage) Type() string { return TypeSetRewardRate }

func (m SetRewardRateMessage) Validate() error {
	return validateCallerAndOwner(m.Request.Caller, m.Request.Owner)
}

type EditRewardRateMessage struct {
	Request core.SetRewardRateRequest
}

func (EditRewardRateMessage) Type() string { return TypeEditRewardRate }

func (m EditRewardRateMessage) Validate() error {
	return validateCallerAndOwner(m.Request.Caller, m.Request.Owner)
}

type IssueMessage struct {
	Request core.IssueRequest
}

func (IssueMessage) Type() string { return TypeIssue }

func (m IssueMessage) Validate() error {
	return validateCallerAndOwner(m.Request.Caller, m.Request.Owner)
}

type RedeemMessage struct {
	Request core.RedeemRequest
}

func (RedeemMessage) Type() string { return TypeRedeem }

func (m RedeemMessage) Validate() error {
	if err := validateCallerAndOwner(m.Request.Caller, m.Request.Owner); err != nil {
		return err
	}
	return requirePrincipal("instance_key", m.Request.InstanceKey)
}

type MintSupplyMessage struct {
	Request core.MintSupplyRequest
}

func (MintSupplyMessage) Type() string { return TypeMintSupply }

func (m MintSupplyMessage) Validate() error {
	return validateCallerAndOwner(m.Request.Caller, m.Request.Owner)
}

func validateCallerAndOwner(caller string, owner string) error {
	if err := requirePrincipal("caller", caller); err != nil {
		return err
	}
	return requirePrincipal("owner", owner)
}

func requirePrincipal(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return commandValidationError(field, field+" is required")
	}
	return nil
}
