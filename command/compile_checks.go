package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateCatalogMessage]    = (*CreateCatalogCommand)(nil)
	_ gocmd.Commander[IncreaseCapacityMessage] = (*IncreaseCapacityCommand)(nil)
	_ gocmd.Commander[AddItemTypeMessage]      = (*AddItemTypeCommand)(nil)
	_ gocmd.Commander[SetRewardRateMessage]    = (*SetRewardRateCommand)(nil)
	_ gocmd.Commander[EditRewardRateMessage]   = (*EditRewardRateCommand)(nil)
	_ gocmd.Commander[IssueMessage]            = (*IssueCommand)(nil)
	_ gocmd.Commander[RedeemMessage]           = (*RedeemCommand)(nil)
	_ gocmd.Commander[MintSupplyMessage]       = (*MintSupplyCommand)(nil)
)
