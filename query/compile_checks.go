package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-redeem/core"
)

var (
	_ gocmd.Querier[GetCatalogMessage, core.Catalog]               = (*GetCatalogQuery)(nil)
	_ gocmd.Querier[GetHolderInfoMessage, core.HolderInfo]         = (*GetHolderInfoQuery)(nil)
	_ gocmd.Querier[DeriveAddressesMessage, core.CatalogAddresses] = (*DeriveAddressesQuery)(nil)
	_ gocmd.Querier[ListAuditRecordsMessage, core.AuditPage]       = (*ListAuditRecordsQuery)(nil)
)
