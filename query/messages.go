package query

import (
	"strings"

	"github.com/goliatone/go-redeem/core"
)

const (
	TypeGetCatalog       = "redeem.query.catalog.get"
	TypeGetHolderInfo    = "redeem.query.holder.info"
	TypeDeriveAddresses  = "redeem.query.catalog.addresses"
	TypeListAuditRecords = "redeem.query.audit.list"
)

type GetCatalogMessage struct {
	Owner string
}

func (GetCatalogMessage) Type() string { return TypeGetCatalog }

func (m GetCatalogMessage) Validate() error {
	if strings.TrimSpace(m.Owner) == "" {
		return queryValidationError("owner", "owner is required")
	}
	return nil
}

type GetHolderInfoMessage struct {
	Request core.HolderInfoRequest
}

func (GetHolderInfoMessage) Type() string { return TypeGetHolderInfo }

func (m GetHolderInfoMessage) Validate() error {
	if strings.TrimSpace(m.Request.Holder) == "" {
		return queryValidationError("holder", "holder is required")
	}
	if strings.TrimSpace(m.Request.InstanceAsset) == "" {
		return queryValidationError("instance_asset", "instance asset is required")
	}
	if strings.TrimSpace(m.Request.CreditAsset) == "" {
		return queryValidationError("credit_asset", "credit asset is required")
	}
	return nil
}

type DeriveAddressesMessage struct {
	Owner string
}

func (DeriveAddressesMessage) Type() string { return TypeDeriveAddresses }

func (m DeriveAddressesMessage) Validate() error {
	if strings.TrimSpace(m.Owner) == "" {
		return queryValidationError("owner", "owner is required")
	}
	return nil
}

type ListAuditRecordsMessage struct {
	Filter core.AuditQuery
}

func (ListAuditRecordsMessage) Type() string { return TypeListAuditRecords }

func (m ListAuditRecordsMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	if m.Filter.Offset < 0 {
		return queryValidationError("offset", "offset must be >= 0")
	}
	return nil
}
