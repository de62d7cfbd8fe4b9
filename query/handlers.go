package query

import (
	"context"

	"github.com/goliatone/go-redeem/core"
)

type CatalogReader interface {
	GetCatalog(ctx context.Context, owner string) (core.Catalog, error)
}

type HolderInfoReader interface {
	GetHolderInfo(ctx context.Context, req core.HolderInfoRequest) (core.HolderInfo, error)
}

type AddressDeriver interface {
	DeriveAddresses(ctx context.Context, owner string) (core.CatalogAddresses, error)
}

type AuditRecordReader interface {
	ListAuditRecords(ctx context.Context, query core.AuditQuery) (core.AuditPage, error)
}

type GetCatalogQuery struct {
	reader CatalogReader
}

func NewGetCatalogQuery(reader CatalogReader) *GetCatalogQuery {
	return &GetCatalogQuery{reader: reader}
}

func (q *GetCatalogQuery) Query(ctx context.Context, msg GetCatalogMessage) (core.Catalog, error) {
	if q == nil || q.reader == nil {
		return core.Catalog{}, queryDependencyError("query: catalog reader is required")
	}
	return q.reader.GetCatalog(ctx, msg.Owner)
}

type GetHolderInfoQuery struct {
	reader HolderInfoReader
}

func NewGetHolderInfoQuery(reader HolderInfoReader) *GetHolderInfoQuery {
	return &GetHolderInfoQuery{reader: reader}
}

func (q *GetHolderInfoQuery) Query(ctx context.Context, msg GetHolderInfoMessage) (core.HolderInfo, error) {
	if q == nil || q.reader == nil {
		return core.HolderInfo{}, queryDependencyError("query: holder info reader is required")
	}
	return q.reader.GetHolderInfo(ctx, msg.Request)
}

type DeriveAddressesQuery struct {
	deriver AddressDeriver
}

func NewDeriveAddressesQuery(deriver AddressDeriver) *DeriveAddressesQuery {
	return &DeriveAddressesQuery{deriver: deriver}
}

func (q *DeriveAddressesQuery) Query(ctx context.Context, msg DeriveAddressesMessage) (core.CatalogAddresses, error) {
	if q == nil || q.deriver == nil {
		return core.CatalogAddresses{}, queryDependencyError("query: address deriver is required")
	}
	return q.deriver.DeriveAddresses(ctx, msg.Owner)
}

type ListAuditRecordsQuery struct {
	reader AuditRecordReader
}

func NewListAuditRecordsQuery(reader AuditRecordReader) *ListAuditRecordsQuery {
	return &ListAuditRecordsQuery{reader: reader}
}

func (q *ListAuditRecordsQuery) Query(ctx context.Context, msg ListAuditRecordsMessage) (core.AuditPage, error) {
	if q == nil || q.reader == nil {
		return core.AuditPage{}, queryDependencyError("query: audit record reader is required")
	}
	return q.reader.ListAuditRecords(ctx, msg.Filter)
}
