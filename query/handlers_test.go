package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-redeem/core"
)

func TestGetCatalogQuery_QueryDelegates(t *testing.T) {
	called := false
	reader := stubReader{
		catalogFn: func(_ context.Context, owner string) (core.Catalog, error) {
			called = true
			if owner != "alice" {
				t.Fatalf("unexpected owner: %q", owner)
			}
			return core.Catalog{Owner: owner, Capacity: 2}, nil
		},
	}

	result, err := NewGetCatalogQuery(reader).Query(context.Background(), GetCatalogMessage{Owner: "alice"})
	if err != nil {
		t.Fatalf("query catalog: %v", err)
	}
	if !called {
		t.Fatalf("expected catalog reader invocation")
	}
	if result.Capacity != 2 {
		t.Fatalf("unexpected catalog result: %#v", result)
	}
}

func TestGetHolderInfoQuery_QueryDelegates(t *testing.T) {
	reader := stubReader{
		holderFn: func(_ context.Context, req core.HolderInfoRequest) (core.HolderInfo, error) {
			if req.Holder != "bob" || req.InstanceAsset != "inst_1" || req.CreditAsset != "credit_1" {
				t.Fatalf("unexpected holder request: %#v", req)
			}
			return core.HolderInfo{Holder: "bob", ItemBalance: 5, CreditBalance: 400}, nil
		},
	}

	result, err := NewGetHolderInfoQuery(reader).Query(context.Background(), GetHolderInfoMessage{
		Request: core.HolderInfoRequest{InstanceAsset: "inst_1", CreditAsset: "credit_1", Holder: "bob"},
	})
	if err != nil {
		t.Fatalf("query holder info: %v", err)
	}
	if result.ItemBalance != 5 || result.CreditBalance != 400 {
		t.Fatalf("unexpected holder info: %#v", result)
	}
}

func TestDeriveAddressesQuery_QueryDelegates(t *testing.T) {
	reader := stubReader{
		addressesFn: func(_ context.Context, owner string) (core.CatalogAddresses, error) {
			return core.CatalogAddresses{Owner: owner, CatalogKey: "cat", CreditAsset: "credit"}, nil
		},
	}

	result, err := NewDeriveAddressesQuery(reader).Query(context.Background(), DeriveAddressesMessage{Owner: "alice"})
	if err != nil {
		t.Fatalf("derive addresses: %v", err)
	}
	if result.CatalogKey != "cat" || result.CreditAsset != "credit" {
		t.Fatalf("unexpected addresses: %#v", result)
	}
}

func TestListAuditRecordsQuery_QueryDelegates(t *testing.T) {
	reader := stubReader{
		auditFn: func(_ context.Context, filter core.AuditQuery) (core.AuditPage, error) {
			if filter.Owner != "alice" || filter.Limit != 10 {
				t.Fatalf("unexpected audit filter: %#v", filter)
			}
			return core.AuditPage{
				Items: []core.AuditRecord{{ID: "a1", Operation: "redeem", Status: core.AuditStatusSucceeded}},
				Total: 1,
			}, nil
		},
	}

	result, err := NewListAuditRecordsQuery(reader).Query(context.Background(), ListAuditRecordsMessage{
		Filter: core.AuditQuery{Owner: "alice", Limit: 10},
	})
	if err != nil {
		t.Fatalf("list audit records: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Fatalf("unexpected audit page: %#v", result)
	}
}

func TestListAuditRecordsMessage_RejectsNegativePaging(t *testing.T) {
	if err := (ListAuditRecordsMessage{Filter: core.AuditQuery{Limit: -1}}).Validate(); err == nil {
		t.Fatalf("expected negative limit to fail")
	}
	if err := (ListAuditRecordsMessage{Filter: core.AuditQuery{Offset: -1}}).Validate(); err == nil {
		t.Fatalf("expected negative offset to fail")
	}
	if err := (ListAuditRecordsMessage{}).Validate(); err != nil {
		t.Fatalf("expected empty filter to be valid: %v", err)
	}
}

type stubReader struct {
	catalogFn   func(context.Context, string) (core.Catalog, error)
	holderFn    func(context.Context, core.HolderInfoRequest) (core.HolderInfo, error)
	addressesFn func(context.Context, string) (core.CatalogAddresses, error)
	auditFn     func(context.Context, core.AuditQuery) (core.AuditPage, error)
}

func (s stubReader) GetCatalog(ctx context.Context, owner string) (core.Catalog, error) {
	if s.catalogFn == nil {
		return core.Catalog{}, nil
	}
	return s.catalogFn(ctx, owner)
}

func (s stubReader) GetHolderInfo(ctx context.Context, req core.HolderInfoRequest) (core.HolderInfo, error) {
	if s.holderFn == nil {
		return core.HolderInfo{}, nil
	}
	return s.holderFn(ctx, req)
}

func (s stubReader) DeriveAddresses(ctx context.Context, owner string) (core.CatalogAddresses, error) {
	if s.addressesFn == nil {
		return core.CatalogAddresses{}, nil
	}
	return s.addressesFn(ctx, owner)
}

func (s stubReader) ListAuditRecords(ctx context.Context, filter core.AuditQuery) (core.AuditPage, error) {
	if s.auditFn == nil {
		return core.AuditPage{}, nil
	}
	return s.auditFn(ctx, filter)
}
