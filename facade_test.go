package redeem

import (
	"context"
	"testing"

	redeemcommand "github.com/goliatone/go-redeem/command"
	"github.com/goliatone/go-redeem/core"
	redeemquery "github.com/goliatone/go-redeem/query"
)

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	svc, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.CreateCatalog == nil || commands.Issue == nil || commands.Redeem == nil || commands.MintSupply == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.GetCatalog == nil || queries.GetHolderInfo == nil || queries.ListAuditRecords == nil {
		t.Fatalf("expected query handlers to be wired")
	}
	if facade.Service() == nil {
		t.Fatalf("expected facade service")
	}
}

func TestFacade_LifecycleThroughCommandsAndQueries(t *testing.T) {
	ctx := context.Background()
	svc, err := NewService(DefaultConfig(), WithAuditSink(core.NewMemoryAuditLog()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	commands := facade.Commands()
	queries := facade.Queries()

	if err := commands.CreateCatalog.Execute(ctx, redeemcommand.CreateCatalogMessage{
		Request: CreateCatalogRequest{Caller: "alice", Capacity: 2},
	}); err != nil {
		t.Fatalf("create catalog: %v", err)
	}
	if err := commands.AddItemType.Execute(ctx, redeemcommand.AddItemTypeMessage{
		Request: AddItemTypeRequest{Caller: "alice", Owner: "alice", Name: "Can", Symbol: "CAN", URI: "https://x/can.json"},
	}); err != nil {
		t.Fatalf("add item type: %v", err)
	}
	if err := commands.SetRewardRate.Execute(ctx, redeemcommand.SetRewardRateMessage{
		Request: SetRewardRateRequest{Caller: "alice", Owner: "alice", Index: 0, Rate: 100},
	}); err != nil {
		t.Fatalf("set reward rate: %v", err)
	}
	if err := commands.MintSupply.Execute(ctx, redeemcommand.MintSupplyMessage{
		Request: MintSupplyRequest{Caller: "alice", Owner: "alice", Amount: 10000},
	}); err != nil {
		t.Fatalf("mint supply: %v", err)
	}
	if err := commands.Issue.Execute(ctx, redeemcommand.IssueMessage{
		Request: IssueRequest{Caller: "bob", Owner: "alice", Index: 0, Quantity: 5, InstanceKey: "inst_1"},
	}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := commands.Redeem.Execute(ctx, redeemcommand.RedeemMessage{
		Request: RedeemRequest{Caller: "bob", Owner: "alice", InstanceKey: "inst_1", Quantity: 3},
	}); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	addresses, err := queries.DeriveAddresses.Query(ctx, redeemquery.DeriveAddressesMessage{Owner: "alice"})
	if err != nil {
		t.Fatalf("derive addresses: %v", err)
	}
	info, err := queries.GetHolderInfo.Query(ctx, redeemquery.GetHolderInfoMessage{
		Request: HolderInfoRequest{InstanceAsset: "inst_1", CreditAsset: addresses.CreditAsset, Holder: "bob"},
	})
	if err != nil {
		t.Fatalf("holder info: %v", err)
	}
	if info.ItemBalance != 2 || info.CreditBalance != 300 {
		t.Fatalf("expected bob to hold 2 items and 300 credits, got %#v", info)
	}

	catalog, err := queries.GetCatalog.Query(ctx, redeemquery.GetCatalogMessage{Owner: "alice"})
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if catalog.Key != addresses.CatalogKey {
		t.Fatalf("expected derived catalog key %q, got %q", addresses.CatalogKey, catalog.Key)
	}

	page, err := queries.ListAuditRecords.Query(ctx, redeemquery.ListAuditRecordsMessage{Filter: AuditQuery{Owner: "alice"}})
	if err != nil {
		t.Fatalf("list audit records: %v", err)
	}
	if page.Total != 6 {
		t.Fatalf("expected one audit record per state-changing command, got %d", page.Total)
	}
}

func TestNewFacade_AuditReaderOverride(t *testing.T) {
	svc, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	log := core.NewMemoryAuditLog()
	if err := log.Append(context.Background(), core.AuditRecord{ID: "a1", Operation: "redeem", Owner: "alice"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	facade, err := NewFacade(svc, WithAuditReader(auditLogReader{log: log}))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	page, err := facade.Queries().ListAuditRecords.Query(context.Background(), redeemquery.ListAuditRecordsMessage{})
	if err != nil {
		t.Fatalf("list audit records: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "a1" {
		t.Fatalf("expected override reader results, got %#v", page)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}

type auditLogReader struct {
	log *core.MemoryAuditLog
}

func (r auditLogReader) ListAuditRecords(ctx context.Context, query core.AuditQuery) (core.AuditPage, error) {
	return r.log.ListAudit(ctx, query)
}
