package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	catalogStore      CatalogStore
	metadataStore     MetadataStore
	assetLedger       AssetLedger
	auditSink         AuditSink
	keys              KeyDeriver
	instanceKeys      func() string
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	PersistenceClient any
	RepositoryFactory any
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	CatalogStore      CatalogStore
	MetadataStore     MetadataStore
	AssetLedger       AssetLedger
	AuditSink         AuditSink
	KeyDeriver        KeyDeriver
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("redeem", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("redeem"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.instanceKeys == nil {
		builder.instanceKeys = uuid.NewString
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if (builder.catalogStore == nil || builder.auditSink == nil) && builder.repositoryFactory != nil {
		var stores StoreProvider
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			built, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			stores = built
		} else if provided, ok := builder.repositoryFactory.(StoreProvider); ok {
			stores = provided
		}
		if stores != nil {
			if builder.catalogStore == nil {
				builder.catalogStore = stores.CatalogStore()
			}
			if builder.auditSink == nil {
				builder.auditSink = stores.AuditSink()
			}
		}
	}
	if builder.catalogStore == nil {
		builder.catalogStore = NewMemoryCatalogStore()
	}
	if builder.metadataStore == nil {
		builder.metadataStore = NewMemoryMetadataStore()
	}
	if builder.assetLedger == nil {
		builder.assetLedger = NewMemoryAssetLedger()
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		catalogStore:      builder.catalogStore,
		metadataStore:     builder.metadataStore,
		assetLedger:       builder.assetLedger,
		auditSink:         builder.auditSink,
		keys:              NewKeyDeriver(finalConfig.Derivation),
		instanceKeys:      builder.instanceKeys,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		CatalogStore:      s.catalogStore,
		MetadataStore:     s.metadataStore,
		AssetLedger:       s.assetLedger,
		AuditSink:         s.auditSink,
		KeyDeriver:        s.keys,
	}
}

func (s *Service) CreateCatalog(ctx context.Context, req CreateCatalogRequest) (catalog Catalog, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"owner":    normalizePrincipal(req.Caller),
		"capacity": req.Capacity,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "create_catalog", err, fields)
		s.audit(ctx, "create_catalog", req.Caller, req.Caller, err, fields)
	}()

	catalog, err = NewCatalog(req.Caller, req.Capacity)
	if err != nil {
		err = s.mapError(err)
		return Catalog{}, err
	}
	catalog.Key = s.keys.CatalogKey(catalog.Owner)
	catalog.CreditAsset = strings.TrimSpace(req.CreditAsset)
	if catalog.CreditAsset == "" {
		catalog.CreditAsset = s.keys.CreditAsset(catalog.Key)
	}
	if holding := normalizePrincipal(req.HoldingAccount); holding != "" {
		catalog.HoldingAccount = holding
	}

	catalog, err = s.catalogStore.Create(ctx, catalog)
	if err != nil {
		err = s.mapError(err)
		return Catalog{}, err
	}
	fields["catalog_key"] = catalog.Key
	fields["credit_asset"] = catalog.CreditAsset
	fields["holding_account"] = catalog.HoldingAccount
	return catalog, nil
}

func (s *Service) IncreaseCapacity(ctx context.Context, req IncreaseCapacityRequest) (change CapacityChange, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"owner":     normalizePrincipal(req.Owner),
		"requested": req.Capacity,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "increase_capacity", err, fields)
		s.audit(ctx, "increase_capacity", req.Caller, req.Owner, err, fields)
	}()

	change = CapacityChange{Owner: normalizePrincipal(req.Owner)}
	_, err = s.mutateCatalog(ctx, req.Caller, req.Owner, func(catalog *Catalog) error {
		// Only reached once the caller is authorized.
		fields["old_capacity"] = catalog.Capacity
		old, increaseErr := catalog.IncreaseCapacity(req.Capacity)
		change.Old = old
		change.New = catalog.Capacity
		return increaseErr
	})
	if err != nil {
		err = s.mapError(err)
		return CapacityChange{}, err
	}
	fields["new_capacity"] = change.New
	return change, nil
}

func (s *Service) AddItemType(ctx context.Context, req AddItemTypeRequest) (added ItemTypeAdded, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"owner":  normalizePrincipal(req.Owner),
		"name":   req.Name,
		"symbol": req.Symbol,
		"uri":    req.URI,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "add_item_type", err, fields)
		s.audit(ctx, "add_item_type", req.Caller, req.Owner, err, fields)
	}()

	added = ItemTypeAdded{Owner: normalizePrincipal(req.Owner)}
	_, err = s.mutateCatalog(ctx, req.Caller, req.Owner, func(catalog *Catalog) error {
		index, addErr := catalog.AddItemType(req.Name, req.Symbol, req.URI)
		if addErr != nil {
			return addErr
		}
		added.Index = index
		added.ItemType = catalog.ItemTypes[index].Clone()
		return nil
	})
	if err != nil {
		err = s.mapError(err)
		return ItemTypeAdded{}, err
	}
	fields["index"] = added.Index
	return added, nil
}

func (s *Service) SetRewardRate(ctx context.Context, req SetRewardRateRequest) (RewardRateChange, error) {
	return s.changeRewardRate(ctx, "set_reward_rate", req, (*Catalog).SetRewardRate)
}

func (s *Service) EditRewardRate(ctx context.Context, req SetRewardRateRequest) (RewardRateChange, error) {
	return s.changeRewardRate(ctx, "edit_reward_rate", req, (*Catalog).EditRewardRate)
}

func (s *Service) changeRewardRate(
	ctx context.Context,
	operation string,
	req SetRewardRateRequest,
	apply func(*Catalog, int, uint64) (uint64, error),
) (change RewardRateChange, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"owner": normalizePrincipal(req.Owner),
		"index": req.Index,
		"rate":  req.Rate,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, operation, err, fields)
		s.audit(ctx, operation, req.Caller, req.Owner, err, fields)
	}()

	change = RewardRateChange{Owner: normalizePrincipal(req.Owner), Index: req.Index}
	_, err = s.mutateCatalog(ctx, req.Caller, req.Owner, func(catalog *Catalog) error {
		old, applyErr := apply(catalog, req.Index, req.Rate)
		if applyErr != nil {
			return applyErr
		}
		change.Old = old
		change.New = req.Rate
		return nil
	})
	if err != nil {
		err = s.mapError(err)
		return RewardRateChange{}, err
	}
	fields["old_rate"] = change.Old
	fields["new_rate"] = change.New
	return change, nil
}

// Issue creates a fresh item instance of the item type at req.Index and mints
// req.Quantity units of it to the caller. The three external steps are not
// rolled back: when a later step fails the returned Issuance reports the
// last completed stage alongside a PartialIssuance error.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (issuance Issuance, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"owner":    normalizePrincipal(req.Owner),
		"index":    req.Index,
		"quantity": req.Quantity,
	}
	defer func() {
		fields["stage"] = string(issuance.Stage)
		s.observeOperation(ctx, startedAt, "issue", err, fields)
		s.audit(ctx, "issue", req.Caller, req.Owner, err, fields)
	}()

	caller := normalizePrincipal(req.Caller)
	if caller == "" {
		err = s.mapError(NewRedeemError(ErrorBadInput, "core: caller is required", nil))
		return Issuance{}, err
	}
	catalog, err := s.catalogStore.Get(ctx, req.Owner)
	if err != nil {
		err = s.mapError(err)
		return Issuance{}, err
	}
	item, err := catalog.ItemTypeAt(req.Index)
	if err != nil {
		err = s.mapError(err)
		return Issuance{}, err
	}
	if req.Quantity == 0 {
		err = s.mapError(NewRedeemError(ErrorInvalidQuantity, "core: issue quantity must be greater than zero", nil))
		return Issuance{}, err
	}

	instanceKey := strings.TrimSpace(req.InstanceKey)
	if instanceKey == "" {
		instanceKey = s.instanceKeys()
	}
	fields["instance_key"] = instanceKey
	issuance = Issuance{
		Owner:       catalog.Owner,
		InstanceKey: instanceKey,
		Recipient:   caller,
		Index:       req.Index,
		ItemType:    item.Clone(),
		Quantity:    req.Quantity,
		Stage:       IssuanceStagePending,
	}

	if createErr := s.metadataStore.CreateDescriptor(ctx, Descriptor{
		InstanceKey: instanceKey,
		Name:        item.Name,
		Symbol:      item.Symbol,
		URI:         item.URI,
	}); createErr != nil {
		err = s.mapError(ledgerRejected("create descriptor", createErr, map[string]any{"instance_key": instanceKey}))
		return issuance, err
	}
	issuance.Stage = IssuanceStageDescriptorCreated

	if fixErr := s.metadataStore.FixMaxSupply(ctx, instanceKey, req.Quantity); fixErr != nil {
		err = s.mapError(partialIssuance(issuance, "fix max supply", fixErr))
		return issuance, err
	}
	issuance.Stage = IssuanceStageSupplyFixed

	if mintErr := s.assetLedger.Mint(ctx, MintInstruction{
		Asset:     instanceKey,
		To:        caller,
		Authority: caller,
		Quantity:  req.Quantity,
	}); mintErr != nil {
		err = s.mapError(partialIssuance(issuance, "mint", mintErr))
		return issuance, err
	}
	issuance.Stage = IssuanceStageMinted
	return issuance, nil
}

// Redeem burns req.Quantity units of the presented item instance from the
// caller and pays the matching reward in credit from the catalog holding
// account.
func (s *Service) Redeem(ctx context.Context, req RedeemRequest) (redemption Redemption, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"owner":        normalizePrincipal(req.Owner),
		"instance_key": strings.TrimSpace(req.InstanceKey),
		"quantity":     req.Quantity,
	}
	defer func() {
		fields["state"] = string(redemption.State)
		s.observeOperation(ctx, startedAt, "redeem", err, fields)
		s.audit(ctx, "redeem", req.Caller, req.Owner, err, fields)
	}()

	caller := normalizePrincipal(req.Caller)
	instanceKey := strings.TrimSpace(req.InstanceKey)
	redemption = Redemption{
		Owner:       normalizePrincipal(req.Owner),
		Holder:      caller,
		InstanceKey: instanceKey,
		Index:       -1,
		Quantity:    req.Quantity,
		State:       RedemptionPresented,
	}
	reject := func(cause error) (Redemption, error) {
		redemption.State = RedemptionRejected
		return redemption, s.mapError(cause)
	}

	if caller == "" || instanceKey == "" {
		return reject(NewRedeemError(ErrorBadInput, "core: caller and instance key are required", nil))
	}
	if req.Quantity == 0 {
		return reject(NewRedeemError(ErrorInvalidQuantity, "core: redemption quantity must be greater than zero", nil))
	}
	catalog, getErr := s.catalogStore.Get(ctx, req.Owner)
	if getErr != nil {
		return reject(getErr)
	}
	descriptor, readErr := s.metadataStore.ReadDescriptor(ctx, instanceKey)
	if readErr != nil {
		return reject(NewRedeemError(ErrorInvalidMetadata,
			fmt.Sprintf("core: read descriptor for %s: %v", instanceKey, readErr),
			map[string]any{"instance_key": instanceKey},
		))
	}
	descriptor.InstanceKey = instanceKey

	quote, quoteErr := QuoteRedemption(catalog, descriptor, req.Quantity)
	quote.Holder = caller
	redemption = quote
	if quoteErr != nil {
		return reject(quoteErr)
	}
	fields["index"] = redemption.Index
	fields["rate"] = redemption.Rate
	fields["total"] = redemption.Total

	settlement := SettlementInstruction{
		Burn: BurnInstruction{
			Asset:     instanceKey,
			From:      caller,
			Authority: caller,
			Quantity:  req.Quantity,
		},
		Transfer: TransferInstruction{
			Asset:     catalog.CreditAsset,
			From:      catalog.HoldingAccount,
			To:        caller,
			Authority: catalog.HoldingAccount,
			Amount:    redemption.Total,
		},
	}
	if settleErr := s.settle(ctx, settlement); settleErr != nil {
		return reject(settleErr)
	}
	redemption.State = RedemptionSettled
	return redemption, nil
}

func (s *Service) settle(ctx context.Context, settlement SettlementInstruction) error {
	if settler, ok := s.assetLedger.(AtomicSettler); ok {
		if err := settler.Settle(ctx, settlement); err != nil {
			return ledgerRejected("settle redemption", err, map[string]any{"asset": settlement.Burn.Asset})
		}
		return nil
	}
	if err := s.assetLedger.Burn(ctx, settlement.Burn); err != nil {
		return ledgerRejected("burn", err, map[string]any{"asset": settlement.Burn.Asset})
	}
	if err := s.assetLedger.Transfer(ctx, settlement.Transfer); err != nil {
		inconsistent := NewRedeemError(ErrorInconsistentSettlement,
			fmt.Sprintf("core: burned %d of %s but credit transfer failed: %v",
				settlement.Burn.Quantity, settlement.Burn.Asset, err),
			map[string]any{
				"asset":         settlement.Burn.Asset,
				"holder":        settlement.Burn.From,
				"burned":        settlement.Burn.Quantity,
				"credit_asset":  settlement.Transfer.Asset,
				"credit_amount": settlement.Transfer.Amount,
			},
		)
		s.logError(ctx, "redemption requires reconciliation", map[string]any{
			"asset":         settlement.Burn.Asset,
			"holder":        settlement.Burn.From,
			"burned":        settlement.Burn.Quantity,
			"credit_amount": settlement.Transfer.Amount,
			"error":         err.Error(),
		})
		return inconsistent
	}
	return nil
}

// MintSupply mints amount units of the catalog credit asset into the catalog
// holding account.
func (s *Service) MintSupply(ctx context.Context, req MintSupplyRequest) (minted SupplyMint, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"owner":  normalizePrincipal(req.Owner),
		"amount": req.Amount,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "mint_supply", err, fields)
		s.audit(ctx, "mint_supply", req.Caller, req.Owner, err, fields)
	}()

	catalog, err := s.catalogStore.Get(ctx, req.Owner)
	if err != nil {
		err = s.mapError(err)
		return SupplyMint{}, err
	}
	if err = RequireOwner(req.Caller, catalog); err != nil {
		err = s.mapError(err)
		return SupplyMint{}, err
	}
	if req.Amount == 0 {
		err = s.mapError(NewRedeemError(ErrorInvalidAmount, "core: supply amount must be greater than zero", nil))
		return SupplyMint{}, err
	}

	minted = SupplyMint{
		Owner:       catalog.Owner,
		CreditAsset: catalog.CreditAsset,
		Recipient:   catalog.HoldingAccount,
		Amount:      req.Amount,
	}
	if mintErr := s.assetLedger.Mint(ctx, MintInstruction{
		Asset:     catalog.CreditAsset,
		To:        catalog.HoldingAccount,
		Authority: normalizePrincipal(req.Caller),
		Quantity:  req.Amount,
	}); mintErr != nil {
		err = s.mapError(ledgerRejected("mint supply", mintErr, map[string]any{"asset": catalog.CreditAsset}))
		return SupplyMint{}, err
	}
	fields["credit_asset"] = minted.CreditAsset
	fields["recipient"] = minted.Recipient
	return minted, nil
}

func (s *Service) GetCatalog(ctx context.Context, owner string) (Catalog, error) {
	catalog, err := s.catalogStore.Get(ctx, owner)
	if err != nil {
		return Catalog{}, s.mapError(err)
	}
	return catalog, nil
}

func (s *Service) GetHolderInfo(ctx context.Context, req HolderInfoRequest) (info HolderInfo, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"holder":         normalizePrincipal(req.Holder),
		"instance_asset": strings.TrimSpace(req.InstanceAsset),
		"credit_asset":   strings.TrimSpace(req.CreditAsset),
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "get_holder_info", err, fields)
	}()

	holder := normalizePrincipal(req.Holder)
	if holder == "" {
		err = s.mapError(NewRedeemError(ErrorBadInput, "core: holder is required", nil))
		return HolderInfo{}, err
	}
	info = HolderInfo{Holder: holder}
	info.ItemBalance, err = s.assetLedger.Balance(ctx, strings.TrimSpace(req.InstanceAsset), holder)
	if err != nil {
		err = s.mapError(ledgerRejected("item balance", err, nil))
		return HolderInfo{}, err
	}
	info.CreditBalance, err = s.assetLedger.Balance(ctx, strings.TrimSpace(req.CreditAsset), holder)
	if err != nil {
		err = s.mapError(ledgerRejected("credit balance", err, nil))
		return HolderInfo{}, err
	}
	return info, nil
}

// DeriveAddresses returns the deterministic keys for owner's catalog. Item
// assets are listed for each registered item type when the catalog exists;
// they are per-type addresses and differ from issued instance keys.
func (s *Service) DeriveAddresses(ctx context.Context, owner string) (CatalogAddresses, error) {
	owner = normalizePrincipal(owner)
	if owner == "" {
		return CatalogAddresses{}, s.mapError(NewRedeemError(ErrorBadInput, "core: owner is required", nil))
	}
	addresses := CatalogAddresses{
		Owner:      owner,
		CatalogKey: s.keys.CatalogKey(owner),
		ItemAssets: []string{},
	}
	addresses.CreditAsset = s.keys.CreditAsset(addresses.CatalogKey)

	catalog, err := s.catalogStore.Get(ctx, owner)
	if err != nil {
		if IsKind(err, ErrorCatalogNotFound) {
			return addresses, nil
		}
		return CatalogAddresses{}, s.mapError(err)
	}
	if catalog.CreditAsset != "" {
		addresses.CreditAsset = catalog.CreditAsset
	}
	for index := range catalog.ItemTypes {
		addresses.ItemAssets = append(addresses.ItemAssets, s.keys.ItemAsset(addresses.CatalogKey, index))
	}
	return addresses, nil
}

func (s *Service) ListAuditRecords(ctx context.Context, query AuditQuery) (AuditPage, error) {
	reader, ok := s.auditSink.(AuditReader)
	if !ok || reader == nil {
		return AuditPage{}, s.mapError(NewRedeemError(ErrorInternal, "core: audit reader is not configured", nil))
	}
	page, err := reader.ListAudit(ctx, query)
	if err != nil {
		return AuditPage{}, s.mapError(err)
	}
	return page, nil
}

// mutateCatalog commits mutate against owner's catalog after the authority
// guard accepts caller.
func (s *Service) mutateCatalog(ctx context.Context, caller string, owner string, mutate CatalogMutation) (Catalog, error) {
	return s.catalogStore.Update(ctx, owner, func(catalog *Catalog) error {
		if err := RequireOwner(caller, *catalog); err != nil {
			return err
		}
		return mutate(catalog)
	})
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func ledgerRejected(step string, cause error, metadata map[string]any) error {
	if IsKind(cause, ErrorLedgerRejected) {
		return cause
	}
	return goerrors.Wrap(cause, goerrors.CategoryExternal, fmt.Sprintf("core: %s rejected: %v", step, cause)).
		WithTextCode(ErrorLedgerRejected).
		WithMetadata(withStep(metadata, step))
}

func partialIssuance(issuance Issuance, step string, cause error) error {
	return NewRedeemError(ErrorPartialIssuance,
		fmt.Sprintf("core: issuance of %s stopped after %s: %s failed: %v", issuance.InstanceKey, issuance.Stage, step, cause),
		map[string]any{
			"instance_key": issuance.InstanceKey,
			"stage":        string(issuance.Stage),
			"step":         step,
		},
	)
}

func withStep(metadata map[string]any, step string) map[string]any {
	out := cloneFields(metadata)
	out["step"] = step
	return out
}
