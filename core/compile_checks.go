package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ RedeemService = (*Service)(nil)
	_ CatalogStore  = (*MemoryCatalogStore)(nil)
	_ MetadataStore = (*MemoryMetadataStore)(nil)
	_ AssetLedger   = (*MemoryAssetLedger)(nil)
	_ AtomicSettler = (*MemoryAssetLedger)(nil)
	_ AuditSink     = (*MemoryAuditLog)(nil)
	_ AuditReader   = (*MemoryAuditLog)(nil)
	_ JobWorkerHook = (*LoggingJobHook)(nil)

	_ MetricsRecorder = NopMetricsRecorder{}
	_ Logger          = glog.Nop()
	_ LoggerProvider  = glog.ProviderFromLogger(glog.Nop())
)
