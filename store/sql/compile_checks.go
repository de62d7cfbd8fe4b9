package sqlstore

import "github.com/goliatone/go-redeem/core"

var (
	_ core.CatalogStore           = (*CatalogStore)(nil)
	_ core.CatalogStore           = (*CachedCatalogStore)(nil)
	_ core.AuditSink              = (*AuditStore)(nil)
	_ core.AuditReader            = (*AuditStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
