package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	redeemmigrations "github.com/goliatone/go-redeem/migrations"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// OpenConfig describes a persistence client for Open. It also satisfies the
// go-persistence-bun config contract.
type OpenConfig struct {
	Driver         string        `koanf:"driver" mapstructure:"driver"`
	DSN            string        `koanf:"dsn" mapstructure:"dsn"`
	Debug          bool          `koanf:"debug" mapstructure:"debug"`
	PingTimeout    time.Duration `koanf:"ping_timeout" mapstructure:"ping_timeout"`
	OtelIdentifier string        `koanf:"otel_identifier" mapstructure:"otel_identifier"`
	Migrate        bool          `koanf:"migrate" mapstructure:"migrate"`
	// MaxOpenConns defaults to 1 for sqlite so in-memory databases stay shared.
	MaxOpenConns int `koanf:"max_open_conns" mapstructure:"max_open_conns"`
}

func (c OpenConfig) GetDebug() bool {
	return c.Debug
}

func (c OpenConfig) GetDriver() string {
	return normalizeDriver(c.Driver)
}

func (c OpenConfig) GetServer() string {
	return c.DSN
}

func (c OpenConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c OpenConfig) GetOtelIdentifier() string {
	if strings.TrimSpace(c.OtelIdentifier) == "" {
		return "go-redeem"
	}
	return c.OtelIdentifier
}

// Open builds a persistence client for sqlite3 or postgres and, when
// cfg.Migrate is set, applies the embedded migrations for that dialect.
func Open(ctx context.Context, cfg OpenConfig) (*persistence.Client, error) {
	driver := normalizeDriver(cfg.Driver)
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}
	dialect, migrationDialect, err := resolveDialect(driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 && driver == DriverSQLite {
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	if !cfg.Migrate {
		return client, nil
	}

	_, err = redeemmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != migrationDialect {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, redeemmigrations.WithValidationTargets(migrationDialect))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return client, nil
}

func resolveDialect(driver string) (schema.Dialect, string, error) {
	switch driver {
	case DriverSQLite:
		return sqlitedialect.New(), redeemmigrations.DialectSQLite, nil
	case DriverPostgres:
		return pgdialect.New(), redeemmigrations.DialectPostgres, nil
	default:
		return nil, "", fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

func normalizeDriver(driver string) string {
	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return strings.TrimSpace(strings.ToLower(driver))
	}
}
