package core

import (
	"fmt"
	"strings"
)

type DerivationConfig struct {
	CatalogTag string `koanf:"catalog_tag" mapstructure:"catalog_tag"`
	CreditTag  string `koanf:"credit_tag" mapstructure:"credit_tag"`
	ItemTag    string `koanf:"item_tag" mapstructure:"item_tag"`
}

type AuditConfig struct {
	Enabled bool `koanf:"enabled" mapstructure:"enabled"`
}

type Config struct {
	ServiceName string           `koanf:"service_name" mapstructure:"service_name"`
	Derivation  DerivationConfig `koanf:"derivation" mapstructure:"derivation"`
	Audit       AuditConfig      `koanf:"audit" mapstructure:"audit"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "redeem",
		Derivation: DerivationConfig{
			CatalogTag: "nft-config",
			CreditTag:  "redeemable-mint",
			ItemTag:    "nft-mint",
		},
		Audit: AuditConfig{Enabled: true},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	tags := map[string]string{
		"derivation.catalog_tag": c.Derivation.CatalogTag,
		"derivation.credit_tag":  c.Derivation.CreditTag,
		"derivation.item_tag":    c.Derivation.ItemTag,
	}
	for _, key := range []string{"derivation.catalog_tag", "derivation.credit_tag", "derivation.item_tag"} {
		if strings.TrimSpace(tags[key]) == "" {
			return fmt.Errorf("core: %s is required", key)
		}
	}
	if c.Derivation.CatalogTag == c.Derivation.CreditTag || c.Derivation.CreditTag == c.Derivation.ItemTag ||
		c.Derivation.CatalogTag == c.Derivation.ItemTag {
		return fmt.Errorf("core: derivation tags must be distinct")
	}
	return nil
}
