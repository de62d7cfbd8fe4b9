package core

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var derivationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:redeem:catalog"))

// KeyDeriver produces deterministic keys for the sub-accounts a hosting
// transport addresses: the catalog itself, its credit asset and the asset of
// each item type slot.
type KeyDeriver struct {
	CatalogTag string
	CreditTag  string
	ItemTag    string
}

func NewKeyDeriver(cfg DerivationConfig) KeyDeriver {
	return KeyDeriver{
		CatalogTag: cfg.CatalogTag,
		CreditTag:  cfg.CreditTag,
		ItemTag:    cfg.ItemTag,
	}
}

func (d KeyDeriver) CatalogKey(owner string) string {
	return deriveKey(d.CatalogTag, normalizePrincipal(owner))
}

func (d KeyDeriver) CreditAsset(catalogKey string) string {
	return deriveKey(d.CreditTag, catalogKey)
}

// ItemAsset derives the address of the item type at index. Issued instances
// are keyed separately.
func (d KeyDeriver) ItemAsset(catalogKey string, index int) string {
	return deriveKey(d.ItemTag, catalogKey, strconv.Itoa(index))
}

func deriveKey(tag string, parts ...string) string {
	seed := append([]string{strings.TrimSpace(tag)}, parts...)
	return uuid.NewSHA1(derivationNamespace, []byte(strings.Join(seed, "\x1f"))).String()
}
