package core

import (
	"fmt"
	"strings"
	"time"
)

// NewCatalog returns an empty catalog for owner. Capacity must lie in
// [MinCatalogCapacity, MaxInitialCatalogCapacity].
func NewCatalog(owner string, capacity int) (Catalog, error) {
	owner = normalizePrincipal(owner)
	if owner == "" {
		return Catalog{}, NewRedeemError(ErrorBadInput, "core: catalog owner is required", nil)
	}
	if capacity < MinCatalogCapacity || capacity > MaxInitialCatalogCapacity {
		return Catalog{}, NewRedeemError(ErrorInvalidCapacity,
			fmt.Sprintf("core: capacity %d outside [%d, %d]", capacity, MinCatalogCapacity, MaxInitialCatalogCapacity),
			map[string]any{"capacity": capacity},
		)
	}
	now := time.Now().UTC()
	return Catalog{
		Owner:          owner,
		Capacity:       capacity,
		ItemTypes:      []ItemType{},
		HoldingAccount: owner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IncreaseCapacity raises the catalog capacity. There is no upper bound once
// the catalog exists.
func (c *Catalog) IncreaseCapacity(requested int) (int, error) {
	old := c.Capacity
	if requested <= old {
		return old, NewRedeemError(ErrorCapacityNotIncreasing,
			fmt.Sprintf("core: capacity %d does not exceed current %d", requested, old),
			map[string]any{"current": old, "requested": requested},
		)
	}
	c.Capacity = requested
	return old, nil
}

// AddItemType appends a new item type without a reward rate and returns its
// index.
func (c *Catalog) AddItemType(name string, symbol string, uri string) (int, error) {
	if len(c.ItemTypes) >= c.Capacity {
		return 0, NewRedeemError(ErrorCatalogFull,
			fmt.Sprintf("core: catalog holds %d of %d item types", len(c.ItemTypes), c.Capacity),
			map[string]any{"capacity": c.Capacity},
		)
	}
	if err := validateItemField("name", name, MaxItemNameLength); err != nil {
		return 0, err
	}
	if err := validateItemField("symbol", symbol, MaxItemSymbolLength); err != nil {
		return 0, err
	}
	if err := validateItemField("uri", uri, MaxItemURILength); err != nil {
		return 0, err
	}
	c.ItemTypes = append(c.ItemTypes, ItemType{Name: name, Symbol: symbol, URI: uri})
	return len(c.ItemTypes) - 1, nil
}

// SetRewardRate assigns rate to the item type at index and returns the previous
// rate, zero when none was configured. An existing rate is overwritten.
func (c *Catalog) SetRewardRate(index int, rate uint64) (uint64, error) {
	if _, err := c.ItemTypeAt(index); err != nil {
		return 0, err
	}
	if rate == 0 {
		return 0, NewRedeemError(ErrorInvalidRate, "core: reward rate must be greater than zero",
			map[string]any{"index": index},
		)
	}
	item := &c.ItemTypes[index]
	old := item.Rate()
	next := rate
	item.RewardRate = &next
	return old, nil
}

// EditRewardRate has the same contract as SetRewardRate.
func (c *Catalog) EditRewardRate(index int, rate uint64) (uint64, error) {
	return c.SetRewardRate(index, rate)
}

func (c Catalog) ItemTypeAt(index int) (ItemType, error) {
	if index < 0 || index >= len(c.ItemTypes) {
		return ItemType{}, NewRedeemError(ErrorIndexOutOfRange,
			fmt.Sprintf("core: item type index %d out of range [0, %d)", index, len(c.ItemTypes)),
			map[string]any{"index": index, "count": len(c.ItemTypes)},
		)
	}
	return c.ItemTypes[index], nil
}

// MatchItemType returns the first item type whose name and uri equal the
// presented values once trailing NUL padding is removed from them.
func (c Catalog) MatchItemType(name string, uri string) (int, ItemType, bool) {
	name = TrimPadding(name)
	uri = TrimPadding(uri)
	for index, item := range c.ItemTypes {
		if item.Name == name && item.URI == uri {
			return index, item, true
		}
	}
	return -1, ItemType{}, false
}

// TrimPadding removes the trailing NUL bytes fixed-width descriptor fields
// are padded with.
func TrimPadding(value string) string {
	return strings.TrimRight(value, "\x00")
}

func validateItemField(field string, value string, maxLength int) error {
	if value == "" {
		return NewRedeemError(ErrorEmptyField, fmt.Sprintf("core: item %s is required", field),
			map[string]any{"field": field},
		)
	}
	if len(value) > maxLength {
		return NewRedeemError(ErrorFieldTooLong,
			fmt.Sprintf("core: item %s exceeds %d bytes", field, maxLength),
			map[string]any{"field": field, "length": len(value), "max_length": maxLength},
		)
	}
	return nil
}

// RequireOwner rejects callers other than the catalog owner. Gated operations
// run it before any other validation. The caller must match the stored owner
// byte for byte; padding is not trimmed here.
func RequireOwner(caller string, catalog Catalog) error {
	if normalizePrincipal(caller) == "" || caller != catalog.Owner {
		return NewRedeemError(ErrorUnauthorized, "core: caller is not the catalog owner",
			map[string]any{"caller": caller, "owner": catalog.Owner},
		)
	}
	return nil
}
