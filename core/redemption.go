package core

import (
	"fmt"
	"math/bits"
)

// QuoteRedemption walks a presented descriptor through matching and reward
// computation without touching the ledger. The returned redemption is in the
// Computed state on success and Rejected otherwise.
func QuoteRedemption(catalog Catalog, descriptor Descriptor, quantity uint64) (Redemption, error) {
	redemption := Redemption{
		Owner:       catalog.Owner,
		InstanceKey: descriptor.InstanceKey,
		Index:       -1,
		Quantity:    quantity,
		State:       RedemptionPresented,
	}
	if quantity == 0 {
		redemption.State = RedemptionRejected
		return redemption, NewRedeemError(ErrorInvalidQuantity, "core: redemption quantity must be greater than zero", nil)
	}

	index, item, ok := catalog.MatchItemType(descriptor.Name, descriptor.URI)
	if !ok {
		redemption.State = RedemptionRejected
		return redemption, NewRedeemError(ErrorUnknownItemType, "core: presented item matches no catalog item type",
			map[string]any{"name": TrimPadding(descriptor.Name), "uri": TrimPadding(descriptor.URI)},
		)
	}
	redemption.Index = index
	redemption.ItemType = item
	redemption.State = RedemptionMatched

	if !item.HasRewardRate() {
		redemption.State = RedemptionRejected
		return redemption, NewRedeemError(ErrorRateNotConfigured,
			fmt.Sprintf("core: item type %d has no reward rate", index),
			map[string]any{"index": index},
		)
	}
	total, err := CheckedMul(item.Rate(), quantity)
	if err != nil {
		redemption.State = RedemptionRejected
		return redemption, err
	}
	redemption.Rate = item.Rate()
	redemption.Total = total
	redemption.State = RedemptionComputed
	return redemption, nil
}

// CheckedMul multiplies two amounts, failing when the product does not fit in
// 64 bits.
func CheckedMul(rate uint64, quantity uint64) (uint64, error) {
	hi, lo := bits.Mul64(rate, quantity)
	if hi != 0 {
		return 0, NewRedeemError(ErrorArithmeticOverflow, "core: reward total overflows",
			map[string]any{"rate": rate, "quantity": quantity},
		)
	}
	return lo, nil
}
