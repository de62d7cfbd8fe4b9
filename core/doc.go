// Package core contains the redeemable catalog domain: catalog state and its
// invariants, the authority guard, item type registration, issuance,
// redemption and credit supply orchestration. Storage and transport adapters
// depend on this package; core must not depend on them.
package core
