// Package analytics implements the recurring-aware aggregation engine: it
// turns a user's raw transaction history into period aggregates that also
// account for subscriptions expected to recur but not yet recorded in the
// target period.
package analytics

import (
	"strings"

	"spendo/internal/core"
)

// KeyFunc derives the canonical identity string used to group recurring
// transactions into one subscription. The function is pluggable so the
// normalization can be tested and replaced in isolation.
type KeyFunc func(core.Transaction) string

// CanonicalKey normalizes the merchant (falling back to the description when
// the merchant is absent) by lowercasing and trimming whitespace. This
// recognizes the same charge across months despite minor formatting drift.
//
// Two textually distinct merchants that normalize to the same string are
// merged into one subscription. That identity collision is a known limitation
// of string normalization, accepted deliberately.
func CanonicalKey(tx core.Transaction) string {
	return strings.ToLower(strings.TrimSpace(tx.Label()))
}
