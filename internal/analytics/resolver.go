package analytics

import (
	"sort"

	"spendo/internal/core"
)

// ResolveSubscriptions collapses a user's recurring-flagged history into one
// canonical subscription per identity: the transactions are ordered newest
// first and the first one seen for each canonical key becomes the
// representative ("most recent wins"). Ties on the date are broken by ID so
// the result is deterministic for any input order.
//
// Empty input yields an empty map, not an error.
func ResolveSubscriptions(txs []core.Transaction, keyFn KeyFunc) map[string]core.Subscription {
	if keyFn == nil {
		keyFn = CanonicalKey
	}

	sorted := append([]core.Transaction(nil), txs...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].ID > sorted[j].ID
	})

	subs := make(map[string]core.Subscription, len(sorted))
	for _, tx := range sorted {
		key := keyFn(tx)
		if _, seen := subs[key]; seen {
			continue
		}
		subs[key] = core.Subscription{
			Key:         key,
			Transaction: tx,
			Status:      tx.Status,
			Amount:      tx.Amount,
			Category:    tx.Category,
			AnchorDate:  tx.Date,
		}
	}
	return subs
}

// SortedSubscriptions flattens a resolved mapping into a slice ordered by
// canonical key, giving downstream folds a deterministic iteration order.
func SortedSubscriptions(subs map[string]core.Subscription) []core.Subscription {
	out := make([]core.Subscription, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Active implements the activation policy: only an explicit inactive status
// excludes a subscription. Any other value, including unset, counts as active.
// Inactive subscriptions contribute to no downstream total, category sum,
// daily-trend injection, or upcoming-window computation.
func Active(sub core.Subscription) bool {
	return sub.Status != core.StatusInactive
}

// ActiveOnly filters a subscription slice down to the active ones.
func ActiveOnly(subs []core.Subscription) []core.Subscription {
	out := make([]core.Subscription, 0, len(subs))
	for _, sub := range subs {
		if Active(sub) {
			out = append(out, sub)
		}
	}
	return out
}

// RecordedKeys collects the canonical keys of recurring transactions already
// present in the target range. The merge step suppresses injection for these
// keys so a subscription is never counted twice. Membership is key-only and
// scoped to the given transaction set, not date-window aware.
func RecordedKeys(txs []core.Transaction, keyFn KeyFunc) map[string]struct{} {
	if keyFn == nil {
		keyFn = CanonicalKey
	}
	keys := make(map[string]struct{})
	for _, tx := range txs {
		if tx.IsRecurring {
			keys[keyFn(tx)] = struct{}{}
		}
	}
	return keys
}
