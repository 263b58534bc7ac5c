package analytics

import (
	"sort"
	"time"

	"spendo/internal/core"
)

// UpcomingWindow is the horizon of the "due this week" view.
const UpcomingWindow = 7 * 24 * time.Hour

// UpcomingCharge pairs a subscription with its projected next payment date.
type UpcomingCharge struct {
	Subscription    core.Subscription
	NextPaymentDate time.Time
}

// NextOccurrence projects a subscription's next charge: the smallest date of
// the form anchor + k calendar months (k >= 0) that is not before ref.
//
// Month arithmetic uses time.AddDate, so a month-end anchor rolls over into
// the following month when the target month is shorter (Jan 31 + 1 month is
// Mar 2, or Mar 3 off leap years) rather than clamping to the month's last
// day.
func NextOccurrence(anchor, ref time.Time) time.Time {
	next := anchor
	for next.Before(ref) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}

// AnchorDay returns the subscription's original billing day-of-month. The
// merge step indexes injected charges by this day, not by the day of the
// projected occurrence, so a day-31 anchor stays on day 31 even when it is
// projected into a shorter month.
func AnchorDay(anchor time.Time) int {
	return anchor.Day()
}

// UpcomingWithin returns the active subscriptions whose next occurrence falls
// inside [ref, ref+window], both ends inclusive, sorted ascending by that
// date. Inactive subscriptions never appear.
func UpcomingWithin(subs []core.Subscription, ref time.Time, window time.Duration) []UpcomingCharge {
	cutoff := ref.Add(window)

	out := make([]UpcomingCharge, 0, len(subs))
	for _, sub := range subs {
		if !Active(sub) {
			continue
		}
		next := NextOccurrence(sub.AnchorDate, ref)
		if next.After(cutoff) {
			continue
		}
		out = append(out, UpcomingCharge{Subscription: sub, NextPaymentDate: next})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextPaymentDate.Equal(out[j].NextPaymentDate) {
			return out[i].NextPaymentDate.Before(out[j].NextPaymentDate)
		}
		return out[i].Subscription.Key < out[j].Subscription.Key
	})
	return out
}
