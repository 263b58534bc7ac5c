package analytics

import (
	"sort"

	"spendo/internal/core"
)

// MergeProjected injects projected-but-unrecorded subscription charges into an
// already-computed aggregate and returns the result as a new value; the input
// aggregate is never mutated, so the merge is safe to run concurrently with
// readers of the original.
//
// Each subscription that is active and whose canonical key is not in the
// already-recorded set contributes exactly once: its amount is added to the
// total, upserted into the category breakdown under its category, and upserted
// into the daily trend under its original billing day-of-month. A key present
// in recorded contributes nothing, since the period aggregator already counted
// the recorded transaction.
//
// The daily-trend injection may create a day number that does not exist in the
// target period (a day-31 anchor injected into February); consumers treat the
// trend as a sparse series keyed by billing day.
//
// After all injections the category view is re-sorted descending by value and
// the daily trend ascending by day, restoring the aggregate's ordering
// invariant. sum(ByCategory) == Total == sum(DailyTrend) holds on the output
// whenever it held on the input.
func MergeProjected(agg core.PeriodAggregate, subs []core.Subscription, recorded map[string]struct{}) core.PeriodAggregate {
	out := agg.Clone()

	injected := false
	for _, sub := range subs {
		if !Active(sub) {
			continue
		}
		if _, ok := recorded[sub.Key]; ok {
			continue
		}

		out.Total = out.Total.Add(sub.Amount)
		out.ByCategory = upsertCategory(out.ByCategory, sub.Category, sub.Amount)
		out.DailyTrend = upsertDay(out.DailyTrend, AnchorDay(sub.AnchorDate), sub.Amount)
		injected = true
	}

	if injected {
		sort.SliceStable(out.ByCategory, func(i, j int) bool {
			return out.ByCategory[i].Value.Cents > out.ByCategory[j].Value.Cents
		})
		sort.Slice(out.DailyTrend, func(i, j int) bool {
			return out.DailyTrend[i].Day < out.DailyTrend[j].Day
		})
	}
	return out
}

func upsertCategory(groups []core.CategoryAmount, name core.Category, amount core.Money) []core.CategoryAmount {
	for i := range groups {
		if groups[i].Name == name {
			groups[i].Value = groups[i].Value.Add(amount)
			return groups
		}
	}
	return append(groups, core.CategoryAmount{Name: name, Value: amount})
}

func upsertDay(groups []core.DayAmount, day int, amount core.Money) []core.DayAmount {
	for i := range groups {
		if groups[i].Day == day {
			groups[i].Amount = groups[i].Amount.Add(amount)
			return groups
		}
	}
	return append(groups, core.DayAmount{Day: day, Amount: amount})
}
