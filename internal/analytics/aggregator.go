package analytics

import (
	"sort"
	"time"

	"spendo/internal/core"
)

// TopMerchantLimit caps the merchant leaderboard in every aggregate.
const TopMerchantLimit = 3

// UnknownMerchant labels transactions without a merchant in the leaderboard.
const UnknownMerchant = "Unknown"

// AggregatePeriod computes the actual aggregates for a target range from the
// transactions recorded inside it, plus the comparison views over the
// transactions of the immediately preceding calendar month. It is a pure
// function of its inputs: callers pass the two already-fetched sets and
// receive a fresh PeriodAggregate.
func AggregatePeriod(current, previous []core.Transaction) core.PeriodAggregate {
	agg := core.PeriodAggregate{
		Total:      sumAmounts(current),
		ByCategory: sumByCategory(current),
		DailyTrend: sumByDay(current),
	}
	agg.TopMerchants = topMerchants(current, TopMerchantLimit)

	agg.LastPeriodTotal = sumAmounts(previous)
	agg.LastPeriodCount = len(previous)
	agg.LastPeriodByCategory = sumByCategory(previous)
	return agg
}

// InRange filters a transaction set down to the closed range [start, end].
func InRange(txs []core.Transaction, start, end time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func sumAmounts(txs []core.Transaction) core.Money {
	var total core.Money
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// sumByCategory groups amounts by category, descending by value. Groups are
// collected in first-appearance order and sorted stably, so equal values keep
// a deterministic order for any input.
func sumByCategory(txs []core.Transaction) []core.CategoryAmount {
	index := make(map[core.Category]int)
	groups := make([]core.CategoryAmount, 0)
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(groups)
			index[tx.Category] = i
			groups = append(groups, core.CategoryAmount{Name: tx.Category})
		}
		groups[i].Value = groups[i].Value.Add(tx.Amount)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Value.Cents > groups[j].Value.Cents
	})
	return groups
}

// sumByDay groups amounts by day-of-month, ascending by day.
func sumByDay(txs []core.Transaction) []core.DayAmount {
	index := make(map[int]int)
	groups := make([]core.DayAmount, 0)
	for _, tx := range txs {
		day := tx.Date.Day()
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, core.DayAmount{Day: day})
		}
		groups[i].Amount = groups[i].Amount.Add(tx.Amount)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Day < groups[j].Day })
	return groups
}

// topMerchants ranks merchants by summed amount, keeping the top n. A
// transaction without a merchant counts under "Unknown". Ties keep the
// first-appearance order of the groups.
func topMerchants(txs []core.Transaction, n int) []core.MerchantTotal {
	index := make(map[string]int)
	groups := make([]core.MerchantTotal, 0)
	for _, tx := range txs {
		merchant := tx.Merchant
		if merchant == "" {
			merchant = UnknownMerchant
		}
		i, ok := index[merchant]
		if !ok {
			i = len(groups)
			index[merchant] = i
			groups = append(groups, core.MerchantTotal{Merchant: merchant})
		}
		groups[i].Amount = groups[i].Amount.Add(tx.Amount)
		groups[i].Count++
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount.Cents > groups[j].Amount.Cents
	})
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}
