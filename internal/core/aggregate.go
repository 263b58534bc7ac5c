package core

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name  Category
	Value Money
}

// DayAmount is an amount aggregated under one day-of-month (1..31).
type DayAmount struct {
	Day    int
	Amount Money
}

// MerchantTotal is a merchant's summed spend and transaction count in a range.
type MerchantTotal struct {
	Merchant string
	Amount   Money
	Count    int
}

// PeriodAggregate holds every derived view for one aggregation period plus the
// comparison views for the immediately preceding calendar month.
//
// Invariant: sum(ByCategory) == Total == sum(DailyTrend), at every stage of
// computation including after the projected-subscription merge. Amounts are
// integer cents, so the sums hold exactly.
type PeriodAggregate struct {
	Total                Money
	ByCategory           []CategoryAmount // distinct names, desc by value
	DailyTrend           []DayAmount      // distinct days, asc by day
	TopMerchants         []MerchantTotal
	LastPeriodTotal      Money
	LastPeriodCount      int
	LastPeriodByCategory []CategoryAmount
}

// CheckInvariant verifies the sum invariant between the three main views.
func (a PeriodAggregate) CheckInvariant() bool {
	var byCat, byDay int64
	for _, c := range a.ByCategory {
		byCat += c.Value.Cents
	}
	for _, d := range a.DailyTrend {
		byDay += d.Amount.Cents
	}
	return byCat == a.Total.Cents && byDay == a.Total.Cents
}

// Clone returns a deep copy so the merge step can produce a new aggregate
// without mutating its input.
func (a PeriodAggregate) Clone() PeriodAggregate {
	out := a
	out.ByCategory = append([]CategoryAmount(nil), a.ByCategory...)
	out.DailyTrend = append([]DayAmount(nil), a.DailyTrend...)
	out.TopMerchants = append([]MerchantTotal(nil), a.TopMerchants...)
	out.LastPeriodByCategory = append([]CategoryAmount(nil), a.LastPeriodByCategory...)
	return out
}
