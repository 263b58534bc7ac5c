package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"spendo/internal/core"
)

// ExpenseStore is the persistence collaborator consumed by the engine. Any
// implementation satisfies the contract as long as it returns the user's
// transactions for a closed range and the full recurring-flagged history.
type ExpenseStore interface {
	QueryByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error)
	QueryAllRecurring(ctx context.Context, userID string) ([]core.Transaction, error)
}

// SubscriptionOverview is the derived subscription view: projected totals,
// the resolved subscriptions, and the charges due within the next week.
type SubscriptionOverview struct {
	MonthlyTotal  core.Money
	YearlyTotal   core.Money
	ActiveCount   int
	Subscriptions []core.Subscription
	UpcomingWeek  []UpcomingCharge
}

// Service orchestrates the engine: it fetches one immutable snapshot per
// request, runs the independent sub-computations concurrently, and joins them
// at the merge step. All state is request-scoped; identical snapshots always
// produce identical output.
type Service struct {
	store ExpenseStore
	keyFn KeyFunc
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithKeyFunc swaps the canonical-key normalization, mainly for tests.
func WithKeyFunc(fn KeyFunc) Option {
	return func(s *Service) { s.keyFn = fn }
}

// WithClock swaps the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store ExpenseStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		keyFn: CanonicalKey,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MonthRange returns the closed [start, end] range of a calendar month.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// MonthlyAggregate produces the recurring-aware aggregate for one calendar
// month: the actual aggregates from recorded transactions, merged with the
// projected charges of active subscriptions not yet recorded in that month.
//
// Validation happens before any store query. A store failure aborts the whole
// aggregation; no partial aggregate is ever returned. Context cancellation
// propagates into the concurrent fetches through the errgroup.
func (s *Service) MonthlyAggregate(ctx context.Context, userID string, year, month int) (core.PeriodAggregate, error) {
	if userID == "" {
		return core.PeriodAggregate{}, core.ErrEmptyUserID
	}
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return core.PeriodAggregate{}, core.ErrInvalidRange
	}

	start, end := MonthRange(year, month)
	prevStart, prevEnd := MonthRange(prevMonth(year, month))

	var current, previous, recurring []core.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.store.QueryByRange(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("query current period: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		previous, err = s.store.QueryByRange(gctx, userID, prevStart, prevEnd)
		if err != nil {
			return fmt.Errorf("query previous period: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recurring, err = s.store.QueryAllRecurring(gctx, userID)
		if err != nil {
			return fmt.Errorf("query recurring history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.PeriodAggregate{}, err
	}

	// The actual aggregates and the subscription chain are independent pure
	// functions over the snapshot; run both sides before joining.
	var (
		actual core.PeriodAggregate
		subs   []core.Subscription
	)
	cg, _ := errgroup.WithContext(ctx)
	cg.Go(func() error {
		actual = AggregatePeriod(current, previous)
		return nil
	})
	cg.Go(func() error {
		subs = SortedSubscriptions(ResolveSubscriptions(recurring, s.keyFn))
		return nil
	})
	_ = cg.Wait()

	merged := MergeProjected(actual, subs, RecordedKeys(current, s.keyFn))

	slog.DebugContext(ctx, "Monthly aggregate computed",
		"user_id", userID,
		"year", year,
		"month", month,
		"transactions", len(current),
		"subscriptions", len(subs),
		"total_cents", merged.Total.Cents)

	return merged, nil
}

// Subscriptions produces the subscription view from the full recurring
// history: one representative per canonical key, monthly and yearly projected
// totals over the active ones, and the charges due within the next seven
// days. The cadence is fixed at monthly, so the yearly total is twelve times
// the monthly one.
func (s *Service) Subscriptions(ctx context.Context, userID string) (SubscriptionOverview, error) {
	if userID == "" {
		return SubscriptionOverview{}, core.ErrEmptyUserID
	}

	recurring, err := s.store.QueryAllRecurring(ctx, userID)
	if err != nil {
		return SubscriptionOverview{}, fmt.Errorf("query recurring history: %w", err)
	}

	subs := SortedSubscriptions(ResolveSubscriptions(recurring, s.keyFn))

	active := ActiveOnly(subs)
	overview := SubscriptionOverview{
		Subscriptions: subs,
		ActiveCount:   len(active),
	}
	for _, sub := range active {
		overview.MonthlyTotal = overview.MonthlyTotal.Add(sub.Amount)
	}
	overview.YearlyTotal = overview.MonthlyTotal.MulInt(12)
	overview.UpcomingWeek = UpcomingWithin(subs, s.now().UTC(), UpcomingWindow)

	return overview, nil
}

func prevMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
