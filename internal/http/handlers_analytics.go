package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"spendo/internal/analytics"
	"spendo/internal/core"
)

type categoryView struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type dayView struct {
	Day    int     `json:"day"`
	Amount float64 `json:"amount"`
}

type merchantView struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

type analyticsView struct {
	Total               float64        `json:"total"`
	LastMonthTotal      float64        `json:"lastMonthTotal"`
	LastMonthCount      int            `json:"lastMonthCount"`
	ByCategory          []categoryView `json:"byCategory"`
	LastMonthByCategory []categoryView `json:"lastMonthByCategory"`
	DailyTrend          []dayView      `json:"dailyTrend"`
	TopMerchants        []merchantView `json:"topMerchants"`
}

type subscriptionView struct {
	Key             string  `json:"key"`
	Label           string  `json:"label"`
	Amount          float64 `json:"amount"`
	Category        string  `json:"category"`
	Status          string  `json:"status"`
	LastCharged     string  `json:"lastCharged"`
	NextPaymentDate string  `json:"nextPaymentDate,omitempty"`
}

type subscriptionsResponse struct {
	MonthlyTotal     float64            `json:"monthlyTotal"`
	YearlyTotal      float64            `json:"yearlyTotal"`
	ActiveCount      int                `json:"activeCount"`
	Subscriptions    []subscriptionView `json:"subscriptions"`
	UpcomingThisWeek []subscriptionView `json:"upcomingThisWeek"`
}

// handleAnalytics serves the recurring-aware monthly aggregate.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	user := userID(r)
	if user == "" {
		writeError(w, http.StatusBadRequest, "missing user parameter")
		return
	}
	year, month, ok := parseYearMonth(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "year and month must be numeric")
		return
	}

	agg, err := s.engine.MonthlyAggregate(ctx, user, year, month)
	if err != nil {
		if errors.Is(err, core.ErrInvalidRange) || errors.Is(err, core.ErrEmptyUserID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(ctx, "Monthly aggregate failed",
			"user_id", user, "year", year, "month", month, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeData(w, http.StatusOK, buildAnalyticsView(agg))
}

// handleSubscriptions serves the subscription overview.
func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	user := userID(r)
	if user == "" {
		writeError(w, http.StatusBadRequest, "missing user parameter")
		return
	}

	overview, err := s.engine.Subscriptions(ctx, user)
	if err != nil {
		slog.ErrorContext(ctx, "Subscription overview failed", "user_id", user, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	resp := subscriptionsResponse{
		MonthlyTotal:     overview.MonthlyTotal.Amount(),
		YearlyTotal:      overview.YearlyTotal.Amount(),
		ActiveCount:      overview.ActiveCount,
		Subscriptions:    make([]subscriptionView, 0, len(overview.Subscriptions)),
		UpcomingThisWeek: make([]subscriptionView, 0, len(overview.UpcomingWeek)),
	}
	for _, sub := range overview.Subscriptions {
		resp.Subscriptions = append(resp.Subscriptions, buildSubscriptionView(sub, time.Time{}))
	}
	for _, up := range overview.UpcomingWeek {
		resp.UpcomingThisWeek = append(resp.UpcomingThisWeek, buildSubscriptionView(up.Subscription, up.NextPaymentDate))
	}

	writeData(w, http.StatusOK, resp)
}

type summaryView struct {
	ByCategory []categoryView `json:"byCategory"`
	DailyTrend []dayView      `json:"dailyTrend"`
}

// handleSummary serves recorded-only grouped sums, computed in SQL. Projected
// subscription charges are not included; /api/analytics is the merged view.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	user := userID(r)
	if user == "" {
		writeError(w, http.StatusBadRequest, "missing user parameter")
		return
	}
	year, month, ok := parseYearMonth(r)
	if !ok || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "year and month must be a valid period")
		return
	}
	start, end := analytics.MonthRange(year, month)

	byCategory, err := s.repo.SumGroupedByCategory(ctx, user, start, end)
	if err != nil {
		slog.ErrorContext(ctx, "Category summary failed", "user_id", user, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	byDay, err := s.repo.SumGroupedByDay(ctx, user, start, end)
	if err != nil {
		slog.ErrorContext(ctx, "Daily summary failed", "user_id", user, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	view := summaryView{
		ByCategory: make([]categoryView, 0, len(byCategory)),
		DailyTrend: make([]dayView, 0, len(byDay)),
	}
	for _, c := range byCategory {
		view.ByCategory = append(view.ByCategory, categoryView{Name: string(c.Name), Value: c.Value.Amount()})
	}
	for _, d := range byDay {
		view.DailyTrend = append(view.DailyTrend, dayView{Day: d.Day, Amount: d.Amount.Amount()})
	}
	writeData(w, http.StatusOK, view)
}

func buildAnalyticsView(agg core.PeriodAggregate) analyticsView {
	view := analyticsView{
		Total:               agg.Total.Amount(),
		LastMonthTotal:      agg.LastPeriodTotal.Amount(),
		LastMonthCount:      agg.LastPeriodCount,
		ByCategory:          make([]categoryView, 0, len(agg.ByCategory)),
		LastMonthByCategory: make([]categoryView, 0, len(agg.LastPeriodByCategory)),
		DailyTrend:          make([]dayView, 0, len(agg.DailyTrend)),
		TopMerchants:        make([]merchantView, 0, len(agg.TopMerchants)),
	}
	for _, c := range agg.ByCategory {
		view.ByCategory = append(view.ByCategory, categoryView{Name: string(c.Name), Value: c.Value.Amount()})
	}
	for _, c := range agg.LastPeriodByCategory {
		view.LastMonthByCategory = append(view.LastMonthByCategory, categoryView{Name: string(c.Name), Value: c.Value.Amount()})
	}
	for _, d := range agg.DailyTrend {
		view.DailyTrend = append(view.DailyTrend, dayView{Day: d.Day, Amount: d.Amount.Amount()})
	}
	for _, m := range agg.TopMerchants {
		view.TopMerchants = append(view.TopMerchants, merchantView{Merchant: m.Merchant, Amount: m.Amount.Amount(), Count: m.Count})
	}
	return view
}

func buildSubscriptionView(sub core.Subscription, next time.Time) subscriptionView {
	view := subscriptionView{
		Key:         sub.Key,
		Label:       sub.Transaction.Label(),
		Amount:      sub.Amount.Amount(),
		Category:    string(sub.Category),
		Status:      string(sub.Status),
		LastCharged: sub.AnchorDate.Format("2006-01-02"),
	}
	if !next.IsZero() {
		view.NextPaymentDate = next.Format("2006-01-02")
	}
	return view
}
