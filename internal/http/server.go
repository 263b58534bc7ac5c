// Package http exposes the aggregation engine over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"spendo/internal/amqp"
	"spendo/internal/analytics"
	"spendo/internal/core"
	"spendo/internal/log"
	"spendo/internal/middleware/ratelimit"
	"spendo/internal/middleware/security"
)

// Aggregator is the engine surface the handlers consume.
type Aggregator interface {
	MonthlyAggregate(ctx context.Context, userID string, year, month int) (core.PeriodAggregate, error)
	Subscriptions(ctx context.Context, userID string) (analytics.SubscriptionOverview, error)
}

// ExpenseRepository is the persistence surface for the CRUD and summary
// handlers. The grouped sums are computed SQL-side; unlike the analytics
// aggregate they reflect recorded transactions only, with no projection.
type ExpenseRepository interface {
	Insert(ctx context.Context, tx core.Transaction) error
	Delete(ctx context.Context, userID, id string) error
	ListRecent(ctx context.Context, userID string, limit int) ([]core.Transaction, error)
	SumGroupedByCategory(ctx context.Context, userID string, start, end time.Time) ([]core.CategoryAmount, error)
	SumGroupedByDay(ctx context.Context, userID string, start, end time.Time) ([]core.DayAmount, error)
}

// EventPublisher announces newly recorded expenses. A nil publisher disables
// events without failing requests.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error
}

type Server struct {
	http.Server

	engine    Aggregator
	repo      ExpenseRepository
	publisher EventPublisher
	limiter   *ratelimit.Limiter
}

const handlerTimeout = 7 * time.Second

func NewServer(addr string, engine Aggregator, repo ExpenseRepository, publisher EventPublisher) *Server {
	s := &Server{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/analytics", s.handleAnalytics)
	mux.HandleFunc("/api/subscriptions", s.handleSubscriptions)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/", s.handleExpenseByID)

	handler := s.withRateLimit(mux)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = log.RequestLogger(handler)

	s.Server = http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	s.RegisterOnShutdown(s.limiter.Stop)

	return s
}

// withRateLimit throttles write requests per client IP. Reads stay unlimited;
// the aggregate endpoints are the hot path and are already bounded by the
// handler timeout.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			clientIP := ratelimit.ClientIP(r)
			if !s.limiter.Allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
