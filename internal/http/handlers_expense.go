package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"spendo/internal/amqp"
	"spendo/internal/core"
)

const defaultListLimit = 50

type createExpenseRequest struct {
	UserID      string      `json:"userId"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"` // YYYY-MM-DD
	Merchant    string      `json:"merchant"`
	Description string      `json:"description"`
	IsRecurring bool        `json:"isRecurring"`
	Status      string      `json:"subscriptionStatus"`
}

type expenseView struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Merchant    string  `json:"merchant,omitempty"`
	Description string  `json:"description,omitempty"`
	IsRecurring bool    `json:"isRecurring"`
	Status      string  `json:"subscriptionStatus,omitempty"`
}

// handleExpenses dispatches /api/expenses by method.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListExpenses(w, r)
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		date = parsed
	}

	status := core.SubscriptionStatus(strings.TrimSpace(req.Status))
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid subscriptionStatus")
		return
	}

	tx := core.Transaction{
		ID:     uuid.NewString(),
		UserID: strings.TrimSpace(req.UserID),
		Amount: core.Money{Cents: cents},
		// The fallback category is resolved here, at ingestion, so every
		// stored transaction already carries a valid display category.
		Category:    core.ParseCategory(req.Category),
		Date:        date,
		Merchant:    strings.TrimSpace(req.Merchant),
		Description: strings.TrimSpace(req.Description),
		IsRecurring: req.IsRecurring,
		Status:      status,
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.Insert(ctx, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to insert expense", "user_id", tx.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	// Event publishing is best effort; the expense is already saved.
	if s.publisher != nil {
		msg := &amqp.ExpenseCreatedMessage{
			ID:          tx.ID,
			UserID:      tx.UserID,
			AmountCents: tx.Amount.Cents,
			Category:    string(tx.Category),
			Recurring:   tx.IsRecurring,
			Timestamp:   time.Now().UTC(),
		}
		if err := s.publisher.PublishExpenseCreated(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense created event",
				"id", tx.ID, "error", err)
		}
	}

	writeData(w, http.StatusCreated, buildExpenseView(tx))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	user := userID(r)
	if user == "" {
		writeError(w, http.StatusBadRequest, "missing user parameter")
		return
	}

	limit := defaultListLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	txs, err := s.repo.ListRecent(ctx, user, limit)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list expenses", "user_id", user, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	views := make([]expenseView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, buildExpenseView(tx))
	}
	writeData(w, http.StatusOK, views)
}

// handleExpenseByID serves DELETE /api/expenses/{id}.
func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	user := userID(r)
	if user == "" {
		writeError(w, http.StatusBadRequest, "missing user parameter")
		return
	}

	if err := s.repo.Delete(ctx, user, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(ctx, "Failed to delete expense", "id", id, "user_id", user, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeData(w, http.StatusOK, map[string]string{"id": id})
}

func buildExpenseView(tx core.Transaction) expenseView {
	return expenseView{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Amount:      tx.Amount.Amount(),
		Category:    string(tx.Category),
		Date:        tx.Date.Format("2006-01-02"),
		Merchant:    tx.Merchant,
		Description: tx.Description,
		IsRecurring: tx.IsRecurring,
		Status:      string(tx.Status),
	}
}
