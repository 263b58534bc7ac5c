// Package storage implements the ExpenseStore collaborator on SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendo/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const txColumns = `id, user_id, amount_cents, category, date_unix, merchant, description, is_recurring, subscription_status`

// Insert persists a validated transaction.
func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+txColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount.Cents, string(tx.Category), tx.Date.UTC().Unix(),
		tx.Merchant, tx.Description, boolToInt(tx.IsRecurring), string(tx.Status),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category,
		"recurring", tx.IsRecurring)

	return nil
}

// Delete removes a transaction by id for the given user.
func (r *SQLiteRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// QueryByRange returns the user's transactions inside the closed [start, end]
// range, oldest first.
func (r *SQLiteRepository) QueryByRange(ctx context.Context, userID string, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions
		 WHERE user_id = ? AND date_unix >= ? AND date_unix <= ?
		 ORDER BY date_unix ASC, id ASC`,
		userID, start.UTC().Unix(), end.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("query transactions by range: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// QueryAllRecurring returns the user's full recurring-flagged history, any
// date, newest first.
func (r *SQLiteRepository) QueryAllRecurring(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions
		 WHERE user_id = ? AND is_recurring = 1
		 ORDER BY date_unix DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query recurring transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListRecent returns the user's most recent transactions, capped at limit.
func (r *SQLiteRepository) ListRecent(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions
		 WHERE user_id = ?
		 ORDER BY date_unix DESC, id DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SumGroupedByCategory pushes the category grouping into SQL. It satisfies
// the same grouping contract as the in-memory aggregator: distinct category
// names, summed cents, descending by sum.
func (r *SQLiteRepository) SumGroupedByCategory(ctx context.Context, userID string, start, end time.Time) ([]core.CategoryAmount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) AS total
		 FROM transactions
		 WHERE user_id = ? AND date_unix >= ? AND date_unix <= ?
		 GROUP BY category
		 ORDER BY total DESC, category ASC`,
		userID, start.UTC().Unix(), end.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("sum grouped by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryAmount
	for rows.Next() {
		var name string
		var cents int64
		if err := rows.Scan(&name, &cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		out = append(out, core.CategoryAmount{Name: core.Category(name), Value: core.Money{Cents: cents}})
	}
	return out, rows.Err()
}

// SumGroupedByDay pushes the day-of-month grouping into SQL: distinct days,
// summed cents, ascending by day.
func (r *SQLiteRepository) SumGroupedByDay(ctx context.Context, userID string, start, end time.Time) ([]core.DayAmount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT CAST(strftime('%d', date_unix, 'unixepoch') AS INTEGER) AS day,
		        SUM(amount_cents) AS total
		 FROM transactions
		 WHERE user_id = ? AND date_unix >= ? AND date_unix <= ?
		 GROUP BY day
		 ORDER BY day ASC`,
		userID, start.UTC().Unix(), end.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("sum grouped by day: %w", err)
	}
	defer rows.Close()

	var out []core.DayAmount
	for rows.Next() {
		var day int
		var cents int64
		if err := rows.Scan(&day, &cents); err != nil {
			return nil, fmt.Errorf("scan day sum: %w", err)
		}
		out = append(out, core.DayAmount{Day: day, Amount: core.Money{Cents: cents}})
	}
	return out, rows.Err()
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			tx        core.Transaction
			category  string
			dateUnix  int64
			recurring int
			status    string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount.Cents, &category, &dateUnix,
			&tx.Merchant, &tx.Description, &recurring, &status); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Category = core.Category(category)
		tx.Date = time.Unix(dateUnix, 0).UTC()
		tx.IsRecurring = recurring != 0
		tx.Status = core.SubscriptionStatus(status)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
