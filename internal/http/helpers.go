package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// envelope matches the {success, data} / {success, error} response shape.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// parseYearMonth extracts the aggregation period from query parameters,
// defaulting to the current calendar month. A value that is present but not
// numeric fails the request before any store query.
func parseYearMonth(r *http.Request) (year, month int, ok bool) {
	now := time.Now().UTC()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		month = m
	}
	return year, month, true
}

// userID extracts the user from the query string. Authentication lives
// outside this service; callers pass an already-authenticated user id.
func userID(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("user"))
}
