package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Category
	}{
		{"exact match", "Food", CategoryFood},
		{"case insensitive", "fOOd", CategoryFood},
		{"surrounding whitespace", "  Transport ", CategoryTransport},
		{"unknown falls back", "Groceries", CategoryOther},
		{"empty falls back", "", CategoryOther},
		{"fallback itself", "Other", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCategory(tt.input); got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		ID:          "tx-1",
		UserID:      "user-1",
		Amount:      Money{Cents: 1999},
		Category:    CategoryFood,
		Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Merchant:    "Esselunga",
		Description: "weekly groceries",
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"missing user", func(tx *Transaction) { tx.UserID = " " }, ErrEmptyUserID},
		{"negative amount", func(tx *Transaction) { tx.Amount.Cents = -1 }, ErrInvalidAmount},
		{"zero amount allowed", func(tx *Transaction) { tx.Amount.Cents = 0 }, nil},
		{"bad category", func(tx *Transaction) { tx.Category = "Groceries" }, ErrInvalidCategory},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrInvalidDate},
		{
			"no merchant and no description",
			func(tx *Transaction) { tx.Merchant = ""; tx.Description = "" },
			ErrEmptyDescription,
		},
		{
			"description alone is enough",
			func(tx *Transaction) { tx.Merchant = "" },
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionLabel(t *testing.T) {
	tx := Transaction{Merchant: "Netflix", Description: "streaming"}
	if got := tx.Label(); got != "Netflix" {
		t.Errorf("Label() = %q, want merchant", got)
	}
	tx.Merchant = "  "
	if got := tx.Label(); got != "streaming" {
		t.Errorf("Label() = %q, want description fallback", got)
	}
}

func TestValidateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	if err := ValidateRange(start, end); err != nil {
		t.Fatalf("ValidateRange(valid) = %v", err)
	}
	if err := ValidateRange(end, start); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("ValidateRange(reversed) = %v, want ErrInvalidRange", err)
	}
	if err := ValidateRange(time.Time{}, end); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("ValidateRange(zero start) = %v, want ErrInvalidRange", err)
	}
	// A single-day closed range is valid.
	if err := ValidateRange(start, start); err != nil {
		t.Errorf("ValidateRange(point range) = %v", err)
	}
}
