package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryHousing       Category = "Housing"
	CategoryUtilities     Category = "Utilities"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryPersonal      Category = "Personal"
	CategoryOther         Category = "Other" // fallback for unknown or empty input
)

const (
	StatusActive   SubscriptionStatus = "active"
	StatusInactive SubscriptionStatus = "inactive"
	StatusUnset    SubscriptionStatus = ""
)

type (
	Category string

	SubscriptionStatus string

	Money struct {
		Cents int64
	}

	// Transaction is a single recorded expense. Instances are immutable once
	// read into the aggregation engine.
	Transaction struct {
		ID          string
		UserID      string
		Amount      Money
		Category    Category
		Date        time.Time
		Merchant    string // optional
		Description string // required when Merchant is empty
		IsRecurring bool
		Status      SubscriptionStatus
	}

	// Subscription is the canonical recurring charge derived from a user's
	// recurring transaction history. It is recomputed per request and never
	// persisted.
	Subscription struct {
		Key         string
		Transaction Transaction // most recent recurring transaction for Key
		Status      SubscriptionStatus
		Amount      Money
		Category    Category
		AnchorDate  time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidRange     = errors.New("invalid date range")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyUserID      = errors.New("empty user id")
)

var allCategories = []Category{
	CategoryFood, CategoryTransport, CategoryShopping, CategoryEntertainment,
	CategoryHousing, CategoryUtilities, CategoryHealth, CategoryEducation,
	CategoryPersonal, CategoryOther,
}

// Categories returns the closed set of display categories.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory maps free-form input onto the closed category set. Unknown or
// empty input resolves to CategoryOther, so every transaction carries a valid
// display category from ingestion onward.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range allCategories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return CategoryOther
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusUnset:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Merchant) == "" && strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Label returns the display name for the transaction: the merchant when set,
// the description otherwise.
func (t Transaction) Label() string {
	if strings.TrimSpace(t.Merchant) != "" {
		return t.Merchant
	}
	return t.Description
}

// ValidateRange checks a closed [start, end] aggregation range before any
// store query is issued.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrInvalidRange
	}
	if end.Before(start) {
		return ErrInvalidRange
	}
	return nil
}
