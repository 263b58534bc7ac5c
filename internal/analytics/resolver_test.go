package analytics

import (
	"testing"
	"time"

	"spendo/internal/core"
)

func recurringTx(id, merchant, desc string, cents int64, date time.Time, status core.SubscriptionStatus) core.Transaction {
	return core.Transaction{
		ID:          id,
		UserID:      "user-1",
		Amount:      core.Money{Cents: cents},
		Category:    core.CategoryEntertainment,
		Date:        date,
		Merchant:    merchant,
		Description: desc,
		IsRecurring: true,
		Status:      status,
	}
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		name string
		tx   core.Transaction
		want string
	}{
		{
			name: "merchant lowercased and trimmed",
			tx:   core.Transaction{Merchant: " Netflix  ", Description: "streaming"},
			want: "netflix",
		},
		{
			name: "falls back to description",
			tx:   core.Transaction{Description: "  GYM Membership "},
			want: "gym membership",
		},
		{
			name: "blank merchant treated as absent",
			tx:   core.Transaction{Merchant: "   ", Description: "Spotify"},
			want: "spotify",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalKey(tt.tx); got != tt.want {
				t.Errorf("CanonicalKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveSubscriptions_DedupAcrossFormatting(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)

	subs := ResolveSubscriptions([]core.Transaction{
		recurringTx("a", "Netflix", "", 1599, jan, core.StatusActive),
		recurringTx("b", " netflix ", "", 1699, feb, core.StatusActive),
	}, nil)

	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}
	sub, ok := subs["netflix"]
	if !ok {
		t.Fatalf("missing canonical key %q, got %v", "netflix", subs)
	}
	if sub.Transaction.ID != "b" {
		t.Errorf("representative = %q, want most recent %q", sub.Transaction.ID, "b")
	}
	if sub.Amount.Cents != 1699 {
		t.Errorf("amount = %d, want the representative's 1699", sub.Amount.Cents)
	}
	if !sub.AnchorDate.Equal(feb) {
		t.Errorf("anchor = %v, want most recent date %v", sub.AnchorDate, feb)
	}
}

func TestResolveSubscriptions_MostRecentWinsRegardlessOfOrder(t *testing.T) {
	older := recurringTx("a", "Gym", "", 3000, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), core.StatusActive)
	newer := recurringTx("b", "Gym", "", 3500, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), core.StatusInactive)

	for name, input := range map[string][]core.Transaction{
		"oldest first": {older, newer},
		"newest first": {newer, older},
	} {
		t.Run(name, func(t *testing.T) {
			subs := ResolveSubscriptions(input, nil)
			sub := subs["gym"]
			if sub.Transaction.ID != "b" {
				t.Errorf("representative = %q, want %q", sub.Transaction.ID, "b")
			}
			if sub.Status != core.StatusInactive {
				t.Errorf("status = %q, want the representative's %q", sub.Status, core.StatusInactive)
			}
		})
	}
}

func TestResolveSubscriptions_DateTieBrokenByID(t *testing.T) {
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	subs := ResolveSubscriptions([]core.Transaction{
		recurringTx("a", "iCloud", "", 99, date, core.StatusActive),
		recurringTx("b", "iCloud", "", 299, date, core.StatusActive),
	}, nil)

	// Same timestamp: the higher ID wins deterministically.
	if got := subs["icloud"].Transaction.ID; got != "b" {
		t.Errorf("representative = %q, want %q", got, "b")
	}
}

func TestResolveSubscriptions_EmptyInput(t *testing.T) {
	subs := ResolveSubscriptions(nil, nil)
	if len(subs) != 0 {
		t.Errorf("got %d subscriptions from empty input, want 0", len(subs))
	}
}

func TestActive(t *testing.T) {
	tests := []struct {
		name   string
		status core.SubscriptionStatus
		want   bool
	}{
		{"explicit active", core.StatusActive, true},
		{"unset counts as active", core.StatusUnset, true},
		{"inactive excluded", core.StatusInactive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := core.Subscription{Status: tt.status}
			if got := Active(sub); got != tt.want {
				t.Errorf("Active(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestActiveOnly(t *testing.T) {
	subs := []core.Subscription{
		{Key: "netflix", Status: core.StatusActive},
		{Key: "gym", Status: core.StatusInactive},
		{Key: "spotify", Status: core.StatusUnset},
	}

	active := ActiveOnly(subs)
	if len(active) != 2 {
		t.Fatalf("got %d active subscriptions, want 2", len(active))
	}
	if active[0].Key != "netflix" || active[1].Key != "spotify" {
		t.Errorf("active = %v, want netflix then spotify in input order", active)
	}
}

func TestRecordedKeys(t *testing.T) {
	date := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	keys := RecordedKeys([]core.Transaction{
		recurringTx("a", "Netflix", "", 1599, date, core.StatusActive),
		{ID: "c", Merchant: "Bar Centrale", Amount: core.Money{Cents: 450}, Date: date}, // not recurring
	}, nil)

	if _, ok := keys["netflix"]; !ok {
		t.Errorf("recurring key missing from recorded set: %v", keys)
	}
	if _, ok := keys["bar centrale"]; ok {
		t.Errorf("non-recurring transaction must not enter the recorded set")
	}
}
