package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseCreatedMessage announces a newly recorded transaction to interested
// consumers. It carries only identifiers and display fields; consumers fetch
// the full record if they need more.
type ExpenseCreatedMessage struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	AmountCents int64     `json:"amountCents"`
	Category    string    `json:"category"`
	Recurring   bool      `json:"recurring"`
	Timestamp   time.Time `json:"timestamp"`
}

// RenewalReminderMessage announces a subscription charge projected to land
// within the upcoming window.
type RenewalReminderMessage struct {
	UserID          string    `json:"userId"`
	SubscriptionKey string    `json:"subscriptionKey"`
	Label           string    `json:"label"`
	AmountCents     int64     `json:"amountCents"`
	NextPaymentDate time.Time `json:"nextPaymentDate"`
	Timestamp       time.Time `json:"timestamp"`
}

func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *RenewalReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RenewalReminderFromJSON decodes a reminder consumed off the queue.
func RenewalReminderFromJSON(data []byte) (*RenewalReminderMessage, error) {
	var msg RenewalReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
