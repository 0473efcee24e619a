package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"outlay/internal/core"
)

// BudgetAlertMessage carries one budget alert from the web process to the
// notification worker, which turns it into an email.
type BudgetAlertMessage struct {
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetAlertMessage builds an alert message for one category/period.
func NewBudgetAlertMessage(level core.AlertLevel, category string, p core.Period, text string) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Level:     string(level),
		Category:  category,
		Month:     p.Month,
		Year:      p.Year,
		Message:   text,
		Timestamp: time.Now(),
	}
}

// Subject renders the email subject line for this alert.
func (m *BudgetAlertMessage) Subject() string {
	return fmt.Sprintf("Budget alert: %s (%d/%d)", m.Category, m.Month, m.Year)
}

// Body renders the email body for this alert.
func (m *BudgetAlertMessage) Body() string {
	return m.Message
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
