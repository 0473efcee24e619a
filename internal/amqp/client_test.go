package amqp

import (
	"errors"
	"testing"
	"time"

	"outlay/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{"first attempt", 0, 1 * time.Second},
		{"second attempt", 1, 2 * time.Second},
		{"third attempt", 2, 4 * time.Second},
		{"fifth attempt", 4, 16 * time.Second},
		{"capped at thirty seconds", 6, 30 * time.Second},
		{"large attempt stays capped", 20, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.want {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5672: connect: connection refused"), true},
		{"connection closed", errors.New("Exception (504) Reason: \"channel/connection is not open\": connection closed"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed delivery channel", errors.New("message channel closed"), true},
		{"handler failure", errors.New("send email: template not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBudgetAlertMessageRoundTrip(t *testing.T) {
	msg := NewBudgetAlertMessage(
		core.AlertExceeded,
		"Food",
		core.Period{Month: 3, Year: 2024},
		"ALERT: You have exceeded your budget for Food!",
	)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := BudgetAlertMessageFromJSON(data)
	if err != nil {
		t.Fatalf("BudgetAlertMessageFromJSON() error = %v", err)
	}

	if got.Level != msg.Level {
		t.Errorf("Level = %q, want %q", got.Level, msg.Level)
	}
	if got.Category != "Food" {
		t.Errorf("Category = %q, want %q", got.Category, "Food")
	}
	if got.Month != 3 || got.Year != 2024 {
		t.Errorf("period = %d/%d, want 3/2024", got.Month, got.Year)
	}
	if got.Message != msg.Message {
		t.Errorf("Message = %q, want %q", got.Message, msg.Message)
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp should survive the round trip")
	}
}

func TestBudgetAlertMessageFromJSONInvalid(t *testing.T) {
	if _, err := BudgetAlertMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
