package amqp

import (
	"testing"
	"time"
)

func TestNewLedgerSyncMessage(t *testing.T) {
	msg := NewLedgerSyncMessage(EntityTransaction, 42)

	if msg.Kind != EntityTransaction {
		t.Errorf("Kind = %v, want %v", msg.Kind, EntityTransaction)
	}
	if msg.ID != 42 {
		t.Errorf("ID = %v, want 42", msg.ID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestLedgerSyncMessage_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &LedgerSyncMessage{
		Kind:      EntityPayment,
		ID:        7,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerSyncMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("LedgerSyncMessageFromJSON() error = %v", err)
	}

	if parsed.Kind != msg.Kind {
		t.Errorf("Parsed Kind = %v, want %v", parsed.Kind, msg.Kind)
	}
	if parsed.ID != msg.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, msg.ID)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestLedgerSyncMessage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"kind": "payment", "id":`},
		{"wrong id type", `{"kind": "payment", "id": "not_a_number"}`},
		{"unknown kind", `{"kind": "bank", "id": 3}`},
		{"missing kind", `{"id": 3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LedgerSyncMessageFromJSON([]byte(tt.body)); err == nil {
				t.Error("expected error for invalid message body")
			}
		})
	}
}
