package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityKind identifies which ledger table a sync message refers to.
type EntityKind string

const (
	EntityTransaction EntityKind = "transaction"
	EntityPayment     EntityKind = "payment"
)

// LedgerSyncMessage asks the worker to mirror one row to the spreadsheet.
// It carries only the kind and id; the worker fetches the full record from
// the database.
type LedgerSyncMessage struct {
	Kind      EntityKind `json:"kind"`
	ID        int64      `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewLedgerSyncMessage(kind EntityKind, id int64) *LedgerSyncMessage {
	return &LedgerSyncMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *LedgerSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerSyncMessageFromJSON(data []byte) (*LedgerSyncMessage, error) {
	var msg LedgerSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case EntityTransaction, EntityPayment:
	default:
		return nil, fmt.Errorf("unknown entity kind %q", msg.Kind)
	}
	return &msg, nil
}
