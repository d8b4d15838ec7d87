package amqp

import (
	"encoding/json"
	"time"

	"paybook/internal/core"
)

// RecordEventMessage announces a persisted change of the salary records.
// It carries ids only; consumers read the records from the shared storage.
type RecordEventMessage struct {
	Type      string    `json:"type"`
	RecordIDs []string  `json:"recordIds"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEventMessage converts a store event, stamping it now if it carries no time.
func NewRecordEventMessage(ev core.RecordEvent) *RecordEventMessage {
	ids := ev.RecordIDs
	if ids == nil {
		ids = []string{}
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &RecordEventMessage{
		Type:      string(ev.Type),
		RecordIDs: ids,
		Count:     ev.Count,
		Timestamp: ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordEventMessageFromJSON(data []byte) (*RecordEventMessage, error) {
	var msg RecordEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
