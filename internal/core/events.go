package core

import "time"

// EventType names a change of the persisted record state.
type EventType string

const (
	EventRecordSaved    EventType = "record.saved"
	EventRecordDeleted  EventType = "record.deleted"
	EventRecordsCleared EventType = "records.cleared"
	EventRecordsImport  EventType = "records.imported"
	EventRatesUpdated   EventType = "rates.updated"
)

// RecordEvent is emitted after a change has been persisted.
type RecordEvent struct {
	Type      EventType
	RecordIDs []string
	// Count is the number of records affected; for a clear it is the number removed.
	Count     int
	Timestamp time.Time
}
