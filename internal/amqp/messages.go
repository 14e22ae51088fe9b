package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the sync queue.
const (
	KindEntrySync   = "entry_sync"
	KindEntryDelete = "entry_delete"
)

// EntrySyncMessage tells the worker that a cost entry changed. It carries only
// the ID and a revision marker; the worker fetches the full entry from the
// database before mirroring it.
type EntrySyncMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Revision  uint64    `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntrySyncMessage creates a sync message for a created or updated entry
func NewEntrySyncMessage(id int64, revision uint64) *EntrySyncMessage {
	return &EntrySyncMessage{
		Kind:      KindEntrySync,
		ID:        id,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

// NewEntryDeleteMessage creates a message for a deleted entry
func NewEntryDeleteMessage(id int64, revision uint64) *EntrySyncMessage {
	return &EntrySyncMessage{
		Kind:      KindEntryDelete,
		ID:        id,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntrySyncMessageFromJSON creates a message from JSON bytes
func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		msg.Kind = KindEntrySync
	}
	return &msg, nil
}
