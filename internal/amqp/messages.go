package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SnapshotSyncMessage asks the worker to push one stored snapshot to Google
// Sheets. It carries only the snapshot ID; the worker reads the content from
// the database.
type SnapshotSyncMessage struct {
	MessageID  string    `json:"message_id"`
	SnapshotID int64     `json:"snapshot_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewSnapshotSyncMessage creates a sync message with a fresh message ID.
func NewSnapshotSyncMessage(snapshotID int64) *SnapshotSyncMessage {
	return &SnapshotSyncMessage{
		MessageID:  uuid.NewString(),
		SnapshotID: snapshotID,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSyncMessageFromJSON creates a message from JSON bytes
func SnapshotSyncMessageFromJSON(data []byte) (*SnapshotSyncMessage, error) {
	var msg SnapshotSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
