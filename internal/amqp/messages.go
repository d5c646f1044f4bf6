package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// OpSync asks the worker to copy the record into the archive sheet.
	OpSync = "sync"
	// OpDelete asks the worker to drop the record from the archive sheet.
	OpDelete = "delete"
)

// MirrorMessage is one unit of work for the mirror worker. Only the
// record id travels; on sync the worker fetches the full record from the
// primary store.
type MirrorMessage struct {
	Op        string    `json:"op"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMirrorMessage(op string, id int64) *MirrorMessage {
	return &MirrorMessage{Op: op, ID: id, Timestamp: time.Now()}
}

func (m *MirrorMessage) Validate() error {
	if m.Op != OpSync && m.Op != OpDelete {
		return fmt.Errorf("unknown mirror op %q", m.Op)
	}
	if m.ID <= 0 {
		return fmt.Errorf("invalid record id %d", m.ID)
	}
	return nil
}

func (m *MirrorMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MirrorMessageFromJSON(data []byte) (*MirrorMessage, error) {
	var msg MirrorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
