package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gagyebu/internal/core"
)

// EntryMessage carries one entry-form submission through the queue. The
// consumer replays it through the ingestor, so the raw form fields travel
// unchanged and normalization happens exactly once, on the writer side.
type EntryMessage struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Amount    string    `json:"amount"`
	Memo      string    `json:"memo,omitempty"`
	Type      string    `json:"type"`
	Category  string    `json:"category,omitempty"`
	Payment   string    `json:"payment,omitempty"`
	Transfer  string    `json:"transfer,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryMessage wraps a submission with a fresh message ID.
func NewEntryMessage(sub core.EntrySubmission) *EntryMessage {
	return &EntryMessage{
		ID:        uuid.NewString(),
		Date:      sub.Date,
		Amount:    sub.Amount,
		Memo:      sub.Memo,
		Type:      sub.Type,
		Category:  sub.Category,
		Payment:   sub.Payment,
		Transfer:  sub.Transfer,
		Timestamp: time.Now(),
	}
}

// Submission returns the submission carried by the message.
func (m *EntryMessage) Submission() core.EntrySubmission {
	return core.EntrySubmission{
		Date:     m.Date,
		Amount:   m.Amount,
		Memo:     m.Memo,
		Type:     m.Type,
		Category: m.Category,
		Payment:  m.Payment,
		Transfer: m.Transfer,
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryMessageFromJSON decodes a message and rejects one without an ID.
func EntryMessageFromJSON(data []byte) (*EntryMessage, error) {
	var msg EntryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("entry message without id")
	}
	return &msg, nil
}
