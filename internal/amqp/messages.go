package amqp

import (
	"encoding/json"
	"time"
)

// Reasons carried by LedgerChangedMessage.
const (
	ReasonProjected = "projected"
	ReasonEdited    = "edited"
)

// LedgerChangedMessage announces that the stored ledger changed for a month.
// Consumers reload the ledger themselves; the message carries no amounts.
type LedgerChangedMessage struct {
	Reason    string    `json:"reason"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Generated int       `json:"generated,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message stamped with the current time.
func NewLedgerChangedMessage(reason string, year int, month time.Month, generated int) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Reason:    reason,
		Year:      year,
		Month:     int(month),
		Generated: generated,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message body.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
