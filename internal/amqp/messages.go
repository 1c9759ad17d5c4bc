package amqp

import (
	"encoding/json"
	"time"
)

// RecordsReplacedMessage announces that the record store was reloaded.
// Consumers rescan the store; the message carries no record data.
type RecordsReplacedMessage struct {
	Records   int       `json:"records"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordsReplacedMessage(records int, source string) *RecordsReplacedMessage {
	return &RecordsReplacedMessage{
		Records:   records,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordsReplacedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordsReplacedMessageFromJSON(data []byte) (*RecordsReplacedMessage, error) {
	var msg RecordsReplacedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
