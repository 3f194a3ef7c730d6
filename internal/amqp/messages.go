package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// TransactionCreatedMessage announces a stored transaction. It carries only
// identifiers; consumers reload the user's list from storage.
type TransactionCreatedMessage struct {
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	Date          time.Time `json:"date"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(userID, transactionID string, date time.Time) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		UserID:        userID,
		TransactionID: transactionID,
		Date:          date,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Validate rejects messages a consumer cannot act on.
func (m *TransactionCreatedMessage) Validate() error {
	if m.UserID == "" {
		return errors.New("missing user_id")
	}
	if m.TransactionID == "" {
		return errors.New("missing transaction_id")
	}
	if m.Date.IsZero() {
		return errors.New("missing date")
	}
	return nil
}

// TransactionCreatedMessageFromJSON decodes and validates a message body.
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
