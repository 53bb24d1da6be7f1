package amqp

import (
	"encoding/json"
	"time"
)

// EntrySyncMessage announces a money entry that must be appended to the
// ledger sheet. The worker loads the entry itself; the message only carries
// its identity.
type EntrySyncMessage struct {
	EntryID   string    `json:"entry_id"`
	TaxYear   string    `json:"tax_year"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(entryID, taxYear string) *EntrySyncMessage {
	return &EntrySyncMessage{
		EntryID:   entryID,
		TaxYear:   taxYear,
		Timestamp: time.Now(),
	}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ComplianceAlertMessage reports a certificate that became due soon or
// overdue during a status refresh.
type ComplianceAlertMessage struct {
	RecordID       string    `json:"record_id"`
	PropertyID     string    `json:"property_id"`
	Property       string    `json:"property"`
	ComplianceType string    `json:"compliance_type"`
	Label          string    `json:"label"`
	FromStatus     string    `json:"from_status"`
	Status         string    `json:"status"`
	DueDate        string    `json:"due_date,omitempty"`
	AsOf           string    `json:"as_of"`
	Timestamp      time.Time `json:"timestamp"`
}

func (m *ComplianceAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ComplianceAlertMessageFromJSON(data []byte) (*ComplianceAlertMessage, error) {
	var msg ComplianceAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
