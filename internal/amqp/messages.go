package amqp

import (
	"encoding/json"
	"time"
)

// FlowDueMessage is a needs-action reminder: a projected flow's next due
// date has arrived. Carries enough to render a notification without a
// ledger lookup.
type FlowDueMessage struct {
	FlowID      int64     `json:"flow_id"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	EveryDays   int       `json:"every_days"`
	DueDate     string    `json:"due_date"` // YYYY-MM-DD
	Timestamp   time.Time `json:"timestamp"`
}

func NewFlowDueMessage(flowID int64, category string, amountCents int64, everyDays int, dueDate string) *FlowDueMessage {
	return &FlowDueMessage{
		FlowID:      flowID,
		Category:    category,
		AmountCents: amountCents,
		EveryDays:   everyDays,
		DueDate:     dueDate,
		Timestamp:   time.Now(),
	}
}

func (m *FlowDueMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func FlowDueMessageFromJSON(data []byte) (*FlowDueMessage, error) {
	var msg FlowDueMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// FlowExecutedMessage announces a realized flow; the mirror worker
// consumes these and appends a row to the reporting spreadsheet.
type FlowExecutedMessage struct {
	FlowID       int64     `json:"flow_id"`
	CommitmentID int64     `json:"commitment_id,omitempty"`
	Category     string    `json:"category"`
	AmountCents  int64     `json:"amount_cents"`
	ExecutedAt   time.Time `json:"executed_at"`
	Note         string    `json:"note,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewFlowExecutedMessage(flowID, commitmentID int64, category string, amountCents int64, executedAt time.Time, note string) *FlowExecutedMessage {
	return &FlowExecutedMessage{
		FlowID:       flowID,
		CommitmentID: commitmentID,
		Category:     category,
		AmountCents:  amountCents,
		ExecutedAt:   executedAt,
		Note:         note,
		Timestamp:    time.Now(),
	}
}

func (m *FlowExecutedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func FlowExecutedMessageFromJSON(data []byte) (*FlowExecutedMessage, error) {
	var msg FlowExecutedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
