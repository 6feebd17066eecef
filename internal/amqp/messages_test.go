package amqp

import (
	"testing"
	"time"
)

func TestFlowDueMessageJSON(t *testing.T) {
	msg := NewFlowDueMessage(7, "rent", -90000, 30, "2025-06-01")
	if msg.Timestamp.IsZero() {
		t.Fatal("Timestamp should be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := FlowDueMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FlowDueMessageFromJSON: %v", err)
	}
	if parsed.FlowID != 7 || parsed.Category != "rent" || parsed.AmountCents != -90000 || parsed.EveryDays != 30 || parsed.DueDate != "2025-06-01" {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
}

func TestFlowExecutedMessageJSON(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := NewFlowExecutedMessage(9, 7, "rent", -91000, at, "june")

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := FlowExecutedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FlowExecutedMessageFromJSON: %v", err)
	}
	if parsed.FlowID != 9 || parsed.CommitmentID != 7 || !parsed.ExecutedAt.Equal(at) {
		t.Errorf("round trip mismatch: %+v", parsed)
	}
}

func TestFlowDueMessageInvalidJSON(t *testing.T) {
	if _, err := FlowDueMessageFromJSON([]byte(`{"flow_id": "nope"}`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
