package memory

import (
	"context"
	"testing"

	ports "flussi/internal/sheets"
)

func TestStoreAppend(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	ref, err := s.Append(ctx, ports.Realization{
		FlowID:   3,
		Date:     "2025-06-01",
		Category: "rent",
		Amount:   "-910.00",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	rows := s.Realizations()
	if len(rows) != 1 || rows[0].Category != "rent" {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestStoreAppendValidation(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.Append(ctx, ports.Realization{Date: "2025-06-01"}); err == nil {
		t.Error("expected error for missing flow id")
	}
	if _, err := s.Append(ctx, ports.Realization{FlowID: 1}); err == nil {
		t.Error("expected error for missing date")
	}
	if len(s.Realizations()) != 0 {
		t.Error("invalid rows should not be stored")
	}
}
