package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"flussi/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "flussi.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ids := core.NewIDAllocator(0)
	l := core.NewLedger("checking")
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	exec := core.NewFlow(ids, core.Money{Cents: 100000}, "salary", at, 0, "june pay")
	proj := core.NewFlow(ids, core.Money{Cents: -5000}, "groceries", at, 7, "")
	if err := l.Add(exec, false); err != nil {
		t.Fatal(err)
	}
	if err := l.Add(proj, true); err != nil {
		t.Fatal(err)
	}

	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load(ctx, "checking")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.AccountName() != "checking" {
		t.Errorf("account = %q", loaded.AccountName())
	}
	if loaded.LastAssignedID() != l.LastAssignedID() {
		t.Errorf("last id = %d, want %d", loaded.LastAssignedID(), l.LastAssignedID())
	}

	executed := loaded.Executed()
	if len(executed) != 1 {
		t.Fatalf("len(executed) = %d, want 1", len(executed))
	}
	got := executed[0]
	if got.ID != exec.ID || got.Amount.Cents != 100000 || got.Category != "salary" || got.Note != "june pay" {
		t.Errorf("restored flow mismatch: %+v", got)
	}
	if !got.ExecutedAt.Equal(at) {
		t.Errorf("restored ExecutedAt = %v, want %v", got.ExecutedAt, at)
	}

	projected := loaded.Projected()
	if len(projected) != 1 || projected[0].EveryDays != 7 {
		t.Fatalf("restored projected mismatch: %+v", projected)
	}
}

func TestSaveReplacesWholeSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ids := core.NewIDAllocator(0)
	l := core.NewLedger("checking")
	proj := core.NewFlow(ids, core.Money{Cents: -5000}, "groceries", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 0, "")
	if err := l.Add(proj, true); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	// Mutate and save again: the snapshot is replaced, not appended to.
	if !l.RemoveProjected(proj.ID) {
		t.Fatal("RemoveProjected failed")
	}
	if err := repo.Save(ctx, l); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := repo.Load(ctx, "checking")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(loaded.Flows()); got != 0 {
		t.Errorf("snapshot kept %d stale flows, want 0", got)
	}
}

func TestLoadMissingAccount(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Load(context.Background(), "nobody")
	if !errors.Is(err, ErrLedgerNotFound) {
		t.Fatalf("Load error = %v, want ErrLedgerNotFound", err)
	}
}
