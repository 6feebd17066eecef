// Package services orchestrates the in-process ledger across storage and
// messaging. LedgerService is the single writer: every mutation goes
// through its mutex, then the whole ledger is snapshotted to SQLite, then
// events go out over AMQP on a best-effort basis.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flussi/internal/amqp"
	"flussi/internal/core"
)

// SnapshotStore persists and restores whole-ledger snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, l *core.Ledger) error
	Load(ctx context.Context, accountName string) (*core.Ledger, error)
}

// EventPublisher carries ledger events out to interested workers.
type EventPublisher interface {
	PublishFlowExecuted(ctx context.Context, msg *amqp.FlowExecutedMessage) error
}

// LedgerService owns one account's ledger for the process lifetime.
type LedgerService struct {
	mu        sync.Mutex
	ledger    *core.Ledger
	ids       *core.IDAllocator
	store     SnapshotStore
	publisher EventPublisher
	now       func() time.Time
}

// NewLedgerService wraps a restored (or fresh) ledger. The allocator is
// seeded from the ledger so new ids never collide with restored ones.
// publisher may be nil; events are then skipped.
func NewLedgerService(ledger *core.Ledger, store SnapshotStore, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		ledger:    ledger,
		ids:       core.NewIDAllocator(ledger.LastAssignedID()),
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// AddFlow records a new flow and snapshots the ledger. When asProjection
// is true the flow enters the projected partition as a commitment;
// otherwise it is an already-realized movement.
func (s *LedgerService) AddFlow(ctx context.Context, amount core.Money, category string, at time.Time, everyDays int, note string, asProjection bool) (core.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := core.NewFlow(s.ids, amount, category, at, everyDays, note)
	if err := f.Validate(); err != nil {
		return core.Flow{}, fmt.Errorf("validate flow: %w", err)
	}
	if err := s.ledger.Add(f, asProjection); err != nil {
		return core.Flow{}, fmt.Errorf("add flow: %w", err)
	}

	if err := s.store.Save(ctx, s.ledger); err != nil {
		return core.Flow{}, fmt.Errorf("save ledger: %w", err)
	}

	slog.InfoContext(ctx, "Flow added",
		"flow_id", f.ID,
		"category", category,
		"amount_cents", amount.Cents,
		"projected", asProjection)
	return f, nil
}

// ExecuteFlow realizes a projected flow with the given realized amount,
// snapshots the ledger, then publishes a flow-executed event. A publish
// failure never fails the request; the realization is already saved.
func (s *LedgerService) ExecuteFlow(ctx context.Context, flowID int64, realized core.Money, executedAt time.Time) (core.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	realization, err := s.ledger.Execute(s.ids, flowID, realized, executedAt)
	if err != nil {
		return core.Flow{}, fmt.Errorf("execute flow %d: %w", flowID, err)
	}

	if err := s.store.Save(ctx, s.ledger); err != nil {
		return core.Flow{}, fmt.Errorf("save ledger: %w", err)
	}

	if s.publisher != nil {
		msg := amqp.NewFlowExecutedMessage(
			realization.ID,
			realization.CommitmentID,
			realization.Category,
			realization.Amount.Cents,
			realization.ExecutedAt,
			realization.Note,
		)
		if err := s.publisher.PublishFlowExecuted(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish flow executed event",
				"flow_id", realization.ID,
				"error", err)
			// Don't fail the request, the realization is saved locally
		}
	}

	slog.InfoContext(ctx, "Flow executed",
		"flow_id", realization.ID,
		"commitment_id", realization.CommitmentID,
		"amount_cents", realization.Amount.Cents)
	return realization, nil
}

// RemoveProjected withdraws a projected commitment and snapshots the
// ledger. Reports whether anything was removed; executed flows are never
// touched.
func (s *LedgerService) RemoveProjected(ctx context.Context, flowID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.ledger.RemoveProjected(flowID)
	if !removed {
		return false, nil
	}

	if err := s.store.Save(ctx, s.ledger); err != nil {
		return false, fmt.Errorf("save ledger: %w", err)
	}

	slog.InfoContext(ctx, "Projected flow removed", "flow_id", flowID)
	return true, nil
}

// Balance returns the realized balance as of today.
func (s *LedgerService) Balance() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.RealizedBalance(s.ledger, s.now())
}

// Trend returns the directional sign of the projected partition.
func (s *LedgerService) Trend() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.TrendSign(s.ledger)
}

// ProjectedBalance forecasts the balance at asOf.
func (s *LedgerService) ProjectedBalance(asOf time.Time) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.ProjectedBalance(s.ledger, s.now(), asOf)
}

// ForwardSeries returns the month-by-month projected balances from the
// current month up to end.
func (s *LedgerService) ForwardSeries(end time.Time) []core.MonthBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.MonthlyForwardSeries(s.ledger, s.now(), end)
}

// BackwardSeries returns the month-end realized balances from the current
// month back to end.
func (s *LedgerService) BackwardSeries(end time.Time) []core.MonthBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.MonthlyBackwardSeries(s.ledger, s.now(), end)
}

// DueFlows returns the projected flows due on ref's calendar date.
func (s *LedgerService) DueFlows(ref time.Time) []core.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.DueOn(ref)
}

// Executed returns the executed flows in insertion order.
func (s *LedgerService) Executed() []core.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Executed()
}

// Projected returns the current projected flows.
func (s *LedgerService) Projected() []core.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Projected()
}

// AccountName returns the label of the owned account.
func (s *LedgerService) AccountName() string {
	return s.ledger.AccountName()
}
