package core

import (
	"errors"
	"sync/atomic"
	"time"
)

const (
	// StateProjected marks a flow that is a future or recurring commitment.
	StateProjected FlowState = "projected"
	// StateExecuted marks a flow that is a realized, historical movement.
	StateExecuted FlowState = "executed"
)

type (
	FlowState string

	// Flow is one discrete cash movement: an inflow when the amount is
	// positive, an outflow when negative. Executed flows are historical
	// facts and are never mutated; projected flows are templates that may
	// be removed or, when recurring, re-armed in place.
	Flow struct {
		ID       int64
		Amount   Money
		Category string
		// ExecutedAt is the fact time for executed flows. For projected
		// flows it is the first scheduled occurrence, or the most recent
		// firing once a recurring flow has fired at least once.
		ExecutedAt time.Time
		// EveryDays is the recurrence period in days; 0 means one-off.
		EveryDays int
		Note      string
		State     FlowState
		// CommitmentID links a realization back to the projected template
		// that produced it. 0 when the flow was not fired from a template.
		CommitmentID int64
	}
)

var (
	ErrInvalidCategory   = errors.New("empty category")
	ErrInvalidRecurrence = errors.New("negative recurrence period")
	ErrZeroTime          = errors.New("zero execution time")
)

// Validate checks the fields a caller supplies; the zero amount is legal
// (placeholder use).
func (f Flow) Validate() error {
	if f.Category == "" {
		return ErrInvalidCategory
	}
	if f.EveryDays < 0 {
		return ErrInvalidRecurrence
	}
	if f.ExecutedAt.IsZero() {
		return ErrZeroTime
	}
	return nil
}

// Recurring reports whether the flow fires again after each execution.
func (f Flow) Recurring() bool {
	return f.EveryDays > 0
}

// NextDue returns the next scheduled firing of a projected flow:
// ExecutedAt advanced by the recurrence period. For one-off projections
// this is the scheduled occurrence itself.
func (f Flow) NextDue() time.Time {
	return f.ExecutedAt.AddDate(0, 0, f.EveryDays)
}

// IDAllocator hands out unique, monotonically increasing flow ids for one
// application session. It is owned by the session and passed by handle into
// every flow-construction call site; ids are never reused, even after a
// flow is deleted.
type IDAllocator struct {
	last atomic.Int64
}

// NewIDAllocator returns an allocator whose next id is lastAssigned+1.
// After loading a persisted ledger, seed with the ledger's LastAssignedID
// so new flows cannot collide with restored ones.
func NewIDAllocator(lastAssigned int64) *IDAllocator {
	a := &IDAllocator{}
	a.last.Store(lastAssigned)
	return a
}

// Next returns a fresh id.
func (a *IDAllocator) Next() int64 {
	return a.last.Add(1)
}

// NewFlow builds a flow with a fresh id from the allocator. The state is
// stamped when the flow enters a ledger partition.
func NewFlow(ids *IDAllocator, amount Money, category string, at time.Time, everyDays int, note string) Flow {
	return Flow{
		ID:         ids.Next(),
		Amount:     amount,
		Category:   category,
		ExecutedAt: at,
		EveryDays:  everyDays,
		Note:       note,
	}
}
