package core

import (
	"errors"
	"time"
)

var (
	// ErrDuplicateID reports an Add with an id already present in either
	// partition. The ledger is untouched; the caller may retry with a
	// fresh id or treat the call as an idempotent no-op.
	ErrDuplicateID = errors.New("duplicate flow id")
	// ErrFlowNotFound reports an Execute for an id with no projected flow.
	ErrFlowNotFound = errors.New("flow not found in projected flows")
)

// Ledger tracks the cash flows of a single account, split into an
// append-only executed partition (historical fact) and a mutable projected
// partition (future or recurring commitments). Both live in one
// insertion-ordered collection tagged with FlowState, so the invariant that
// an id never appears in both partitions reduces to a single index lookup.
//
// The ledger does no locking: it assumes one logical owner at a time. A
// multi-threaded host must serialize mutating calls itself.
type Ledger struct {
	accountName string
	flows       []Flow
	index       map[int64]int
	lastID      int64
}

// NewLedger returns an empty ledger for the named account. The name is an
// opaque label; the engine never interprets it.
func NewLedger(accountName string) *Ledger {
	return &Ledger{
		accountName: accountName,
		index:       make(map[int64]int),
	}
}

// Restore rebuilds a ledger from a persisted snapshot. Flows must be in
// their original insertion order; duplicate ids are a snapshot corruption
// and reported as ErrDuplicateID.
func Restore(accountName string, flows []Flow, lastAssignedID int64) (*Ledger, error) {
	l := NewLedger(accountName)
	for _, f := range flows {
		if _, ok := l.index[f.ID]; ok {
			return nil, ErrDuplicateID
		}
		l.index[f.ID] = len(l.flows)
		l.flows = append(l.flows, f)
	}
	l.lastID = lastAssignedID
	return l, nil
}

// AccountName returns the account label.
func (l *Ledger) AccountName() string {
	return l.accountName
}

// LastAssignedID is the id of the most recently inserted flow. It seeds
// the session's IDAllocator after a reload so new flows cannot collide
// with restored ones.
func (l *Ledger) LastAssignedID() int64 {
	return l.lastID
}

// Add inserts a flow into the executed partition, or into the projected
// partition when asProjection is true. An id already present anywhere in
// the ledger makes the call a no-op returning ErrDuplicateID; nothing is
// ever silently overwritten. The executed partition preserves insertion
// order, which is not necessarily chronological order.
func (l *Ledger) Add(f Flow, asProjection bool) error {
	if _, ok := l.index[f.ID]; ok {
		return ErrDuplicateID
	}
	if asProjection {
		f.State = StateProjected
	} else {
		f.State = StateExecuted
	}
	l.index[f.ID] = len(l.flows)
	l.flows = append(l.flows, f)
	l.lastID = f.ID
	return nil
}

// Execute realizes a projected flow: a brand-new executed flow is
// synthesized carrying the realized amount (which may differ from the
// projected estimate), the execution time, and the template's category,
// recurrence and note, with a back-reference to the template's id. A
// one-off template is discharged and removed; a recurring template stays
// and its clock advances to executedAt, so the next due date counts from
// this firing. Returns the new realization, or ErrFlowNotFound with no
// state change.
func (l *Ledger) Execute(ids *IDAllocator, flowID int64, realized Money, executedAt time.Time) (Flow, error) {
	i, ok := l.index[flowID]
	if !ok || l.flows[i].State != StateProjected {
		return Flow{}, ErrFlowNotFound
	}
	tmpl := l.flows[i]

	realization := Flow{
		ID:           ids.Next(),
		Amount:       realized,
		Category:     tmpl.Category,
		ExecutedAt:   executedAt,
		EveryDays:    tmpl.EveryDays,
		Note:         tmpl.Note,
		State:        StateExecuted,
		CommitmentID: tmpl.ID,
	}

	if tmpl.Recurring() {
		l.flows[i].ExecutedAt = executedAt
	} else {
		l.removeAt(i)
	}

	l.index[realization.ID] = len(l.flows)
	l.flows = append(l.flows, realization)
	l.lastID = realization.ID
	return realization, nil
}

// RemoveProjected filters the id out of the projected partition and
// reports whether anything was removed. Executed flows are never deleted.
func (l *Ledger) RemoveProjected(flowID int64) bool {
	i, ok := l.index[flowID]
	if !ok || l.flows[i].State != StateProjected {
		return false
	}
	l.removeAt(i)
	return true
}

// DueOn returns every projected flow whose next due date falls exactly on
// ref's calendar date, time of day ignored. Pure filter, no mutation; used
// to surface needs-action reminders.
func (l *Ledger) DueOn(ref time.Time) []Flow {
	var due []Flow
	for _, f := range l.flows {
		if f.State == StateProjected && sameDate(f.NextDue(), ref) {
			due = append(due, f)
		}
	}
	return due
}

// Executed returns the executed flows in insertion order.
func (l *Ledger) Executed() []Flow {
	return l.byState(StateExecuted)
}

// Projected returns the current projected flows.
func (l *Ledger) Projected() []Flow {
	return l.byState(StateProjected)
}

// Flows returns every flow in insertion order, for snapshot persistence.
func (l *Ledger) Flows() []Flow {
	out := make([]Flow, len(l.flows))
	copy(out, l.flows)
	return out
}

func (l *Ledger) byState(state FlowState) []Flow {
	var out []Flow
	for _, f := range l.flows {
		if f.State == state {
			out = append(out, f)
		}
	}
	return out
}

func (l *Ledger) removeAt(i int) {
	delete(l.index, l.flows[i].ID)
	l.flows = append(l.flows[:i], l.flows[i+1:]...)
	for j := i; j < len(l.flows); j++ {
		l.index[l.flows[j].ID] = j
	}
}

// sameDate compares two timestamps by calendar date only.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
