package core

import (
	"fmt"
	"time"
)

// MonthBalance is one bucket of a monthly balance series: the month label
// ("YYYY-MM") and the account balance at that month's last instant. Series
// are slices so the walk order survives; a Go map would lose it.
type MonthBalance struct {
	Month   string
	Balance Money
}

// RealizedBalance is the authoritative actual balance: the sum of every
// executed flow whose execution date is on or before asOf's date. The
// comparison is date-only, so a flow executed later the same day still
// counts.
func RealizedBalance(l *Ledger, asOf time.Time) Money {
	var total Money
	for _, f := range l.flows {
		if f.State == StateExecuted && onOrBeforeDate(f.ExecutedAt, asOf) {
			total = total.Add(f.Amount)
		}
	}
	return total
}

// TrendSign is a directional indicator for the projected partition: +1
// when the committed flows would raise the balance, -1 when they would
// lower it, 0 when they cancel out or none exist. It is a sign, not a
// forecast magnitude.
func TrendSign(l *Ledger) int {
	var sum Money
	for _, f := range l.flows {
		if f.State == StateProjected {
			sum = sum.Add(f.Amount)
		}
	}
	return sum.Sign()
}

// ProjectedBalance is a what-if forecast at asOf: the realized balance as
// of now plus the contribution of every projected flow scheduled on or
// before asOf. A one-off flow contributes once. A recurring flow
// contributes amount x floor(elapsedDays/period): a firing lands only once
// a full period has elapsed since the template's clock, so a flow due
// exactly today contributes nothing yet. The ledger is not mutated.
func ProjectedBalance(l *Ledger, now, asOf time.Time) Money {
	balance := RealizedBalance(l, now)

	for _, f := range l.flows {
		if f.State != StateProjected || f.ExecutedAt.After(asOf) {
			continue
		}
		if !f.Recurring() {
			balance = balance.Add(f.Amount)
			continue
		}
		elapsedDays := int64(asOf.Sub(f.ExecutedAt) / (24 * time.Hour))
		occurrences := elapsedDays / int64(f.EveryDays)
		balance = balance.Add(f.Amount.Times(occurrences))
	}
	return balance
}

// MonthlyForwardSeries walks month by month from now's month to end,
// evaluating ProjectedBalance at each month's last instant (23:59:59 on
// the last calendar day). The final bucket is clipped to end itself when
// the month-end would overshoot. Buckets are in chronological order.
func MonthlyForwardSeries(l *Ledger, now, end time.Time) []MonthBalance {
	var series []MonthBalance
	for cur := now; !cur.After(end); cur = firstOfNextMonth(cur) {
		asOf := endOfMonth(cur)
		if asOf.After(end) {
			asOf = end
		}
		series = append(series, MonthBalance{
			Month:   monthKey(cur),
			Balance: ProjectedBalance(l, now, asOf),
		})
	}
	return series
}

// MonthlyBackwardSeries walks month by month from now's month back to end,
// evaluating the running realized balance as of each month's last instant.
// This is the balance the account held at that month-end, not an isolated
// per-month delta. Buckets are in reverse chronological order.
func MonthlyBackwardSeries(l *Ledger, now, end time.Time) []MonthBalance {
	var series []MonthBalance
	for cur := now; !cur.Before(end); cur = firstOfMonth(cur).AddDate(0, 0, -1) {
		series = append(series, MonthBalance{
			Month:   monthKey(cur),
			Balance: RealizedBalance(l, endOfMonth(cur)),
		})
	}
	return series
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// endOfMonth returns 23:59:59 on the last calendar day of t's month. The
// day-zero-of-next-month trick yields the last day of this month.
func endOfMonth(t time.Time) time.Time {
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	return time.Date(t.Year(), t.Month(), lastDay, 23, 59, 59, 0, t.Location())
}

// onOrBeforeDate reports whether a's calendar date is not after b's.
func onOrBeforeDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad <= bd
}
