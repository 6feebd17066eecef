package core

import (
	"testing"
	"time"
)

func mustAdd(t *testing.T, l *Ledger, f Flow, asProjection bool) {
	t.Helper()
	if err := l.Add(f, asProjection); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestRealizedBalanceDateOnly(t *testing.T) {
	ids := NewIDAllocator(0)
	l := NewLedger("checking")
	mustAdd(t, l, NewFlow(ids, Money{Cents: 10000}, "salary", time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), 0, ""), false)
	mustAdd(t, l, NewFlow(ids, Money{Cents: -2500}, "food", time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC), 0, ""), false)

	// asOf earlier in the day than either flow: the comparison is by
	// calendar date, so both still count.
	asOf := time.Date(2025, 1, 10, 0, 30, 0, 0, time.UTC)
	if got := RealizedBalance(l, asOf); got.Cents != 7500 {
		t.Errorf("RealizedBalance = %d, want 7500", got.Cents)
	}

	if got := RealizedBalance(l, day(2025, 1, 9)); got.Cents != 0 {
		t.Errorf("RealizedBalance before any flow = %d, want 0", got.Cents)
	}
}

func TestRealizedBalanceIgnoresFutureDatedAndProjected(t *testing.T) {
	ids := NewIDAllocator(0)
	l := NewLedger("checking")
	now := day(2025, 6, 15)
	mustAdd(t, l, NewFlow(ids, Money{Cents: 10000}, "salary", now, 0, ""), false)
	// A future-dated executed flow must not move today's balance.
	mustAdd(t, l, NewFlow(ids, Money{Cents: 99900}, "bonus", day(2025, 7, 1), 0, ""), false)
	// Projected flows never count toward the realized balance.
	mustAdd(t, l, NewFlow(ids, Money{Cents: -5000}, "rent", now, 30, ""), true)

	if got := RealizedBalance(l, now); got.Cents != 10000 {
		t.Errorf("RealizedBalance = %d, want 10000", got.Cents)
	}
}

func TestTrendSign(t *testing.T) {
	ids := NewIDAllocator(0)
	l := NewLedger("checking")
	if got := TrendSign(l); got != 0 {
		t.Fatalf("empty ledger trend = %d, want 0", got)
	}

	mustAdd(t, l, NewFlow(ids, Money{Cents: -5000}, "rent", day(2025, 1, 1), 30, ""), true)
	if got := TrendSign(l); got != -1 {
		t.Errorf("trend = %d, want -1", got)
	}

	mustAdd(t, l, NewFlow(ids, Money{Cents: 20000}, "salary", day(2025, 1, 1), 30, ""), true)
	if got := TrendSign(l); got != 1 {
		t.Errorf("trend = %d, want 1", got)
	}

	// Executed flows do not enter the trend.
	mustAdd(t, l, NewFlow(ids, Money{Cents: -100000}, "car", day(2025, 1, 1), 0, ""), false)
	if got := TrendSign(l); got != 1 {
		t.Errorf("trend with executed outflow = %d, want 1", got)
	}
}

func TestProjectedBalanceFloorSemantics(t *testing.T) {
	// Recurring 100.00 every 30 days, first due Jan 1.
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := NewIDAllocator(0)
	l := NewLedger("checking")
	mustAdd(t, l, NewFlow(ids, Money{Cents: 10000}, "sub", t0, 30, ""), true)
	now := t0

	tests := []struct {
		name string
		asOf time.Time
		want int64
	}{
		{"due exactly today contributes zero", t0, 0},
		{"29 days elapsed", t0.AddDate(0, 0, 29), 0},
		{"one full period", t0.AddDate(0, 0, 30), 10000},
		{"59 days elapsed", t0.AddDate(0, 0, 59), 10000},
		{"two full periods", t0.AddDate(0, 0, 60), 20000},
		{"before the template's clock", t0.AddDate(0, 0, -1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProjectedBalance(l, now, tt.asOf); got.Cents != tt.want {
				t.Errorf("ProjectedBalance(asOf=%v) = %d, want %d", tt.asOf, got.Cents, tt.want)
			}
		})
	}
}

func TestProjectedBalanceMixed(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := NewIDAllocator(0)
	l := NewLedger("checking")
	// Realized base of 500.00.
	mustAdd(t, l, NewFlow(ids, Money{Cents: 50000}, "opening", now, 0, ""), false)
	// One-off -200.00 scheduled Jan 15: counts once from Jan 15 onward.
	mustAdd(t, l, NewFlow(ids, Money{Cents: -20000}, "tax", now.AddDate(0, 0, 14), 0, ""), true)
	// Recurring +100.00 every 10 days from Jan 1.
	mustAdd(t, l, NewFlow(ids, Money{Cents: 10000}, "side", now, 10, ""), true)

	// Jan 11: one recurrence elapsed, one-off not yet due.
	if got := ProjectedBalance(l, now, now.AddDate(0, 0, 10)); got.Cents != 60000 {
		t.Errorf("Jan 11 = %d, want 60000", got.Cents)
	}
	// Jan 31: three recurrences, one-off counted: 500 + 300 - 200.
	if got := ProjectedBalance(l, now, now.AddDate(0, 0, 30)); got.Cents != 60000 {
		t.Errorf("Jan 31 = %d, want 60000", got.Cents)
	}
}

func TestMonthlyForwardSeries(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	ids := NewIDAllocator(0)
	l := NewLedger("checking")
	mustAdd(t, l, NewFlow(ids, Money{Cents: 100000}, "opening", now, 0, ""), false)
	// -50.00 every 30 days, clock starts at now.
	mustAdd(t, l, NewFlow(ids, Money{Cents: -5000}, "sub", now, 30, ""), true)

	end := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	series := MonthlyForwardSeries(l, now, end)

	wantMonths := []string{"2025-01", "2025-02", "2025-03"}
	if len(series) != len(wantMonths) {
		t.Fatalf("len(series) = %d, want %d", len(series), len(wantMonths))
	}
	for i, mb := range series {
		if mb.Month != wantMonths[i] {
			t.Errorf("series[%d].Month = %q, want %q", i, mb.Month, wantMonths[i])
		}
	}

	// Jan 31 is 16 days after the template clock: no firing yet.
	if series[0].Balance.Cents != 100000 {
		t.Errorf("January = %d, want 100000", series[0].Balance.Cents)
	}
	// Feb 28 is 44 days out: one firing.
	if series[1].Balance.Cents != 95000 {
		t.Errorf("February = %d, want 95000", series[1].Balance.Cents)
	}
	// Final bucket clips to end (Mar 20, 64 days out): two firings.
	if series[2].Balance.Cents != 90000 {
		t.Errorf("March = %d, want 90000", series[2].Balance.Cents)
	}
}

func TestMonthlyForwardSeriesEndBeforeNow(t *testing.T) {
	now := day(2025, 5, 10)
	l := NewLedger("checking")
	if series := MonthlyForwardSeries(l, now, now.AddDate(0, 0, -40)); len(series) != 0 {
		t.Errorf("series = %v, want empty", series)
	}
}

func TestMonthlyBackwardSeries(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	ids := NewIDAllocator(0)
	l := NewLedger("checking")
	mustAdd(t, l, NewFlow(ids, Money{Cents: 100000}, "opening", day(2025, 1, 5), 0, ""), false)
	mustAdd(t, l, NewFlow(ids, Money{Cents: -30000}, "rent", day(2025, 2, 10), 0, ""), false)
	mustAdd(t, l, NewFlow(ids, Money{Cents: 5000}, "refund", day(2025, 3, 2), 0, ""), false)

	end := day(2025, 1, 1)
	series := MonthlyBackwardSeries(l, now, end)

	wantMonths := []string{"2025-03", "2025-02", "2025-01"}
	if len(series) != len(wantMonths) {
		t.Fatalf("len(series) = %d, want %d", len(series), len(wantMonths))
	}
	for i, mb := range series {
		if mb.Month != wantMonths[i] {
			t.Errorf("series[%d].Month = %q, want %q", i, mb.Month, wantMonths[i])
		}
	}

	// Running balance at each month-end, not per-month deltas.
	if series[0].Balance.Cents != 75000 {
		t.Errorf("March = %d, want 75000", series[0].Balance.Cents)
	}
	if series[1].Balance.Cents != 70000 {
		t.Errorf("February = %d, want 70000", series[1].Balance.Cents)
	}
	if series[2].Balance.Cents != 100000 {
		t.Errorf("January = %d, want 100000", series[2].Balance.Cents)
	}
}

// The series boundary nearest now must agree with the realized balance:
// past and future views meet at the seam.
func TestSeriesContinuityAtNow(t *testing.T) {
	now := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	ids := NewIDAllocator(0)
	l := NewLedger("checking")
	mustAdd(t, l, NewFlow(ids, Money{Cents: 42000}, "opening", day(2025, 3, 1), 0, ""), false)

	realized := RealizedBalance(l, now)

	backward := MonthlyBackwardSeries(l, now, day(2025, 3, 1))
	if backward[0].Balance != realized {
		t.Errorf("backward seam = %d, realized = %d", backward[0].Balance.Cents, realized.Cents)
	}

	// With no projected flows the forward walk stays at the realized level.
	forward := MonthlyForwardSeries(l, now, day(2025, 6, 30))
	if forward[0].Balance != realized {
		t.Errorf("forward seam = %d, realized = %d", forward[0].Balance.Cents, realized.Cents)
	}
}
