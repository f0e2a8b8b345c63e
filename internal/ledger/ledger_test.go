package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestInterestDueThirtyDays(t *testing.T) {
	// 1000 at 20%/month over 30 days is exactly one month of interest.
	start := date(2024, time.January, 1)
	asOf := date(2024, time.January, 31)

	got := InterestDue(1000, 20, start, asOf)
	if !almostEqual(got, 200.00) {
		t.Errorf("Expected 200.00, got %.2f", got)
	}
}

func TestInterestDueSameDayMinimum(t *testing.T) {
	start := date(2024, time.January, 1)

	got := InterestDue(1000, 20, start, start)
	want := Round2(1000 * (20.0 / 100) / 30) // one day, never zero
	if !almostEqual(got, want) {
		t.Errorf("Expected %.2f for same-day accrual, got %.2f", want, got)
	}
}

func TestInterestDueAsOfBeforeStart(t *testing.T) {
	start := date(2024, time.June, 15)
	asOf := date(2024, time.June, 1)

	got := InterestDue(1000, 20, start, asOf)
	want := InterestDue(1000, 20, start, start)
	if !almostEqual(got, want) {
		t.Errorf("Expected clamp to one day (%.2f), got %.2f", want, got)
	}
	if got < 0 {
		t.Errorf("Interest must never be negative, got %.2f", got)
	}
}

func TestInterestDueMonotonic(t *testing.T) {
	start := date(2024, time.January, 1)
	prev := 0.0
	for d := 0; d <= 120; d++ {
		got := InterestDue(500, 15, start, start.AddDate(0, 0, d))
		if got < prev {
			t.Fatalf("Accrual decreased at day %d: %.2f -> %.2f", d, prev, got)
		}
		prev = got
	}
}

func TestInterestDueZeroRateFallsBack(t *testing.T) {
	start := date(2024, time.January, 1)
	asOf := date(2024, time.January, 31)

	// Loans stored with no rate accrue at the historical 20% default.
	got := InterestDue(1000, 0, start, asOf)
	if !almostEqual(got, 200.00) {
		t.Errorf("Expected default-rate accrual 200.00, got %.2f", got)
	}
}

func TestAccrualStartPrecedence(t *testing.T) {
	created := date(2024, time.January, 1)
	lastPaid := date(2024, time.February, 10)
	override := date(2024, time.March, 5)

	if got := AccrualStart(created, nil, nil); !got.Equal(created) {
		t.Errorf("Expected creation date, got %v", got)
	}
	if got := AccrualStart(created, &lastPaid, nil); !got.Equal(lastPaid) {
		t.Errorf("Expected last interest payment, got %v", got)
	}
	if got := AccrualStart(created, &lastPaid, &override); !got.Equal(override) {
		t.Errorf("Expected override, got %v", got)
	}
}

func TestAllocateAuto(t *testing.T) {
	// 250 against 200 due: interest first, remainder to principal.
	a := Allocate(ModeAuto, 250, 200)
	if !almostEqual(a.ToInterest, 200) || !almostEqual(a.ToPrincipal, 50) {
		t.Errorf("Expected 200/50 split, got %.2f/%.2f", a.ToInterest, a.ToPrincipal)
	}
}

func TestAllocateAutoNeverExceedsDue(t *testing.T) {
	cases := []struct{ tendered, due float64 }{
		{100, 200}, {200, 200}, {300, 200}, {0.01, 6.67}, {5000, 0},
	}
	for _, c := range cases {
		a := Allocate(ModeAuto, c.tendered, c.due)
		if a.ToInterest > c.due+0.001 {
			t.Errorf("tendered=%.2f due=%.2f: interest %.2f exceeds due", c.tendered, c.due, a.ToInterest)
		}
		if !almostEqual(a.ToInterest+a.ToPrincipal, Round2(c.tendered)) {
			t.Errorf("tendered=%.2f: split %.2f+%.2f does not add up", c.tendered, a.ToInterest, a.ToPrincipal)
		}
	}
}

func TestAllocateInterestOnlyDoesNotClamp(t *testing.T) {
	a := Allocate(ModeInterestOnly, 500, 200)
	if !almostEqual(a.ToInterest, 500) || a.ToPrincipal != 0 {
		t.Errorf("Expected full 500 to interest, got %.2f/%.2f", a.ToInterest, a.ToPrincipal)
	}
}

func TestAllocatePrincipalOnlyWritesNoInterest(t *testing.T) {
	a := Allocate(ModePrincipalOnly, 300, 200)
	if a.ToInterest != 0 || !almostEqual(a.ToPrincipal, 300) {
		t.Errorf("Expected full 300 to principal, got %.2f/%.2f", a.ToInterest, a.ToPrincipal)
	}
}

func TestCoversInterest(t *testing.T) {
	if !CoversInterest(200, 200) {
		t.Error("Exact settlement should cover")
	}
	if !CoversInterest(199.995, 200) {
		t.Error("Settlement within tolerance should cover")
	}
	if CoversInterest(150, 200) {
		t.Error("Partial settlement should not cover")
	}
	if CoversInterest(0, 0) {
		t.Error("Zero accrual should never count as covered")
	}
}

func TestRenewDueDateAnchor(t *testing.T) {
	due := date(2024, time.April, 1)

	// Paying before the due date extends from the due date.
	early := date(2024, time.March, 15)
	if got := RenewDueDate(early, due, 30); !got.Equal(date(2024, time.May, 1)) {
		t.Errorf("Expected 2024-05-01, got %v", got)
	}

	// Paying after the due date extends from the payment date.
	late := date(2024, time.April, 20)
	if got := RenewDueDate(late, due, 30); !got.Equal(date(2024, time.May, 20)) {
		t.Errorf("Expected 2024-05-20, got %v", got)
	}
}

func TestNextInterestDue(t *testing.T) {
	created := date(2024, time.January, 1)
	if got := NextInterestDue(created, nil); !got.Equal(date(2024, time.January, 31)) {
		t.Errorf("Expected 30 days after creation, got %v", got)
	}
	paid := date(2024, time.February, 15)
	if got := NextInterestDue(created, &paid); !got.Equal(date(2024, time.March, 16)) {
		t.Errorf("Expected 30 days after last interest payment, got %v", got)
	}
}

func TestMonthsOverdue(t *testing.T) {
	start := date(2024, time.January, 1)
	cases := []struct {
		asOf time.Time
		want int
	}{
		{start, 0},
		{start.AddDate(0, 0, 29), 0},
		{start.AddDate(0, 0, 30), 1},
		{start.AddDate(0, 0, 95), 3},
		{start.AddDate(0, 0, -10), 0},
	}
	for _, c := range cases {
		if got := MonthsOverdue(start, c.asOf); got != c.want {
			t.Errorf("asOf=%v: expected %d months, got %d", c.asOf, c.want, got)
		}
	}
}

func TestMonthlyBreakdown(t *testing.T) {
	rows, total, err := MonthlyBreakdown(1000, 20, "2024-01", "2024-03")
	if err != nil {
		t.Fatalf("Breakdown failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 months, got %d", len(rows))
	}
	for _, r := range rows {
		if !almostEqual(r.Interest, 200) {
			t.Errorf("Month %s: expected 200, got %.2f", r.Month, r.Interest)
		}
	}
	if !almostEqual(total, 600) {
		t.Errorf("Expected total 600, got %.2f", total)
	}
	if rows[0].Month != "2024-01" || rows[2].Month != "2024-03" {
		t.Errorf("Unexpected month labels: %v", rows)
	}
}

func TestMonthlyBreakdownYearBoundary(t *testing.T) {
	rows, _, err := MonthlyBreakdown(500, 10, "2023-11", "2024-02")
	if err != nil {
		t.Fatalf("Breakdown failed: %v", err)
	}
	want := []string{"2023-11", "2023-12", "2024-01", "2024-02"}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d months, got %d", len(want), len(rows))
	}
	for i, m := range want {
		if rows[i].Month != m {
			t.Errorf("Expected month %s at %d, got %s", m, i, rows[i].Month)
		}
	}
}

func TestMonthlyBreakdownErrors(t *testing.T) {
	if _, _, err := MonthlyBreakdown(1000, 20, "garbage", "2024-03"); err == nil {
		t.Error("Expected error for bad from month")
	}
	if _, _, err := MonthlyBreakdown(1000, 20, "2024-05", "2024-03"); err == nil {
		t.Error("Expected error for inverted range")
	}
}

func TestSummarizeReceipt(t *testing.T) {
	paidAt := time.Date(2024, time.January, 31, 14, 30, 0, 0, time.UTC)
	rows := []models.Payment{
		{LoanID: 7, PaidAt: paidAt, Amount: 200, Type: models.PaymentTypeInterest},
		{LoanID: 7, PaidAt: paidAt, Amount: 50, Type: models.PaymentTypePrincipal},
	}

	r := SummarizeReceipt(rows)
	if r.LoanID != 7 || !r.PaidAt.Equal(paidAt) {
		t.Errorf("Receipt identity not carried: %+v", r)
	}
	if !almostEqual(r.Total, 250) {
		t.Errorf("Expected total 250, got %.2f", r.Total)
	}
	if !almostEqual(r.InterestAmount, 200) || !almostEqual(r.CapitalAmount, 50) {
		t.Errorf("Expected 200/50, got %.2f/%.2f", r.InterestAmount, r.CapitalAmount)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{6.666666, 6.67},
		{199.994, 199.99},
		{199.995, 200.00},
		{-2.678, -2.68},
		{0, 0},
	}
	for _, c := range cases {
		if got := Round2(c.in); !almostEqual(got, c.want) {
			t.Errorf("Round2(%v): expected %v, got %v", c.in, c.want, got)
		}
	}
}
