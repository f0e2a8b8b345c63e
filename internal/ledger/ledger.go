// Package ledger holds the interest-accrual and payment-allocation rules.
// It is pure: no I/O, no clock reads, everything comes in as arguments, so
// the money math stays unit-testable away from the web and storage layers.
package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

const (
	// daysPerMonth is the fixed month length used for accrual. Every month
	// counts as exactly 30 days regardless of the calendar; existing
	// receipts were issued under this rule, so it must not change.
	daysPerMonth = 30

	// defaultMonthlyRate backs loans stored with a zero/unset rate.
	defaultMonthlyRate = 20.0

	// renewTolerance is the rounding slack when deciding whether an
	// interest payment fully settles the accrued amount.
	renewTolerance = 0.01
)

// Mode selects how a tendered amount is split between interest and principal.
type Mode string

const (
	// ModeAuto satisfies accrued interest first; the remainder reduces principal.
	ModeAuto Mode = "AUTO"
	// ModeInterestOnly records the whole amount as interest, without clamping
	// to the computed accrual (may over- or under-pay interest).
	ModeInterestOnly Mode = "INTEREST_ONLY"
	// ModePrincipalOnly applies the whole amount against principal; no
	// interest row is written.
	ModePrincipalOnly Mode = "PRINCIPAL_ONLY"
)

// Allocation is the outcome of splitting a tendered amount.
type Allocation struct {
	ToInterest  float64 `json:"to_interest"`
	ToPrincipal float64 `json:"to_principal"`
}

// Round2 rounds a money amount to cents, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AccrualStart resolves the date unpaid interest starts counting from:
// an explicit override wins, then the most recent interest payment, then
// the loan's creation time.
func AccrualStart(createdAt time.Time, lastInterestPaid, override *time.Time) time.Time {
	if override != nil {
		return *override
	}
	if lastInterestPaid != nil {
		return *lastInterestPaid
	}
	return createdAt
}

// InterestDue computes the interest owed on a principal as of a date,
// accruing at monthlyRatePct percent per 30-day month. At least one day is
// always charged, so a same-day payment never accrues zero; an as-of date
// before the start clamps to that same one-day minimum.
func InterestDue(principal, monthlyRatePct float64, start, asOf time.Time) float64 {
	if monthlyRatePct <= 0 {
		monthlyRatePct = defaultMonthlyRate
	}
	days := wholeDays(start, asOf)
	if days < 1 {
		days = 1
	}
	daily := (monthlyRatePct / 100) / daysPerMonth
	due := principal * daily * float64(days)
	if due < 0 {
		due = 0
	}
	return Round2(due)
}

// Allocate splits a tendered amount according to the mode. interestDue is
// only consulted in AUTO mode.
func Allocate(mode Mode, tendered, interestDue float64) Allocation {
	switch mode {
	case ModeInterestOnly:
		return Allocation{ToInterest: Round2(tendered)}
	case ModePrincipalOnly:
		return Allocation{ToPrincipal: Round2(tendered)}
	default:
		toInterest := tendered
		if toInterest > interestDue {
			toInterest = interestDue
		}
		return Allocation{
			ToInterest:  Round2(toInterest),
			ToPrincipal: Round2(tendered - toInterest),
		}
	}
}

// CoversInterest reports whether an applied interest amount fully settles
// the accrued interest, within rounding tolerance. A zero accrual is never
// considered covered, so freshly paid loans do not renew for free.
func CoversInterest(toInterest, interestDue float64) bool {
	return interestDue > 0 && toInterest >= interestDue-renewTolerance
}

// RenewDueDate extends a due date after a full interest settlement. The
// extension is anchored to whichever is later, the payment date or the
// current due date, so paying early never shortens the term.
func RenewDueDate(paidAt, currentDue time.Time, renewDays int) time.Time {
	anchor := currentDue
	if paidAt.After(currentDue) {
		anchor = paidAt
	}
	return anchor.AddDate(0, 0, renewDays)
}

// NextInterestDue is the date the next interest charge falls due: 30 days
// after the last interest payment, or after the loan start if none exists.
func NextInterestDue(createdAt time.Time, lastInterestPaid *time.Time) time.Time {
	ref := createdAt
	if lastInterestPaid != nil {
		ref = *lastInterestPaid
	}
	return ref.AddDate(0, 0, daysPerMonth)
}

// MonthsOverdue counts whole 30-day months elapsed since the accrual start.
func MonthsOverdue(start, asOf time.Time) int {
	if !asOf.After(start) {
		return 0
	}
	return wholeDays(start, asOf) / daysPerMonth
}

// MonthlyInterest is the flat charge for one calendar month.
func MonthlyInterest(principal, monthlyRatePct float64) float64 {
	return Round2(principal * monthlyRatePct / 100)
}

// MonthlyBreakdown produces the advisory per-month interest projection for
// the inclusive [fromMonth, toMonth] range ("YYYY-MM"). It is a flat
// estimate independent of the payment history and is never posted to the
// ledger.
func MonthlyBreakdown(principal, monthlyRatePct float64, fromMonth, toMonth string) ([]models.MonthInterest, float64, error) {
	from, err := parseMonth(fromMonth)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseMonth(toMonth)
	if err != nil {
		return nil, 0, err
	}
	if to.Before(from) {
		return nil, 0, fmt.Errorf("month range is inverted: %s > %s", fromMonth, toMonth)
	}

	perMonth := MonthlyInterest(principal, monthlyRatePct)
	var rows []models.MonthInterest
	var total float64
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		rows = append(rows, models.MonthInterest{
			Month:    m.Format("2006-01"),
			Interest: perMonth,
		})
		total += perMonth
	}
	return rows, Round2(total), nil
}

// SummarizeReceipt totals the rows of one receipt. The capital portion is
// what an undo must hand back to the loan's principal; the grand total is
// the magnitude of the reversal cash movement.
func SummarizeReceipt(rows []models.Payment) models.Receipt {
	var r models.Receipt
	for i, p := range rows {
		if i == 0 {
			r.LoanID = p.LoanID
			r.PaidAt = p.PaidAt
		}
		r.Total += p.Amount
		switch p.Type {
		case models.PaymentTypeInterest:
			r.InterestAmount += p.Amount
		case models.PaymentTypePrincipal:
			r.CapitalAmount += p.Amount
		}
	}
	r.Total = Round2(r.Total)
	r.InterestAmount = Round2(r.InterestAmount)
	r.CapitalAmount = Round2(r.CapitalAmount)
	return r
}

// wholeDays truncates the span between two instants to whole days.
func wholeDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func parseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}
