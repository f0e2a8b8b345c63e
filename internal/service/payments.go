package service

import (
	"fmt"
	"math"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/ledger"
	"github.com/jdmdelivery/pawn-service/internal/models"
	"github.com/jdmdelivery/pawn-service/internal/repository"
)

// PaymentInput is one tendered payment before allocation. Tendered is the
// amount entered at the counter; CapitalExtra goes straight against
// principal on top of whatever the mode allocates.
type PaymentInput struct {
	LoanID       int64
	Tendered     float64
	CapitalExtra float64
	Mode         ledger.Mode
	AsOf         *time.Time
	FromOverride *time.Time
	Notes        string
}

// PaymentResult reports how a payment was applied.
type PaymentResult struct {
	LoanID      int64             `json:"loan_id"`
	PaidAt      time.Time         `json:"paid_at"`
	InterestDue float64           `json:"interest_due"`
	Allocation  ledger.Allocation `json:"allocation"`
	Renewed     bool              `json:"renewed"`
	NewDueDate  *time.Time        `json:"new_due_date,omitempty"`
	Principal   float64           `json:"principal_after"`
}

// ParseMode maps a request string onto an allocation mode; anything
// unrecognized falls back to AUTO.
func ParseMode(s string) ledger.Mode {
	switch ledger.Mode(s) {
	case ledger.ModeInterestOnly:
		return ledger.ModeInterestOnly
	case ledger.ModePrincipalOnly:
		return ledger.ModePrincipalOnly
	default:
		return ledger.ModeAuto
	}
}

// ApplyPayment allocates a tendered amount against a loan and persists the
// receipt in a single transaction. A full interest settlement with no
// principal portion renews the due date.
func (s *Service) ApplyPayment(in PaymentInput) (*PaymentResult, error) {
	if math.IsNaN(in.Tendered) || math.IsInf(in.Tendered, 0) || in.Tendered < 0 ||
		math.IsNaN(in.CapitalExtra) || math.IsInf(in.CapitalExtra, 0) || in.CapitalExtra < 0 {
		return nil, ErrInvalidAmount
	}
	if in.Tendered == 0 && in.CapitalExtra == 0 {
		return nil, ErrInvalidAmount
	}

	loan, err := s.repo.FindLoanByID(in.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusActive {
		return nil, ErrLoanNotActive
	}

	lastInterest, err := s.repo.LastInterestPaidAt(in.LoanID)
	if err != nil {
		return nil, err
	}

	asOf := time.Now()
	if in.AsOf != nil {
		asOf = *in.AsOf
	}
	paidAt := time.Now()

	start := ledger.AccrualStart(loan.CreatedAt, lastInterest, in.FromOverride)
	due := ledger.InterestDue(loan.Amount, loan.InterestRate, start, asOf)

	alloc := ledger.Allocate(in.Mode, in.Tendered, due)
	if in.CapitalExtra > 0 {
		alloc.ToPrincipal = ledger.Round2(alloc.ToPrincipal + in.CapitalExtra)
	}
	if alloc.ToPrincipal > loan.Amount {
		return nil, fmt.Errorf("%w: principal payment %.2f exceeds outstanding %.2f",
			repository.ErrPrincipalExceeded, alloc.ToPrincipal, loan.Amount)
	}

	settings, err := s.ShopSettings()
	if err != nil {
		return nil, err
	}

	result := &PaymentResult{
		LoanID:      loan.ID,
		PaidAt:      paidAt,
		InterestDue: due,
		Allocation:  alloc,
		Principal:   ledger.Round2(loan.Amount - alloc.ToPrincipal),
	}

	params := repoPaymentParams(loan, paidAt, alloc, in.Notes)
	if ledger.CoversInterest(alloc.ToInterest, due) && alloc.ToPrincipal == 0 {
		newDue := ledger.RenewDueDate(paidAt, loan.DueDate, settings.RenewDays)
		params.NewDueDate = &newDue
		result.Renewed = true
		result.NewDueDate = &newDue
	}

	if err := s.repo.ApplyPayment(params); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"loan_id":      loan.ID,
		"to_interest":  alloc.ToInterest,
		"to_principal": alloc.ToPrincipal,
		"renewed":      result.Renewed,
	}).Info("Payment applied")
	return result, nil
}

// UndoReceipt reverses one receipt: principal is restored, a negative cash
// movement is booked and the payment rows are removed. Only admins may do
// it, and they must re-enter their password.
func (s *Service) UndoReceipt(callerID int64, callerRole, password string, loanID, paymentID int64) error {
	if callerRole != models.RoleAdmin {
		return ErrForbidden
	}
	if err := s.VerifyCallerPassword(callerID, password); err != nil {
		return err
	}

	payment, err := s.repo.FindPaymentByID(paymentID)
	if err != nil {
		return err
	}
	if payment.LoanID != loanID {
		return fmt.Errorf("%w: payment does not belong to loan", ErrValidation)
	}

	rows, err := s.repo.ReceiptPayments(loanID, payment.PaidAt)
	if err != nil {
		return err
	}
	receipt := ledger.SummarizeReceipt(rows)

	concept := fmt.Sprintf("Undo receipt of %s (Loan #%d)",
		payment.PaidAt.Format("2006-01-02 15:04"), loanID)
	if err := s.repo.ReverseReceipt(loanID, payment.PaidAt,
		receipt.CapitalAmount, receipt.Total, concept, time.Now()); err != nil {
		return err
	}

	s.log.Warnf("Receipt of loan %d at %s undone by user %d (total %.2f)",
		loanID, payment.PaidAt.Format(time.RFC3339), callerID, receipt.Total)
	return nil
}

// Receipts lists a loan's payment history grouped into receipts.
func (s *Service) Receipts(loanID int64) ([]models.Receipt, error) {
	if _, err := s.repo.FindLoanByID(loanID); err != nil {
		return nil, err
	}
	return s.repo.ListReceipts(loanID)
}

// MonthlyBreakdown projects the flat month-by-month interest a loan
// accrues between two months, inclusive. Months use the YYYY-MM format.
func (s *Service) MonthlyBreakdown(loanID int64, fromMonth, toMonth string) ([]models.MonthInterest, float64, error) {
	loan, err := s.repo.FindLoanByID(loanID)
	if err != nil {
		return nil, 0, err
	}
	months, total, err := ledger.MonthlyBreakdown(loan.Amount, loan.InterestRate, fromMonth, toMonth)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return months, total, nil
}

func repoPaymentParams(loan *models.Loan, paidAt time.Time, alloc ledger.Allocation, notes string) repository.ApplyPaymentParams {
	return repository.ApplyPaymentParams{
		LoanID:      loan.ID,
		PaidAt:      paidAt,
		ToInterest:  alloc.ToInterest,
		ToPrincipal: alloc.ToPrincipal,
		Notes:       notes,
		Concept: fmt.Sprintf("Payment %s (Loan #%d)",
			loan.CustomerName, loan.ID),
	}
}
