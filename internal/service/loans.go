package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/ledger"
	"github.com/jdmdelivery/pawn-service/internal/models"
	"github.com/jdmdelivery/pawn-service/internal/utils"
)

// CreateLoanInput carries the fields of a new pledge. Zero InterestRate
// and TermDays fall back to the shop settings.
type CreateLoanInput struct {
	ItemName     string
	WeightGrams  float64
	CustomerName string
	CustomerID   string
	Phone        string
	Amount       float64
	InterestRate float64
	TermDays     int
	StartDate    *time.Time
}

// LoanView is a loan decorated with the derived figures the detail page
// and the ticket need.
type LoanView struct {
	Loan            *models.Loan     `json:"loan"`
	InterestDue     float64          `json:"interest_due"`
	NextInterestDue time.Time        `json:"next_interest_due"`
	MonthsOverdue   int              `json:"months_overdue"`
	PrincipalPaid   float64          `json:"principal_paid"`
	OriginalAmount  float64          `json:"original_amount"`
	Receipts        []models.Receipt `json:"receipts"`
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// CreateLoan validates the pledge, disburses the principal and records
// the cash outflow.
func (s *Service) CreateLoan(in CreateLoanInput) (*models.Loan, error) {
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	if in.ItemName == "" || in.CustomerName == "" || in.CustomerID == "" {
		return nil, fmt.Errorf("%w: item, customer name and customer id are required", ErrValidation)
	}
	if !validAmount(in.Amount) {
		return nil, ErrInvalidAmount
	}

	settings, err := s.ShopSettings()
	if err != nil {
		return nil, err
	}
	if in.InterestRate <= 0 {
		in.InterestRate = settings.DefaultInterestRate
	}
	if in.TermDays <= 0 {
		in.TermDays = settings.DefaultTermDays
	}

	start := time.Now()
	if in.StartDate != nil {
		start = *in.StartDate
	}

	loan := &models.Loan{
		CreatedAt:    start,
		ItemName:     in.ItemName,
		WeightGrams:  in.WeightGrams,
		CustomerName: in.CustomerName,
		CustomerID:   in.CustomerID,
		Phone:        utils.NormalizePhone(in.Phone),
		Amount:       ledger.Round2(in.Amount),
		InterestRate: in.InterestRate,
		DueDate:      start.AddDate(0, 0, in.TermDays),
		Status:       models.LoanStatusActive,
	}

	concept := fmt.Sprintf("Loan disbursement #%s %s", loan.CustomerID, loan.ItemName)
	if err := s.repo.CreateLoan(loan, concept); err != nil {
		return nil, err
	}

	s.log.WithField("loan_id", loan.ID).Infof("Loan created for %s: %.2f at %.1f%%/month",
		loan.CustomerName, loan.Amount, loan.InterestRate)
	return loan, nil
}

// GetLoan returns a loan with its accrual figures as of now.
func (s *Service) GetLoan(id int64) (*LoanView, error) {
	return s.loanViewAsOf(id, time.Now(), nil)
}

// QuoteLoan returns the accrual figures for an arbitrary valuation date,
// optionally overriding the accrual start.
func (s *Service) QuoteLoan(id int64, asOf time.Time, fromOverride *time.Time) (*LoanView, error) {
	return s.loanViewAsOf(id, asOf, fromOverride)
}

func (s *Service) loanViewAsOf(id int64, asOf time.Time, fromOverride *time.Time) (*LoanView, error) {
	loan, err := s.repo.FindLoanByID(id)
	if err != nil {
		return nil, err
	}

	lastInterest, err := s.repo.LastInterestPaidAt(id)
	if err != nil {
		return nil, err
	}
	principalPaid, err := s.repo.SumPrincipalPaid(id)
	if err != nil {
		return nil, err
	}
	receipts, err := s.repo.ListReceipts(id)
	if err != nil {
		return nil, err
	}

	start := ledger.AccrualStart(loan.CreatedAt, lastInterest, fromOverride)
	view := &LoanView{
		Loan:            loan,
		NextInterestDue: ledger.NextInterestDue(loan.CreatedAt, lastInterest),
		MonthsOverdue:   ledger.MonthsOverdue(start, asOf),
		PrincipalPaid:   principalPaid,
		OriginalAmount:  ledger.Round2(loan.Amount + principalPaid),
		Receipts:        receipts,
	}
	if loan.Status == models.LoanStatusActive {
		view.InterestDue = ledger.InterestDue(loan.Amount, loan.InterestRate, start, asOf)
	}
	return view, nil
}

// ListLoans searches loans by customer or item text and optional status.
func (s *Service) ListLoans(q, status string, limit int) ([]*models.Loan, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	return s.repo.ListLoans(q, status, limit)
}

// UpdateLoan edits the descriptive fields of a loan. Money fields move
// only through payments.
func (s *Service) UpdateLoan(loan *models.Loan) error {
	if strings.TrimSpace(loan.ItemName) == "" || strings.TrimSpace(loan.CustomerName) == "" {
		return fmt.Errorf("%w: item and customer name are required", ErrValidation)
	}
	loan.Phone = utils.NormalizePhone(loan.Phone)
	return s.repo.UpdateLoan(loan)
}

// DeleteLoan removes a loan and everything hanging off it. The caller
// must re-enter their password.
func (s *Service) DeleteLoan(callerID int64, password string, id int64) error {
	if err := s.VerifyCallerPassword(callerID, password); err != nil {
		return err
	}
	if err := s.repo.DeleteLoan(id); err != nil {
		return err
	}
	s.log.Warnf("Loan %d deleted by user %d", id, callerID)
	return nil
}

// RedeemLoan marks an active loan as paid off and returned.
func (s *Service) RedeemLoan(id int64) error {
	loan, err := s.repo.FindLoanByID(id)
	if err != nil {
		return err
	}
	if loan.Status != models.LoanStatusActive {
		return ErrLoanNotActive
	}
	if err := s.repo.MarkRedeemed(id, time.Now()); err != nil {
		return err
	}
	s.log.Infof("Loan %d redeemed", id)
	return nil
}

// MarkLoanLost forfeits an active loan; the pledge moves to inventory
// for sale.
func (s *Service) MarkLoanLost(id int64) error {
	loan, err := s.repo.FindLoanByID(id)
	if err != nil {
		return err
	}
	if loan.Status != models.LoanStatusActive {
		return ErrLoanNotActive
	}
	desc := fmt.Sprintf("%s - %s (Loan #%d)", loan.ItemName, loan.CustomerName, loan.ID)
	if err := s.repo.MarkLost(id, desc, time.Now()); err != nil {
		return err
	}
	s.log.Infof("Loan %d marked lost", id)
	return nil
}

// SellLostLoan sells a forfeited pledge and books the cash inflow.
func (s *Service) SellLostLoan(id int64, price float64) error {
	if !validAmount(price) {
		return ErrInvalidAmount
	}
	loan, err := s.repo.FindLoanByID(id)
	if err != nil {
		return err
	}
	if loan.Status != models.LoanStatusLost {
		return fmt.Errorf("%w: loan is not lost", ErrValidation)
	}
	concept := fmt.Sprintf("Sale of lost pledge %s (Loan #%d)", loan.ItemName, loan.ID)
	if err := s.repo.SellLostLoan(id, ledger.Round2(price), concept, time.Now()); err != nil {
		return err
	}
	s.log.Infof("Lost loan %d sold for %.2f", id, price)
	return nil
}

// AttachLoanMedia stores the path of an uploaded document against a loan.
// field is one of the media columns, e.g. photo_path or signature_path.
func (s *Service) AttachLoanMedia(id int64, field, path string) error {
	return s.repo.SetLoanMedia(id, field, path)
}
