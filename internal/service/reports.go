package service

import (
	"strings"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/ledger"
	"github.com/jdmdelivery/pawn-service/internal/models"
)

const dueSoonWindow = 7 * 24 * time.Hour

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

// DashboardMetrics assembles the front-page counters: active loans,
// capital out on the street, today's net cash and the due-soon list.
func (s *Service) DashboardMetrics() (*models.DashboardMetrics, error) {
	count, capital, err := s.repo.CountActiveLoans()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart, dayEnd := dayBounds(now)
	cashToday, err := s.repo.CashNetBetween(dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	dueSoon, err := s.repo.LoansDueBetween(dayStart, now.Add(dueSoonWindow))
	if err != nil {
		return nil, err
	}

	return &models.DashboardMetrics{
		ActiveLoans: count,
		CapitalHeld: ledger.Round2(capital),
		CashToday:   ledger.Round2(cashToday),
		DueSoon:     dueSoon,
		GeneratedAt: &now,
	}, nil
}

// DailyCashSummary aggregates one day's collections per customer. A
// non-empty name narrows the rows to matching customers.
func (s *Service) DailyCashSummary(day time.Time, name string) (*models.DailyCashSummary, error) {
	from, to := dayBounds(day)
	rows, err := s.repo.CustomerCollectionsBetween(from, to)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		filtered := rows[:0]
		for _, row := range rows {
			if strings.Contains(strings.ToLower(row.CustomerName), strings.ToLower(name)) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	summary := &models.DailyCashSummary{
		Date: from.Format("2006-01-02"),
		Rows: rows,
	}
	for _, row := range rows {
		summary.TotalInterest += row.Interest
		summary.TotalCapital += row.Capital
		summary.Total += row.Total
	}
	summary.TotalInterest = ledger.Round2(summary.TotalInterest)
	summary.TotalCapital = ledger.Round2(summary.TotalCapital)
	summary.Total = ledger.Round2(summary.Total)
	return summary, nil
}

// CashMovements lists the raw cash ledger between two instants.
func (s *Service) CashMovements(from, to time.Time) ([]models.CashMovement, float64, error) {
	movements, err := s.repo.ListCashMovements(from, to)
	if err != nil {
		return nil, 0, err
	}
	var net float64
	for _, m := range movements {
		net += m.Amount
	}
	return movements, ledger.Round2(net), nil
}

// InterestCollected reports interest payments in a period with their sum.
func (s *Service) InterestCollected(from, to time.Time) ([]models.Payment, float64, error) {
	return s.repo.PaymentsByTypeBetween(models.PaymentTypeInterest, from, to)
}

// CapitalCollected reports principal payments in a period with their sum.
func (s *Service) CapitalCollected(from, to time.Time) ([]models.Payment, float64, error) {
	return s.repo.PaymentsByTypeBetween(models.PaymentTypePrincipal, from, to)
}

// AtRiskLoans lists active loans due within the next week.
func (s *Service) AtRiskLoans() ([]models.DueLoan, error) {
	now := time.Now()
	return s.repo.LoansDueBetween(now, now.Add(dueSoonWindow))
}

// DueSoonDigest mails the loans due within the next week to the recovery
// address. The cron scheduler runs it daily; it is a no-op without a
// configured address or due loans.
func (s *Service) DueSoonDigest() error {
	if s.config.RecoveryEmail == "" {
		return nil
	}

	now := time.Now()
	due, err := s.repo.LoansDueBetween(now, now.Add(dueSoonWindow))
	if err != nil {
		return err
	}
	if len(due) == 0 {
		s.log.Debug("No loans due soon, skipping digest")
		return nil
	}

	if err := s.mailer.SendDueSoonDigest(s.config.RecoveryEmail, due); err != nil {
		return err
	}
	s.log.Infof("Due-soon digest sent: %d loan(s)", len(due))
	return nil
}
