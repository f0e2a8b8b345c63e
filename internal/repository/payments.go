package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

// ApplyPaymentParams carries one allocated payment into the datastore.
// ToInterest and ToPrincipal are already rounded; NewDueDate is set when a
// full interest settlement earns a renewal.
type ApplyPaymentParams struct {
	LoanID      int64
	PaidAt      time.Time
	ToInterest  float64
	ToPrincipal float64
	Notes       string
	Concept     string
	NewDueDate  *time.Time
}

// ApplyPayment writes one receipt atomically: the interest row, the
// principal row with its matching decrement, the cash movement for the full
// tendered amount, and the optional due-date renewal. The principal
// decrement is conditional on the outstanding amount so concurrent payments
// cannot race it below zero; ErrPrincipalExceeded reports the refusal.
func (r *Repository) ApplyPayment(p ApplyPaymentParams) error {
	return r.withTx(func(tx *sql.Tx) error {
		if p.ToInterest > 0 {
			_, err := tx.Exec(`
				INSERT INTO pawn.payments (loan_id, paid_at, amount, type, notes)
				VALUES ($1, $2, $3, $4, $5)`,
				p.LoanID, p.PaidAt, p.ToInterest, models.PaymentTypeInterest, p.Notes)
			if err != nil {
				return fmt.Errorf("failed to record interest payment: %w", err)
			}
		}

		if p.ToPrincipal > 0 {
			_, err := tx.Exec(`
				INSERT INTO pawn.payments (loan_id, paid_at, amount, type, notes)
				VALUES ($1, $2, $3, $4, $5)`,
				p.LoanID, p.PaidAt, p.ToPrincipal, models.PaymentTypePrincipal, p.Notes)
			if err != nil {
				return fmt.Errorf("failed to record principal payment: %w", err)
			}

			res, err := tx.Exec(`
				UPDATE pawn.loans
				SET amount = ROUND((amount - $1)::numeric, 2)
				WHERE id = $2 AND amount >= $1`,
				p.ToPrincipal, p.LoanID)
			if err != nil {
				return fmt.Errorf("failed to decrement principal: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read affected rows: %w", err)
			}
			if n == 0 {
				return ErrPrincipalExceeded
			}
		}

		total := p.ToInterest + p.ToPrincipal
		_, err := tx.Exec(`
			INSERT INTO pawn.cash_movements (when_at, concept, amount, ref)
			VALUES ($1, $2, $3, $4)`,
			p.PaidAt, p.Concept, total, models.CashRefPay)
		if err != nil {
			return fmt.Errorf("failed to record collection: %w", err)
		}

		if p.NewDueDate != nil {
			return r.renewDueDate(tx, p.LoanID, *p.NewDueDate)
		}
		return nil
	})
}

// LastInterestPaidAt returns the paid-at timestamp of the most recent
// interest payment for a loan, or nil when none exists.
func (r *Repository) LastInterestPaidAt(loanID int64) (*time.Time, error) {
	var last sql.NullTime
	err := r.db.QueryRow(`
		SELECT MAX(paid_at) FROM pawn.payments
		WHERE loan_id = $1 AND type = $2`,
		loanID, models.PaymentTypeInterest).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to find last interest payment: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

// FindPaymentByID retrieves a single payment row.
func (r *Repository) FindPaymentByID(id int64) (*models.Payment, error) {
	p := &models.Payment{}
	err := r.db.QueryRow(`
		SELECT id, loan_id, paid_at, amount, type, notes
		FROM pawn.payments WHERE id = $1`, id).
		Scan(&p.ID, &p.LoanID, &p.PaidAt, &p.Amount, &p.Type, &p.Notes)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return p, nil
}

// ReceiptPayments lists the payment rows of one receipt, identified by the
// loan and the exact paid-at timestamp.
func (r *Repository) ReceiptPayments(loanID int64, paidAt time.Time) ([]models.Payment, error) {
	rows, err := r.db.Query(`
		SELECT id, loan_id, paid_at, amount, type, notes
		FROM pawn.payments
		WHERE loan_id = $1 AND paid_at = $2
		ORDER BY id`, loanID, paidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipt payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.PaidAt, &p.Amount, &p.Type, &p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ReverseReceipt undoes one receipt atomically: the capital portion goes
// back onto the loan's principal, a negative cash movement records the
// reversal, and the payment rows are deleted. The cash movement is the only
// audit trail the original rows leave behind.
func (r *Repository) ReverseReceipt(loanID int64, paidAt time.Time, capitalRestore, total float64, concept string, at time.Time) error {
	return r.withTx(func(tx *sql.Tx) error {
		if capitalRestore > 0 {
			_, err := tx.Exec(`
				UPDATE pawn.loans
				SET amount = ROUND((amount + $1)::numeric, 2)
				WHERE id = $2`,
				capitalRestore, loanID)
			if err != nil {
				return fmt.Errorf("failed to restore principal: %w", err)
			}
		}

		_, err := tx.Exec(`
			INSERT INTO pawn.cash_movements (when_at, concept, amount, ref)
			VALUES ($1, $2, $3, $4)`,
			at, concept, -total, models.CashRefUndo)
		if err != nil {
			return fmt.Errorf("failed to record reversal: %w", err)
		}

		res, err := tx.Exec(`
			DELETE FROM pawn.payments WHERE loan_id = $1 AND paid_at = $2`,
			loanID, paidAt)
		if err != nil {
			return fmt.Errorf("failed to delete receipt payments: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListReceipts groups a loan's payment history by receipt, oldest first.
func (r *Repository) ListReceipts(loanID int64) ([]models.Receipt, error) {
	rows, err := r.db.Query(`
		SELECT loan_id, paid_at,
			SUM(amount) AS total,
			SUM(CASE WHEN type = $2 THEN amount ELSE 0 END) AS interest_amount,
			SUM(CASE WHEN type = $3 THEN amount ELSE 0 END) AS capital_amount,
			STRING_AGG(NULLIF(notes, ''), ' | ') AS notes
		FROM pawn.payments
		WHERE loan_id = $1
		GROUP BY loan_id, paid_at
		ORDER BY paid_at ASC`,
		loanID, models.PaymentTypeInterest, models.PaymentTypePrincipal)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var rec models.Receipt
		var notes sql.NullString
		if err := rows.Scan(&rec.LoanID, &rec.PaidAt, &rec.Total,
			&rec.InterestAmount, &rec.CapitalAmount, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		rec.Notes = notes.String
		receipts = append(receipts, rec)
	}
	return receipts, rows.Err()
}

// PaymentsByTypeBetween lists payments of one type inside a time range,
// newest first; used by the collection reports.
func (r *Repository) PaymentsByTypeBetween(paymentType string, from, to time.Time) ([]models.Payment, float64, error) {
	rows, err := r.db.Query(`
		SELECT id, loan_id, paid_at, amount, type, notes
		FROM pawn.payments
		WHERE type = $1 AND paid_at >= $2 AND paid_at < $3
		ORDER BY paid_at DESC`,
		paymentType, from, to)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	var total float64
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.PaidAt, &p.Amount, &p.Type, &p.Notes); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
		total += p.Amount
	}
	return payments, total, rows.Err()
}

// SumPrincipalPaid totals the principal payments recorded against a loan;
// together with the outstanding amount it reconstructs the original
// advance for receipts.
func (r *Repository) SumPrincipalPaid(loanID int64) (float64, error) {
	var sum float64
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM pawn.payments
		WHERE loan_id = $1 AND type = $2`,
		loanID, models.PaymentTypePrincipal).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum principal payments: %w", err)
	}
	return sum, nil
}
