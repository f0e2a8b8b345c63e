package repository

import (
	"fmt"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

// CashNetBetween sums the signed cash movements inside [from, to).
func (r *Repository) CashNetBetween(from, to time.Time) (float64, error) {
	var net float64
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0)
		FROM pawn.cash_movements
		WHERE when_at >= $1 AND when_at < $2`,
		from, to).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("failed to sum cash movements: %w", err)
	}
	return net, nil
}

// ListCashMovements returns the raw journal inside [from, to), newest first.
func (r *Repository) ListCashMovements(from, to time.Time) ([]models.CashMovement, error) {
	rows, err := r.db.Query(`
		SELECT id, when_at, concept, amount, ref
		FROM pawn.cash_movements
		WHERE when_at >= $1 AND when_at < $2
		ORDER BY when_at DESC, id DESC`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash movements: %w", err)
	}
	defer rows.Close()

	var movements []models.CashMovement
	for rows.Next() {
		var m models.CashMovement
		if err := rows.Scan(&m.ID, &m.WhenAt, &m.Concept, &m.Amount, &m.Ref); err != nil {
			return nil, fmt.Errorf("failed to scan cash movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// CustomerCollectionsBetween aggregates a period's collections per customer
// from the payment rows, largest totals first.
func (r *Repository) CustomerCollectionsBetween(from, to time.Time) ([]models.CustomerDayCollection, error) {
	rows, err := r.db.Query(`
		SELECT COALESCE(NULLIF(TRIM(l.customer_name), ''), '(unnamed)') AS customer_name,
			SUM(CASE WHEN p.type = $3 THEN p.amount ELSE 0 END) AS interest,
			SUM(CASE WHEN p.type = $4 THEN p.amount ELSE 0 END) AS capital,
			SUM(p.amount) AS total,
			COUNT(DISTINCT l.id) AS loans_count,
			COUNT(p.id) AS payments_count
		FROM pawn.payments p
		JOIN pawn.loans l ON l.id = p.loan_id
		WHERE p.paid_at >= $1 AND p.paid_at < $2
		GROUP BY 1
		ORDER BY total DESC`,
		from, to, models.PaymentTypeInterest, models.PaymentTypePrincipal)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate collections: %w", err)
	}
	defer rows.Close()

	var collections []models.CustomerDayCollection
	for rows.Next() {
		var c models.CustomerDayCollection
		if err := rows.Scan(&c.CustomerName, &c.Interest, &c.Capital,
			&c.Total, &c.LoansCount, &c.PaymentsCount); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}
