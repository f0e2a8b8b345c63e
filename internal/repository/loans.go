package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

const loanColumns = `id, created_at, item_name, weight_grams, customer_name, customer_id,
	phone, amount, interest_rate, due_date, status, redeemed_at,
	photo_path, id_front_path, id_back_path, signature_path`

func scanLoan(row interface{ Scan(...any) error }) (*models.Loan, error) {
	loan := &models.Loan{}
	err := row.Scan(&loan.ID, &loan.CreatedAt, &loan.ItemName, &loan.WeightGrams,
		&loan.CustomerName, &loan.CustomerID, &loan.Phone, &loan.Amount,
		&loan.InterestRate, &loan.DueDate, &loan.Status, &loan.RedeemedAt,
		&loan.PhotoPath, &loan.IDFrontPath, &loan.IDBackPath, &loan.SignaturePath)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}
	return loan, nil
}

// CreateLoan registers a pawn and its disbursement cash movement in one
// transaction; the negative movement mirrors the cash handed out.
func (r *Repository) CreateLoan(loan *models.Loan, concept string) error {
	return r.withTx(func(tx *sql.Tx) error {
		query := `
			INSERT INTO pawn.loans (created_at, item_name, weight_grams, customer_name,
				customer_id, phone, amount, interest_rate, due_date, status, photo_path)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`
		err := tx.QueryRow(query, loan.CreatedAt, loan.ItemName, loan.WeightGrams,
			loan.CustomerName, loan.CustomerID, loan.Phone, loan.Amount,
			loan.InterestRate, loan.DueDate, loan.Status, loan.PhotoPath).
			Scan(&loan.ID)
		if err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO pawn.cash_movements (when_at, concept, amount, ref)
			VALUES ($1, $2, $3, $4)`,
			loan.CreatedAt, concept, -loan.Amount, models.CashRefLoan)
		if err != nil {
			return fmt.Errorf("failed to record disbursement: %w", err)
		}
		return nil
	})
}

// FindLoanByID retrieves a loan by id
func (r *Repository) FindLoanByID(id int64) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM pawn.loans WHERE id = $1`
	return scanLoan(r.db.QueryRow(query, id))
}

// ListLoans returns loans newest first, optionally filtered by a search
// term (item, customer or phone) and a status.
func (r *Repository) ListLoans(q, status string, limit int) ([]*models.Loan, error) {
	var where []string
	var args []any

	if q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(item_name ILIKE $%d OR customer_name ILIKE $%d OR phone ILIKE $%d)", n, n, n))
	}
	if status != "" && status != "ALL" {
		args = append(args, status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + loanColumns + ` FROM pawn.loans`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// updateLoanQuery rewrites descriptive columns only. amount and due_date
// are owned by the payment transactions; writing them here from a
// previously read snapshot would revert payments committed in between.
const updateLoanQuery = `
	UPDATE pawn.loans
	SET item_name = $1, weight_grams = $2, customer_name = $3, customer_id = $4,
		phone = $5, interest_rate = $6
	WHERE id = $7`

// UpdateLoan persists the editable loan fields.
func (r *Repository) UpdateLoan(loan *models.Loan) error {
	res, err := r.db.Exec(updateLoanQuery,
		loan.ItemName, loan.WeightGrams, loan.CustomerName, loan.CustomerID,
		loan.Phone, loan.InterestRate, loan.ID)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	return requireRow(res)
}

// DeleteLoan removes a loan and, via cascade, its payments.
func (r *Repository) DeleteLoan(id int64) error {
	res, err := r.db.Exec(`DELETE FROM pawn.loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	return requireRow(res)
}

// MarkRedeemed flags a loan as redeemed at the given time.
func (r *Repository) MarkRedeemed(id int64, at time.Time) error {
	res, err := r.db.Exec(`
		UPDATE pawn.loans SET status = $1, redeemed_at = $2 WHERE id = $3`,
		models.LoanStatusRedeemed, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark loan redeemed: %w", err)
	}
	return requireRow(res)
}

// MarkLost flags a loan as lost and stocks the collateral as an inventory
// item in the same transaction.
func (r *Repository) MarkLost(id int64, itemDesc string, at time.Time) error {
	return r.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE pawn.loans SET status = $1 WHERE id = $2`,
			models.LoanStatusLost, id)
		if err != nil {
			return fmt.Errorf("failed to mark loan lost: %w", err)
		}
		if err := requireRow(res); err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO pawn.inventory_items (loan_id, item_desc, status, created_at)
			VALUES ($1, $2, $3, $4)`,
			id, itemDesc, models.InventoryStatusForSale, at)
		if err != nil {
			return fmt.Errorf("failed to stock inventory item: %w", err)
		}
		return nil
	})
}

// sellLoanInventoryQuery flips the stocked collateral row in the same
// transaction as the loan status change; without it sold goods would keep
// showing as available in the inventory view.
const sellLoanInventoryQuery = `
	UPDATE pawn.inventory_items SET status = $1 WHERE loan_id = $2`

// SellLostLoan marks a lost loan's collateral sold, flips its inventory
// row and records the sale proceeds as a positive cash movement.
func (r *Repository) SellLostLoan(id int64, price float64, concept string, at time.Time) error {
	return r.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE pawn.loans SET status = $1 WHERE id = $2 AND status = $3`,
			models.LoanStatusSold, id, models.LoanStatusLost)
		if err != nil {
			return fmt.Errorf("failed to mark loan sold: %w", err)
		}
		if err := requireRow(res); err != nil {
			return err
		}
		if _, err := tx.Exec(sellLoanInventoryQuery,
			models.InventoryStatusSold, id); err != nil {
			return fmt.Errorf("failed to update inventory item: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO pawn.cash_movements (when_at, concept, amount, ref)
			VALUES ($1, $2, $3, $4)`,
			at, concept, price, models.CashRefSale)
		if err != nil {
			return fmt.Errorf("failed to record sale proceeds: %w", err)
		}
		return nil
	})
}

// SetLoanMedia stores an upload path on the loan row. field must be one of
// the known media columns.
func (r *Repository) SetLoanMedia(id int64, field, path string) error {
	switch field {
	case "photo_path", "id_front_path", "id_back_path", "signature_path":
	default:
		return fmt.Errorf("unknown media field %q", field)
	}
	res, err := r.db.Exec(
		`UPDATE pawn.loans SET `+field+` = $1 WHERE id = $2`, path, id)
	if err != nil {
		return fmt.Errorf("failed to set loan media: %w", err)
	}
	return requireRow(res)
}

// LoansDueBetween lists active loans whose due date falls in [from, to].
func (r *Repository) LoansDueBetween(from, to time.Time) ([]models.DueLoan, error) {
	rows, err := r.db.Query(`
		SELECT id, customer_name, item_name, amount, due_date
		FROM pawn.loans
		WHERE status = $1 AND due_date BETWEEN $2 AND $3
		ORDER BY due_date`,
		models.LoanStatusActive, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due loans: %w", err)
	}
	defer rows.Close()

	var due []models.DueLoan
	for rows.Next() {
		var d models.DueLoan
		if err := rows.Scan(&d.ID, &d.CustomerName, &d.ItemName, &d.Amount, &d.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan due loan: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// CountActiveLoans returns the number of active loans and their combined
// outstanding principal.
func (r *Repository) CountActiveLoans() (int, float64, error) {
	var count int
	var capital float64
	err := r.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM pawn.loans WHERE status = $1`,
		models.LoanStatusActive).Scan(&count, &capital)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count active loans: %w", err)
	}
	return count, capital, nil
}

// renewDueDate moves a loan's due date forward after a full interest
// settlement; it only runs inside the payment transaction.
func (r *Repository) renewDueDate(tx *sql.Tx, id int64, due time.Time) error {
	_, err := tx.Exec(`UPDATE pawn.loans SET due_date = $1 WHERE id = $2`, due, id)
	if err != nil {
		return fmt.Errorf("failed to renew due date: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
