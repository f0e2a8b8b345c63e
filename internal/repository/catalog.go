package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

// CreateClient creates a new client record.
func (r *Repository) CreateClient(client *models.Client) error {
	query := `
		INSERT INTO pawn.clients (name, document, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.db.QueryRow(query, client.Name, client.Document, client.Phone,
		client.Address, client.CreatedAt).Scan(&client.ID)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// ListClients returns all clients, newest first.
func (r *Repository) ListClients() ([]models.Client, error) {
	rows, err := r.db.Query(`
		SELECT id, name, document, phone, address, created_at
		FROM pawn.clients ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Document, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// DeleteClient removes a client record.
func (r *Repository) DeleteClient(id int64) error {
	res, err := r.db.Exec(`DELETE FROM pawn.clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return requireRow(res)
}

// CreateSaleItem puts a retail item up for sale.
func (r *Repository) CreateSaleItem(item *models.SaleItem) error {
	query := `
		INSERT INTO pawn.sales (item_desc, price, status)
		VALUES ($1, $2, $3)
		RETURNING id`
	err := r.db.QueryRow(query, item.ItemDesc, item.Price, item.Status).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create sale item: %w", err)
	}
	return nil
}

// FindSaleItem retrieves one retail item.
func (r *Repository) FindSaleItem(id int64) (*models.SaleItem, error) {
	item := &models.SaleItem{}
	err := r.db.QueryRow(`
		SELECT id, item_desc, price, sold_at, status
		FROM pawn.sales WHERE id = $1`, id).
		Scan(&item.ID, &item.ItemDesc, &item.Price, &item.SoldAt, &item.Status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find sale item: %w", err)
	}
	return item, nil
}

// ListSaleItems returns retail items newest first, plus the sold summary.
func (r *Repository) ListSaleItems(limit int) ([]models.SaleItem, *models.SalesSummary, error) {
	rows, err := r.db.Query(`
		SELECT id, item_desc, price, sold_at, status
		FROM pawn.sales ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	var items []models.SaleItem
	for rows.Next() {
		var item models.SaleItem
		if err := rows.Scan(&item.ID, &item.ItemDesc, &item.Price, &item.SoldAt, &item.Status); err != nil {
			return nil, nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	summary := &models.SalesSummary{}
	err = r.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(price), 0)
		FROM pawn.sales WHERE status = $1`,
		models.SaleStatusSold).Scan(&summary.SoldCount, &summary.TotalAmount)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to summarize sales: %w", err)
	}
	return items, summary, nil
}

// MarkSaleSold flags a retail item sold and records the proceeds as a
// positive cash movement in one transaction.
func (r *Repository) MarkSaleSold(id int64, concept string, at time.Time) error {
	return r.withTx(func(tx *sql.Tx) error {
		var price float64
		err := tx.QueryRow(`
			UPDATE pawn.sales SET status = $1, sold_at = $2
			WHERE id = $3 AND status <> $1
			RETURNING price`,
			models.SaleStatusSold, at, id).Scan(&price)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to mark sale sold: %w", err)
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

// DeleteSaleItem removes a retail item.
func (r *Repository) DeleteSaleItem(id int64) error {
	res, err := r.db.Exec(`DELETE FROM pawn.sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale item: %w", err)
	}
	return requireRow(res)
}

// ListInventoryItems returns the forfeited-goods inventory, newest first.
func (r *Repository) ListInventoryItems() ([]models.InventoryItem, error) {
	rows, err := r.db.Query(`
		SELECT id, loan_id, item_desc, status, created_at
		FROM pawn.inventory_items ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		var loanID sql.NullInt64
		if err := rows.Scan(&item.ID, &loanID, &item.ItemDesc, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		if loanID.Valid {
			item.LoanID = &loanID.Int64
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListLostLoans returns loans whose collateral was forfeited and is still
// unsold.
func (r *Repository) ListLostLoans() ([]*models.Loan, error) {
	return r.ListLoans("", models.LoanStatusLost, 500)
}
