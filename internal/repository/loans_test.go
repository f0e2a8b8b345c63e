package repository

import (
	"strings"
	"testing"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

// A loan edit writes descriptive columns only. If amount or due_date ever
// rejoin the column list, an edit started before a payment commits would
// overwrite the payment's decrement and renewal with its stale snapshot.
func TestUpdateLoanLeavesMoneyColumnsAlone(t *testing.T) {
	for _, col := range []string{"amount", "due_date", "status"} {
		if strings.Contains(updateLoanQuery, col) {
			t.Errorf("loan edit must not write %q; that column belongs to the payment path", col)
		}
	}
	for _, col := range []string{"item_name", "customer_name", "phone", "interest_rate"} {
		if !strings.Contains(updateLoanQuery, col) {
			t.Errorf("loan edit lost editable column %q", col)
		}
	}
}

// Selling forfeited collateral has to retire its inventory row in the same
// transaction, otherwise the inventory view keeps offering sold goods.
func TestSellLostLoanRetiresInventoryRow(t *testing.T) {
	if !strings.Contains(sellLoanInventoryQuery, "pawn.inventory_items") {
		t.Fatal("sale transaction no longer touches the inventory table")
	}
	if !strings.Contains(sellLoanInventoryQuery, "loan_id") {
		t.Error("inventory row must be matched by its loan id")
	}
	if models.InventoryStatusSold != "SOLD" {
		t.Errorf("unexpected sold status %q", models.InventoryStatusSold)
	}
}

// The DDL must stock forfeited items as available and link them back to
// their loan so the sale transaction can retire them.
func TestInventorySchemaLinksLoans(t *testing.T) {
	if !strings.Contains(schema, "loan_id BIGINT REFERENCES pawn.loans(id)") {
		t.Error("inventory_items lost its loan reference")
	}
	if strings.Contains(schema, "DEFAULT 'LOST'") {
		t.Error("inventory_items should default to FOR_SALE")
	}
}
