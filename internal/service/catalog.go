package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/ledger"
	"github.com/jdmdelivery/pawn-service/internal/models"
	"github.com/jdmdelivery/pawn-service/internal/utils"
)

// CreateClient registers a customer record.
func (s *Service) CreateClient(client *models.Client) error {
	client.Name = strings.TrimSpace(client.Name)
	client.Document = strings.TrimSpace(client.Document)
	if client.Name == "" || client.Document == "" {
		return fmt.Errorf("%w: name and document are required", ErrValidation)
	}
	client.Phone = utils.NormalizePhone(client.Phone)
	if err := s.repo.CreateClient(client); err != nil {
		return err
	}
	s.log.Infof("Client created: %s", client.Name)
	return nil
}

// ListClients returns all customer records, newest first.
func (s *Service) ListClients() ([]models.Client, error) {
	return s.repo.ListClients()
}

// DeleteClient removes a customer record.
func (s *Service) DeleteClient(id int64) error {
	return s.repo.DeleteClient(id)
}

// CreateSaleItem puts a retail item up for sale.
func (s *Service) CreateSaleItem(item *models.SaleItem) error {
	item.ItemDesc = strings.TrimSpace(item.ItemDesc)
	if item.ItemDesc == "" {
		return fmt.Errorf("%w: item description is required", ErrValidation)
	}
	if !validAmount(item.Price) {
		return ErrInvalidAmount
	}
	item.Price = ledger.Round2(item.Price)
	item.Status = models.SaleStatusForSale
	if err := s.repo.CreateSaleItem(item); err != nil {
		return err
	}
	s.log.Infof("Sale item created: %s at %.2f", item.ItemDesc, item.Price)
	return nil
}

// ListSaleItems returns the retail catalog plus the sold-history summary.
func (s *Service) ListSaleItems(limit int) ([]models.SaleItem, *models.SalesSummary, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	return s.repo.ListSaleItems(limit)
}

// SellSaleItem marks a retail item sold and books the cash inflow.
func (s *Service) SellSaleItem(id int64) error {
	item, err := s.repo.FindSaleItem(id)
	if err != nil {
		return err
	}
	if item.Status != models.SaleStatusForSale {
		return fmt.Errorf("%w: item is not for sale", ErrValidation)
	}
	concept := fmt.Sprintf("Sale %s (Item #%d)", item.ItemDesc, item.ID)
	if err := s.repo.MarkSaleSold(id, concept, time.Now()); err != nil {
		return err
	}
	s.log.Infof("Sale item %d sold for %.2f", id, item.Price)
	return nil
}

// DeleteSaleItem removes an unsold retail item after the caller re-enters
// their password.
func (s *Service) DeleteSaleItem(callerID int64, password string, id int64) error {
	if err := s.VerifyCallerPassword(callerID, password); err != nil {
		return err
	}
	item, err := s.repo.FindSaleItem(id)
	if err != nil {
		return err
	}
	if item.Status == models.SaleStatusSold {
		return fmt.Errorf("%w: sold items stay in the history", ErrValidation)
	}
	return s.repo.DeleteSaleItem(id)
}

// ListInventory returns the forfeited articles held by the shop.
func (s *Service) ListInventory() ([]models.InventoryItem, error) {
	return s.repo.ListInventoryItems()
}

// ListLostLoans returns loans whose pledge was forfeited and awaits sale.
func (s *Service) ListLostLoans() ([]*models.Loan, error) {
	return s.repo.ListLostLoans()
}
