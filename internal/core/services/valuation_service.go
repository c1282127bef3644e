package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
	"github.com/makznkaljaafari/makhzan_ledger/internal/middleware"
	"github.com/makznkaljaafari/makhzan_ledger/internal/utils/accounting"
)

// valuationService maintains each item's quantity on hand and weighted-average
// cost. Receipts recompute the average; consumptions only move quantity.
type valuationService struct {
	inventoryRepo portsrepo.InventoryRepositoryFacade
	companySvc    portssvc.CompanySvcFacade
}

// NewValuationService creates a new ValuationService.
func NewValuationService(ir portsrepo.InventoryRepositoryFacade, companySvc portssvc.CompanySvcFacade) portssvc.ValuationSvcFacade {
	return &valuationService{
		inventoryRepo: ir,
		companySvc:    companySvc,
	}
}

var _ portssvc.ValuationSvcFacade = (*valuationService)(nil)

// findCompanyItem loads an item and verifies it belongs to the company.
func (s *valuationService) findCompanyItem(ctx context.Context, companyID, itemID string) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return item, nil
}

// CreateItem persists a new inventory item, optionally seeded with an
// opening quantity and cost.
func (s *valuationService) CreateItem(ctx context.Context, companyID string, req dto.CreateItemRequest, userID string) (*domain.InventoryItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if req.InitialQuantity < 0 {
		return nil, fmt.Errorf("%w: initial quantity must not be negative", apperrors.ErrValidation)
	}
	if req.InitialCost.IsNegative() || req.SalePrice.IsNegative() || req.PurchasePrice.IsNegative() {
		return nil, fmt.Errorf("%w: prices must not be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	item := domain.InventoryItem{
		ItemID:         uuid.NewString(),
		CompanyID:      companyID,
		Name:           req.Name,
		SKU:            req.SKU,
		QuantityOnHand: req.InitialQuantity,
		PurchasePrice:  req.PurchasePrice,
		AverageCost:    req.InitialCost,
		SalePrice:      req.SalePrice,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.inventoryRepo.SaveItem(ctx, item); err != nil {
		logger.Error("Failed to save inventory item", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	logger.Info("Inventory item created", slog.String("item_id", item.ItemID), slog.String("company_id", companyID))
	return &item, nil
}

// GetItemByID retrieves a specific inventory item.
func (s *valuationService) GetItemByID(ctx context.Context, companyID string, itemID string, userID string) (*domain.InventoryItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	item, err := s.findCompanyItem(ctx, companyID, itemID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find item by ID", slog.String("error", err.Error()), slog.String("item_id", itemID))
		}
		return nil, err
	}
	return item, nil
}

// ListItems retrieves a paginated list of items for a company.
func (s *valuationService) ListItems(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.InventoryItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.inventoryRepo.ListItems(ctx, companyID, limit, offset)
	if err != nil {
		logger.Error("Failed to list items from repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	return items, nil
}

// CostOf returns qty * averageCost for an item without mutating state.
func (s *valuationService) CostOf(ctx context.Context, companyID string, itemID string, qty int64) (decimal.Decimal, error) {
	item, err := s.findCompanyItem(ctx, companyID, itemID)
	if err != nil {
		return decimal.Zero, err
	}
	return item.AverageCost.Mul(decimal.NewFromInt(qty)), nil
}

// UpdateItem updates an item's descriptive fields. Valuation state is out of
// reach here: quantity and average cost only move through Receive/Consume.
func (s *valuationService) UpdateItem(ctx context.Context, companyID string, itemID string, req dto.UpdateItemRequest, userID string) (*domain.InventoryItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	item, err := s.findCompanyItem(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		item.Name = *req.Name
		updated = true
	}
	if req.SKU != nil {
		item.SKU = *req.SKU
		updated = true
	}
	if req.SalePrice != nil {
		if req.SalePrice.IsNegative() {
			return nil, fmt.Errorf("%w: sale price must not be negative", apperrors.ErrValidation)
		}
		item.SalePrice = *req.SalePrice
		updated = true
	}
	if req.PurchasePrice != nil {
		if req.PurchasePrice.IsNegative() {
			return nil, fmt.Errorf("%w: purchase price must not be negative", apperrors.ErrValidation)
		}
		item.PurchasePrice = *req.PurchasePrice
		updated = true
	}
	if !updated {
		return item, nil
	}

	now := time.Now()
	item.LastUpdatedAt = now
	item.LastUpdatedBy = userID

	if err := s.inventoryRepo.UpdateItem(ctx, *item); err != nil {
		logger.Error("Failed to update item in repository", slog.String("error", err.Error()), slog.String("item_id", itemID))
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

// Receive books a stock receipt: quantity grows and the weighted-average
// cost is recomputed from the received unit cost (base currency). A receipt
// into zero or negative stock resets the average to the received cost so a
// prior oversell cannot poison future valuation.
func (s *valuationService) Receive(ctx context.Context, companyID string, itemID string, qty int64, unitCost decimal.Decimal, userID string) (*domain.InventoryItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if qty <= 0 {
		return nil, fmt.Errorf("%w: receive quantity must be positive", apperrors.ErrValidation)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit cost must not be negative", apperrors.ErrValidation)
	}

	item, err := s.findCompanyItem(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}

	oldQty := item.QuantityOnHand
	newQty := oldQty + qty

	if oldQty <= 0 {
		item.AverageCost = unitCost
	} else {
		oldValue := item.AverageCost.Mul(decimal.NewFromInt(oldQty))
		newValue := unitCost.Mul(decimal.NewFromInt(qty))
		item.AverageCost = oldValue.Add(newValue).DivRound(decimal.NewFromInt(newQty), accounting.CurrencyPrecision+4)
	}

	item.QuantityOnHand = newQty
	item.PurchasePrice = unitCost
	now := time.Now()
	item.LastUpdatedAt = now
	item.LastUpdatedBy = userID

	if err := s.inventoryRepo.UpdateItemValuation(ctx, *item); err != nil {
		logger.Error("Failed to persist item valuation after receipt", slog.String("error", err.Error()), slog.String("item_id", itemID))
		return nil, fmt.Errorf("failed to persist receipt: %w", err)
	}

	logger.Info("Stock received", slog.String("item_id", itemID), slog.Int64("qty", qty), slog.String("unit_cost", unitCost.String()), slog.String("new_avg_cost", item.AverageCost.String()))
	return item, nil
}

// Consume books a stock consumption: quantity shrinks, average cost stays.
// When the company disallows negative stock, consuming more than is on hand
// fails with ErrInsufficientStock.
func (s *valuationService) Consume(ctx context.Context, companyID string, itemID string, qty int64, userID string) (*domain.InventoryItem, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if qty <= 0 {
		return nil, fmt.Errorf("%w: consume quantity must be positive", apperrors.ErrValidation)
	}

	company, err := s.companySvc.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	item, err := s.findCompanyItem(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}

	if !company.AllowNegativeStock && item.QuantityOnHand < qty {
		return nil, fmt.Errorf("%w: item %s has %d on hand, requested %d", apperrors.ErrInsufficientStock, itemID, item.QuantityOnHand, qty)
	}

	item.QuantityOnHand -= qty
	now := time.Now()
	item.LastUpdatedAt = now
	item.LastUpdatedBy = userID

	if err := s.inventoryRepo.UpdateItemValuation(ctx, *item); err != nil {
		logger.Error("Failed to persist item valuation after consumption", slog.String("error", err.Error()), slog.String("item_id", itemID))
		return nil, fmt.Errorf("failed to persist consumption: %w", err)
	}

	if item.QuantityOnHand < 0 {
		logger.Warn("Stock consumed into negative balance", slog.String("item_id", itemID), slog.Int64("qty", qty), slog.Int64("remaining", item.QuantityOnHand))
	} else {
		logger.Info("Stock consumed", slog.String("item_id", itemID), slog.Int64("qty", qty), slog.Int64("remaining", item.QuantityOnHand))
	}
	return item, nil
}
