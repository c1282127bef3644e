package services

import (
	"context"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// ValuationReaderSvc defines read operations for inventory valuation
type ValuationReaderSvc interface {
	// GetItemByID retrieves a specific inventory item.
	GetItemByID(ctx context.Context, companyID string, itemID string, userID string) (*domain.InventoryItem, error)

	// ListItems retrieves a paginated list of items for a company.
	ListItems(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.InventoryItem, error)

	// CostOf returns qty * averageCost for an item without mutating state.
	// It is the costing read the document posting rules use.
	CostOf(ctx context.Context, companyID string, itemID string, qty int64) (decimal.Decimal, error)
}

// ValuationWriterSvc defines valuation-mutating operations
type ValuationWriterSvc interface {
	// CreateItem persists a new inventory item.
	CreateItem(ctx context.Context, companyID string, req dto.CreateItemRequest, userID string) (*domain.InventoryItem, error)

	// UpdateItem updates an item's descriptive fields.
	UpdateItem(ctx context.Context, companyID string, itemID string, req dto.UpdateItemRequest, userID string) (*domain.InventoryItem, error)

	// Receive books a receipt: quantity grows and the weighted-average cost
	// is recomputed from the received unit cost (base currency).
	Receive(ctx context.Context, companyID string, itemID string, qty int64, unitCost decimal.Decimal, userID string) (*domain.InventoryItem, error)

	// Consume books a consumption: quantity shrinks, average cost is
	// untouched. Honors the company's AllowNegativeStock policy.
	Consume(ctx context.Context, companyID string, itemID string, qty int64, userID string) (*domain.InventoryItem, error)
}

// ValuationSvcFacade combines the inventory valuation interfaces
type ValuationSvcFacade interface {
	ValuationReaderSvc
	ValuationWriterSvc
}
