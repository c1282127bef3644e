package repositories

import (
	"context"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
)

// InventoryReader defines read operations for inventory items
type InventoryReader interface {
	// FindItemByID retrieves a specific inventory item by its unique identifier.
	FindItemByID(ctx context.Context, itemID string) (*domain.InventoryItem, error)

	// FindItemsByIDs retrieves multiple inventory items by their IDs.
	FindItemsByIDs(ctx context.Context, itemIDs []string) (map[string]domain.InventoryItem, error)

	// ListItems retrieves a paginated list of items for a company.
	ListItems(ctx context.Context, companyID string, limit int, offset int) ([]domain.InventoryItem, error)
}

// InventoryWriter defines write operations for inventory items
type InventoryWriter interface {
	// SaveItem persists a new inventory item.
	SaveItem(ctx context.Context, item domain.InventoryItem) error

	// UpdateItem updates an item's descriptive fields (never its valuation).
	UpdateItem(ctx context.Context, item domain.InventoryItem) error

	// UpdateItemValuation persists quantity, purchase price and average cost
	// as computed by the valuation service.
	UpdateItemValuation(ctx context.Context, item domain.InventoryItem) error
}

// InventoryRepositoryFacade combines all inventory-related repository interfaces
type InventoryRepositoryFacade interface {
	InventoryReader
	InventoryWriter
}

// InventoryRepositoryWithTx extends InventoryRepositoryFacade with transaction capabilities
type InventoryRepositoryWithTx interface {
	InventoryRepositoryFacade
	TransactionManager
}
