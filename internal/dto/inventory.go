package dto

import (
	"time"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateItemRequest defines the data needed to create an inventory item.
// InitialQuantity and InitialCost seed the valuation state; both default to
// zero for an item stocked later via purchase orders.
type CreateItemRequest struct {
	Name            string          `json:"name" binding:"required"`
	SKU             string          `json:"sku"`
	SalePrice       decimal.Decimal `json:"salePrice"`
	PurchasePrice   decimal.Decimal `json:"purchasePrice"`
	InitialQuantity int64           `json:"initialQuantity" binding:"omitempty,gte=0"`
	InitialCost     decimal.Decimal `json:"initialCost"`
}

// UpdateItemRequest defines the descriptive fields allowed to change.
// Valuation fields (quantity, average cost) only move through receipts and
// consumptions.
type UpdateItemRequest struct {
	Name          *string          `json:"name"`
	SKU           *string          `json:"sku"`
	SalePrice     *decimal.Decimal `json:"salePrice"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
}

// ItemResponse defines the data returned for an inventory item.
type ItemResponse struct {
	ItemID         string          `json:"itemID"`
	CompanyID      string          `json:"companyID"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku,omitempty"`
	QuantityOnHand int64           `json:"quantityOnHand"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice"`
	AverageCost    decimal.Decimal `json:"averageCost"`
	SalePrice      decimal.Decimal `json:"salePrice"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// ToItemResponse converts a domain.InventoryItem to ItemResponse DTO.
func ToItemResponse(item *domain.InventoryItem) ItemResponse {
	return ItemResponse{
		ItemID:         item.ItemID,
		CompanyID:      item.CompanyID,
		Name:           item.Name,
		SKU:            item.SKU,
		QuantityOnHand: item.QuantityOnHand,
		PurchasePrice:  item.PurchasePrice,
		AverageCost:    item.AverageCost,
		SalePrice:      item.SalePrice,
		IsActive:       item.IsActive,
		CreatedAt:      item.CreatedAt,
		LastUpdatedAt:  item.LastUpdatedAt,
	}
}

// ToListItemResponse converts a slice of domain.InventoryItem to DTOs.
func ToListItemResponse(items []domain.InventoryItem) []ItemResponse {
	res := make([]ItemResponse, len(items))
	for i, item := range items {
		res[i] = ToItemResponse(&item)
	}
	return res
}

// ListItemsParams defines query parameters for listing items.
type ListItemsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListItemsResponse wraps the list of items.
type ListItemsResponse struct {
	Items []ItemResponse `json:"items"`
}
