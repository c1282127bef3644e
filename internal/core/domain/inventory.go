package domain

import "github.com/shopspring/decimal"

// InventoryItem carries the valuation state of one stocked item.
// AverageCost is a running weighted average recomputed only on receipt
// events; consumption decrements quantity and leaves the average untouched.
// QuantityOnHand may go negative when the company permits oversell, but
// valuation never does: a receipt into non-positive stock resets the
// average to the received unit cost.
type InventoryItem struct {
	ItemID         string          `json:"itemID"`    // Primary Key (UUID)
	CompanyID      string          `json:"companyID"` // FK -> companies.company_id (Not Null)
	Name           string          `json:"name"`
	SKU            string          `json:"sku"` // Nullable user-defined code
	QuantityOnHand int64           `json:"quantityOnHand"`
	PurchasePrice  decimal.Decimal `json:"purchasePrice"` // Last known purchase price, base currency
	AverageCost    decimal.Decimal `json:"averageCost"`   // Weighted-average unit cost, base currency
	SalePrice      decimal.Decimal `json:"salePrice"`     // Default sale price, base currency
	IsActive       bool            `json:"isActive"`
	AuditFields
}
