package models

import (
	"github.com/shopspring/decimal"
)

// InventoryItem is the DB row shape for the inventory_items table.
type InventoryItem struct {
	ItemID         string          `db:"item_id"`
	CompanyID      string          `db:"company_id"`
	Name           string          `db:"name"`
	SKU            string          `db:"sku"`
	QuantityOnHand int64           `db:"quantity_on_hand"`
	PurchasePrice  decimal.Decimal `db:"purchase_price"`
	AverageCost    decimal.Decimal `db:"average_cost"`
	SalePrice      decimal.Decimal `db:"sale_price"`
	IsActive       bool            `db:"is_active"`
	AuditFields
}
