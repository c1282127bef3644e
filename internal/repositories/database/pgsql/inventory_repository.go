package pgsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
	"github.com/makznkaljaafari/makhzan_ledger/internal/models"
)

type PgxInventoryRepository struct {
	BaseRepository
}

// newPgxInventoryRepository creates a new repository for stocked items and
// their valuation state.
func newPgxInventoryRepository(pool *pgxpool.Pool) portsrepo.InventoryRepositoryFacade {
	return &PgxInventoryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.InventoryRepositoryFacade = (*PgxInventoryRepository)(nil)

func toDomainItem(m models.InventoryItem) domain.InventoryItem {
	return domain.InventoryItem{
		ItemID:         m.ItemID,
		CompanyID:      m.CompanyID,
		Name:           m.Name,
		SKU:            m.SKU,
		QuantityOnHand: m.QuantityOnHand,
		PurchasePrice:  m.PurchasePrice,
		AverageCost:    m.AverageCost,
		SalePrice:      m.SalePrice,
		IsActive:       m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const itemColumns = `item_id, company_id, name, sku, quantity_on_hand, purchase_price, average_cost, sale_price, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanItem(row pgx.Row) (models.InventoryItem, error) {
	var m models.InventoryItem
	var sku sql.NullString
	err := row.Scan(
		&m.ItemID,
		&m.CompanyID,
		&m.Name,
		&sku,
		&m.QuantityOnHand,
		&m.PurchasePrice,
		&m.AverageCost,
		&m.SalePrice,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.InventoryItem{}, err
	}
	if sku.Valid {
		m.SKU = sku.String
	}
	return m, nil
}

func (r *PgxInventoryRepository) SaveItem(ctx context.Context, item domain.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		item.ItemID,
		item.CompanyID,
		item.Name,
		item.SKU,
		item.QuantityOnHand,
		item.PurchasePrice,
		item.AverageCost,
		item.SalePrice,
		item.IsActive,
		item.CreatedAt,
		item.CreatedBy,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to save inventory item "+item.ItemID, err)
	}
	return nil
}

func (r *PgxInventoryRepository) FindItemByID(ctx context.Context, itemID string) (*domain.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE item_id = $1;`
	m, err := scanItem(r.Pool.QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find inventory item by ID "+itemID, err)
	}
	item := toDomainItem(m)
	return &item, nil
}

func (r *PgxInventoryRepository) FindItemsByIDs(ctx context.Context, itemIDs []string) (map[string]domain.InventoryItem, error) {
	if len(itemIDs) == 0 {
		return map[string]domain.InventoryItem{}, nil
	}
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE item_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, itemIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query inventory items by IDs", err)
	}
	defer rows.Close()

	items := make(map[string]domain.InventoryItem, len(itemIDs))
	for rows.Next() {
		m, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan inventory item row", scanErr)
		}
		items[m.ItemID] = toDomainItem(m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating inventory item rows", err)
	}
	return items, nil
}

func (r *PgxInventoryRepository) ListItems(ctx context.Context, companyID string, limit int, offset int) ([]domain.InventoryItem, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE company_id = $1 AND is_active = TRUE
		ORDER BY name
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list inventory items for company "+companyID, err)
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, limit)
	for rows.Next() {
		m, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan inventory item row", scanErr)
		}
		items = append(items, toDomainItem(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating inventory item rows", err)
	}
	return items, nil
}

// UpdateItem rewrites the descriptive columns. Quantity and valuation fields
// are excluded; those move only through UpdateItemValuation.
func (r *PgxInventoryRepository) UpdateItem(ctx context.Context, item domain.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET name = $2,
		    sku = $3,
		    sale_price = $4,
		    is_active = $5,
		    last_updated_at = $6,
		    last_updated_by = $7
		WHERE item_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		item.ItemID,
		item.Name,
		item.SKU,
		item.SalePrice,
		item.IsActive,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update inventory item "+item.ItemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateItemValuation writes the stock movement outcome: quantity on hand,
// weighted-average cost and last purchase price.
func (r *PgxInventoryRepository) UpdateItemValuation(ctx context.Context, item domain.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET quantity_on_hand = $2,
		    average_cost = $3,
		    purchase_price = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE item_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		item.ItemID,
		item.QuantityOnHand,
		item.AverageCost,
		item.PurchasePrice,
		item.LastUpdatedAt,
		item.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update valuation for item "+item.ItemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
