package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
)

// Repository owns every mutation of inventory rows. The quantity column is
// only ever touched through conditional decrements or keyed upserts; plain
// read-modify-write would lose updates under concurrent orders and syncs.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetForProducts reads the warehouse rows for the given products in one
// batch. A missing row means zero stock.
func (r *Repository) GetForProducts(ctx context.Context, productIDs []uuid.UUID, warehouse string) (map[uuid.UUID]models.Inventory, error) {
	var rows []models.Inventory
	err := r.db.WithContext(ctx).
		Where("product_id IN ? AND warehouse = ?", productIDs, warehouse).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	byProduct := make(map[uuid.UUID]models.Inventory, len(rows))
	for _, row := range rows {
		byProduct[row.ProductID] = row
	}
	return byProduct, nil
}

// ListByAccount returns every warehouse row for the account's products.
func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Inventory, error) {
	var rows []models.Inventory
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = inventories.product_id").
		Where("products.account_id = ?", accountID).
		Order("inventories.updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// Decrement atomically subtracts qty from one warehouse row, failing when it
// would drive the quantity negative. Returns false without error when stock
// was insufficient or the row is absent.
func (r *Repository) Decrement(ctx context.Context, productID uuid.UUID, warehouse string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventories
		SET quantity = quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND warehouse = ? AND quantity >= ?
	`, qty, productID, warehouse, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Upsert sets the absolute quantity for a (product, warehouse) row, creating
// it on first write.
func (r *Repository) Upsert(ctx context.Context, productID uuid.UUID, warehouse string, quantity int) (*models.Inventory, error) {
	row := models.Inventory{
		ProductID: productID,
		Warehouse: warehouse,
		Quantity:  quantity,
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "warehouse"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
