package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
)

// Repository wires together product persistence helpers.
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

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs resolves products in one batch read. Duplicate or unknown ids
// shrink the result; callers compare counts to detect them.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

// ListByAccount lists an account's products newest first.
func (r *Repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// FindByExternalIDs maps remote identifiers to local products for one
// account. Used by inventory imports to resolve remote stock lines.
func (r *Repository) FindByExternalIDs(ctx context.Context, accountID uuid.UUID, externalIDs []string) (map[string]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND external_id IN ?", accountID, externalIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	byExternal := make(map[string]models.Product, len(rows))
	for _, row := range rows {
		if row.ExternalID != nil {
			byExternal[*row.ExternalID] = row
		}
	}
	return byExternal, nil
}

// UpsertByExternalID inserts or overwrites a product keyed by
// (account_id, external_id). Repeat pulls with unchanged remote data leave
// the local set unchanged apart from updated_at.
func (r *Repository) UpsertByExternalID(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "sku", "price_cents", "is_active", "updated_at",
			}),
		}).
		Create(product).Error
}
