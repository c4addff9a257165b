package memberships

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetMembership retrieves a membership by user and account. Callers treat
// gorm.ErrRecordNotFound as an authorization failure, not a 404.
func (r *Repository) GetMembership(ctx context.Context, userID, accountID uuid.UUID) (*models.AccountMembership, error) {
	var membership models.AccountMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND account_id = ?", userID, accountID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}
