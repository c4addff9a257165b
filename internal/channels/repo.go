package channels

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
)

// Repository exposes channel persistence operations.
type Repository interface {
	Create(ctx context.Context, channel *models.Channel) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Channel, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Channel, error)
	ListConnected(ctx context.Context, accountID uuid.UUID, channelType *enums.ChannelType) ([]models.Channel, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.ChannelStatus, lastError *string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, channel *models.Channel) error {
	return r.db.WithContext(ctx).Create(channel).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&channel).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Channel, error) {
	var rows []models.Channel
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListConnected returns the account's channels eligible for sync. A channel
// in error state is excluded; it rejoins once a connection test succeeds.
func (r *repository) ListConnected(ctx context.Context, accountID uuid.UUID, channelType *enums.ChannelType) ([]models.Channel, error) {
	query := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, enums.ChannelStatusConnected)
	if channelType != nil {
		query = query.Where("type = ?", *channelType)
	}

	var rows []models.Channel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.ChannelStatus, lastError *string) error {
	return r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"last_error": lastError,
			"updated_at": time.Now().UTC(),
		}).Error
}
