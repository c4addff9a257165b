package sync

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ventahub/ventahub-backend/pkg/db/models"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

const defaultRecentLimit = 50

// LogRepository persists the append-only sync log.
type LogRepository interface {
	Append(ctx context.Context, accountID uuid.UUID, eventType string, status enums.SyncLogStatus, payload types.JSONMap) error
	Recent(ctx context.Context, accountID uuid.UUID, limit int) ([]models.SyncLog, error)
}

type logRepository struct {
	db *gorm.DB
}

// NewLogRepository binds the repo to the provided GORM connection.
func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Append(ctx context.Context, accountID uuid.UUID, eventType string, status enums.SyncLogStatus, payload types.JSONMap) error {
	row := models.SyncLog{
		AccountID: accountID,
		EventType: eventType,
		Status:    status,
		Payload:   payload,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *logRepository) Recent(ctx context.Context, accountID uuid.UUID, limit int) ([]models.SyncLog, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultRecentLimit
	}
	var rows []models.SyncLog
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
