package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/pkg/enums"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

// SyncLog is the append-only audit record of every order or sync attempt,
// success or failure. Rows are never updated or deleted.
type SyncLog struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID           `gorm:"column:account_id;type:uuid;not null"`
	EventType string              `gorm:"column:event_type;not null"`
	Status    enums.SyncLogStatus `gorm:"column:status;not null"`
	Payload   types.JSONMap       `gorm:"column:payload;type:jsonb"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
