package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/pkg/enums"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

// Channel is a configured connection to one external storefront or ERP
// system. Credential shape beyond the bearer token is adapter-private and
// lives in Config (siigo keeps a username/access-key pair there).
type Channel struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID    uuid.UUID           `gorm:"column:account_id;type:uuid;not null"`
	Type         enums.ChannelType   `gorm:"column:type;not null"`
	ExternalID   string              `gorm:"column:external_id;not null"`
	AccessToken  string              `gorm:"column:access_token;not null"`
	RefreshToken *string             `gorm:"column:refresh_token"`
	Config       types.JSONMap       `gorm:"column:config;type:jsonb"`
	Status       enums.ChannelStatus `gorm:"column:status;not null;default:'disconnected'"`
	LastError    *string             `gorm:"column:last_error"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
