package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/pkg/enums"
)

// AccountMembership links a user with an account and captures their role.
type AccountMembership struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID        `gorm:"column:account_id;type:uuid;not null;uniqueIndex:idx_memberships_account_user"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_memberships_account_user"`
	Role      enums.MemberRole `gorm:"column:role;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
