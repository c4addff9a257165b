package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/pkg/enums"
)

// Order is created by the fulfillment engine; status advances only through
// the explicit status endpoint. Imported orders carry the remote identifier
// in ExternalID.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID        uuid.UUID         `gorm:"column:account_id;type:uuid;not null"`
	Type             enums.OrderType   `gorm:"column:type;not null"`
	Status           enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Notes            *string           `gorm:"column:notes"`
	TotalAmountCents int               `gorm:"column:total_amount_cents;not null"`
	ExternalID       *string           `gorm:"column:external_id"`
	Items            []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
