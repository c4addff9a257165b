package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the canonical catalog entry for one account. Prices are integer
// minor-currency units; imported rows carry the remote identifier in
// ExternalID so repeat pulls upsert instead of duplicating.
type Product struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID  uuid.UUID  `gorm:"column:account_id;type:uuid;not null;uniqueIndex:idx_products_account_external"`
	Name       string     `gorm:"column:name;not null"`
	SKU        string     `gorm:"column:sku;not null"`
	ExternalID *string    `gorm:"column:external_id;uniqueIndex:idx_products_account_external"`
	PriceCents int        `gorm:"column:price_cents;not null"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	Inventory  []Inventory `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
