package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultWarehouse is the only stock location used in scope.
const DefaultWarehouse = "default"

// Inventory tracks on-hand stock per (product, warehouse). Quantity is never
// negative; all mutations go through conditional upserts/decrements so
// concurrent orders and channel syncs cannot lose updates.
type Inventory struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	Warehouse string    `gorm:"column:warehouse;primaryKey;default:'default'"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the plural the migrations use.
func (Inventory) TableName() string {
	return "inventories"
}
