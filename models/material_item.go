package models

import (
	"time"

	"gorm.io/gorm"
)

// MaterialItem is a warehouse catalog entry. QuantityAvailable tracks stock
// in the shop, independent of any per-order request.
type MaterialItem struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Name              string         `gorm:"not null" json:"name"`
	Description       string         `json:"description"`
	Unit              string         `gorm:"not null" json:"unit"`
	QuantityAvailable int            `json:"quantity_available"`
	UnitPrice         float64        `json:"unit_price"`
	Supplier          string         `json:"supplier"`
	Category          string         `json:"category"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the MaterialItem model
func (MaterialItem) TableName() string {
	return "material_items"
}

// LowStockThreshold is the quantity below which a catalog item counts as low stock
const LowStockThreshold = 10

// IsLowStock reports whether the item is below the low stock threshold
func (m *MaterialItem) IsLowStock() bool {
	return m.QuantityAvailable < LowStockThreshold
}
