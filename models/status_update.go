package models

import (
	"time"
)

// StatusUpdate is a single immutable entry in an order's status history.
// Entries are only ever appended; they are never edited or removed.
type StatusUpdate struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderID     uint        `gorm:"not null;index" json:"order_id"`
	Status      OrderStatus `gorm:"not null" json:"status"`
	UpdatedByID uint        `gorm:"not null;index" json:"updated_by_id"`
	UpdatedBy   User        `gorm:"foreignKey:UpdatedByID" json:"updated_by"`
	Notes       *string     `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TableName specifies the table name for the StatusUpdate model
func (StatusUpdate) TableName() string {
	return "status_updates"
}
