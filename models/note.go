package models

import (
	"time"

	"gorm.io/gorm"
)

// Note represents a free-form note attached to an order's conversation
type Note struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"` // foreign key to orders table
	Order     Order          `gorm:"foreignKey:OrderID" json:"-"`    // don't include full order in JSON
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"author"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Note model
func (Note) TableName() string {
	return "notes"
}
