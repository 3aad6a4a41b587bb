package models

import (
	"time"
)

// NotificationType classifies what a notification is about
type NotificationType string

// Notification types
const (
	NotificationOrderCreated      NotificationType = "order_created"
	NotificationStatusUpdate      NotificationType = "status_update"
	NotificationBackOrdered       NotificationType = "back_ordered"
	NotificationDeliveryScheduled NotificationType = "delivery_scheduled"
)

// Notification is a stakeholder-facing record of an order event
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Type        NotificationType `gorm:"not null" json:"type"`
	OrderID     uint             `gorm:"not null;index" json:"order_id"`
	OrderNumber string           `gorm:"not null" json:"order_number"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	UpdatedByID uint             `gorm:"index" json:"updated_by_id"`
	UpdatedBy   User             `gorm:"foreignKey:UpdatedByID" json:"updated_by"`
	Read        bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
