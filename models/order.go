package models

import (
	"time"

	"gorm.io/gorm"
)

// Order represents a construction materials order tracked from creation
// through delivery and foreman confirmation
type Order struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	OrderNumber        string          `gorm:"uniqueIndex;not null" json:"order_number"` // ORD-YYYY-NNN, sequential per year
	ProjectName        string          `gorm:"not null" json:"project_name"`
	JobSite            string          `gorm:"not null" json:"job_site"`
	Status             OrderStatus     `gorm:"not null;default:'pending'" json:"status"`
	Priority           Priority        `gorm:"not null;default:'medium'" json:"priority"`
	RequestedByID      uint            `gorm:"not null;index" json:"requested_by_id"`
	RequestedBy        User            `gorm:"foreignKey:RequestedByID" json:"requested_by"`
	AssignedToID       *uint           `gorm:"index" json:"assigned_to_id,omitempty"` // nullable, set when a driver is assigned
	AssignedTo         *User           `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	Materials          []OrderMaterial `gorm:"foreignKey:OrderID" json:"materials"`
	DeliveryDate       time.Time       `json:"delivery_date"`
	SpecialNotes       string          `json:"special_notes"`
	BackOrderedItems   []string        `gorm:"serializer:json" json:"back_ordered_items,omitempty"` // names of materials currently unavailable
	DeliveryPhotoS3Key *string         `json:"delivery_photo_s3_key"`                               // nullable, S3 key for delivery proof photo
	DeliveryPhotoURL   *string         `gorm:"-" json:"delivery_photo_url,omitempty"`               // computed field, presigned URL for photo
	StatusHistory      []StatusUpdate  `gorm:"foreignKey:OrderID" json:"status_history"`            // append-only, never empty after creation
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// CurrentStatus returns the status of the most recent history entry.
// It always matches Order.Status for a well-formed order.
func (o *Order) CurrentStatus() OrderStatus {
	if len(o.StatusHistory) == 0 {
		return o.Status
	}
	return o.StatusHistory[len(o.StatusHistory)-1].Status
}

// TotalValue sums quantity requested times unit price across all materials
func (o *Order) TotalValue() float64 {
	total := 0.0
	for _, m := range o.Materials {
		total += float64(m.QuantityRequested) * m.UnitPrice
	}
	return total
}

// OrderMaterial represents a single requested material line on an order
type OrderMaterial struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	OrderID           uint           `gorm:"not null;index" json:"order_id"`
	Name              string         `gorm:"not null" json:"name"`
	Description       string         `json:"description"`
	Unit              string         `gorm:"not null" json:"unit"`
	QuantityRequested int            `gorm:"not null;check:quantity_requested > 0" json:"quantity_requested"`
	QuantityAvailable int            `json:"quantity_available"`
	UnitPrice         float64        `json:"unit_price"`
	Supplier          string         `json:"supplier"`
	Category          string         `json:"category"`
	BackOrdered       bool           `gorm:"not null;default:false" json:"back_ordered"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderMaterial model
func (OrderMaterial) TableName() string {
	return "order_materials"
}
