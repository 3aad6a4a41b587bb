package models

import (
	"time"

	"gorm.io/gorm"
)

// DriverStatus is the fleet roster state of a truck driver
type DriverStatus string

// Driver roster statuses
const (
	DriverAvailable      DriverStatus = "available"
	DriverLoading        DriverStatus = "loading"
	DriverOutForDelivery DriverStatus = "out_for_delivery"
	DriverMaintenance    DriverStatus = "maintenance"
)

// TruckDriver is a fleet roster entry. Drivers in maintenance or already
// out on a delivery cannot be assigned new orders.
type TruckDriver struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;uniqueIndex" json:"user_id"` // the driver's user account
	User            User           `gorm:"foreignKey:UserID" json:"user"`
	Phone           string         `json:"phone"`
	TruckNumber     string         `json:"truck_number"`
	Status          DriverStatus   `gorm:"not null;default:'available'" json:"status"`
	CurrentLocation string         `json:"current_location"`
	CompletedToday  int            `gorm:"not null;default:0" json:"completed_today"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the TruckDriver model
func (TruckDriver) TableName() string {
	return "truck_drivers"
}

// IsAssignable reports whether the driver can take a new delivery
func (d *TruckDriver) IsAssignable() bool {
	return d.Status == DriverAvailable || d.Status == DriverLoading
}
