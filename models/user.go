package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole identifies which part of the materials workflow a user belongs to
type UserRole string

// User roles. Foremen, job leads and project managers originate orders;
// shop roles fulfill them; truck drivers deliver them; the accountant
// manager handles billing after foreman confirmation.
const (
	RoleSiteForeman          UserRole = "site_foreman"
	RoleJobLead              UserRole = "job_lead"
	RoleProjectManager       UserRole = "project_manager"
	RoleShopManager          UserRole = "shop_manager"
	RoleAssistantShopManager UserRole = "assistant_shop_manager"
	RoleShopEmployee         UserRole = "shop_employee"
	RoleTruckDriver          UserRole = "truck_driver"
	RoleAccountantManager    UserRole = "accountant_manager"
)

// IsValidUserRole reports whether r is a known role
func IsValidUserRole(r UserRole) bool {
	switch r {
	case RoleSiteForeman, RoleJobLead, RoleProjectManager, RoleShopManager,
		RoleAssistantShopManager, RoleShopEmployee, RoleTruckDriver, RoleAccountantManager:
		return true
	}
	return false
}

// User represents a user in the system (foreman, shop staff, driver, etc.)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      UserRole       `gorm:"not null;default:'site_foreman'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
