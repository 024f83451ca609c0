// Package models contains domain entities for the print-shop backend
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/printshop/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole distinguishes customers, suppliers and staff sharing the users table.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleSupplier UserRole = "supplier"
	UserRoleStaff    UserRole = "staff"
)

// Valid checks if the role is valid.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleCustomer, UserRoleSupplier, UserRoleStaff:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for UserRole.
func (r *UserRole) Scan(value any) error {
	if value == nil {
		*r = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*r = UserRole(v)
	case []byte:
		*r = UserRole(string(v))
	default:
		return fmt.Errorf("cannot scan %T into UserRole", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for UserRole.
func (r UserRole) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid UserRole: %s", r)
	}
	return string(r), nil
}

// UserStatus is the account state. Users are deactivated, never deleted.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusPending  UserStatus = "pending"
	UserStatusInactive UserStatus = "inactive"
)

// Valid checks if the status is valid.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusPending, UserStatusInactive:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for UserStatus.
func (s *UserStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = UserStatus(v)
	case []byte:
		*s = UserStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into UserStatus", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for UserStatus.
func (s UserStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid UserStatus: %s", s)
	}
	return string(s), nil
}

// User is a customer, a supplier or a staff member.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Role        UserRole   `gorm:"type:varchar(20);not null;index:idx_users_role_status,priority:1" json:"role"`
	Status      UserStatus `gorm:"type:varchar(20);not null;default:'active';index:idx_users_role_status,priority:2" json:"status"`
	DisplayName string     `gorm:"size:255;not null" json:"display_name"`
	CompanyName *string    `gorm:"size:255" json:"company_name,omitempty"`
	Email       string     `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`

	// Running rating counters. For suppliers they accumulate job ratings,
	// for customers they accumulate deal ratings.
	RatingTotal int64 `gorm:"not null;default:0" json:"rating_total"`
	RatingCount int64 `gorm:"not null;default:0" json:"rating_count"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate ensures UUID and timestamps are set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// IsActiveSupplier reports whether the user may receive recommendations.
func (u *User) IsActiveSupplier() bool {
	return u.Role == UserRoleSupplier && u.Status == UserStatusActive
}

// AverageRating returns the mean of accumulated ratings, or 0 when none exist.
func (u *User) AverageRating() float64 {
	if u.RatingCount == 0 {
		return 0
	}
	return float64(u.RatingTotal) / float64(u.RatingCount)
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	IDs           []uint
	UUID          *uuid.UUID
	Role          *UserRole
	Status        *UserStatus
	Email         *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
