// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole defines the access level of a user account.
type UserRole string

const (
	// UserRoleAdmin can review claims and manage the directory.
	UserRoleAdmin UserRole = "admin"
	// UserRoleAgencyOwner is granted when a claim is approved.
	UserRoleAgencyOwner UserRole = "agency_owner"
	// UserRoleUser is the default role for new accounts.
	UserRoleUser UserRole = "user"
)

// User represents an account in the agency directory.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      UserRole       `gorm:"type:varchar(20);not null;default:'user';index" json:"role"`
	IsBanned  bool           `gorm:"not null;default:false" json:"is_banned"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidUserRole reports whether the given string is a known role.
func ValidUserRole(role string) bool {
	switch UserRole(role) {
	case UserRoleAdmin, UserRoleAgencyOwner, UserRoleUser:
		return true
	}
	return false
}
