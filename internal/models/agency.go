package models

import (
	"time"

	"gorm.io/gorm"
)

// AgencyStatus defines lifecycle states for a directory listing.
type AgencyStatus string

const (
	// AgencyStatusActive listings appear in the public directory.
	AgencyStatusActive AgencyStatus = "active"
	// AgencyStatusSuspended listings are hidden pending review.
	AgencyStatusSuspended AgencyStatus = "suspended"
)

// Trade is a tag describing a staffing specialty (e.g. electrical, plumbing).
type Trade struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:60;unique;not null" json:"name"`
}

// Region is a tag describing a geographic service area.
type Region struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:60;unique;not null" json:"name"`
}

// Agency represents a recruiting agency listing in the directory.
type Agency struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"size:120;not null;index" json:"name"`
	Slug         string       `gorm:"size:60;unique;not null" json:"slug"`
	Website      string       `gorm:"size:255" json:"website"`
	ContactEmail string       `gorm:"size:255;index" json:"contact_email"`
	ContactPhone string       `gorm:"size:40" json:"contact_phone"`
	Description  string       `gorm:"type:text" json:"description"`
	Status       AgencyStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	LogoPath     string       `gorm:"size:255" json:"logo_path"`

	Trades  []Trade  `gorm:"many2many:agency_trades" json:"trades,omitempty"`
	Regions []Region `gorm:"many2many:agency_regions" json:"regions,omitempty"`

	// OwnerUserID is set when a claim for this agency is approved.
	OwnerUserID *uint `gorm:"index" json:"owner_user_id"`
	OwnerUser   *User `gorm:"foreignKey:OwnerUserID" json:"owner_user,omitempty"`

	// Compliance fields, managed through the admin compliance endpoints.
	LicenseNumber   string     `gorm:"size:80" json:"license_number"`
	InsuranceExpiry *time.Time `json:"insurance_expiry"`
	ComplianceNotes string     `gorm:"type:text" json:"compliance_notes"`
	LastReviewedAt  *time.Time `json:"last_reviewed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
