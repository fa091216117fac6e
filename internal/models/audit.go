package models

import "time"

// RoleChangeAudit records a single role transition for a user, including who
// made the change and why. Rows are append-only; nothing in the application
// updates or deletes them.
type RoleChangeAudit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OldRole     UserRole  `gorm:"type:varchar(20);not null" json:"old_role"`
	NewRole     UserRole  `gorm:"type:varchar(20);not null" json:"new_role"`
	ChangedByID uint      `gorm:"not null" json:"changed_by"`
	ChangedBy   *User     `gorm:"foreignKey:ChangedByID" json:"changed_by_user,omitempty"`
	Reason      string    `gorm:"type:text" json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}
