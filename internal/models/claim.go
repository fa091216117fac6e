package models

import "time"

// ClaimStatus defines lifecycle states for an agency claim request.
type ClaimStatus string

const (
	// ClaimStatusPending indicates the claim is awaiting review.
	ClaimStatusPending ClaimStatus = "pending"
	// ClaimStatusUnderReview indicates an admin has started looking at the claim.
	ClaimStatusUnderReview ClaimStatus = "under_review"
	// ClaimStatusApproved indicates the claim was accepted and ownership granted.
	ClaimStatusApproved ClaimStatus = "approved"
	// ClaimStatusRejected indicates the claim was denied with a reason.
	ClaimStatusRejected ClaimStatus = "rejected"
)

// VerificationMethod describes how the claimant proposes to prove ownership.
type VerificationMethod string

const (
	VerificationMethodEmail  VerificationMethod = "email"
	VerificationMethodPhone  VerificationMethod = "phone"
	VerificationMethodManual VerificationMethod = "manual"
)

// ClaimRequest is a user's assertion of ownership over an agency listing,
// subject to admin review. Terminal states are approved and rejected; neither
// can be reverted through the API.
type ClaimRequest struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	AgencyID uint    `gorm:"not null;index" json:"agency_id"`
	Agency   *Agency `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
	UserID   uint    `gorm:"not null;index" json:"user_id"`
	User     *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	BusinessEmail       string             `gorm:"size:255;not null" json:"business_email"`
	PhoneNumber         *string            `gorm:"size:40" json:"phone_number"`
	PositionTitle       *string            `gorm:"size:120" json:"position_title"`
	VerificationMethod  VerificationMethod `gorm:"type:varchar(20);not null;default:'email'" json:"verification_method"`
	EmailDomainVerified bool               `gorm:"not null;default:false" json:"email_domain_verified"`
	AdditionalNotes     string             `gorm:"type:text" json:"additional_notes"`

	Status ClaimStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	// RejectionReason is populated if and only if Status == rejected.
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason"`
	ReviewedByID    *uint      `json:"reviewed_by"`
	ReviewedBy      *User      `gorm:"foreignKey:ReviewedByID" json:"reviewed_by_user,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidClaimStatus reports whether the given string is a known claim status.
func ValidClaimStatus(status string) bool {
	switch ClaimStatus(status) {
	case ClaimStatusPending, ClaimStatusUnderReview, ClaimStatusApproved, ClaimStatusRejected:
		return true
	}
	return false
}
