package models

import "time"

// MessageStatus defines moderation states for an agency message.
type MessageStatus string

const (
	// MessageStatusVisible messages appear on the agency page.
	MessageStatusVisible MessageStatus = "visible"
	// MessageStatusFlagged messages are visible but queued for moderator attention.
	MessageStatusFlagged MessageStatus = "flagged"
	// MessageStatusHidden messages are removed from public view.
	MessageStatusHidden MessageStatus = "hidden"
)

// AgencyMessage is a user-submitted message on an agency listing,
// subject to admin moderation.
type AgencyMessage struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	AgencyID     uint    `gorm:"not null;index" json:"agency_id"`
	Agency       *Agency `gorm:"foreignKey:AgencyID" json:"agency,omitempty"`
	SenderUserID uint    `gorm:"not null;index" json:"sender_user_id"`
	SenderUser   *User   `gorm:"foreignKey:SenderUserID" json:"sender_user,omitempty"`

	Body   string        `gorm:"type:text;not null" json:"body"`
	Status MessageStatus `gorm:"type:varchar(20);not null;default:'visible';index" json:"status"`

	ModeratedByID  *uint  `json:"moderated_by"`
	ModeratedBy    *User  `gorm:"foreignKey:ModeratedByID" json:"moderated_by_user,omitempty"`
	ModerationNote string `gorm:"type:text" json:"moderation_note"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidMessageStatus reports whether the given string is a known message status.
func ValidMessageStatus(status string) bool {
	switch MessageStatus(status) {
	case MessageStatusVisible, MessageStatusFlagged, MessageStatusHidden:
		return true
	}
	return false
}
