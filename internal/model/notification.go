package model

import "time"

// Notification event kinds.
const (
	NotifySessionCreated   = "SESSION_CREATED"
	NotifySessionUpdated   = "SESSION_UPDATED"
	NotifySessionCancelled = "SESSION_CANCELLED"
	NotifyRegistration     = "REGISTRATION_CONFIRMED"
)

// Notification is an in-app message for one person. Delivery beyond this
// row (email) is handled by the dispatcher and never blocks the
// originating operation.
type Notification struct {
	NotificationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	PersonnelID    string    `gorm:"type:uuid;not null"                             json:"personnel_id"`
	Type           string    `gorm:"type:varchar(30);not null"                      json:"type"`
	Subject        string    `gorm:"type:varchar(200);not null"                     json:"subject"`
	Message        string    `gorm:"type:text;not null"                             json:"message"`
	IsRead         bool      `gorm:"not null;default:false"                         json:"is_read"`
	SessionID      *string   `gorm:"type:uuid"                                      json:"session_id,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
