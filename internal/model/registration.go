package model

import "time"

// Registration statuses.
const (
	RegistrationRegistered = "INSCRIT"
	RegistrationConfirmed  = "CONFIRME"
	RegistrationPresent    = "PRESENT"
	RegistrationAbsent     = "ABSENT"
	RegistrationCancelled  = "ANNULE"
)

// LiveRegistrationStatus reports whether the status occupies a seat.
func LiveRegistrationStatus(s string) bool {
	return s != RegistrationCancelled
}

// Registration enrols one person into one session. At most one row per
// (session_id, personnel_id); the database unique constraint backs the
// duplicate check under concurrency.
type Registration struct {
	RegistrationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"registration_id"`
	SessionID      string  `gorm:"type:uuid;not null;uniqueIndex:uq_session_personnel" json:"session_id"`
	PersonnelID    string  `gorm:"type:uuid;not null;uniqueIndex:uq_session_personnel" json:"personnel_id"`
	Status         string  `gorm:"type:varchar(20);not null;default:'INSCRIT'"    json:"status"`
	Signature      *string `gorm:"type:text"                                      json:"signature,omitempty"`
	SignedAt       *time.Time `json:"signed_at,omitempty"`
	ValidatedHours *float64   `gorm:"type:numeric(5,2)"  json:"validated_hours,omitempty"`
	TTAAmount      *float64   `gorm:"type:numeric(10,2);column:tta_amount" json:"tta_amount,omitempty"`
	BaseModel

	Session   *Session   `gorm:"foreignKey:SessionID;references:SessionID"      json:"session,omitempty"`
	Personnel *Personnel `gorm:"foreignKey:PersonnelID;references:PersonnelID"  json:"personnel,omitempty"`
}

func (Registration) TableName() string { return "registrations" }
