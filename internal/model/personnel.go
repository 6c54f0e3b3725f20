package model

import "time"

// Personnel roles.
const (
	RoleUser       = "USER"
	RoleFormateur  = "FORMATEUR"
	RoleChefCentre = "CHEF_CENTRE"
	RoleAdminSDIS  = "ADMIN_SDIS"
)

// Personnel statuses.
const (
	PersonnelActive   = "ACTIF"
	PersonnelInactive = "INACTIF"
)

// Medical fitness statuses.
const (
	MedicalFit           = "APTE"
	MedicalFitRestricted = "APTE_RESTRICTION"
	MedicalUnfit         = "INAPTE"
)

// Personnel is a firefighter or administrative agent. This core reads it
// for eligibility and instructor checks; it is owned by the personnel
// management concern.
type Personnel struct {
	PersonnelID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"personnel_id"`
	BadgeNumber  string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"badge_number"`
	LastName     string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	FirstName    string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	Grade        string `gorm:"type:varchar(10)"                               json:"grade,omitempty"`
	Email        string `gorm:"type:varchar(150);not null;uniqueIndex"         json:"email"`
	Phone        string `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	PasswordHash string `gorm:"type:varchar(100);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'USER'"       json:"role"`
	Status       string `gorm:"type:varchar(10);not null;default:'ACTIF'"      json:"status"`
	CentreID     string `gorm:"type:uuid;not null"                             json:"centre_id"`

	// Optional medical fitness record. A nil MedicalStatus means no
	// record exists; registration treats that permissively.
	MedicalStatus   *string    `gorm:"type:varchar(20)" json:"medical_status,omitempty"`
	MedicalNextExam *time.Time `gorm:"type:date"        json:"medical_next_exam,omitempty"`

	SoftDeleteModel

	Centre *Centre `gorm:"foreignKey:CentreID;references:CentreID" json:"centre,omitempty"`
}

func (Personnel) TableName() string { return "personnels" }

// FullName returns "FirstName LastName" for notifications and exports.
func (p *Personnel) FullName() string {
	return p.FirstName + " " + p.LastName
}

// MedicallyEligible reports whether the medical record, if any, permits
// registration at the given instant. Absence of a record is permissive.
func (p *Personnel) MedicallyEligible(now time.Time) bool {
	if p.MedicalStatus == nil {
		return true
	}
	if *p.MedicalStatus == MedicalUnfit {
		return false
	}
	if p.MedicalNextExam != nil && p.MedicalNextExam.Before(now) {
		return false
	}
	return true
}
