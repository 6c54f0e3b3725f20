package dto

// RegisterRequest enrols a person into a session.
type RegisterRequest struct {
	PersonnelID string `json:"personnel_id" binding:"required,uuid"`
}

// MarkAttendanceRequest records presence for one registrant.
type MarkAttendanceRequest struct {
	PersonnelID    string   `json:"personnel_id"    binding:"required,uuid"`
	Status         string   `json:"status"          binding:"required,oneof=INSCRIT CONFIRME PRESENT ABSENT ANNULE"`
	ValidatedHours *float64 `json:"validated_hours" binding:"omitempty,gt=0"`
	Signature      *string  `json:"signature"`
}

// RegistrationResponse is one enrolment row.
type RegistrationResponse struct {
	ID             string          `json:"id"`
	SessionID      string          `json:"session_id"`
	Personnel      *PersonnelBrief `json:"personnel,omitempty"`
	Status         string          `json:"status"`
	SignedAt       *string         `json:"signed_at,omitempty"`
	ValidatedHours *float64        `json:"validated_hours,omitempty"`
	TTAAmount      *float64        `json:"tta_amount,omitempty"`
	CreatedAt      string          `json:"created_at"`
}
