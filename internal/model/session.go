package model

import "time"

// Session lifecycle statuses. TERMINE and ANNULE are terminal.
const (
	SessionPlanned    = "PLANIFIE"
	SessionConfirmed  = "CONFIRME"
	SessionInProgress = "EN_COURS"
	SessionCompleted  = "TERMINE"
	SessionCancelled  = "ANNULE"
)

// sessionTransitions is the authoritative transition table.
var sessionTransitions = map[string][]string{
	SessionPlanned:    {SessionConfirmed, SessionCancelled},
	SessionConfirmed:  {SessionInProgress, SessionCancelled},
	SessionInProgress: {SessionCompleted, SessionCancelled},
	SessionCompleted:  {},
	SessionCancelled:  {},
}

// ValidSessionStatus reports whether s is a known lifecycle status.
func ValidSessionStatus(s string) bool {
	_, ok := sessionTransitions[s]
	return ok
}

// CanTransition reports whether from → to is a legal lifecycle move.
// Re-applying the current status is treated as a no-op and allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether s locks the session against mutation.
func IsTerminalStatus(s string) bool {
	return s == SessionCompleted || s == SessionCancelled
}

// Session is one scheduled FMPA occurrence at a centre.
//
// Invariants: StartAt < EndAt; 0 ≤ OccupiedSeats ≤ MaxSeats; the seat
// counter is only ever co-updated with the registration set inside one
// transaction (see repository.RegistrationRepository).
type Session struct {
	SessionID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	TrainingTypeID string    `gorm:"type:uuid;not null"                             json:"training_type_id"`
	CentreID       string    `gorm:"type:uuid;not null"                             json:"centre_id"`
	InstructorID   string    `gorm:"type:uuid;not null"                             json:"instructor_id"`
	StartAt        time.Time `gorm:"not null"                                       json:"start_at"`
	EndAt          time.Time `gorm:"not null"                                       json:"end_at"`
	Location       string    `gorm:"type:varchar(200);not null"                     json:"location"`
	MaxSeats       int       `gorm:"type:smallint;not null"                         json:"max_seats"`
	OccupiedSeats  int       `gorm:"type:smallint;not null;default:0"               json:"occupied_seats"`
	Status         string    `gorm:"type:varchar(20);not null;default:'PLANIFIE'"   json:"status"`
	TTACode        string    `gorm:"type:varchar(30);column:tta_code"               json:"tta_code,omitempty"`
	HourlyRate     float64   `gorm:"type:numeric(8,2);not null;default:0"           json:"hourly_rate"`
	Remarks        string    `gorm:"type:text"                                      json:"remarks,omitempty"`
	VersionedModel

	TrainingType  *TrainingType  `gorm:"foreignKey:TrainingTypeID;references:TrainingTypeID" json:"training_type,omitempty"`
	Centre        *Centre        `gorm:"foreignKey:CentreID;references:CentreID"             json:"centre,omitempty"`
	Instructor    *Personnel     `gorm:"foreignKey:InstructorID;references:PersonnelID"      json:"instructor,omitempty"`
	Registrations []Registration `gorm:"foreignKey:SessionID"                                json:"registrations,omitempty"`
}

func (Session) TableName() string { return "sessions" }

// IsOpen reports whether the session accepts new registrations.
func (s *Session) IsOpen() bool {
	return s.Status == SessionPlanned || s.Status == SessionConfirmed
}

// IsFull reports whether every seat is taken.
func (s *Session) IsFull() bool {
	return s.OccupiedSeats >= s.MaxSeats
}

// Overlaps reports whether the session's half-open window [StartAt,EndAt)
// intersects [start,end).
func (s *Session) Overlaps(start, end time.Time) bool {
	return s.StartAt.Before(end) && s.EndAt.After(start)
}
