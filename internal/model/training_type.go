package model

// TrainingType is a catalogue entry for a kind of mandatory refresher
// training (FMPA). Rows are never hard-deleted once a session references
// them; superseded entries are soft-deleted and replaced.
type TrainingType struct {
	TrainingTypeID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"training_type_id"`
	Code           string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Label          string  `gorm:"type:varchar(150);not null"                     json:"label"`
	DurationHours  float64 `gorm:"type:numeric(5,2);not null"                     json:"duration_hours"`
	HourlyRate     float64 `gorm:"type:numeric(8,2);not null;default:0"           json:"hourly_rate"`
	Description    string  `gorm:"type:text"                                      json:"description,omitempty"`
	SoftDeleteModel
}

func (TrainingType) TableName() string { return "training_types" }
