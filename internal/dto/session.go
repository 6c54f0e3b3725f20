package dto

// CreateSessionRequest creates a new FMPA session in PLANIFIE status.
type CreateSessionRequest struct {
	TrainingTypeID string  `json:"training_type_id" binding:"required,uuid"`
	CentreID       string  `json:"centre_id"        binding:"required,uuid"`
	InstructorID   string  `json:"instructor_id"    binding:"required,uuid"`
	StartAt        string  `json:"start_at"         binding:"required"` // RFC 3339
	EndAt          string  `json:"end_at"           binding:"required"`
	Location       string  `json:"location"         binding:"required,min=1,max=200"`
	MaxSeats       int     `json:"max_seats"        binding:"required"`
	TTACode        string  `json:"tta_code"         binding:"required,min=1,max=30"`
	HourlyRate     float64 `json:"hourly_rate"      binding:"omitempty,gt=0"`
	Remarks        string  `json:"remarks"          binding:"omitempty,max=2000"`
}

// UpdateSessionRequest partially updates a session. Nil fields are left
// untouched.
type UpdateSessionRequest struct {
	TrainingTypeID *string  `json:"training_type_id" binding:"omitempty,uuid"`
	InstructorID   *string  `json:"instructor_id"    binding:"omitempty,uuid"`
	StartAt        *string  `json:"start_at"`
	EndAt          *string  `json:"end_at"`
	Location       *string  `json:"location"    binding:"omitempty,min=1,max=200"`
	MaxSeats       *int     `json:"max_seats"`
	Status         *string  `json:"status"`
	TTACode        *string  `json:"tta_code"    binding:"omitempty,min=1,max=30"`
	HourlyRate     *float64 `json:"hourly_rate" binding:"omitempty,gt=0"`
	Remarks        *string  `json:"remarks"     binding:"omitempty,max=2000"`
}

// ListSessionsRequest filters and paginates the session list.
// Either a date range or a month (YYYY-MM) may be supplied.
type ListSessionsRequest struct {
	StartDate    string `form:"start_date"`
	EndDate      string `form:"end_date"`
	Month        string `form:"month"`
	CentreID     string `form:"centre_id"     binding:"omitempty,uuid"`
	Status       string `form:"status"`
	InstructorID string `form:"instructor_id" binding:"omitempty,uuid"`
	TypeID       string `form:"type_id"       binding:"omitempty,uuid"`
	SortBy       string `form:"sort_by"       binding:"omitempty,oneof=start_at created_at status"`
	SortOrder    string `form:"sort_order"    binding:"omitempty,oneof=asc desc"`
	PaginationRequest
}

// SessionResponse is the full session payload.
type SessionResponse struct {
	ID            string             `json:"id"`
	TrainingType  *TrainingTypeBrief `json:"training_type,omitempty"`
	Centre        *CentreBrief       `json:"centre,omitempty"`
	Instructor    *PersonnelBrief    `json:"instructor,omitempty"`
	StartAt       string             `json:"start_at"`
	EndAt         string             `json:"end_at"`
	Location      string             `json:"location"`
	MaxSeats      int                `json:"max_seats"`
	OccupiedSeats int                `json:"occupied_seats"`
	Status        string             `json:"status"`
	TTACode       string             `json:"tta_code,omitempty"`
	HourlyRate    float64            `json:"hourly_rate"`
	Remarks       string             `json:"remarks,omitempty"`
	Registrations []RegistrationResponse `json:"registrations,omitempty"`
	CreatedAt     string             `json:"created_at"`
	UpdatedAt     string             `json:"updated_at"`
}

// TrainingTypeBrief is the catalogue subset clients need.
type TrainingTypeBrief struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Label         string  `json:"label"`
	DurationHours float64 `json:"duration_hours"`
	HourlyRate    float64 `json:"hourly_rate"`
}

// CentreBrief is the centre subset clients need.
type CentreBrief struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
