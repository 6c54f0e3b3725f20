package dto

// ExportTTARequest bounds the payroll export. Dates are YYYY-MM-DD.
type ExportTTARequest struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date"   binding:"required"`
	CentreID  string `form:"centre_id"  binding:"omitempty,uuid"`
}

// MonthlyReportRequest selects one month of activity.
type MonthlyReportRequest struct {
	Month    string `form:"month"     binding:"required"` // YYYY-MM
	CentreID string `form:"centre_id" binding:"omitempty,uuid"`
}

// TTARow is one payable line of the TTA export.
type TTARow struct {
	BadgeNumber    string  `json:"badge_number"`
	LastName       string  `json:"last_name"`
	FirstName      string  `json:"first_name"`
	Grade          string  `json:"grade"`
	CentreName     string  `json:"centre_name"`
	CentreCode     string  `json:"centre_code"`
	SessionDate    string  `json:"session_date"` // dd/MM/yyyy
	TrainingLabel  string  `json:"training_label"`
	Hours          float64 `json:"hours"`
	HourlyRate     float64 `json:"hourly_rate"`
	Amount         float64 `json:"amount"`
	InstructorName string  `json:"instructor_name"`
	TTACode        string  `json:"tta_code"`
}

// TTAExportResult carries the row set plus the reconciliation total.
type TTAExportResult struct {
	Rows  []TTARow `json:"rows"`
	Total float64  `json:"total"`
}
