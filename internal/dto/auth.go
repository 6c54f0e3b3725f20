package dto

// LoginRequest authenticates by badge number and password.
type LoginRequest struct {
	BadgeNumber string `json:"badge_number" binding:"required"`
	Password    string `json:"password"     binding:"required"`
}

// LoginResponse carries the issued token pair.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Personnel    PersonnelBrief `json:"personnel"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// PersonnelBrief is the identity subset echoed to clients.
type PersonnelBrief struct {
	ID          string `json:"id"`
	BadgeNumber string `json:"badge_number"`
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name"`
	Grade       string `json:"grade,omitempty"`
	Role        string `json:"role"`
	CentreID    string `json:"centre_id"`
}
