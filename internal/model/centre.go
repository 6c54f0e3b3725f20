package model

// Centre is a fire and rescue centre (CIS, CSP or CPI).
type Centre struct {
	CentreID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"centre_id"`
	Code       string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	Type       string `gorm:"type:varchar(10);not null"                      json:"type"` // CIS | CSP | CPI
	Address    string `gorm:"type:varchar(200)"                              json:"address,omitempty"`
	City       string `gorm:"type:varchar(100)"                              json:"city,omitempty"`
	PostalCode string `gorm:"type:varchar(10)"                               json:"postal_code,omitempty"`
	Phone      string `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	Email      string `gorm:"type:varchar(150)"                              json:"email,omitempty"`
	BaseModel
}

func (Centre) TableName() string { return "centres" }
