package repository

import "gorm.io/gorm"

// Repository aggregates every data-access interface.
type Repository struct {
	Personnel    PersonnelRepository
	Centre       CentreRepository
	TrainingType TrainingTypeRepository
	Session      SessionRepository
	Registration RegistrationRepository
	Notification NotificationRepository
}

// NewRepository wires the GORM implementations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Personnel:    NewPersonnelRepo(db),
		Centre:       NewCentreRepo(db),
		TrainingType: NewTrainingTypeRepo(db),
		Session:      NewSessionRepo(db),
		Registration: NewRegistrationRepo(db),
		Notification: NewNotificationRepo(db),
	}
}
