package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/internal/repository"
)

var (
	ErrPersonnelNotFound    = errors.New("personnel not found")
	ErrRegistrationNotFound = errors.New("registration not found")
)

// RegistrationService enrols people into sessions and lets them
// withdraw. All seat accounting goes through the repository's
// transactional writes; this layer only decides eligibility.
type RegistrationService interface {
	Register(ctx context.Context, sessionID, personnelID string) (*model.Registration, error)
	Withdraw(ctx context.Context, sessionID, personnelID string) error
	ListBySession(ctx context.Context, sessionID string) ([]model.Registration, error)
}

type registrationService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

func NewRegistrationService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) RegistrationService {
	return &registrationService{repo: repo, notifier: notifier, logger: logger}
}

// Register runs the eligibility rules against a fresh read, then lets
// the conditional seat increment and the unique constraint arbitrate
// races. A full session or a duplicate discovered at commit time maps
// to the same errors the pre-check would have produced.
func (s *registrationService) Register(ctx context.Context, sessionID, personnelID string) (*model.Registration, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	person, err := s.repo.Personnel.GetByID(ctx, personnelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonnelNotFound
		}
		return nil, err
	}

	existing, err := s.repo.Registration.GetBySessionAndPersonnel(ctx, sessionID, personnelID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := CheckEligibility(person, session, existing, time.Now()); err != nil {
		return nil, err
	}

	// A cancelled registration leaves its row behind because of the
	// unique constraint; re-registering revives it.
	if existing != nil && existing.Status == model.RegistrationCancelled {
		return s.revive(ctx, session, person, existing)
	}

	reg := &model.Registration{
		SessionID:   sessionID,
		PersonnelID: personnelID,
		Status:      model.RegistrationRegistered,
	}
	if err := s.repo.Registration.CreateWithSeat(ctx, reg); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoSeatAvailable):
			return nil, ErrSessionFull
		case errors.Is(err, repository.ErrDuplicateRegistration):
			return nil, ErrAlreadyRegistered
		default:
			return nil, err
		}
	}

	s.logger.Info("registration created",
		zap.String("session_id", sessionID),
		zap.String("personnel_id", personnelID))

	s.notifier.NotifyRegistrationConfirmed(ctx, session, person)
	reg.Personnel = person
	return reg, nil
}

// revive flips a cancelled registration back to INSCRIT, re-taking a
// seat through the same conditional increment as a fresh insert.
func (s *registrationService) revive(ctx context.Context, session *model.Session, person *model.Personnel, reg *model.Registration) (*model.Registration, error) {
	if err := s.repo.Registration.ReviveWithSeat(ctx, reg.RegistrationID, reg.SessionID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoSeatAvailable):
			return nil, ErrSessionFull
		case errors.Is(err, repository.ErrDuplicateRegistration):
			return nil, ErrAlreadyRegistered
		default:
			return nil, err
		}
	}
	reg.Status = model.RegistrationRegistered

	s.logger.Info("registration revived",
		zap.String("session_id", reg.SessionID),
		zap.String("personnel_id", reg.PersonnelID))

	s.notifier.NotifyRegistrationConfirmed(ctx, session, person)
	reg.Personnel = person
	return reg, nil
}

// Withdraw removes a live registration and frees its seat. Completed
// sessions are immutable payroll history, so withdrawal is refused once
// the session reaches TERMINE.
func (s *registrationService) Withdraw(ctx context.Context, sessionID, personnelID string) error {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.Status == model.SessionCompleted {
		return ErrSessionLocked
	}

	reg, err := s.repo.Registration.GetBySessionAndPersonnel(ctx, sessionID, personnelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	if !model.LiveRegistrationStatus(reg.Status) {
		return ErrRegistrationNotFound
	}

	if err := s.repo.Registration.DeleteWithSeat(ctx, sessionID, personnelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}

	s.logger.Info("registration withdrawn",
		zap.String("session_id", sessionID),
		zap.String("personnel_id", personnelID))
	return nil
}

func (s *registrationService) ListBySession(ctx context.Context, sessionID string) ([]model.Registration, error) {
	if _, err := s.repo.Session.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s.repo.Registration.ListBySession(ctx, sessionID)
}
