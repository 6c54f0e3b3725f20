package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/internal/repository"
)

var (
	ErrAttendanceTooEarly = errors.New("attendance can only be recorded once the session has started")
	ErrHoursRequired      = errors.New("validated hours are required for a present registrant")
)

// AttendanceService records presence and computes the payable TTA
// amount for each registrant. The amount is frozen on the registration
// row at validation time so later catalogue or rate edits never change
// what was earned.
type AttendanceService interface {
	MarkAttendance(ctx context.Context, sessionID string, req *dto.MarkAttendanceRequest) (*model.Registration, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// MarkAttendance sets the registrant's attendance status. PRESENT with
// validated hours computes amount = hours × session hourly rate; every
// other status clears hours, amount and signature. Moving to or from
// ANNULE adjusts the seat counter in the same transaction as the row
// update.
func (s *attendanceService) MarkAttendance(ctx context.Context, sessionID string, req *dto.MarkAttendanceRequest) (*model.Registration, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status == model.SessionCancelled {
		return nil, ErrSessionLocked
	}
	if session.Status == model.SessionPlanned || session.Status == model.SessionConfirmed {
		return nil, ErrAttendanceTooEarly
	}

	reg, err := s.repo.Registration.GetBySessionAndPersonnel(ctx, sessionID, req.PersonnelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	wasLive := model.LiveRegistrationStatus(reg.Status)
	willBeLive := model.LiveRegistrationStatus(req.Status)
	seatDelta := 0
	switch {
	case wasLive && !willBeLive:
		seatDelta = -1
	case !wasLive && willBeLive:
		seatDelta = +1
	}

	reg.Status = req.Status
	if req.Status == model.RegistrationPresent {
		hours := session.TrainingType.DurationHours
		if req.ValidatedHours != nil {
			hours = *req.ValidatedHours
		}
		if hours <= 0 {
			return nil, ErrHoursRequired
		}
		amount := roundCents(hours * session.HourlyRate)
		reg.ValidatedHours = &hours
		reg.TTAAmount = &amount
		if req.Signature != nil {
			now := time.Now()
			reg.Signature = req.Signature
			reg.SignedAt = &now
		}
	} else {
		reg.ValidatedHours = nil
		reg.TTAAmount = nil
		reg.Signature = nil
		reg.SignedAt = nil
	}

	if err := s.repo.Registration.UpdateAttendance(ctx, reg, seatDelta); err != nil {
		if errors.Is(err, repository.ErrNoSeatAvailable) {
			return nil, ErrSessionFull
		}
		return nil, err
	}

	s.logger.Info("attendance recorded",
		zap.String("session_id", sessionID),
		zap.String("personnel_id", req.PersonnelID),
		zap.String("status", req.Status))
	return reg, nil
}

// roundCents rounds to two decimals, half away from zero.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
