package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/config"
	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/internal/repository"
)

var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrTrainingTypeNotFound   = errors.New("training type not found")
	ErrCentreNotFound         = errors.New("centre not found")
	ErrInstructorNotFound     = errors.New("instructor not found")
	ErrInstructorInactive     = errors.New("instructor is not active")
	ErrInstructorConflict     = errors.New("instructor already assigned on an overlapping session")
	ErrInvalidDates           = errors.New("invalid session dates")
	ErrStartInPast            = errors.New("session cannot start in the past")
	ErrSeatsOutOfBand         = errors.New("max seats outside the allowed band")
	ErrCapacityBelowOccupancy = errors.New("max seats below current occupancy")
	ErrSessionLocked          = errors.New("session is in a terminal status")
	ErrInvalidTransition      = errors.New("illegal session status transition")
	ErrSessionHasRegistrants  = errors.New("session still has registrants")
)

// SessionService owns the session lifecycle: creation, edits under
// optimistic locking, the status machine and deletion.
type SessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*model.Session, error)
	GetByID(ctx context.Context, id string) (*model.Session, error)
	List(ctx context.Context, req *dto.ListSessionsRequest) ([]model.Session, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateSessionRequest) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

type sessionService struct {
	cfg      *config.FMPAConfig
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

func NewSessionService(cfg *config.FMPAConfig, repo *repository.Repository, notifier NotificationService, logger *zap.Logger) SessionService {
	return &sessionService{cfg: cfg, repo: repo, notifier: notifier, logger: logger}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*model.Session, error) {
	startAt, endAt, err := parseSessionWindow(req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	if !startAt.After(time.Now()) {
		return nil, ErrStartInPast
	}
	if req.MaxSeats < s.cfg.MinSeats || req.MaxSeats > s.cfg.MaxSeats {
		return nil, ErrSeatsOutOfBand
	}

	trainingType, err := s.repo.TrainingType.GetByID(ctx, req.TrainingTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrainingTypeNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Centre.GetByID(ctx, req.CentreID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCentreNotFound
		}
		return nil, err
	}
	instructor, err := s.repo.Personnel.GetByID(ctx, req.InstructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, err
	}
	if instructor.Status != model.PersonnelActive {
		return nil, ErrInstructorInactive
	}

	conflict, err := s.repo.Session.HasInstructorConflict(ctx, req.InstructorID, startAt, endAt, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrInstructorConflict
	}

	hourlyRate := req.HourlyRate
	if hourlyRate == 0 {
		hourlyRate = trainingType.HourlyRate
	}

	session := &model.Session{
		TrainingTypeID: req.TrainingTypeID,
		CentreID:       req.CentreID,
		InstructorID:   req.InstructorID,
		StartAt:        startAt,
		EndAt:          endAt,
		Location:       req.Location,
		MaxSeats:       req.MaxSeats,
		Status:         model.SessionPlanned,
		TTACode:        req.TTACode,
		HourlyRate:     hourlyRate,
		Remarks:        req.Remarks,
	}
	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session created",
		zap.String("session_id", session.SessionID),
		zap.String("centre_id", session.CentreID),
		zap.Time("start_at", session.StartAt))

	created, err := s.repo.Session.GetByID(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifySessionCreated(ctx, created)
	return created, nil
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.repo.Session.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

// List resolves the month shortcut into a date range, then delegates to
// the repository filter.
func (s *sessionService) List(ctx context.Context, req *dto.ListSessionsRequest) ([]model.Session, int64, error) {
	filter := repository.SessionFilter{
		CentreID:     req.CentreID,
		Status:       req.Status,
		InstructorID: req.InstructorID,
		TypeID:       req.TypeID,
		SortBy:       req.SortBy,
		SortDesc:     req.SortOrder != "asc",
		Offset:       req.Offset(),
		Limit:        req.Limit(),
	}

	if req.Month != "" {
		monthStart, err := time.Parse("2006-01", req.Month)
		if err != nil {
			return nil, 0, ErrInvalidDates
		}
		monthEnd := monthStart.AddDate(0, 1, 0)
		filter.StartFrom = &monthStart
		filter.StartTo = &monthEnd
	} else {
		if req.StartDate != "" {
			from, err := time.Parse("2006-01-02", req.StartDate)
			if err != nil {
				return nil, 0, ErrInvalidDates
			}
			filter.StartFrom = &from
		}
		if req.EndDate != "" {
			to, err := time.Parse("2006-01-02", req.EndDate)
			if err != nil {
				return nil, 0, ErrInvalidDates
			}
			to = to.AddDate(0, 0, 1) // inclusive end day
			filter.StartTo = &to
		}
	}

	return s.repo.Session.List(ctx, filter)
}

// Update applies a partial edit under the optimistic version check.
// Terminal sessions reject every change except re-applying their own
// status, which is a no-op.
func (s *sessionService) Update(ctx context.Context, id string, req *dto.UpdateSessionRequest) (*model.Session, error) {
	session, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if model.IsTerminalStatus(session.Status) {
		if isNoopTerminalReapply(session, req) {
			return session, nil
		}
		return nil, ErrSessionLocked
	}

	if req.Status != nil && *req.Status != session.Status {
		if !model.ValidSessionStatus(*req.Status) || !model.CanTransition(session.Status, *req.Status) {
			return nil, ErrInvalidTransition
		}
	}

	startAt := session.StartAt
	endAt := session.EndAt
	if req.StartAt != nil || req.EndAt != nil {
		startStr := session.StartAt.Format(time.RFC3339)
		endStr := session.EndAt.Format(time.RFC3339)
		if req.StartAt != nil {
			startStr = *req.StartAt
		}
		if req.EndAt != nil {
			endStr = *req.EndAt
		}
		startAt, endAt, err = parseSessionWindow(startStr, endStr)
		if err != nil {
			return nil, err
		}
	}

	instructorID := session.InstructorID
	if req.InstructorID != nil && *req.InstructorID != session.InstructorID {
		instructor, err := s.repo.Personnel.GetByID(ctx, *req.InstructorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInstructorNotFound
			}
			return nil, err
		}
		if instructor.Status != model.PersonnelActive {
			return nil, ErrInstructorInactive
		}
		instructorID = *req.InstructorID
	}

	if req.TrainingTypeID != nil && *req.TrainingTypeID != session.TrainingTypeID {
		if _, err := s.repo.TrainingType.GetByID(ctx, *req.TrainingTypeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTrainingTypeNotFound
			}
			return nil, err
		}
		session.TrainingTypeID = *req.TrainingTypeID
	}

	if req.MaxSeats != nil {
		if *req.MaxSeats < s.cfg.MinSeats || *req.MaxSeats > s.cfg.MaxSeats {
			return nil, ErrSeatsOutOfBand
		}
		if *req.MaxSeats < session.OccupiedSeats {
			return nil, ErrCapacityBelowOccupancy
		}
	}

	windowMoved := !startAt.Equal(session.StartAt) || !endAt.Equal(session.EndAt)
	if windowMoved || instructorID != session.InstructorID {
		conflict, err := s.repo.Session.HasInstructorConflict(ctx, instructorID, startAt, endAt, session.SessionID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrInstructorConflict
		}
	}

	cancelled := false
	significant := windowMoved
	session.StartAt = startAt
	session.EndAt = endAt
	session.InstructorID = instructorID
	if req.Location != nil && *req.Location != session.Location {
		session.Location = *req.Location
		significant = true
	}
	if req.Status != nil && *req.Status != session.Status {
		cancelled = *req.Status == model.SessionCancelled
		session.Status = *req.Status
		significant = true
	}
	if req.TTACode != nil {
		session.TTACode = *req.TTACode
	}
	if req.HourlyRate != nil {
		session.HourlyRate = *req.HourlyRate
	}
	if req.Remarks != nil {
		session.Remarks = *req.Remarks
	}

	if req.MaxSeats != nil {
		session.MaxSeats = *req.MaxSeats
	}

	// One versioned statement carries every edited field, max_seats
	// included; the repository's occupancy guard arbitrates a resize
	// racing a concurrent registration.
	if err := s.repo.Session.Update(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session updated",
		zap.String("session_id", session.SessionID),
		zap.String("status", session.Status),
		zap.Int("version", session.Version))

	updated, err := s.repo.Session.GetByID(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	if cancelled {
		s.notifier.NotifySessionCancelled(ctx, updated, updated.Registrations)
	} else if significant {
		s.notifier.NotifySessionUpdated(ctx, updated, updated.Registrations)
	}
	return updated, nil
}

// Delete removes a session that never took place. Completed sessions are
// part of the payroll record and cannot be deleted; sessions with live
// registrants must be cancelled instead so registrants are notified.
func (s *sessionService) Delete(ctx context.Context, id string) error {
	session, err := s.repo.Session.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.Status == model.SessionCompleted {
		return ErrSessionLocked
	}
	live, err := s.repo.Registration.CountLiveBySession(ctx, id)
	if err != nil {
		return err
	}
	if live > 0 {
		return ErrSessionHasRegistrants
	}
	if err := s.repo.Session.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// parseSessionWindow parses RFC 3339 bounds and checks their order.
func parseSessionWindow(start, end string) (time.Time, time.Time, error) {
	startAt, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDates
	}
	endAt, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDates
	}
	if !startAt.Before(endAt) {
		return time.Time{}, time.Time{}, ErrInvalidDates
	}
	return startAt, endAt, nil
}

// isNoopTerminalReapply reports whether the request only re-states the
// session's current terminal status, which is accepted idempotently.
func isNoopTerminalReapply(session *model.Session, req *dto.UpdateSessionRequest) bool {
	if req.Status == nil || *req.Status != session.Status {
		return false
	}
	return req.TrainingTypeID == nil && req.InstructorID == nil &&
		req.StartAt == nil && req.EndAt == nil && req.Location == nil &&
		req.MaxSeats == nil && req.TTACode == nil &&
		req.HourlyRate == nil && req.Remarks == nil
}
