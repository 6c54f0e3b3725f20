package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Mailer delivers a message to a single recipient. Delivery is an
// external concern; failures are logged by callers and never abort
// the operation that triggered the notification.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// logMailer writes outgoing mail to the log instead of an SMTP relay.
// Used when no mail transport is configured.
type logMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Debug("mail suppressed, no transport configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}

type NotificationService interface {
	NotifySessionCreated(ctx context.Context, session *model.Session)
	NotifySessionUpdated(ctx context.Context, session *model.Session, registrants []model.Registration)
	NotifySessionCancelled(ctx context.Context, session *model.Session, registrants []model.Registration)
	NotifyRegistrationConfirmed(ctx context.Context, session *model.Session, person *model.Personnel)
	ListMine(ctx context.Context, personnelID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, notificationID, personnelID string) error
}

type notificationService struct {
	repo   *repository.Repository
	mailer Mailer
	logger *zap.Logger
}

func NewNotificationService(repo *repository.Repository, mailer Mailer, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, mailer: mailer, logger: logger}
}

// NotifySessionCreated fans out to the active personnel of the
// session's centre. Best effort: a failed insert or mail is logged
// and the session creation still succeeds.
func (s *notificationService) NotifySessionCreated(ctx context.Context, session *model.Session) {
	people, err := s.repo.Personnel.ListActiveByCentre(ctx, session.CentreID)
	if err != nil {
		s.logger.Warn("session created notification skipped",
			zap.String("session_id", session.SessionID), zap.Error(err))
		return
	}

	subject := "Nouvelle session FMPA"
	message := fmt.Sprintf("Une session %s est planifiée le %s à %s.",
		sessionLabel(session), session.StartAt.Format("02/01/2006 15:04"), session.Location)

	rows := make([]model.Notification, 0, len(people))
	for _, p := range people {
		rows = append(rows, model.Notification{
			PersonnelID: p.PersonnelID,
			SessionID:   &session.SessionID,
			Type:        model.NotifySessionCreated,
			Subject:     subject,
			Message:     message,
		})
	}
	if err := s.repo.Notification.BatchCreate(ctx, rows); err != nil {
		s.logger.Warn("session created notifications not persisted",
			zap.String("session_id", session.SessionID), zap.Error(err))
	}
	for _, p := range people {
		if p.Email == "" {
			continue
		}
		if err := s.mailer.Send(ctx, p.Email, subject, message); err != nil {
			s.logger.Warn("notification mail failed",
				zap.String("personnel_id", p.PersonnelID), zap.Error(err))
		}
	}
}

func (s *notificationService) NotifySessionUpdated(ctx context.Context, session *model.Session, registrants []model.Registration) {
	subject := "Session FMPA modifiée"
	message := fmt.Sprintf("La session %s du %s a été modifiée.",
		sessionLabel(session), session.StartAt.Format("02/01/2006"))
	s.fanOutToRegistrants(ctx, session, registrants, model.NotifySessionUpdated, subject, message)
}

func (s *notificationService) NotifySessionCancelled(ctx context.Context, session *model.Session, registrants []model.Registration) {
	subject := "Session FMPA annulée"
	message := fmt.Sprintf("La session %s du %s a été annulée.",
		sessionLabel(session), session.StartAt.Format("02/01/2006"))
	s.fanOutToRegistrants(ctx, session, registrants, model.NotifySessionCancelled, subject, message)
}

func (s *notificationService) NotifyRegistrationConfirmed(ctx context.Context, session *model.Session, person *model.Personnel) {
	subject := "Inscription confirmée"
	message := fmt.Sprintf("Votre inscription à la session %s du %s est enregistrée.",
		sessionLabel(session), session.StartAt.Format("02/01/2006"))
	row := &model.Notification{
		PersonnelID: person.PersonnelID,
		SessionID:   &session.SessionID,
		Type:        model.NotifyRegistration,
		Subject:     subject,
		Message:     message,
	}
	if err := s.repo.Notification.Create(ctx, row); err != nil {
		s.logger.Warn("registration notification not persisted",
			zap.String("personnel_id", person.PersonnelID), zap.Error(err))
	}
	if person.Email != "" {
		if err := s.mailer.Send(ctx, person.Email, subject, message); err != nil {
			s.logger.Warn("notification mail failed",
				zap.String("personnel_id", person.PersonnelID), zap.Error(err))
		}
	}
}

func (s *notificationService) fanOutToRegistrants(ctx context.Context, session *model.Session, registrants []model.Registration, kind, subject, message string) {
	rows := make([]model.Notification, 0, len(registrants))
	for _, r := range registrants {
		if !model.LiveRegistrationStatus(r.Status) {
			continue
		}
		rows = append(rows, model.Notification{
			PersonnelID: r.PersonnelID,
			SessionID:   &session.SessionID,
			Type:        kind,
			Subject:     subject,
			Message:     message,
		})
	}
	if len(rows) == 0 {
		return
	}
	if err := s.repo.Notification.BatchCreate(ctx, rows); err != nil {
		s.logger.Warn("registrant notifications not persisted",
			zap.String("session_id", session.SessionID), zap.Error(err))
	}
	for _, r := range registrants {
		if !model.LiveRegistrationStatus(r.Status) || r.Personnel == nil || r.Personnel.Email == "" {
			continue
		}
		if err := s.mailer.Send(ctx, r.Personnel.Email, subject, message); err != nil {
			s.logger.Warn("notification mail failed",
				zap.String("personnel_id", r.PersonnelID), zap.Error(err))
		}
	}
}

// sessionLabel prefers the training type label, falling back to the TTA
// code when the association was not preloaded.
func sessionLabel(session *model.Session) string {
	if session.TrainingType != nil {
		return session.TrainingType.Label
	}
	return session.TTACode
}

func (s *notificationService) ListMine(ctx context.Context, personnelID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	return s.repo.Notification.ListByPersonnel(ctx, personnelID, unreadOnly, offset, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, personnelID string) error {
	err := s.repo.Notification.MarkRead(ctx, notificationID, personnelID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
