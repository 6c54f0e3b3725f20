package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/internal/repository"
)

// CalendarService renders sessions as iCalendar payloads so registrants
// can drop them into their agenda.
type CalendarService interface {
	SessionICS(ctx context.Context, sessionID string) ([]byte, string, error)
}

type calendarService struct {
	repo *repository.Repository
}

func NewCalendarService(repo *repository.Repository) CalendarService {
	return &calendarService{repo: repo}
}

// SessionICS exports one session as a single-VEVENT calendar. The UID is
// the session id so re-imports update the same agenda entry, and the
// event status follows the session lifecycle.
func (s *calendarService) SessionICS(ctx context.Context, sessionID string) ([]byte, string, error) {
	session, err := s.repo.Session.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSessionNotFound
		}
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SDIS//FMPA//FR")

	event := cal.AddEvent(fmt.Sprintf("%s@sdis-fmpa", session.SessionID))
	event.SetDtStampTime(time.Now().UTC())
	event.SetStartAt(session.StartAt)
	event.SetEndAt(session.EndAt)
	event.SetSummary(fmt.Sprintf("FMPA — %s", sessionLabel(session)))
	event.SetLocation(session.Location)
	if session.Remarks != "" {
		event.SetDescription(session.Remarks)
	}
	if session.Instructor != nil && session.Instructor.Email != "" {
		event.SetOrganizer("mailto:"+session.Instructor.Email,
			ics.WithCN(session.Instructor.FullName()))
	}

	switch session.Status {
	case model.SessionCancelled:
		event.SetStatus(ics.ObjectStatusCancelled)
	case model.SessionPlanned:
		event.SetStatus(ics.ObjectStatusTentative)
	default:
		event.SetStatus(ics.ObjectStatusConfirmed)
	}

	filename := fmt.Sprintf("fmpa_%s.ics", session.StartAt.Format("2006-01-02"))
	return []byte(cal.Serialize()), filename, nil
}
