package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/internal/service"
	pkgerrors "github.com/emifrog/SaaS-RH/pkg/errors"
	"github.com/emifrog/SaaS-RH/pkg/response"
)

// SessionHandler exposes the session lifecycle endpoints.
type SessionHandler struct {
	sessionSvc  service.SessionService
	calendarSvc service.CalendarService
}

func NewSessionHandler(sessionSvc service.SessionService, calendarSvc service.CalendarService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, calendarSvc: calendarSvc}
}

// Create plans a new session.
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.Created(c, toSessionResponse(session, true))
}

// Get returns one session with its registrations.
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, toSessionResponse(session, true))
}

// List returns sessions matching the filters, paginated.
// GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	var req dto.ListSessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	sessions, total, err := h.sessionSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	list := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		list = append(list, toSessionResponse(&sessions[i], false))
	}
	response.OKPage(c, list, total, req.Page, req.Limit())
}

// Update edits a session, including status transitions.
// PUT /api/v1/sessions/:id
func (h *SessionHandler) Update(c *gin.Context) {
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	session, err := h.sessionSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, toSessionResponse(session, true))
}

// Delete removes a session that never took place.
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessionSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleSessionError(c, err)
		return
	}
	response.OK(c, nil)
}

// DownloadICS returns the session as an iCalendar file.
// GET /api/v1/sessions/:id/ics
func (h *SessionHandler) DownloadICS(c *gin.Context) {
	payload, filename, err := h.calendarSvc.SessionICS(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSessionError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "text/calendar; charset=utf-8", payload)
}

func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 12001, "session not found")
	case errors.Is(err, service.ErrTrainingTypeNotFound):
		response.NotFound(c, 12002, "training type not found")
	case errors.Is(err, service.ErrCentreNotFound):
		response.NotFound(c, 12003, "centre not found")
	case errors.Is(err, service.ErrInstructorNotFound):
		response.NotFound(c, 12004, "instructor not found")
	case errors.Is(err, service.ErrInstructorInactive):
		response.BadRequest(c, 12005, "instructor is not active")
	case errors.Is(err, service.ErrInvalidDates):
		response.BadRequest(c, 12006, "invalid dates")
	case errors.Is(err, service.ErrStartInPast):
		response.BadRequest(c, 12007, "session cannot start in the past")
	case errors.Is(err, service.ErrSeatsOutOfBand):
		response.BadRequest(c, 12008, "max seats outside the allowed band")
	case errors.Is(err, service.ErrInstructorConflict):
		response.Conflict(c, 12009, "instructor already assigned on an overlapping session")
	case errors.Is(err, service.ErrSessionLocked):
		response.Conflict(c, 12010, "session is in a terminal status")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 12011, "illegal status transition")
	case errors.Is(err, service.ErrCapacityBelowOccupancy):
		response.Conflict(c, 12012, "max seats below current occupancy")
	case errors.Is(err, service.ErrSessionHasRegistrants):
		response.Conflict(c, 12013, "session still has registrants")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12014, "session was modified concurrently, reload and retry")
	default:
		response.InternalError(c)
	}
}

func toSessionResponse(s *model.Session, includeRegistrations bool) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:            s.SessionID,
		StartAt:       s.StartAt.Format(time.RFC3339),
		EndAt:         s.EndAt.Format(time.RFC3339),
		Location:      s.Location,
		MaxSeats:      s.MaxSeats,
		OccupiedSeats: s.OccupiedSeats,
		Status:        s.Status,
		TTACode:       s.TTACode,
		HourlyRate:    s.HourlyRate,
		Remarks:       s.Remarks,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
	}
	if s.TrainingType != nil {
		resp.TrainingType = &dto.TrainingTypeBrief{
			ID:            s.TrainingType.TrainingTypeID,
			Code:          s.TrainingType.Code,
			Label:         s.TrainingType.Label,
			DurationHours: s.TrainingType.DurationHours,
			HourlyRate:    s.TrainingType.HourlyRate,
		}
	}
	if s.Centre != nil {
		resp.Centre = &dto.CentreBrief{
			ID:   s.Centre.CentreID,
			Code: s.Centre.Code,
			Name: s.Centre.Name,
		}
	}
	if s.Instructor != nil {
		resp.Instructor = toPersonnelBrief(s.Instructor)
	}
	if includeRegistrations {
		for i := range s.Registrations {
			resp.Registrations = append(resp.Registrations, toRegistrationResponse(&s.Registrations[i]))
		}
	}
	return resp
}

func toPersonnelBrief(p *model.Personnel) *dto.PersonnelBrief {
	return &dto.PersonnelBrief{
		ID:          p.PersonnelID,
		BadgeNumber: p.BadgeNumber,
		LastName:    p.LastName,
		FirstName:   p.FirstName,
		Grade:       p.Grade,
		Role:        p.Role,
		CentreID:    p.CentreID,
	}
}

func toRegistrationResponse(r *model.Registration) dto.RegistrationResponse {
	resp := dto.RegistrationResponse{
		ID:             r.RegistrationID,
		SessionID:      r.SessionID,
		Status:         r.Status,
		ValidatedHours: r.ValidatedHours,
		TTAAmount:      r.TTAAmount,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	if r.Personnel != nil {
		resp.Personnel = toPersonnelBrief(r.Personnel)
	}
	if r.SignedAt != nil {
		signed := r.SignedAt.Format(time.RFC3339)
		resp.SignedAt = &signed
	}
	return resp
}
