package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/service"
	"github.com/emifrog/SaaS-RH/pkg/response"
)

// RegistrationHandler exposes enrolment and attendance endpoints.
type RegistrationHandler struct {
	registrationSvc service.RegistrationService
	attendanceSvc   service.AttendanceService
}

func NewRegistrationHandler(registrationSvc service.RegistrationService, attendanceSvc service.AttendanceService) *RegistrationHandler {
	return &RegistrationHandler{registrationSvc: registrationSvc, attendanceSvc: attendanceSvc}
}

// Register enrols a person into a session. Without the RegisterOthers
// capability a caller can only enrol themselves.
// POST /api/v1/sessions/:id/registrations
func (h *RegistrationHandler) Register(c *gin.Context) {
	callerID, ok := MustGetPersonnelID(c)
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	if req.PersonnelID != callerID && !GetCapabilities(c).RegisterOthers {
		response.Forbidden(c, 10003, "cannot register someone else")
		return
	}

	reg, err := h.registrationSvc.Register(c.Request.Context(), c.Param("id"), req.PersonnelID)
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}
	response.Created(c, toRegistrationResponse(reg))
}

// Withdraw removes the caller's (or, with RegisterOthers, anyone's)
// registration and frees the seat.
// DELETE /api/v1/sessions/:id/registrations/:personnelId
func (h *RegistrationHandler) Withdraw(c *gin.Context) {
	callerID, ok := MustGetPersonnelID(c)
	if !ok {
		return
	}
	personnelID := c.Param("personnelId")
	if personnelID != callerID && !GetCapabilities(c).RegisterOthers {
		response.Forbidden(c, 10003, "cannot withdraw someone else")
		return
	}

	if err := h.registrationSvc.Withdraw(c.Request.Context(), c.Param("id"), personnelID); err != nil {
		h.handleRegistrationError(c, err)
		return
	}
	response.OK(c, nil)
}

// List returns every registration of a session.
// GET /api/v1/sessions/:id/registrations
func (h *RegistrationHandler) List(c *gin.Context) {
	regs, err := h.registrationSvc.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}

	list := make([]dto.RegistrationResponse, 0, len(regs))
	for i := range regs {
		list = append(list, toRegistrationResponse(&regs[i]))
	}
	response.OK(c, list)
}

// MarkAttendance records presence, validated hours and the signature.
// PUT /api/v1/sessions/:id/attendance
func (h *RegistrationHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	reg, err := h.attendanceSvc.MarkAttendance(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleRegistrationError(c, err)
		return
	}
	response.OK(c, toRegistrationResponse(reg))
}

func (h *RegistrationHandler) handleRegistrationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 12001, "session not found")
	case errors.Is(err, service.ErrSessionLocked):
		response.Conflict(c, 12010, "session is in a terminal status")
	case errors.Is(err, service.ErrSessionNotOpen):
		response.BadRequest(c, 13001, "session is not open for registration")
	case errors.Is(err, service.ErrSessionFull):
		response.Conflict(c, 13002, "session is full")
	case errors.Is(err, service.ErrPersonnelInactive):
		response.BadRequest(c, 13003, "personnel is not active")
	case errors.Is(err, service.ErrMedicalUnfit):
		response.BadRequest(c, 13004, "medical fitness status forbids registration")
	case errors.Is(err, service.ErrMedicalExpired):
		response.BadRequest(c, 13005, "medical examination has expired")
	case errors.Is(err, service.ErrAlreadyRegistered):
		response.Conflict(c, 13006, "already registered on this session")
	case errors.Is(err, service.ErrPersonnelNotFound):
		response.NotFound(c, 13007, "personnel not found")
	case errors.Is(err, service.ErrRegistrationNotFound):
		response.NotFound(c, 13008, "registration not found")
	case errors.Is(err, service.ErrAttendanceTooEarly):
		response.BadRequest(c, 14001, "attendance can only be recorded once the session has started")
	case errors.Is(err, service.ErrHoursRequired):
		response.BadRequest(c, 14002, "validated hours are required for a present registrant")
	default:
		response.InternalError(c)
	}
}
