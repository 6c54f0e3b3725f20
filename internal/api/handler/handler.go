package handler

import (
	"github.com/emifrog/SaaS-RH/config"
	"github.com/emifrog/SaaS-RH/internal/service"
)

// Handler is the aggregate entry point for every HTTP handler.
type Handler struct {
	Auth         *AuthHandler
	Session      *SessionHandler
	Registration *RegistrationHandler
	Export       *ExportHandler
	Notification *NotificationHandler
}

// NewHandler wires the handlers together.
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Session:      NewSessionHandler(svc.Session, svc.Calendar),
		Registration: NewRegistrationHandler(svc.Registration, svc.Attendance),
		Export:       NewExportHandler(&cfg.FMPA, svc.Export),
		Notification: NewNotificationHandler(svc.Notification),
	}
}
