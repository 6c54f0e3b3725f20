package service

import (
	"go.uber.org/zap"

	"github.com/emifrog/SaaS-RH/config"
	"github.com/emifrog/SaaS-RH/internal/repository"
	"github.com/emifrog/SaaS-RH/pkg/jwt"
	"github.com/emifrog/SaaS-RH/pkg/redis"
)

// Service is the aggregate entry point for every business service.
type Service struct {
	Auth         AuthService
	Session      SessionService
	Registration RegistrationService
	Attendance   AttendanceService
	Export       ExportService
	Calendar     CalendarService
	Notification NotificationService
}

// NewService wires the services together.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	mailer Mailer,
	logger *zap.Logger,
) *Service {
	notifier := NewNotificationService(repo, mailer, logger)
	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, rdb, logger),
		Session:      NewSessionService(&cfg.FMPA, repo, notifier, logger),
		Registration: NewRegistrationService(repo, notifier, logger),
		Attendance:   NewAttendanceService(repo, logger),
		Export:       NewExportService(&cfg.FMPA, repo, logger),
		Calendar:     NewCalendarService(repo),
		Notification: notifier,
	}
}
