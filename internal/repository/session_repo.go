package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
	pkgerrors "github.com/emifrog/SaaS-RH/pkg/errors"
)

// SessionFilter narrows the session list query.
type SessionFilter struct {
	StartFrom    *time.Time
	StartTo      *time.Time
	CentreID     string
	Status       string
	InstructorID string
	TypeID       string
	SortBy       string // start_at | created_at | status
	SortDesc     bool
	Offset       int
	Limit        int
}

// SessionRepository is the data access for FMPA sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	List(ctx context.Context, filter SessionFilter) ([]model.Session, int64, error)
	// Update writes all mutable fields in one statement under an
	// optimistic version check. The WHERE clause also requires current
	// occupancy to fit the written max_seats, so an edit can never
	// strand registrants above capacity and either every field commits
	// or none does. Returns ErrOptimisticLock on a lost race.
	Update(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id string) error
	// ListForReport returns the sessions starting in [start, end) with
	// their registrations preloaded, for the monthly activity report.
	ListForReport(ctx context.Context, start, end time.Time, centreID string) ([]model.Session, error)
	// HasInstructorConflict reports whether the instructor is the primary
	// instructor of another non-cancelled session whose half-open window
	// [start_at, end_at) overlaps [start, end). excludeSessionID, when
	// non-empty, removes the session being edited from the comparison set.
	HasInstructorConflict(ctx context.Context, instructorID string, start, end time.Time, excludeSessionID string) (bool, error)
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo creates the GORM implementation.
func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.db.WithContext(ctx).
		Preload("TrainingType", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Centre").
		Preload("Instructor").
		Preload("Registrations").
		Preload("Registrations.Personnel").
		Where("session_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) List(ctx context.Context, filter SessionFilter) ([]model.Session, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Session{})

	if filter.StartFrom != nil {
		db = db.Where("start_at >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		// Exclusive: the service passes the first instant after the
		// range, so a boundary session lands in exactly one window.
		db = db.Where("start_at < ?", *filter.StartTo)
	}
	if filter.CentreID != "" {
		db = db.Where("centre_id = ?", filter.CentreID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.InstructorID != "" {
		db = db.Where("instructor_id = ?", filter.InstructorID)
	}
	if filter.TypeID != "" {
		db = db.Where("training_type_id = ?", filter.TypeID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	switch sortBy {
	case "start_at", "created_at", "status":
	default:
		sortBy = "start_at"
		filter.SortDesc = true
	}
	order := sortBy + " ASC"
	if filter.SortDesc {
		order = sortBy + " DESC"
	}

	var sessions []model.Session
	err := db.
		Preload("TrainingType", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Centre").
		Preload("Instructor").
		Offset(filter.Offset).Limit(filter.Limit).
		Order(order).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *sessionRepo) Update(ctx context.Context, session *model.Session) error {
	oldVersion := session.Version
	result := r.db.WithContext(ctx).
		Model(session).
		Where("session_id = ? AND version = ? AND occupied_seats <= ?",
			session.SessionID, oldVersion, session.MaxSeats).
		Updates(map[string]interface{}{
			"training_type_id": session.TrainingTypeID,
			"instructor_id":    session.InstructorID,
			"start_at":         session.StartAt,
			"end_at":           session.EndAt,
			"location":         session.Location,
			"max_seats":        session.MaxSeats,
			"status":           session.Status,
			"tta_code":         session.TTACode,
			"hourly_rate":      session.HourlyRate,
			"remarks":          session.Remarks,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version = oldVersion + 1
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", id).
		Delete(&model.Session{}).Error
}

func (r *sessionRepo) ListForReport(ctx context.Context, start, end time.Time, centreID string) ([]model.Session, error) {
	db := r.db.WithContext(ctx).
		Where("start_at >= ? AND start_at < ?", start, end)
	if centreID != "" {
		db = db.Where("centre_id = ?", centreID)
	}

	var sessions []model.Session
	err := db.
		Preload("TrainingType", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Centre").
		Preload("Instructor").
		Preload("Registrations").
		Order("start_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) HasInstructorConflict(ctx context.Context, instructorID string, start, end time.Time, excludeSessionID string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("instructor_id = ?", instructorID).
		Where("status != ?", model.SessionCancelled).
		Where("start_at < ? AND end_at > ?", end, start)
	if excludeSessionID != "" {
		db = db.Where("session_id != ?", excludeSessionID)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
