package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
)

var (
	// ErrNoSeatAvailable means the conditional seat increment matched no
	// row: the session was full at commit time.
	ErrNoSeatAvailable = errors.New("no seat available")
	// ErrDuplicateRegistration means the (session, personnel) unique
	// constraint rejected the insert; a concurrent request won the race.
	ErrDuplicateRegistration = errors.New("registration already exists")
)

// RegistrationRepository is the data access for enrolments. Seat-count
// mutations are fused with registration writes in one transaction so the
// occupied_seats counter can never drift from the live registration set.
type RegistrationRepository interface {
	GetBySessionAndPersonnel(ctx context.Context, sessionID, personnelID string) (*model.Registration, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Registration, error)
	CountLiveBySession(ctx context.Context, sessionID string) (int64, error)
	// CreateWithSeat inserts the registration and increments the seat
	// counter atomically. The increment only matches while a seat is
	// free, so two concurrent registrations cannot both take the last
	// seat. Returns ErrNoSeatAvailable or ErrDuplicateRegistration.
	CreateWithSeat(ctx context.Context, reg *model.Registration) error
	// DeleteWithSeat removes a live registration and decrements the seat
	// counter atomically; the counter never goes below zero. Cancelled
	// rows no longer hold a seat and report gorm.ErrRecordNotFound.
	DeleteWithSeat(ctx context.Context, sessionID, personnelID string) error
	// ReviveWithSeat flips a still-cancelled registration back to INSCRIT
	// and re-takes a seat through the same conditional increment as a
	// fresh insert. Returns ErrNoSeatAvailable when the session refilled,
	// ErrDuplicateRegistration when a concurrent revive won the row.
	ReviveWithSeat(ctx context.Context, registrationID, sessionID string) error
	// UpdateAttendance writes attendance fields; seatDelta (+1, 0, -1)
	// adjusts the seat counter in the same transaction when the status
	// change alters seat occupancy.
	UpdateAttendance(ctx context.Context, reg *model.Registration, seatDelta int) error
	// ListForExport returns PRESENT registrations with validated hours on
	// COMPLETED sessions starting inside [start, end], ordered by session
	// date then registrant surname.
	ListForExport(ctx context.Context, start, end time.Time, centreID string) ([]model.Registration, error)
}

type registrationRepo struct {
	db *gorm.DB
}

// NewRegistrationRepo creates the GORM implementation.
func NewRegistrationRepo(db *gorm.DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

func (r *registrationRepo) GetBySessionAndPersonnel(ctx context.Context, sessionID, personnelID string) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.WithContext(ctx).
		Preload("Session").
		Preload("Personnel").
		Where("session_id = ? AND personnel_id = ?", sessionID, personnelID).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Registration, error) {
	var regs []model.Registration
	err := r.db.WithContext(ctx).
		Preload("Personnel").
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepo) CountLiveBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Where("session_id = ? AND status != ?", sessionID, model.RegistrationCancelled).
		Count(&count).Error
	return count, err
}

func (r *registrationRepo) CreateWithSeat(ctx context.Context, reg *model.Registration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional increment: matches only while a seat is free.
		result := tx.Model(&model.Session{}).
			Where("session_id = ? AND occupied_seats < max_seats", reg.SessionID).
			Update("occupied_seats", gorm.Expr("occupied_seats + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoSeatAvailable
		}

		if err := tx.Create(reg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Rolls back the increment above.
				return ErrDuplicateRegistration
			}
			return err
		}
		return nil
	})
}

func (r *registrationRepo) DeleteWithSeat(ctx context.Context, sessionID, personnelID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Only a live row still holds a seat. A row cancelled by a
		// concurrent attendance write already gave its seat back, so
		// deleting it here must not decrement a second time.
		result := tx.
			Where("session_id = ? AND personnel_id = ? AND status != ?",
				sessionID, personnelID, model.RegistrationCancelled).
			Delete(&model.Registration{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.Session{}).
			Where("session_id = ? AND occupied_seats > 0", sessionID).
			Update("occupied_seats", gorm.Expr("occupied_seats - 1")).Error
	})
}

func (r *registrationRepo) ReviveWithSeat(ctx context.Context, registrationID, sessionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Session{}).
			Where("session_id = ? AND occupied_seats < max_seats", sessionID).
			Update("occupied_seats", gorm.Expr("occupied_seats + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNoSeatAvailable
		}

		// Only a still-cancelled row may be revived; if a concurrent
		// request already flipped it, roll back the seat increment so
		// one registration never holds two seats.
		flip := tx.Model(&model.Registration{}).
			Where("registration_id = ? AND status = ?", registrationID, model.RegistrationCancelled).
			Updates(map[string]interface{}{
				"status":          model.RegistrationRegistered,
				"signature":       nil,
				"signed_at":       nil,
				"validated_hours": nil,
				"tta_amount":      nil,
			})
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return ErrDuplicateRegistration
		}
		return nil
	})
}

func (r *registrationRepo) UpdateAttendance(ctx context.Context, reg *model.Registration, seatDelta int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch {
		case seatDelta > 0:
			result := tx.Model(&model.Session{}).
				Where("session_id = ? AND occupied_seats < max_seats", reg.SessionID).
				Update("occupied_seats", gorm.Expr("occupied_seats + 1"))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrNoSeatAvailable
			}
		case seatDelta < 0:
			if err := tx.Model(&model.Session{}).
				Where("session_id = ? AND occupied_seats > 0", reg.SessionID).
				Update("occupied_seats", gorm.Expr("occupied_seats - 1")).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Registration{}).
			Where("registration_id = ?", reg.RegistrationID).
			Updates(map[string]interface{}{
				"status":          reg.Status,
				"signature":       reg.Signature,
				"signed_at":       reg.SignedAt,
				"validated_hours": reg.ValidatedHours,
				"tta_amount":      reg.TTAAmount,
			}).Error
	})
}

func (r *registrationRepo) ListForExport(ctx context.Context, start, end time.Time, centreID string) ([]model.Registration, error) {
	db := r.db.WithContext(ctx).
		Joins("JOIN sessions ON sessions.session_id = registrations.session_id").
		Joins("JOIN personnels ON personnels.personnel_id = registrations.personnel_id").
		Where("sessions.status = ?", model.SessionCompleted).
		Where("sessions.start_at >= ? AND sessions.start_at <= ?", start, end).
		Where("registrations.status = ?", model.RegistrationPresent).
		Where("registrations.validated_hours IS NOT NULL")
	if centreID != "" {
		db = db.Where("sessions.centre_id = ?", centreID)
	}

	var regs []model.Registration
	err := db.
		Preload("Personnel").
		Preload("Personnel.Centre").
		Preload("Session").
		Preload("Session.TrainingType", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Session.Instructor").
		Order("sessions.start_at ASC, personnels.last_name ASC").
		Find(&regs).Error
	return regs, err
}
