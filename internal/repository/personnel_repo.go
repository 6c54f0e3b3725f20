package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
)

// PersonnelRepository is the read-mostly access this core needs to the
// personnel roster.
type PersonnelRepository interface {
	GetByID(ctx context.Context, id string) (*model.Personnel, error)
	GetByBadgeNumber(ctx context.Context, badge string) (*model.Personnel, error)
	ListActiveByCentre(ctx context.Context, centreID string) ([]model.Personnel, error)
}

type personnelRepo struct {
	db *gorm.DB
}

// NewPersonnelRepo creates the GORM implementation.
func NewPersonnelRepo(db *gorm.DB) PersonnelRepository {
	return &personnelRepo{db: db}
}

func (r *personnelRepo) GetByID(ctx context.Context, id string) (*model.Personnel, error) {
	var p model.Personnel
	err := r.db.WithContext(ctx).
		Preload("Centre").
		Where("personnel_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *personnelRepo) GetByBadgeNumber(ctx context.Context, badge string) (*model.Personnel, error) {
	var p model.Personnel
	err := r.db.WithContext(ctx).
		Preload("Centre").
		Where("badge_number = ?", badge).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *personnelRepo) ListActiveByCentre(ctx context.Context, centreID string) ([]model.Personnel, error) {
	var list []model.Personnel
	err := r.db.WithContext(ctx).
		Where("centre_id = ? AND status = ?", centreID, model.PersonnelActive).
		Order("last_name ASC").
		Find(&list).Error
	return list, err
}
