package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
)

// TrainingTypeRepository resolves catalogue references. Entries are soft
// deleted only; sessions keep pointing at superseded rows.
type TrainingTypeRepository interface {
	GetByID(ctx context.Context, id string) (*model.TrainingType, error)
	List(ctx context.Context) ([]model.TrainingType, error)
}

type trainingTypeRepo struct {
	db *gorm.DB
}

// NewTrainingTypeRepo creates the GORM implementation.
func NewTrainingTypeRepo(db *gorm.DB) TrainingTypeRepository {
	return &trainingTypeRepo{db: db}
}

func (r *trainingTypeRepo) GetByID(ctx context.Context, id string) (*model.TrainingType, error) {
	var t model.TrainingType
	// Unscoped: a session may reference a superseded (soft-deleted) entry.
	err := r.db.WithContext(ctx).Unscoped().
		Where("training_type_id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trainingTypeRepo) List(ctx context.Context) ([]model.TrainingType, error) {
	var list []model.TrainingType
	err := r.db.WithContext(ctx).Order("code ASC").Find(&list).Error
	return list, err
}
