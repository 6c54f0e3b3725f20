package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
)

// CentreRepository resolves centre references.
type CentreRepository interface {
	GetByID(ctx context.Context, id string) (*model.Centre, error)
	List(ctx context.Context) ([]model.Centre, error)
}

type centreRepo struct {
	db *gorm.DB
}

// NewCentreRepo creates the GORM implementation.
func NewCentreRepo(db *gorm.DB) CentreRepository {
	return &centreRepo{db: db}
}

func (r *centreRepo) GetByID(ctx context.Context, id string) (*model.Centre, error) {
	var c model.Centre
	err := r.db.WithContext(ctx).Where("centre_id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *centreRepo) List(ctx context.Context) ([]model.Centre, error) {
	var list []model.Centre
	err := r.db.WithContext(ctx).Order("code ASC").Find(&list).Error
	return list, err
}
