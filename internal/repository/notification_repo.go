package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/model"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	BatchCreate(ctx context.Context, ns []model.Notification) error
	ListByPersonnel(ctx context.Context, personnelID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, notificationID, personnelID string) error
}

type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo creates the GORM implementation.
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) BatchCreate(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ns).Error
}

func (r *notificationRepo) ListByPersonnel(ctx context.Context, personnelID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("personnel_id = ?", personnelID)
	if unreadOnly {
		db = db.Where("is_read = FALSE")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Notification
	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error
	return list, total, err
}

func (r *notificationRepo) MarkRead(ctx context.Context, notificationID, personnelID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("notification_id = ? AND personnel_id = ?", notificationID, personnelID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
