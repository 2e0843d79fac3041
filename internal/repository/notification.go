package repository

import (
	"context"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for the append-only
// notification log. Rows are only ever inserted and read, never updated.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListForRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error)
	CountForRecipient(ctx context.Context, recipientID uint) (int64, error)
	WithTx(tx *gorm.DB) NotificationRepository
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// WithTx returns a repository bound to the given transaction so a
// notification insert can commit or roll back with the write it records.
func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListForRecipient(
	ctx context.Context,
	recipientID uint,
	limit, offset int,
) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountForRecipient(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&count).Error
	return count, err
}
