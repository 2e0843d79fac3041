package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

// NotificationService reads the append-only notification log.
type NotificationService struct {
	notifRepo repository.NotificationRepository
}

func NewNotificationService(notifRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	return s.notifRepo.ListForRecipient(ctx, recipientID, limit, offset)
}

// Count returns the total number of notifications for the recipient.
func (s *NotificationService) Count(ctx context.Context, recipientID uint) (int64, error) {
	return s.notifRepo.CountForRecipient(ctx, recipientID)
}
