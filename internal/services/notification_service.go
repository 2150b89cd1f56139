package services

import (
	"policytracker/internal/models"
	"policytracker/internal/repositories"
	"policytracker/pkg/apperrors"
	"policytracker/ws"

	"gorm.io/gorm"
)

type NotificationService interface {
	// Notify persists the notification and pushes it over any open
	// websocket connections for the user.
	Notify(db *gorm.DB, notification *models.Notification) error

	List(db *gorm.DB, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(db *gorm.DB, userID, id string) error
	MarkAllRead(db *gorm.DB, userID string) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	pushManager      *ws.Manager
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	pushManager *ws.Manager,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		pushManager:      pushManager,
	}
}

func (s *notificationService) Notify(db *gorm.DB, notification *models.Notification) error {
	if err := s.notificationRepo.Create(db, notification); err != nil {
		return apperrors.InternalError(err)
	}

	if s.pushManager != nil {
		s.pushManager.PushToUser(notification.UserID, ws.Event{
			Type: notification.Type,
			Data: notification,
		})
	}
	return nil
}

func (s *notificationService) List(db *gorm.DB, userID string, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.FindByUser(db, userID, unreadOnly)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(db *gorm.DB, userID, id string) error {
	err := s.notificationRepo.MarkRead(db, userID, id)
	if apperrors.Is(err, repositories.ErrNotificationNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return err
}

func (s *notificationService) MarkAllRead(db *gorm.DB, userID string) (int64, error) {
	return s.notificationRepo.MarkAllRead(db, userID)
}
