package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/studyhub/internal/entity"
	notifDto "anoa.com/studyhub/internal/modules/notification/dto"
	notifRepo "anoa.com/studyhub/internal/modules/notification/repository"
	"anoa.com/studyhub/pkg/apperror"
	commonDto "anoa.com/studyhub/pkg/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier is the write side other modules depend on.
type Notifier interface {
	Notify(ctx context.Context, notification *entity.Notification) error
}

type NotificationService interface {
	Notifier
	GetNotifications(ctx context.Context, userID uuid.UUID, filter notifDto.NotificationFilter) (*commonDto.Paginated[notifDto.NotificationResponse], error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	log         *zap.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log,
	}
}

// Channel is the redis pub/sub channel carrying userID's notifications.
func Channel(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

func (s *notificationService) Notify(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if s.redisClient == nil {
		return nil
	}

	payload, err := json.Marshal(ToResponse(notification))
	if err != nil {
		return nil
	}
	if err := s.redisClient.Publish(ctx, Channel(notification.UserID.String()), payload).Err(); err != nil {
		s.log.Warn("failed to publish notification",
			zap.String("user_id", notification.UserID.String()),
			zap.Error(err))
	}
	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, filter notifDto.NotificationFilter) (*commonDto.Paginated[notifDto.NotificationResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	notifications, total, err := s.repo.GetByUserID(ctx, userID, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, err
	}

	data := make([]notifDto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		data = append(data, ToResponse(&notifications[i]))
	}

	return &commonDto.Paginated[notifDto.NotificationResponse]{
		Data: data,
		Meta: commonDto.NewPaginationMeta(filter.Page, filter.Limit, total),
	}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	found, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func ToResponse(n *entity.Notification) notifDto.NotificationResponse {
	resp := notifDto.NotificationResponse{
		ID:         n.ID,
		Type:       n.Type,
		EntityID:   n.EntityID,
		EntityType: n.EntityType,
		Message:    n.Message,
		IsRead:     n.IsRead,
		CreatedAt:  commonDto.FormatTime(n.CreatedAt),
	}
	if n.Actor != nil {
		resp.Actor = &commonDto.AuthorResponse{ID: n.Actor.ID, Name: n.Actor.Name}
	}
	return resp
}
