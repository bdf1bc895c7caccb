package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	notificationerrors "github.com/premidisfinal/premidis-fin/internal/notification/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	Notify(ctx context.Context, userID, title, message string) error
	List(ctx context.Context, userID string, filter ListFilter) (ListResponse, int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Notify(ctx context.Context, userID, title, message string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return notificationerrors.ErrInvalidUserID
	}
	title, message = strings.TrimSpace(title), strings.TrimSpace(message)
	if title == "" || message == "" {
		return notificationerrors.ErrEmptyNotification
	}

	n := &Notification{
		ID:      uuid.New(),
		UserID:  uid,
		Title:   title,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("create notification failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	s.logger.Debug("notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("user_id", userID),
	)
	return nil
}

func (s *service) List(ctx context.Context, userID string, filter ListFilter) (ListResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	items, total, err := s.repo.ListForUser(ctx, userID, filter)
	if err != nil {
		return ListResponse{}, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return ListResponse{}, 0, err
	}

	resp := ListResponse{Items: make([]NotificationResponse, len(items)), Unread: unread}
	for i, n := range items {
		resp.Items[i] = NotificationResponse{
			ID:        n.ID.String(),
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return resp, total, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notificationerrors.ErrInvalidNotificationID
	}
	return mapNotFound(s.repo.MarkRead(ctx, id, userID))
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notificationerrors.ErrInvalidNotificationID
	}
	return mapNotFound(s.repo.Delete(ctx, id, userID))
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notificationerrors.ErrNotificationNotFound
	}
	return err
}
