package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/premidisfinal/premidis-fin/internal/notification"
	notificationerrors "github.com/premidisfinal/premidis-fin/internal/notification/errors"
	notificationMock "github.com/premidisfinal/premidis-fin/internal/notification/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (notification.Service, *notificationMock.MockRepository) {
	ctrl := gomock.NewController(t)
	repo := notificationMock.NewMockRepository(ctrl)
	return notification.NewService(repo), repo
}

func TestNotificationService_Notify(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc, repo := setupService(t)
		repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, n *notification.Notification) error {
				assert.Equal(t, userID, n.UserID)
				assert.Equal(t, "Leave request approved", n.Title)
				assert.False(t, n.IsRead)
				assert.NotEqual(t, uuid.Nil, n.ID)
				return nil
			})

		err := svc.Notify(ctx, userID.String(), " Leave request approved ", "Enjoy.")
		assert.NoError(t, err)
	})

	t.Run("invalid user id", func(t *testing.T) {
		svc, _ := setupService(t)

		err := svc.Notify(ctx, "nobody", "t", "m")
		assert.ErrorIs(t, err, notificationerrors.ErrInvalidUserID)
	})

	t.Run("empty content", func(t *testing.T) {
		svc, _ := setupService(t)

		err := svc.Notify(ctx, userID.String(), " ", "m")
		assert.ErrorIs(t, err, notificationerrors.ErrEmptyNotification)
	})
}

func TestNotificationService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)
	userID := uuid.NewString()
	created := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

	repo.EXPECT().
		ListForUser(ctx, userID, notification.ListFilter{Page: 1, PageSize: 20}).
		Return([]notification.Notification{{ID: uuid.New(), Title: "t", Message: "m", CreatedAt: created}}, int64(1), nil)
	repo.EXPECT().CountUnread(ctx, userID).Return(int64(1), nil)

	resp, total, err := svc.List(ctx, userID, notification.ListFilter{PageSize: 1000})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), resp.Unread)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "2025-01-06T08:00:00Z", resp.Items[0].CreatedAt)
}

func TestNotificationService_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	userID := uuid.NewString()
	id := uuid.NewString()

	t.Run("mark read of a foreign notification is not found", func(t *testing.T) {
		svc, repo := setupService(t)
		repo.EXPECT().MarkRead(ctx, id, userID).Return(gorm.ErrRecordNotFound)

		err := svc.MarkRead(ctx, userID, id)
		assert.ErrorIs(t, err, notificationerrors.ErrNotificationNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		svc, repo := setupService(t)
		repo.EXPECT().Delete(ctx, id, userID).Return(nil)

		assert.NoError(t, svc.Delete(ctx, userID, id))
	})

	t.Run("invalid id", func(t *testing.T) {
		svc, _ := setupService(t)

		assert.ErrorIs(t, svc.Delete(ctx, userID, "x"), notificationerrors.ErrInvalidNotificationID)
		assert.ErrorIs(t, svc.MarkRead(ctx, userID, "x"), notificationerrors.ErrInvalidNotificationID)
	})

	t.Run("mark all read", func(t *testing.T) {
		svc, repo := setupService(t)
		repo.EXPECT().MarkAllRead(ctx, userID).Return(int64(3), nil)

		n, err := svc.MarkAllRead(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}
