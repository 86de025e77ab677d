package ports

import (
	"context"

	"github.com/creatorhub/session-gateway/internal/core/domain"
)

// NotificationRepository persists the capped per-user notification feed.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) error

	// TrimToCap discards the oldest notifications beyond keep entries.
	TrimToCap(ctx context.Context, userID string, keep int) error
}

// PushNotificationInput is the payload for publishing a notification.
type PushNotificationInput struct {
	UserID string
	Kind   string
	Title  string
	Body   string
}

// NotificationFeed is a user's notification list plus its unread counter.
type NotificationFeed struct {
	Notifications []*domain.Notification
	UnreadCount   int64
}

type NotificationService interface {
	Push(ctx context.Context, in PushNotificationInput) (*domain.Notification, error)
	Feed(ctx context.Context, userID string) (*NotificationFeed, error)
	MarkAllRead(ctx context.Context, userID string) error
}
