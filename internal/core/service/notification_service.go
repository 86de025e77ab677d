package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/ports"
)

type notificationService struct {
	repo ports.NotificationRepository
	log  zerolog.Logger
}

// NewNotificationService returns a NotificationService backed by repo.
func NewNotificationService(repo ports.NotificationRepository, log zerolog.Logger) ports.NotificationService {
	return &notificationService{repo: repo, log: log}
}

// Push appends a notification to the user's feed and trims the feed back to
// the cap. A failed trim is non-fatal: the entry is already persisted and the
// next push trims again.
func (s *notificationService) Push(ctx context.Context, in ports.PushNotificationInput) (*domain.Notification, error) {
	n := &domain.Notification{
		UserID:    in.UserID,
		Kind:      in.Kind,
		Title:     strings.TrimSpace(in.Title),
		Body:      strings.TrimSpace(in.Body),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		s.log.Error().Err(err).Str("user_id", in.UserID).Msg("failed to insert notification")
		return nil, err
	}

	if err := s.repo.TrimToCap(ctx, in.UserID, domain.NotificationCap); err != nil {
		s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("failed to trim notification feed")
	}

	s.log.Info().Str("user_id", in.UserID).Str("kind", in.Kind).Msg("notification pushed")
	return n, nil
}

// Feed loads the feed and the unread counter concurrently.
func (s *notificationService) Feed(ctx context.Context, userID string) (*ports.NotificationFeed, error) {
	feed := &ports.NotificationFeed{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.repo.List(gctx, userID, domain.NotificationCap)
		if err != nil {
			return err
		}
		feed.Notifications = list
		return nil
	})
	g.Go(func() error {
		unread, err := s.repo.CountUnread(gctx, userID)
		if err != nil {
			return err
		}
		feed.UnreadCount = unread
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if feed.Notifications == nil {
		feed.Notifications = []*domain.Notification{}
	}
	return feed, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
