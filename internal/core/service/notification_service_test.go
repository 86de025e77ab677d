package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/ports"
)

type stubNotificationRepo struct {
	mu sync.Mutex

	inserted []*domain.Notification
	trims    []int
	read     []string

	list      []*domain.Notification
	listErr   error
	unread    int64
	unreadErr error
	insertErr error
	trimErr   error
}

func (r *stubNotificationRepo) Insert(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, n)
	return nil
}

func (r *stubNotificationRepo) List(_ context.Context, _ string, _ int) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list, r.listErr
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, _ string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unread, r.unreadErr
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.read = append(r.read, userID)
	return nil
}

func (r *stubNotificationRepo) TrimToCap(_ context.Context, _ string, keep int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.trimErr != nil {
		return r.trimErr
	}
	r.trims = append(r.trims, keep)
	return nil
}

func TestPush_PersistsAndTrims(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, zerolog.Nop())

	n, err := svc.Push(context.Background(), ports.PushNotificationInput{
		UserID: "u1",
		Kind:   "campaign",
		Title:  "  New invite  ",
		Body:   "details",
	})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if n.Title != "New invite" {
		t.Fatalf("expected trimmed title, got %q", n.Title)
	}
	if n.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be stamped")
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.inserted))
	}
	if len(repo.trims) != 1 || repo.trims[0] != domain.NotificationCap {
		t.Fatalf("expected trim to cap %d, got %v", domain.NotificationCap, repo.trims)
	}
}

func TestPush_TrimFailureIsNonFatal(t *testing.T) {
	repo := &stubNotificationRepo{trimErr: errors.New("write conflict")}
	svc := NewNotificationService(repo, zerolog.Nop())

	if _, err := svc.Push(context.Background(), ports.PushNotificationInput{UserID: "u1", Kind: "system", Title: "t"}); err != nil {
		t.Fatalf("a failed trim must not fail the push: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatal("notification must still be persisted")
	}
}

func TestPush_InsertFailurePropagates(t *testing.T) {
	repo := &stubNotificationRepo{insertErr: errors.New("disk full")}
	svc := NewNotificationService(repo, zerolog.Nop())

	if _, err := svc.Push(context.Background(), ports.PushNotificationInput{UserID: "u1", Kind: "system", Title: "t"}); err == nil {
		t.Fatal("expected insert failure to propagate")
	}
}

func TestFeed_CombinesListAndUnreadCount(t *testing.T) {
	repo := &stubNotificationRepo{
		list: []*domain.Notification{
			{ID: "n1", Title: "a"},
			{ID: "n2", Title: "b"},
		},
		unread: 2,
	}
	svc := NewNotificationService(repo, zerolog.Nop())

	feed, err := svc.Feed(context.Background(), "u1")
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed.Notifications) != 2 || feed.UnreadCount != 2 {
		t.Fatalf("unexpected feed: %+v", feed)
	}
}

func TestFeed_EmptyFeedIsNotNil(t *testing.T) {
	svc := NewNotificationService(&stubNotificationRepo{}, zerolog.Nop())

	feed, err := svc.Feed(context.Background(), "u1")
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if feed.Notifications == nil {
		t.Fatal("an empty feed must serialize as [], not null")
	}
}

func TestFeed_ListFailurePropagates(t *testing.T) {
	repo := &stubNotificationRepo{listErr: errors.New("cursor timeout")}
	svc := NewNotificationService(repo, zerolog.Nop())

	if _, err := svc.Feed(context.Background(), "u1"); err == nil {
		t.Fatal("expected list failure to propagate")
	}
}

func TestMarkAllRead_DelegatesToRepository(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, zerolog.Nop())

	if err := svc.MarkAllRead(context.Background(), "u1"); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if len(repo.read) != 1 || repo.read[0] != "u1" {
		t.Fatalf("expected mark-read for u1, got %v", repo.read)
	}
}
