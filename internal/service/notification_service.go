package service

import (
	"context"
	"fmt"

	"github.com/canchapp/canchapp/internal/community"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/store"
	"github.com/google/uuid"
)

type NotificationService struct {
	store *store.NotificationStore
}

var _ events.Notifier = (*NotificationService)(nil)

func NewNotificationService(store *store.NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// Notify stores a notification. It is called by the event worker, not by users.
func (s *NotificationService) Notify(ctx context.Context, n *community.Notification) error {
	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, unreadOnly bool, limit int) ([]community.Notification, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.List(ctx, u.ID, unreadOnly, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return 0, err
	}
	return s.store.UnreadCount(ctx, u.ID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	u, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if err := s.store.MarkRead(ctx, u.ID, id); err != nil {
		return notFound("notification", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return 0, err
	}
	return s.store.MarkAllRead(ctx, u.ID)
}
