package store

import (
	"context"

	"github.com/canchapp/canchapp/internal/community"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type NotificationStore struct {
	db *sqlx.DB
}

const notificationColumns = `id, user_id, kind, title, body, link, read, created_at`

func NewNotificationStore(db *sqlx.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(ctx context.Context, n *community.Notification) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO notifications (`+notificationColumns+`)
		VALUES (:id, :user_id, :kind, :title, :body, :link, :read, :created_at)`, n)
	return err
}

func (s *NotificationStore) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]community.Notification, error) {
	query := "SELECT " + notificationColumns + " FROM notifications WHERE user_id = ?"
	if unreadOnly {
		query += " AND read = 0"
	}
	query += " ORDER BY created_at DESC LIMIT ?"

	var list []community.Notification
	err := s.db.SelectContext(ctx, &list, query, userID, limit)
	return list, err
}

func (s *NotificationStore) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0", userID)
	return n, err
}

func (s *NotificationStore) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return execOne(ctx, s.db, "UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?", id, userID)
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
