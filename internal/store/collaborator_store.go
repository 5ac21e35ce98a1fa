package store

import (
	"context"

	users "github.com/canchapp/canchapp/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CollaboratorStore struct {
	db *sqlx.DB
}

const collaboratorColumns = `id, owner_id, court_id, user_id, role, created_at`

func NewCollaboratorStore(db *sqlx.DB) *CollaboratorStore {
	return &CollaboratorStore{db: db}
}

func (s *CollaboratorStore) Create(ctx context.Context, c *users.Collaborator) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO collaborators (`+collaboratorColumns+`)
		VALUES (:id, :owner_id, :court_id, :user_id, :role, :created_at)`, c)
	return err
}

func (s *CollaboratorStore) Delete(ctx context.Context, courtID, id uuid.UUID) error {
	return execOne(ctx, s.db, "DELETE FROM collaborators WHERE id = ? AND court_id = ?", id, courtID)
}

func (s *CollaboratorStore) ListByCourt(ctx context.Context, courtID uuid.UUID) ([]users.Collaborator, error) {
	var list []users.Collaborator
	err := s.db.SelectContext(ctx, &list,
		"SELECT "+collaboratorColumns+" FROM collaborators WHERE court_id = ? ORDER BY created_at ASC", courtID)
	return list, err
}

// CourtIDsFor lists the courts userID collaborates on.
func (s *CollaboratorStore) CourtIDsFor(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, "SELECT court_id FROM collaborators WHERE user_id = ?", userID)
	return ids, err
}

func (s *CollaboratorStore) IsCollaborator(ctx context.Context, courtID, userID uuid.UUID) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM collaborators WHERE court_id = ? AND user_id = ?", courtID, userID)
	return n > 0, err
}
