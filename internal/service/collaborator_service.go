package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/store"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/canchapp/canchapp/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type CollaboratorService struct {
	db     *sqlx.DB
	store  *store.CollaboratorStore
	courts *store.CourtStore
	users  *store.UserStore
	now    func() time.Time
}

func NewCollaboratorService(db *sqlx.DB, store *store.CollaboratorStore, courts *store.CourtStore, users *store.UserStore) *CollaboratorService {
	return &CollaboratorService{db: db, store: store, courts: courts, users: users, now: time.Now}
}

// CanManageCourt is true for the court's owner, admins and the court's collaborators.
func (s *CollaboratorService) CanManageCourt(ctx context.Context, u *users.User, court *booking.Court) (bool, error) {
	if u == nil {
		return false, nil
	}
	if u.IsAdmin() || court.OwnerID == u.ID {
		return true, nil
	}
	return s.store.IsCollaborator(ctx, court.ID, u.ID)
}

// managedCourt loads a court and checks the current user may manage it.
func (s *CollaboratorService) managedCourt(ctx context.Context, courtID uuid.UUID) (*booking.Court, *users.User, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	court, err := s.courts.GetCourt(ctx, courtID)
	if err != nil {
		return nil, nil, notFound("court", err)
	}
	ok, err := s.CanManageCourt(ctx, u, court)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrForbidden
	}
	return court, u, nil
}

// ownedCourt is stricter than managedCourt: collaborators are not allowed.
func (s *CollaboratorService) ownedCourt(ctx context.Context, courtID uuid.UUID) (*booking.Court, *users.User, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	court, err := s.courts.GetCourt(ctx, courtID)
	if err != nil {
		return nil, nil, notFound("court", err)
	}
	if court.OwnerID != u.ID && !u.IsAdmin() {
		return nil, nil, ErrForbidden
	}
	return court, u, nil
}

func (s *CollaboratorService) Add(ctx context.Context, courtID uuid.UUID, email string, role users.CollaboratorRole) (*users.Collaborator, error) {
	court, _, err := s.ownedCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = users.CollaboratorStaff
	}
	if role != users.CollaboratorStaff && role != users.CollaboratorManager {
		return nil, invalidf("unknown collaborator role %q", role)
	}

	member, err := s.users.GetUserByEmail(ctx, utils.Normalize(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no user with email %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if member.ID == court.OwnerID {
		return nil, invalidf("the owner already manages this court")
	}

	c := &users.Collaborator{
		ID:        uuid.New(),
		OwnerID:   court.OwnerID,
		CourtID:   court.ID,
		UserID:    member.ID,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, c); err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("%s already collaborates on %s", member.Email, court.Name)
		}
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}
	return c, nil
}

func (s *CollaboratorService) Remove(ctx context.Context, courtID, id uuid.UUID) error {
	if _, _, err := s.ownedCourt(ctx, courtID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, courtID, id); err != nil {
		return notFound("collaborator", err)
	}
	return nil
}

func (s *CollaboratorService) List(ctx context.Context, courtID uuid.UUID) ([]users.Collaborator, error) {
	if _, _, err := s.managedCourt(ctx, courtID); err != nil {
		return nil, err
	}
	return s.store.ListByCourt(ctx, courtID)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
