package store

import (
	"context"

	users "github.com/canchapp/canchapp/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	userColumns = `id, email, username, role, phone, city, avatar_url, provider, provider_id, password_hash, created_at`

	getUserQuery           = "SELECT " + userColumns + " FROM users WHERE id = ?"
	getUserByEmailQuery    = "SELECT " + userColumns + " FROM users WHERE email = ?"
	getUserByProviderQuery = `
        SELECT ` + userColumns + ` FROM users
        WHERE provider = ?
        AND provider_id = ?
    `
	createUserQuery = `
		INSERT INTO users (id, email, username, role, phone, city, avatar_url, provider, provider_id, password_hash, created_at) VALUES
		(:id, :email, :username, :role, :phone, :city, :avatar_url, :provider, :provider_id, :password_hash, :created_at)
	`
	updateUserNameAndAvatarQuery = `
		UPDATE users SET
		username = :username,
		avatar_url = :avatar_url
		WHERE id = :id
	`
	updateUserProfileQuery = `
		UPDATE users SET
		username = :username,
		phone = :phone,
		city = :city,
		avatar_url = :avatar_url
		WHERE id = :id
	`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUserByProvider(ctx context.Context, provider string, providerID string) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, getUserByProviderQuery, provider, providerID)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, getUserQuery, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, getUserByEmailQuery, email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetPublicUsers resolves the display data of several users at once.
func (s *UserStore) GetPublicUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]users.Public, error) {
	out := make(map[uuid.UUID]users.Public, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []users.Public
	if err := selectIn(ctx, s.db, &rows, "SELECT id, username, avatar_url FROM users WHERE id IN (?)", ids); err != nil {
		return nil, err
	}
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}

func (s *UserStore) ListUsers(ctx context.Context, limit, offset int) ([]users.User, error) {
	var list []users.User
	err := s.db.SelectContext(ctx, &list,
		"SELECT "+userColumns+" FROM users ORDER BY created_at ASC, email ASC LIMIT ? OFFSET ?", limit, offset)
	return list, err
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return err
}

func (s *UserStore) UpdateUserNameAndAvatar(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, updateUserNameAndAvatarQuery, user)
	return err
}

func (s *UserStore) UpdateProfile(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, updateUserProfileQuery, user)
	return err
}

func (s *UserStore) SetRole(ctx context.Context, id uuid.UUID, role users.Role) error {
	return execOne(ctx, s.db, "UPDATE users SET role = ? WHERE id = ?", role, id)
}

func (s *UserStore) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return execOne(ctx, s.db, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
}
