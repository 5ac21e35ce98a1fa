package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/canchapp/canchapp/internal/store"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/canchapp/canchapp/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// GuestUserID is the seeded account used by the guest login and DEV_AUTO_LOGIN.
var GuestUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
	now   func() time.Time
}

func NewUserService(db *sqlx.DB, store *store.UserStore) *UserService {
	return &UserService{db: db, store: store, now: time.Now}
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		name := displayName(gothUser)
		if lo.FromPtr(user.AvatarURL) != gothUser.AvatarURL || user.Username != name {
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			user.Username = name
			if err := s.store.UpdateUserNameAndAvatar(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to refresh provider profile: %w", err)
			}
		}
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		newUser := &users.User{
			ID:         uuid.New(),
			Email:      strings.ToLower(gothUser.Email),
			Username:   displayName(gothUser),
			Role:       users.RoleUser,
			Provider:   &gothUser.Provider,
			ProviderID: &gothUser.UserID,
			AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
			CreatedAt:  s.now().UTC(),
		}
		if err := s.store.CreateUser(ctx, newUser); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return newUser, nil
	}

	return nil, err
}

func displayName(g goth.User) string {
	if g.NickName != "" {
		return g.NickName
	}
	if g.Name != "" {
		return g.Name
	}
	return strings.Split(g.Email, "@")[0]
}

func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, GuestUserID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		guestUser := &users.User{
			ID:        GuestUserID,
			Email:     "guest@canchapp.local",
			Username:  "Guest User",
			Role:      users.RoleAdmin,
			CreatedAt: s.now().UTC(),
		}
		err := s.store.CreateUser(ctx, guestUser)
		return guestUser, err
	}
	return nil, err
}

type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*users.User, error) {
	email := utils.Normalize(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidf("email %q is not valid", in.Email)
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalidf("password must have at least %d characters", minPasswordLength)
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = strings.Split(email, "@")[0]
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, conflictf("email %s is already registered", email)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &users.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		Role:         users.RoleUser,
		PasswordHash: lo.ToPtr(string(hash)),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// Login checks an email/password pair. Unknown emails and wrong passwords look the same to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*users.User, error) {
	u, err := s.store.GetUserByEmail(ctx, utils.Normalize(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == nil {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*users.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return u, nil
}

func (s *UserService) Me(ctx context.Context) (*users.User, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, u.ID)
}

type ProfileInput struct {
	Username  *string `json:"username"`
	Phone     *string `json:"phone"`
	City      *string `json:"city"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateMe changes only the fields present in the input.
func (s *UserService) UpdateMe(ctx context.Context, in ProfileInput) (*users.User, error) {
	u, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, invalidf("username is required")
		}
		u.Username = name
	}
	if in.Phone != nil {
		u.Phone = utils.StringOrNil(*in.Phone)
	}
	if in.City != nil {
		u.City = utils.StringOrNil(*in.City)
	}
	if in.AvatarURL != nil {
		u.AvatarURL = utils.StringOrNil(*in.AvatarURL)
	}
	if err := s.store.UpdateProfile(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role users.Role) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	if !role.Valid() {
		return invalidf("unknown role %q", role)
	}
	if err := s.store.SetRole(ctx, id, role); err != nil {
		return notFound("user", err)
	}
	return nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]users.User, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListUsers(ctx, limit, offset)
}

// CreateAdmin is used by the CLI. An existing account with that email is promoted and its password replaced.
func (s *UserService) CreateAdmin(ctx context.Context, email, password string) (*users.User, error) {
	u, err := s.store.GetUserByEmail(ctx, utils.Normalize(email))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		u, err = s.Register(ctx, RegisterInput{Email: email, Password: password})
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if len(password) < minPasswordLength {
			return nil, invalidf("password must have at least %d characters", minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.store.SetPasswordHash(ctx, u.ID, string(hash)); err != nil {
			return nil, err
		}
	}

	if err := s.store.SetRole(ctx, u.ID, users.RoleAdmin); err != nil {
		return nil, err
	}
	u.Role = users.RoleAdmin
	return u, nil
}
