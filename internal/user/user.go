package users

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	Role         Role      `db:"role" json:"role"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	City         *string   `db:"city" json:"city,omitempty"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Provider     *string   `db:"provider" json:"provider,omitempty"`
	ProviderID   *string   `db:"provider_id" json:"-"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsOwner() bool {
	return u != nil && (u.Role == RoleOwner || u.Role == RoleAdmin)
}

// Public is the subset of a user shown to other users.
type Public struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url,omitempty"`
}

type CollaboratorRole string

const (
	CollaboratorManager CollaboratorRole = "manager"
	CollaboratorStaff   CollaboratorRole = "staff"
)

// Collaborator grants another user access to one of an owner's courts.
type Collaborator struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	OwnerID   uuid.UUID        `db:"owner_id" json:"owner_id"`
	CourtID   uuid.UUID        `db:"court_id" json:"court_id"`
	UserID    uuid.UUID        `db:"user_id" json:"user_id"`
	Role      CollaboratorRole `db:"role" json:"role"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// FromContext returns the authenticated user or nil.
func FromContext(ctx context.Context) *User {
	u, _ := ctx.Value(UserKey).(*User)
	return u
}
