package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canchapp/canchapp/internal/service"
	"github.com/canchapp/canchapp/internal/token"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[uuid.UUID]*users.User

func (f fakeUsers) GetUser(_ context.Context, id uuid.UUID) (*users.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

// whoami echoes the username from the request context.
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u := users.FromContext(r.Context()); u != nil {
		w.Write([]byte(u.Username))
	}
})

func TestLoadAuthenticatedUser(t *testing.T) {
	player := &users.User{ID: uuid.New(), Username: "juan", Role: users.RoleUser}
	guest := &users.User{ID: service.GuestUserID, Username: "Guest User", Role: users.RoleAdmin}
	store := fakeUsers{player.ID: player, guest.ID: guest}
	tokens := token.NewIssuer("secret", time.Hour)

	signed, err := tokens.Issue(player)
	require.NoError(t, err)

	tests := []struct {
		name       string
		devLogin   bool
		remoteAddr string
		authHeader string
		want       string
	}{
		{name: "bearer token", remoteAddr: "10.0.0.5:4000", authHeader: "Bearer " + signed, want: "juan"},
		{name: "bad token is anonymous", remoteAddr: "10.0.0.5:4000", authHeader: "Bearer nope", want: ""},
		{name: "anonymous", remoteAddr: "10.0.0.5:4000", want: ""},
		{name: "dev login on localhost", devLogin: true, remoteAddr: "127.0.0.1:5000", want: "Guest User"},
		{name: "dev login ignores remote hosts", devLogin: true, remoteAddr: "10.0.0.5:4000", want: ""},
		{name: "token beats dev login", devLogin: true, remoteAddr: "[::1]:5000", authHeader: "Bearer " + signed, want: "juan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := LoadAuthenticatedUser(nil, store, tokens, tt.devLogin)(whoami)
			r := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(whoami)

	t.Run("api gets 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reservations/mine", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("page redirects to login", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("authenticated passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(users.WithUser(r.Context(), &users.User{Username: "ana"}))
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ana", w.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(users.RoleOwner)(whoami)

	tests := []struct {
		name string
		user *users.User
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"player", &users.User{Role: users.RoleUser}, http.StatusForbidden},
		{"owner", &users.User{Role: users.RoleOwner}, http.StatusOK},
		{"admin", &users.User{Role: users.RoleAdmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/courts/mine", nil)
			if tt.user != nil {
				r = r.WithContext(users.WithUser(r.Context(), tt.user))
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
