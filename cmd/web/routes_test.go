package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/cache"
	"github.com/canchapp/canchapp/internal/config"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/service"
	"github.com/canchapp/canchapp/internal/store"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "sqlite3", driver)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	t.Cleanup(func() { database.Close() })
	return database
}

type testServer struct {
	app     *app
	handler http.Handler
}

func newTestServer(t *testing.T, devAutoLogin bool) *testServer {
	t.Helper()
	database := setupTestDB(t)
	cfg := config.Config{
		UploadDir:         t.TempDir(),
		MaxUploadMB:       1,
		BaseURL:           "http://localhost:8080",
		SessionLifetime:   time.Hour,
		DevAutoLogin:      devAutoLogin,
		JWTSecret:         "test-secret",
		JWTTTL:            time.Hour,
		SearchCacheTTL:    time.Minute,
		CommissionPercent: 10,
	}
	a := newApp(cfg, database, events.Discard{}, cache.NewMemory(time.Minute))
	return &testServer{app: a, handler: newRouter(a)}
}

// user creates an account with role and returns a bearer token for it.
func (s *testServer) user(t *testing.T, name string, role users.Role) (*users.User, string) {
	t.Helper()
	u := &users.User{ID: uuid.New(), Email: name + "@example.com", Username: name, Role: role, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.NewUserStore(s.app.db).CreateUser(context.Background(), u))
	signed, err := s.app.tokens.Issue(u)
	require.NoError(t, err)
	return u, signed
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAPI_Auth(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/register", "", service.RegisterInput{
		Email: "Ana@Example.com", Username: "ana", Password: "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tok := decodeBody[tokenResponse](t, w)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, 3600, tok.ExpiresIn)

	w = s.do(t, http.MethodGet, "/api/users/me", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeBody[users.User](t, w)
	assert.Equal(t, "ana@example.com", me.Email)

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "supersecret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_DevAutoLogin(t *testing.T) {
	s := newTestServer(t, true)

	r := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	r.RemoteAddr = "127.0.0.1:51000"
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.GuestUserID, decodeBody[users.User](t, w).ID)

	// httptest requests come from 192.0.2.1 by default
	w = s.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_CourtLifecycle(t *testing.T) {
	s := newTestServer(t, false)
	_, playerTok := s.user(t, "player", users.RoleUser)
	_, ownerTok := s.user(t, "owner", users.RoleOwner)
	_, adminTok := s.user(t, "admin", users.RoleAdmin)

	in := service.CourtInput{
		Name: "Cancha 1", Sport: "padel", City: "Rosario",
		Latitude: -32.9468, Longitude: -60.6393,
		PricePerHour: 10000, OpenHour: 8, CloseHour: 23,
	}

	w := s.do(t, http.MethodPost, "/api/courts", playerTok, in)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/courts", ownerTok, in)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	court := decodeBody[booking.Court](t, w)
	assert.Equal(t, booking.CourtPending, court.Status)

	w = s.do(t, http.MethodGet, "/api/courts?city=Rosario", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[[]booking.Court](t, w))

	w = s.do(t, http.MethodGet, "/api/courts/"+court.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/courts/"+court.ID.String()+"/moderate", ownerTok, map[string]any{"approve": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/admin/courts/"+court.ID.String()+"/moderate", adminTok, map[string]any{"approve": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/courts?city=Rosario&sort=price", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	courts := decodeBody[[]booking.Court](t, w)
	require.Len(t, courts, 1)
	assert.Equal(t, "Cancha 1", courts[0].Name)

	w = s.do(t, http.MethodGet, "/api/courts?lat=north", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/courts/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Reservations(t *testing.T) {
	s := newTestServer(t, false)
	_, ownerTok := s.user(t, "owner", users.RoleOwner)
	_, playerTok := s.user(t, "player", users.RoleUser)
	_, adminTok := s.user(t, "admin", users.RoleAdmin)

	w := s.do(t, http.MethodPost, "/api/courts", ownerTok, service.CourtInput{
		Name: "Cancha 2", Sport: "futbol5", City: "Rosario", PricePerHour: 20000, OpenHour: 9, CloseHour: 23,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	court := decodeBody[booking.Court](t, w)
	w = s.do(t, http.MethodPost, "/api/admin/courts/"+court.ID.String()+"/moderate", adminTok, map[string]any{"approve": true})
	require.Equal(t, http.StatusOK, w.Code)

	booking1 := service.ReservationInput{
		CourtID: court.ID, Date: "2099-06-01", StartHour: 18, EndHour: 20,
		PlayerName: "Juan", Phone: "341555000", PaymentMethod: booking.PaymentCash,
	}
	w = s.do(t, http.MethodPost, "/api/reservations", playerTok, booking1)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decodeBody[service.ReservationResult](t, w)
	assert.Equal(t, int64(40000), res.Quote.Total)

	overlapping := booking1
	overlapping.StartHour, overlapping.EndHour = 19, 21
	w = s.do(t, http.MethodPost, "/api/reservations", playerTok, overlapping)
	assert.Equal(t, http.StatusConflict, w.Code)

	missingPhone := booking1
	missingPhone.Phone = ""
	missingPhone.StartHour, missingPhone.EndHour = 10, 11
	w = s.do(t, http.MethodPost, "/api/reservations", playerTok, missingPhone)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"phone"`)

	w = s.do(t, http.MethodGet, "/api/reservations/mine", playerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]booking.Reservation](t, w), 1)

	w = s.do(t, http.MethodPost, "/api/reservations/"+res.Reservation.ID.String()+"/confirm", playerTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/reservations/"+res.Reservation.ID.String()+"/confirm", ownerTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, booking.ReservationConfirmed, decodeBody[booking.Reservation](t, w).Status)
}

func TestAPI_ImportTemplate(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/api/import/template", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "name,sport,description"))
}

func TestPages_RequireLogin(t *testing.T) {
	s := newTestServer(t, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	r = httptest.NewRequest(http.MethodGet, "/login", nil)
	w = httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/auth/guest")
}
