package service

import (
	"context"
	"testing"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/cache"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/store"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	// every new connection would get its own empty memory database
	database.SetMaxOpenConns(1)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	t.Cleanup(func() { database.Close() })
	return database
}

// fixedNow is a Wednesday; tests book dates after it.
var fixedNow = time.Date(2030, 5, 8, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// recorder collects published events.
type recorder struct {
	keys     []string
	payloads []any
}

func (r *recorder) Publish(_ context.Context, key string, v any) error {
	r.keys = append(r.keys, key)
	r.payloads = append(r.payloads, v)
	return nil
}

type testApp struct {
	db            *sqlx.DB
	events        *recorder
	cache         *cache.Memory
	users         *UserService
	collaborators *CollaboratorService
	courts        *CourtService
	pricing       *PricingService
	reservations  *ReservationService
	analytics     *AnalyticsService
	tournaments   *TournamentService
	pickups       *PickupService
	community     *CommunityService
	notifications *NotificationService
	shop          *ShopService
	ads           *AdService
	imports       *ImportService
}

var _ events.Publisher = (*recorder)(nil)

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := setupTestDB(t)
	rec := &recorder{}
	mem := cache.NewMemory(time.Minute)

	userStore := store.NewUserStore(db)
	courtStore := store.NewCourtStore(db)
	collabStore := store.NewCollaboratorStore(db)
	pricingStore := store.NewPricingStore(db)
	reservationStore := store.NewReservationStore(db)
	communityStore := store.NewCommunityStore(db)

	app := &testApp{db: db, events: rec, cache: mem}
	app.users = NewUserService(db, userStore)
	app.users.now = clock
	app.collaborators = NewCollaboratorService(db, collabStore, courtStore, userStore)
	app.collaborators.now = clock
	app.courts = NewCourtService(db, courtStore, collabStore, app.collaborators, mem, rec)
	app.courts.now = clock
	app.pricing = NewPricingService(db, pricingStore, courtStore, app.collaborators)
	app.reservations = NewReservationService(db, reservationStore, courtStore, pricingStore, app.collaborators, rec, 10)
	app.reservations.now = clock
	app.analytics = NewAnalyticsService(courtStore, reservationStore)
	app.analytics.now = clock
	app.tournaments = NewTournamentService(db, store.NewTournamentStore(db), courtStore, rec)
	app.tournaments.now = clock
	app.pickups = NewPickupService(db, communityStore, userStore, rec)
	app.pickups.now = clock
	app.community = NewCommunityService(communityStore, userStore, rec)
	app.community.now = clock
	app.notifications = NewNotificationService(store.NewNotificationStore(db))
	app.shop = NewShopService(db, store.NewCommerceStore(db))
	app.shop.now = clock
	app.ads = NewAdService(store.NewAdStore(db))
	app.ads.now = clock
	app.imports = NewImportService(db, courtStore, userStore, mem)
	app.imports.now = clock
	return app
}

func (a *testApp) user(t *testing.T, name string, role users.Role) (*users.User, context.Context) {
	t.Helper()
	u := &users.User{
		ID:        uuid.New(),
		Email:     name + "@example.com",
		Username:  name,
		Role:      role,
		CreatedAt: fixedNow,
	}
	require.NoError(t, store.NewUserStore(a.db).CreateUser(context.Background(), u))
	return u, users.WithUser(context.Background(), u)
}

func (a *testApp) admin(t *testing.T) context.Context {
	t.Helper()
	_, ctx := a.user(t, "admin-"+uuid.NewString()[:8], users.RoleAdmin)
	return ctx
}

// approvedCourt creates a court through the service and approves it.
func (a *testApp) approvedCourt(t *testing.T, ownerCtx context.Context, in CourtInput) *booking.Court {
	t.Helper()
	c, err := a.courts.Create(ownerCtx, in)
	require.NoError(t, err)
	_, err = a.courts.Moderate(a.admin(t), c.ID, true, "")
	require.NoError(t, err)
	c.Status = booking.CourtApproved
	return c
}

func padelCourt(name string) CourtInput {
	return CourtInput{
		Name:         name,
		Sport:        "padel",
		Address:      "Bv. Oroño 500",
		City:         "Rosario",
		Latitude:     -32.9468,
		Longitude:    -60.6393,
		PricePerHour: 10000,
		OpenHour:     8,
		CloseHour:    23,
	}
}
