package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/canchapp/canchapp/internal/cache"
	"github.com/canchapp/canchapp/internal/config"
	"github.com/canchapp/canchapp/internal/db"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/service"
	"github.com/canchapp/canchapp/internal/store"
	"github.com/canchapp/canchapp/internal/token"
	"github.com/jmoiron/sqlx"
)

// app holds every service the handlers and commands need.
type app struct {
	cfg      config.Config
	db       *sqlx.DB
	sessions *scs.SessionManager
	tokens   *token.Issuer
	userRepo *store.UserStore

	users         *service.UserService
	collaborators *service.CollaboratorService
	courts        *service.CourtService
	pricing       *service.PricingService
	reservations  *service.ReservationService
	analytics     *service.AnalyticsService
	tournaments   *service.TournamentService
	pickups       *service.PickupService
	community     *service.CommunityService
	notifications *service.NotificationService
	shop          *service.ShopService
	ads           *service.AdService
	imports       *service.ImportService
	uploads       *service.UploadService

	closers []io.Closer
}

func newApp(cfg config.Config, database *sqlx.DB, publisher events.Publisher, searchCache cache.SearchCache) *app {
	userStore := store.NewUserStore(database)
	courtStore := store.NewCourtStore(database)
	collabStore := store.NewCollaboratorStore(database)
	pricingStore := store.NewPricingStore(database)
	reservationStore := store.NewReservationStore(database)
	communityStore := store.NewCommunityStore(database)

	sessions := scs.New()
	sessions.Lifetime = cfg.SessionLifetime
	sessions.Store = sqlite3store.New(database.DB)

	a := &app{
		cfg:      cfg,
		db:       database,
		sessions: sessions,
		tokens:   token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL),
		userRepo: userStore,
	}
	a.users = service.NewUserService(database, userStore)
	a.collaborators = service.NewCollaboratorService(database, collabStore, courtStore, userStore)
	a.courts = service.NewCourtService(database, courtStore, collabStore, a.collaborators, searchCache, publisher)
	a.pricing = service.NewPricingService(database, pricingStore, courtStore, a.collaborators)
	a.reservations = service.NewReservationService(database, reservationStore, courtStore, pricingStore,
		a.collaborators, publisher, cfg.CommissionPercent)
	a.analytics = service.NewAnalyticsService(courtStore, reservationStore)
	a.tournaments = service.NewTournamentService(database, store.NewTournamentStore(database), courtStore, publisher)
	a.pickups = service.NewPickupService(database, communityStore, userStore, publisher)
	a.community = service.NewCommunityService(communityStore, userStore, publisher)
	a.notifications = service.NewNotificationService(store.NewNotificationStore(database))
	a.shop = service.NewShopService(database, store.NewCommerceStore(database))
	a.ads = service.NewAdService(store.NewAdStore(database))
	a.imports = service.NewImportService(database, courtStore, userStore, searchCache)
	a.uploads = service.NewUploadService(cfg.UploadDir, cfg.BaseURL, cfg.MaxUploadMB<<20)
	return a
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Println("close:", err)
		}
	}
}

// openDB connects and migrates the database.
func openDB(cfg config.Config) (*sqlx.DB, error) {
	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(database.DB, cfg.MigrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return database, nil
}

// newPublisher uses RabbitMQ when configured. Otherwise events are handled in-process,
// so notifications still get written without a broker.
func newPublisher(cfg config.Config, notifier events.Notifier) (events.Publisher, io.Closer, error) {
	if cfg.RabbitURL != "" {
		p, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Publishing events to RabbitMQ exchange", cfg.RabbitExchange)
		return p, p, nil
	}
	d := events.NewDispatcher()
	d.Subscribe(events.NewNotificationHandler(notifier).Handle)
	return d, nil, nil
}

func newSearchCache(ctx context.Context, cfg config.Config) (cache.SearchCache, io.Closer, error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.SearchCacheTTL), nil, nil
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.SearchCacheTTL)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Println("Search cache backed by Redis at", cfg.RedisAddr)
	return c, c, nil
}

// bootstrap builds the full application: database, cache, publisher and services.
func bootstrap(ctx context.Context, cfg config.Config) (*app, error) {
	database, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	closers := []io.Closer{database}
	fail := func(err error) (*app, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
		return nil, err
	}

	searchCache, cacheCloser, err := newSearchCache(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	if cacheCloser != nil {
		closers = append(closers, cacheCloser)
	}

	notifications := service.NewNotificationService(store.NewNotificationStore(database))
	publisher, pubCloser, err := newPublisher(cfg, notifications)
	if err != nil {
		return fail(err)
	}
	if pubCloser != nil {
		closers = append(closers, pubCloser)
	}

	a := newApp(cfg, database, publisher, searchCache)
	a.closers = closers
	return a, nil
}
