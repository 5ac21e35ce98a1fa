package main

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/canchapp/canchapp/internal/httputil"
	"github.com/canchapp/canchapp/internal/middleware"
	"github.com/canchapp/canchapp/internal/service"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/canchapp/canchapp/views"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(a.sessions.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(a.sessions, a.userRepo, a.tokens, a.cfg.DevAutoLogin))

	// Serve static files
	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.cfg.UploadDir))))

	a.authRoutes(r)
	a.pageRoutes(r)
	r.Route("/api", a.apiRoutes)

	return r
}

func (a *app) pageRoutes(r chi.Router) {
	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		providers := make([]string, 0, len(goth.GetProviders()))
		for name := range goth.GetProviders() {
			providers = append(providers, name)
		}
		sort.Strings(providers)
		views.Render(w, r, views.LoginPage(providers))
	})

	r.Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			httputil.BadRequest(w, "Invalid tournament ID", err)
			return
		}
		data, err := a.tournaments.GetTournamentData(r.Context(), id)
		if err != nil {
			if httputil.StatusOf(err) == http.StatusNotFound {
				httputil.NotFound(w, "Tournament not found", err)
				return
			}
			httputil.InternalServerError(w, "Failed to get tournament", err)
			return
		}
		views.Render(w, r, views.TournamentView(data))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			tournaments, err := a.tournaments.Mine(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to get tournaments", err)
				return
			}
			views.Render(w, r, views.Index(tournaments))
		})

		r.Get("/reservations/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := idParam(r, "id")
			if err != nil {
				httputil.BadRequest(w, "Invalid reservation ID", err)
				return
			}
			detail, err := a.reservations.Get(r.Context(), id)
			if err != nil {
				switch httputil.StatusOf(err) {
				case http.StatusNotFound, http.StatusForbidden:
					httputil.NotFound(w, "Reservation not found", err)
				default:
					httputil.InternalServerError(w, "Failed to get reservation", err)
				}
				return
			}
			views.Render(w, r, views.ReceiptView(detail))
		})
	})
}

func (a *app) authRoutes(r chi.Router) {
	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := a.users.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}

		a.startSession(r, user)
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		user, err := a.users.EnsureGuestUser(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to login as guest", err)
			return
		}

		a.startSession(r, user)
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var in service.RegisterInput
		if err := httputil.DecodeJSON(w, r, &in); err != nil {
			httputil.Error(w, r, err)
			return
		}
		user, err := a.users.Register(r.Context(), in)
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		a.startSession(r, user)
		a.writeToken(w, r, http.StatusCreated, user)
	})

	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := httputil.DecodeJSON(w, r, &in); err != nil {
			httputil.Error(w, r, err)
			return
		}
		user, err := a.users.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			httputil.Error(w, r, err)
			return
		}
		a.startSession(r, user)
		a.writeToken(w, r, http.StatusOK, user)
	})

	// /auth/token trades a browser session for a bearer token.
	r.With(middleware.RequireAuth).Post("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		a.writeToken(w, r, http.StatusOK, users.FromContext(r.Context()))
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := a.sessions.Destroy(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to logout", err)
			return
		}
		if r.Header.Get("HX-Request") != "" {
			w.Header().Set("HX-Redirect", "/login")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

func (a *app) startSession(r *http.Request, user *users.User) {
	// new session id on login
	if err := a.sessions.RenewToken(r.Context()); err != nil {
		slog.Warn("failed to renew session token", "error", err)
	}
	a.sessions.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
}

type tokenResponse struct {
	User        *users.User `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
}

func (a *app) writeToken(w http.ResponseWriter, r *http.Request, status int, user *users.User) {
	signed, err := a.tokens.Issue(user)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, status, tokenResponse{
		User:        user,
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(a.tokens.TTL().Seconds()),
	})
}

func (a *app) apiRoutes(r chi.Router) {
	// Public
	r.Get("/courts", a.searchCourts)
	r.Get("/courts/{id}", withID(a.getCourt))
	r.Get("/courts/{id}/availability", withID(a.availability))
	r.Post("/quote", a.quote)
	r.Get("/promotions/validate", a.validatePromotion)
	r.Get("/tournaments", a.listTournaments)
	r.Get("/tournaments/{id}", withID(a.getTournament))
	r.Get("/tournaments/{id}/standings", withID(a.standings))
	r.Get("/pickups", a.listPickups)
	r.Get("/pickups/{id}", withID(a.getPickup))
	r.Get("/ads", a.runningAds)
	r.Get("/import/template", a.exportTemplate)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/users/me", a.me)
		r.Patch("/users/me", a.updateMe)

		r.Get("/courts/mine", a.myCourts)
		r.Put("/courts/{id}", withID(a.updateCourt))
		r.Delete("/courts/{id}", withID(a.deleteCourt))
		r.Post("/courts/{id}/photos", withID(a.addPhoto))
		r.Delete("/courts/{id}/photos/{photoID}", withID(a.removePhoto))
		r.Get("/courts/{id}/collaborators", withID(a.listCollaborators))
		r.Post("/courts/{id}/collaborators", withID(a.addCollaborator))
		r.Delete("/courts/{id}/collaborators/{collaboratorID}", withID(a.removeCollaborator))
		r.Get("/courts/{id}/calendar", withID(a.calendar))
		r.Get("/courts/{id}/conflicts", withID(a.conflicts))
		r.Post("/courts/{id}/blocks", withID(a.block))
		r.Get("/courts/{id}/pricing-rules", withID(a.listRules))
		r.Post("/courts/{id}/pricing-rules", withID(a.createRule))
		r.Put("/courts/{id}/pricing-rules/{ruleID}", withID(a.updateRule))
		r.Delete("/courts/{id}/pricing-rules/{ruleID}", withID(a.deleteRule))

		r.Post("/reservations", a.createReservation)
		r.Get("/reservations/mine", a.myReservations)
		r.Get("/reservations/{id}", withID(a.getReservation))
		r.Post("/reservations/{id}/cancel", withID(a.cancelReservation))
		r.Post("/reservations/{id}/confirm", withID(a.confirmReservation))

		r.Post("/tournaments", a.createTournament)
		r.Get("/tournaments/mine", a.myTournaments)
		r.Post("/tournaments/{id}/entries", withID(a.registerTeam))
		r.Delete("/tournaments/{id}/entries/{entryID}", withID(a.removeEntry))
		r.Post("/tournaments/{id}/start", withID(a.startTournament))
		r.Post("/matches/{id}/result", withID(a.recordResult))

		r.Post("/pickups", a.createPickup)
		r.Post("/pickups/{id}/join", withID(a.joinPickup))
		r.Post("/pickups/{id}/leave", withID(a.leavePickup))
		r.Post("/pickups/{id}/cancel", withID(a.cancelPickup))

		r.Get("/friends", a.friends)
		r.Post("/friends", a.sendFriendRequest)
		r.Post("/friends/{id}/accept", withID(a.acceptFriendRequest))
		r.Delete("/friends/{id}", withID(a.removeFriend))

		r.Get("/messages", a.inbox)
		r.Get("/messages/{userID}", a.conversation)
		r.Post("/messages/{userID}", a.sendMessage)
		r.Post("/messages/{userID}/read", a.markConversationRead)

		r.Get("/notifications", a.listNotifications)
		r.Get("/notifications/unread-count", a.unreadNotifications)
		r.Post("/notifications/{id}/read", withID(a.markNotificationRead))
		r.Post("/notifications/read-all", a.markAllNotificationsRead)

		r.Post("/uploads", a.uploadFile)
		r.Post("/uploads/extract", a.extractUpload)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(users.RoleOwner))

			r.Post("/courts", a.createCourt)
			r.Post("/import/courts", a.importCourts)

			r.Get("/promotions", a.listPromotions)
			r.Post("/promotions", a.createPromotion)
			r.Put("/promotions/{id}", withID(a.updatePromotion))
			r.Delete("/promotions/{id}", withID(a.deletePromotion))

			r.Get("/analytics/dashboard", a.dashboard)

			r.Get("/shop/products", a.listProducts)
			r.Post("/shop/products", a.createProduct)
			r.Put("/shop/products/{id}", withID(a.updateProduct))
			r.Delete("/shop/products/{id}", withID(a.deleteProduct))
			r.Get("/shop/sales", a.listSales)
			r.Post("/shop/sales", a.recordSale)
			r.Get("/shop/summary", a.salesSummary)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole())

			r.Get("/courts/pending", a.pendingCourts)
			r.Post("/courts/{id}/moderate", withID(a.moderateCourt))
			r.Get("/commissions", a.commissions)
			r.Get("/users", a.listUsers)
			r.Put("/users/{id}/role", withID(a.setRole))
			r.Get("/ads", a.listAds)
			r.Post("/ads", a.createAd)
			r.Put("/ads/{id}", withID(a.updateAd))
			r.Delete("/ads/{id}", withID(a.deleteAd))
		})
	})
}
