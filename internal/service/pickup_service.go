package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/canchapp/canchapp/internal/booking"
	"github.com/canchapp/canchapp/internal/community"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/store"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/canchapp/canchapp/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

const maxPickupPlayers = 30

type PickupService struct {
	db     *sqlx.DB
	store  *store.CommunityStore
	users  *store.UserStore
	events events.Publisher
	now    func() time.Time
}

func NewPickupService(db *sqlx.DB, store *store.CommunityStore, users *store.UserStore, publisher events.Publisher) *PickupService {
	return &PickupService{db: db, store: store, users: users, events: publisher, now: time.Now}
}

type PickupInput struct {
	CourtID     *uuid.UUID `json:"court_id"`
	Sport       string     `json:"sport"`
	City        string     `json:"city"`
	Date        string     `json:"date"`
	StartHour   int        `json:"start_hour"`
	Level       string     `json:"level"`
	MaxPlayers  int        `json:"max_players"`
	Description string     `json:"description"`
}

type PickupDetail struct {
	Match   *community.PickupMatch `json:"match"`
	Players []users.Public         `json:"players"`
}

// Create opens a pickup match. The organizer is its first player.
func (s *PickupService) Create(ctx context.Context, in PickupInput) (*community.PickupMatch, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Sport) == "" {
		return nil, invalidf("sport is required")
	}
	if in.MaxPlayers < 2 || in.MaxPlayers > maxPickupPlayers {
		return nil, invalidf("max_players must be between 2 and %d", maxPickupPlayers)
	}
	if in.StartHour < 0 || in.StartHour > 23 {
		return nil, invalidf("start_hour must be within 0-23")
	}
	day, err := booking.ParseDate(in.Date, s.now())
	if err != nil {
		return nil, invalidf("%v", err)
	}
	if booking.FormatDate(day) < booking.FormatDate(s.now()) {
		return nil, invalidf("date %s is in the past", booking.FormatDate(day))
	}

	m := &community.PickupMatch{
		ID:          uuid.New(),
		OrganizerID: u.ID,
		CourtID:     in.CourtID,
		Sport:       utils.Normalize(in.Sport),
		City:        strings.TrimSpace(in.City),
		Date:        booking.FormatDate(day),
		StartHour:   in.StartHour,
		Level:       lo.Ternary(strings.TrimSpace(in.Level) == "", "any", strings.TrimSpace(in.Level)),
		MaxPlayers:  in.MaxPlayers,
		Description: strings.TrimSpace(in.Description),
		Status:      community.MatchOpen,
		CreatedAt:   s.now().UTC(),
		Players:     []uuid.UUID{u.ID},
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateMatch(ctx, tx, m); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	if err := s.store.AddPlayer(ctx, tx, m.ID, u.ID); err != nil {
		return nil, fmt.Errorf("failed to add organizer: %w", err)
	}
	return m, tx.Commit()
}

// List returns upcoming matches that are not cancelled. Full ones are included so players see them.
func (s *PickupService) List(ctx context.Context, f community.MatchFilter) ([]community.PickupMatch, error) {
	if f.FromDate == "" {
		f.FromDate = booking.FormatDate(s.now())
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	return s.store.ListMatches(ctx, f)
}

func (s *PickupService) Get(ctx context.Context, id uuid.UUID) (*PickupDetail, error) {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, notFound("match", err)
	}
	public, err := s.users.GetPublicUsers(ctx, m.Players)
	if err != nil {
		return nil, err
	}
	players := lo.FilterMap(m.Players, func(id uuid.UUID, _ int) (users.Public, bool) {
		p, ok := public[id]
		return p, ok
	})
	return &PickupDetail{Match: m, Players: players}, nil
}

// Join adds the current user. Cancelled and full matches are rejected, as is joining twice.
func (s *PickupService) Join(ctx context.Context, id uuid.UUID) (*community.PickupMatch, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := s.store.GetMatchTx(ctx, tx, id)
	if err != nil {
		return nil, notFound("match", err)
	}
	switch {
	case m.Status == community.MatchCancelled:
		return nil, conflictf("match was cancelled")
	case m.HasPlayer(u.ID):
		return nil, conflictf("you already joined this match")
	case len(m.Players) >= m.MaxPlayers:
		return nil, conflictf("match is full")
	}

	if err := s.store.AddPlayer(ctx, tx, m.ID, u.ID); err != nil {
		return nil, fmt.Errorf("failed to join match: %w", err)
	}
	m.Players = append(m.Players, u.ID)
	if err := s.syncStatus(ctx, tx, m); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := s.events.Publish(ctx, events.RKMatchJoined, events.MatchJoined{
		MatchID:     m.ID,
		OrganizerID: m.OrganizerID,
		PlayerID:    u.ID,
		PlayerName:  u.Username,
		Sport:       m.Sport,
		Date:        m.Date,
		Players:     len(m.Players),
		MaxPlayers:  m.MaxPlayers,
	}); err != nil {
		slog.Error("failed to publish match join", "match_id", m.ID, "error", err)
	}
	return m, nil
}

// Leave removes the current user and reopens a full match. Organizers cancel instead of leaving.
func (s *PickupService) Leave(ctx context.Context, id uuid.UUID) (*community.PickupMatch, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := s.store.GetMatchTx(ctx, tx, id)
	if err != nil {
		return nil, notFound("match", err)
	}
	if m.OrganizerID == u.ID {
		return nil, invalidf("the organizer cannot leave, cancel the match instead")
	}
	if m.Status == community.MatchCancelled {
		return nil, conflictf("match was cancelled")
	}
	if !m.HasPlayer(u.ID) {
		return nil, conflictf("you are not part of this match")
	}

	if err := s.store.RemovePlayer(ctx, tx, m.ID, u.ID); err != nil {
		return nil, err
	}
	m.Players = lo.Without(m.Players, u.ID)
	if err := s.syncStatus(ctx, tx, m); err != nil {
		return nil, err
	}
	return m, tx.Commit()
}

func (s *PickupService) Cancel(ctx context.Context, id uuid.UUID) (*community.PickupMatch, error) {
	u, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	m, err := s.store.GetMatchTx(ctx, tx, id)
	if err != nil {
		return nil, notFound("match", err)
	}
	if m.OrganizerID != u.ID && !u.IsAdmin() {
		return nil, ErrForbidden
	}
	if m.Status == community.MatchCancelled {
		return nil, conflictf("match is already cancelled")
	}
	if err := s.store.SetMatchStatus(ctx, tx, m.ID, community.MatchCancelled); err != nil {
		return nil, err
	}
	m.Status = community.MatchCancelled
	return m, tx.Commit()
}

func (s *PickupService) syncStatus(ctx context.Context, tx *sqlx.Tx, m *community.PickupMatch) error {
	status := m.StatusFor(len(m.Players))
	if status == m.Status {
		return nil
	}
	if err := s.store.SetMatchStatus(ctx, tx, m.ID, status); err != nil {
		return err
	}
	m.Status = status
	return nil
}
