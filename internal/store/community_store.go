package store

import (
	"context"
	"strings"
	"time"

	"github.com/canchapp/canchapp/internal/community"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CommunityStore struct {
	db *sqlx.DB
}

const (
	pickupColumns  = `id, organizer_id, court_id, sport, city, date, start_hour, level, max_players, description, status, created_at`
	friendColumns  = `id, requester_id, addressee_id, status, created_at`
	messageColumns = `id, sender_id, recipient_id, body, read, created_at`
)

func NewCommunityStore(db *sqlx.DB) *CommunityStore {
	return &CommunityStore{db: db}
}

func (s *CommunityStore) CreateMatch(ctx context.Context, tx *sqlx.Tx, m *community.PickupMatch) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO pickup_matches (`+pickupColumns+`)
		VALUES (:id, :organizer_id, :court_id, :sport, :city, :date, :start_hour, :level, :max_players, :description, :status, :created_at)`, m)
	return err
}

func (s *CommunityStore) GetMatch(ctx context.Context, id uuid.UUID) (*community.PickupMatch, error) {
	return getPickupMatch(ctx, s.db, id)
}

func (s *CommunityStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*community.PickupMatch, error) {
	return getPickupMatch(ctx, tx, id)
}

// getPickupMatch loads the match together with its player list.
func getPickupMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*community.PickupMatch, error) {
	var m community.PickupMatch
	if err := sqlx.GetContext(ctx, q, &m, "SELECT "+pickupColumns+" FROM pickup_matches WHERE id = ?", id); err != nil {
		return nil, err
	}
	players, err := matchPlayers(ctx, q, id)
	if err != nil {
		return nil, err
	}
	m.Players = players
	return &m, nil
}

func matchPlayers(ctx context.Context, q sqlx.QueryerContext, matchID uuid.UUID) ([]uuid.UUID, error) {
	players := []uuid.UUID{}
	err := sqlx.SelectContext(ctx, q, &players,
		"SELECT user_id FROM match_players WHERE match_id = ? ORDER BY joined_at ASC, user_id ASC", matchID)
	return players, err
}

// ListMatches returns matches that are not cancelled, soonest first.
func (s *CommunityStore) ListMatches(ctx context.Context, f community.MatchFilter) ([]community.PickupMatch, error) {
	where := []string{"status != ?"}
	args := []any{community.MatchCancelled}
	if f.Sport != "" {
		where = append(where, "LOWER(sport) = LOWER(?)")
		args = append(args, f.Sport)
	}
	if f.City != "" {
		where = append(where, "LOWER(city) = LOWER(?)")
		args = append(args, f.City)
	}
	if f.FromDate != "" {
		where = append(where, "date >= ?")
		args = append(args, f.FromDate)
	}
	query := "SELECT " + pickupColumns + " FROM pickup_matches WHERE " + strings.Join(where, " AND ") +
		" ORDER BY date ASC, start_hour ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	var matches []community.PickupMatch
	if err := s.db.SelectContext(ctx, &matches, query, args...); err != nil {
		return nil, err
	}
	for i := range matches {
		players, err := matchPlayers(ctx, s.db, matches[i].ID)
		if err != nil {
			return nil, err
		}
		matches[i].Players = players
	}
	return matches, nil
}

func (s *CommunityStore) AddPlayer(ctx context.Context, tx *sqlx.Tx, matchID, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "INSERT INTO match_players (match_id, user_id, joined_at) VALUES (?, ?, ?)",
		matchID, userID, time.Now().UTC())
	return err
}

func (s *CommunityStore) RemovePlayer(ctx context.Context, tx *sqlx.Tx, matchID, userID uuid.UUID) error {
	return execOne(ctx, tx, "DELETE FROM match_players WHERE match_id = ? AND user_id = ?", matchID, userID)
}

func (s *CommunityStore) SetMatchStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status community.MatchStatus) error {
	return execOne(ctx, tx, "UPDATE pickup_matches SET status = ? WHERE id = ?", status, id)
}

func (s *CommunityStore) CreateFriendship(ctx context.Context, f *community.Friendship) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO friendships (`+friendColumns+`)
		VALUES (:id, :requester_id, :addressee_id, :status, :created_at)`, f)
	return err
}

// GetFriendshipBetween finds the friendship of two users regardless of who asked.
func (s *CommunityStore) GetFriendshipBetween(ctx context.Context, a, b uuid.UUID) (*community.Friendship, error) {
	var f community.Friendship
	err := s.db.GetContext(ctx, &f, "SELECT "+friendColumns+` FROM friendships
		WHERE (requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)`, a, b, b, a)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *CommunityStore) GetFriendship(ctx context.Context, id uuid.UUID) (*community.Friendship, error) {
	var f community.Friendship
	if err := s.db.GetContext(ctx, &f, "SELECT "+friendColumns+" FROM friendships WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *CommunityStore) AcceptFriendship(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, s.db, "UPDATE friendships SET status = ? WHERE id = ?", community.FriendshipAccepted, id)
}

func (s *CommunityStore) DeleteFriendship(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, s.db, "DELETE FROM friendships WHERE id = ?", id)
}

// ListFriendships returns every friendship userID takes part in, pending ones included.
func (s *CommunityStore) ListFriendships(ctx context.Context, userID uuid.UUID) ([]community.Friendship, error) {
	var list []community.Friendship
	err := s.db.SelectContext(ctx, &list, "SELECT "+friendColumns+` FROM friendships
		WHERE requester_id = ? OR addressee_id = ? ORDER BY created_at DESC`, userID, userID)
	return list, err
}

func (s *CommunityStore) CreateMessage(ctx context.Context, m *community.DirectMessage) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO direct_messages (`+messageColumns+`)
		VALUES (:id, :sender_id, :recipient_id, :body, :read, :created_at)`, m)
	return err
}

// Conversation returns the messages exchanged by two users, oldest first.
func (s *CommunityStore) Conversation(ctx context.Context, a, b uuid.UUID) ([]community.DirectMessage, error) {
	var list []community.DirectMessage
	err := s.db.SelectContext(ctx, &list, "SELECT "+messageColumns+` FROM direct_messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY created_at ASC`, a, b, b, a)
	return list, err
}

// MessagesOf returns every message sent or received by userID, newest first.
func (s *CommunityStore) MessagesOf(ctx context.Context, userID uuid.UUID) ([]community.DirectMessage, error) {
	var list []community.DirectMessage
	err := s.db.SelectContext(ctx, &list, "SELECT "+messageColumns+` FROM direct_messages
		WHERE sender_id = ? OR recipient_id = ? ORDER BY created_at DESC`, userID, userID)
	return list, err
}

// MarkConversationRead marks as read what sender sent to recipient.
func (s *CommunityStore) MarkConversationRead(ctx context.Context, recipientID, senderID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE direct_messages SET read = 1 WHERE recipient_id = ? AND sender_id = ? AND read = 0",
		recipientID, senderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
