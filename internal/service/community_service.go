package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/canchapp/canchapp/internal/community"
	"github.com/canchapp/canchapp/internal/events"
	"github.com/canchapp/canchapp/internal/store"
	users "github.com/canchapp/canchapp/internal/user"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	maxMessageLength = 2000
	previewLength    = 80
)

type CommunityService struct {
	store  *store.CommunityStore
	users  *store.UserStore
	events events.Publisher
	now    func() time.Time
}

func NewCommunityService(store *store.CommunityStore, users *store.UserStore, publisher events.Publisher) *CommunityService {
	return &CommunityService{store: store, users: users, events: publisher, now: time.Now}
}

// otherUser resolves the target of a social action, which must exist and not be the caller.
func (s *CommunityService) otherUser(ctx context.Context, me *users.User, id uuid.UUID) (*users.User, error) {
	if id == me.ID {
		return nil, invalidf("you cannot do that with yourself")
	}
	other, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return other, nil
}

func (s *CommunityService) SendFriendRequest(ctx context.Context, addresseeID uuid.UUID) (*community.Friendship, error) {
	me, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.otherUser(ctx, me, addresseeID); err != nil {
		return nil, err
	}
	existing, err := s.store.GetFriendshipBetween(ctx, me.ID, addresseeID)
	if err == nil {
		if existing.Status == community.FriendshipAccepted {
			return nil, conflictf("you are already friends")
		}
		return nil, conflictf("a friend request is already pending")
	}
	if !isNoRows(err) {
		return nil, err
	}

	f := &community.Friendship{
		ID:          uuid.New(),
		RequesterID: me.ID,
		AddresseeID: addresseeID,
		Status:      community.FriendshipPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateFriendship(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	s.publish(ctx, events.RKFriendRequested, events.FriendRequested{
		FriendshipID:  f.ID,
		RequesterID:   me.ID,
		RequesterName: me.Username,
		AddresseeID:   addresseeID,
	})
	return f, nil
}

// AcceptFriendRequest is only allowed to the user who received the request.
func (s *CommunityService) AcceptFriendRequest(ctx context.Context, id uuid.UUID) (*community.Friendship, error) {
	me, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.store.GetFriendship(ctx, id)
	if err != nil {
		return nil, notFound("friend request", err)
	}
	if f.AddresseeID != me.ID {
		return nil, ErrForbidden
	}
	if f.Status == community.FriendshipAccepted {
		return nil, conflictf("friend request already accepted")
	}
	if err := s.store.AcceptFriendship(ctx, id); err != nil {
		return nil, notFound("friend request", err)
	}
	f.Status = community.FriendshipAccepted
	return f, nil
}

// RemoveFriend declines a pending request or ends a friendship. Either side may do it.
func (s *CommunityService) RemoveFriend(ctx context.Context, id uuid.UUID) error {
	me, err := currentUser(ctx)
	if err != nil {
		return err
	}
	f, err := s.store.GetFriendship(ctx, id)
	if err != nil {
		return notFound("friendship", err)
	}
	if f.RequesterID != me.ID && f.AddresseeID != me.ID {
		return ErrForbidden
	}
	if err := s.store.DeleteFriendship(ctx, id); err != nil {
		return notFound("friendship", err)
	}
	return nil
}

type Friend struct {
	Friendship community.Friendship `json:"friendship"`
	User       users.Public         `json:"user"`
	// Incoming marks a pending request the current user can accept.
	Incoming bool `json:"incoming"`
}

func (s *CommunityService) Friends(ctx context.Context) ([]Friend, error) {
	me, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListFriendships(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	public, err := s.users.GetPublicUsers(ctx, lo.Map(list, func(f community.Friendship, _ int) uuid.UUID { return f.Other(me.ID) }))
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(f community.Friendship, _ int) Friend {
		return Friend{
			Friendship: f,
			User:       public[f.Other(me.ID)],
			Incoming:   f.Status == community.FriendshipPending && f.AddresseeID == me.ID,
		}
	}), nil
}

func (s *CommunityService) SendMessage(ctx context.Context, recipientID uuid.UUID, body string) (*community.DirectMessage, error) {
	me, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalidf("message is empty")
	}
	if utf8.RuneCountInString(body) > maxMessageLength {
		return nil, invalidf("message is longer than %d characters", maxMessageLength)
	}
	if _, err := s.otherUser(ctx, me, recipientID); err != nil {
		return nil, err
	}

	m := &community.DirectMessage{
		ID:          uuid.New(),
		SenderID:    me.ID,
		RecipientID: recipientID,
		Body:        body,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	s.publish(ctx, events.RKMessageSent, events.MessageSent{
		MessageID:   m.ID,
		SenderID:    me.ID,
		SenderName:  me.Username,
		RecipientID: recipientID,
		Preview:     preview(body),
	})
	return m, nil
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewLength {
		return body
	}
	return string([]rune(body)[:previewLength]) + "..."
}

// Conversation returns the thread with another user, oldest first, and marks their messages read.
func (s *CommunityService) Conversation(ctx context.Context, otherID uuid.UUID) ([]community.DirectMessage, error) {
	me, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.store.Conversation(ctx, me.ID, otherID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.MarkConversationRead(ctx, me.ID, otherID); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *CommunityService) MarkRead(ctx context.Context, otherID uuid.UUID) (int64, error) {
	me, err := currentUser(ctx)
	if err != nil {
		return 0, err
	}
	return s.store.MarkConversationRead(ctx, me.ID, otherID)
}

// Inbox summarizes every conversation of the current user, most recent first.
func (s *CommunityService) Inbox(ctx context.Context) ([]community.Conversation, error) {
	me, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.MessagesOf(ctx, me.ID)
	if err != nil {
		return nil, err
	}

	var order []uuid.UUID
	byUser := map[uuid.UUID]*community.Conversation{}
	for _, m := range messages {
		other := m.SenderID
		if other == me.ID {
			other = m.RecipientID
		}
		c, ok := byUser[other]
		if !ok {
			// messages come newest first
			c = &community.Conversation{UserID: other, LastMessage: m}
			byUser[other] = c
			order = append(order, other)
		}
		if m.RecipientID == me.ID && !m.Read {
			c.Unread++
		}
	}

	public, err := s.users.GetPublicUsers(ctx, order)
	if err != nil {
		return nil, err
	}
	return lo.Map(order, func(id uuid.UUID, _ int) community.Conversation {
		c := *byUser[id]
		c.Username = public[id].Username
		return c
	}), nil
}

func (s *CommunityService) publish(ctx context.Context, key string, v any) {
	if err := s.events.Publish(ctx, key, v); err != nil {
		slog.Error("failed to publish event", "key", key, "error", err)
	}
}
