package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/canchapp/canchapp/internal/community"
	"github.com/google/uuid"
)

// Notifier persists a notification for a user.
type Notifier interface {
	Notify(ctx context.Context, n *community.Notification) error
}

// NotificationHandler turns domain events into user notifications.
type NotificationHandler struct {
	notifier Notifier
	now      func() time.Time
}

func NewNotificationHandler(n Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: n, now: time.Now}
}

func (h *NotificationHandler) Handle(ctx context.Context, key string, body []byte) error {
	switch key {
	case RKReservationCreated:
		ev, err := MustUnmarshal[ReservationCreated](body)
		if err != nil {
			return err
		}
		when := fmt.Sprintf("%s %02d:00-%02d:00", ev.Date, ev.StartHour, ev.EndHour)
		if err := h.send(ctx, ev.UserID, key, "Reservation received",
			fmt.Sprintf("%s, %s", ev.CourtName, when), "/reservations/"+ev.ReservationID.String()); err != nil {
			return err
		}
		if ev.OwnerID == ev.UserID {
			return nil
		}
		return h.send(ctx, ev.OwnerID, key, "New reservation",
			fmt.Sprintf("%s booked %s, %s", ev.PlayerName, ev.CourtName, when), "/owner/calendar/"+ev.CourtID.String())

	case RKReservationCancelled:
		ev, err := MustUnmarshal[ReservationCancelled](body)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("%s, %s %02d:00-%02d:00", ev.CourtName, ev.Date, ev.StartHour, ev.EndHour)
		// whoever cancelled already knows
		for _, to := range []uuid.UUID{ev.UserID, ev.OwnerID} {
			if to == ev.CancelledBy {
				continue
			}
			if err := h.send(ctx, to, key, "Reservation cancelled", msg, "/reservations/"+ev.ReservationID.String()); err != nil {
				return err
			}
		}
		return nil

	case RKMatchJoined:
		ev, err := MustUnmarshal[MatchJoined](body)
		if err != nil {
			return err
		}
		return h.send(ctx, ev.OrganizerID, key, "New player",
			fmt.Sprintf("%s joined your %s match on %s (%d/%d)", ev.PlayerName, ev.Sport, ev.Date, ev.Players, ev.MaxPlayers),
			"/matches/"+ev.MatchID.String())

	case RKTournamentStarted:
		ev, err := MustUnmarshal[TournamentStarted](body)
		if err != nil {
			return err
		}
		for _, captain := range ev.CaptainIDs {
			if err := h.send(ctx, captain, key, "Tournament started",
				ev.Name+" has started, check your first match", "/tournaments/"+ev.TournamentID.String()); err != nil {
				return err
			}
		}
		return nil

	case RKMessageSent:
		ev, err := MustUnmarshal[MessageSent](body)
		if err != nil {
			return err
		}
		return h.send(ctx, ev.RecipientID, key, "Message from "+ev.SenderName, ev.Preview, "/messages/"+ev.SenderID.String())

	case RKFriendRequested:
		ev, err := MustUnmarshal[FriendRequested](body)
		if err != nil {
			return err
		}
		return h.send(ctx, ev.AddresseeID, key, "Friend request",
			ev.RequesterName+" wants to be your friend", "/friends")

	case RKCourtReviewed:
		ev, err := MustUnmarshal[CourtReviewed](body)
		if err != nil {
			return err
		}
		if ev.Approved {
			return h.send(ctx, ev.OwnerID, key, "Court approved", ev.CourtName+" is now listed", "/courts/"+ev.CourtID.String())
		}
		return h.send(ctx, ev.OwnerID, key, "Court rejected", fmt.Sprintf("%s: %s", ev.CourtName, ev.Reason), "/courts/"+ev.CourtID.String())

	default:
		slog.Info("skip unknown event", "key", key)
	}
	return nil
}

func (h *NotificationHandler) send(ctx context.Context, userID uuid.UUID, kind, title, body, link string) error {
	return h.notifier.Notify(ctx, &community.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Link:      link,
		CreatedAt: h.now().UTC(),
	})
}
