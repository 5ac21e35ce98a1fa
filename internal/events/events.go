package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Routing keys of the domain events.
const (
	RKReservationCreated   = "reservation.created"
	RKReservationCancelled = "reservation.cancelled"
	RKMatchJoined          = "match.joined"
	RKTournamentStarted    = "tournament.started"
	RKMessageSent          = "message.sent"
	RKFriendRequested      = "friend.requested"
	RKCourtReviewed        = "court.reviewed"
)

// Keys is every routing key the notification worker binds to.
var Keys = []string{
	RKReservationCreated,
	RKReservationCancelled,
	RKMatchJoined,
	RKTournamentStarted,
	RKMessageSent,
	RKFriendRequested,
	RKCourtReviewed,
}

type ReservationCreated struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	CourtID       uuid.UUID `json:"court_id"`
	CourtName     string    `json:"court_name"`
	OwnerID       uuid.UUID `json:"owner_id"`
	UserID        uuid.UUID `json:"user_id"`
	PlayerName    string    `json:"player_name"`
	Date          string    `json:"date"`
	StartHour     int       `json:"start_hour"`
	EndHour       int       `json:"end_hour"`
	Total         int64     `json:"total"`
}

type ReservationCancelled struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	CourtName     string    `json:"court_name"`
	OwnerID       uuid.UUID `json:"owner_id"`
	UserID        uuid.UUID `json:"user_id"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	Date          string    `json:"date"`
	StartHour     int       `json:"start_hour"`
	EndHour       int       `json:"end_hour"`
}

type MatchJoined struct {
	MatchID     uuid.UUID `json:"match_id"`
	OrganizerID uuid.UUID `json:"organizer_id"`
	PlayerID    uuid.UUID `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Sport       string    `json:"sport"`
	Date        string    `json:"date"`
	Players     int       `json:"players"`
	MaxPlayers  int       `json:"max_players"`
}

type TournamentStarted struct {
	TournamentID uuid.UUID   `json:"tournament_id"`
	Name         string      `json:"name"`
	CaptainIDs   []uuid.UUID `json:"captain_ids"`
}

type MessageSent struct {
	MessageID   uuid.UUID `json:"message_id"`
	SenderID    uuid.UUID `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Preview     string    `json:"preview"`
}

type FriendRequested struct {
	FriendshipID  uuid.UUID `json:"friendship_id"`
	RequesterID   uuid.UUID `json:"requester_id"`
	RequesterName string    `json:"requester_name"`
	AddresseeID   uuid.UUID `json:"addressee_id"`
}

type CourtReviewed struct {
	CourtID   uuid.UUID `json:"court_id"`
	CourtName string    `json:"court_name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Approved  bool      `json:"approved"`
	Reason    string    `json:"reason,omitempty"`
}

// ErrMalformed marks a payload that can never be processed; consumers drop it instead of requeueing.
var ErrMalformed = errors.New("malformed event payload")

func MustUnmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return t, nil
}
