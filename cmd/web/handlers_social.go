package main

import (
	"net/http"

	"github.com/google/uuid"
)

func (a *app) friends(w http.ResponseWriter, r *http.Request) {
	list, err := a.community.Friends(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) sendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if !decode(w, r, &in) {
		return
	}
	f, err := a.community.SendFriendRequest(r.Context(), in.UserID)
	respond(w, r, http.StatusCreated, f, err)
}

func (a *app) acceptFriendRequest(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	f, err := a.community.AcceptFriendRequest(r.Context(), id)
	respond(w, r, http.StatusOK, f, err)
}

func (a *app) removeFriend(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	respond(w, r, 0, nil, a.community.RemoveFriend(r.Context(), id))
}

func (a *app) inbox(w http.ResponseWriter, r *http.Request) {
	list, err := a.community.Inbox(r.Context())
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) conversation(w http.ResponseWriter, r *http.Request) {
	other, err := idParam(r, "userID")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	list, err := a.community.Conversation(r.Context(), other)
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) sendMessage(w http.ResponseWriter, r *http.Request) {
	other, err := idParam(r, "userID")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	var in struct {
		Body string `json:"body"`
	}
	if !decode(w, r, &in) {
		return
	}
	m, err := a.community.SendMessage(r.Context(), other, in.Body)
	respond(w, r, http.StatusCreated, m, err)
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (a *app) markConversationRead(w http.ResponseWriter, r *http.Request) {
	other, err := idParam(r, "userID")
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	n, err := a.community.MarkRead(r.Context(), other)
	respond(w, r, http.StatusOK, countResponse{Count: n}, err)
}

func (a *app) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respond(w, r, 0, nil, err)
		return
	}
	list, err := a.notifications.List(r.Context(), r.URL.Query().Get("unread") == "true", limit)
	respond(w, r, http.StatusOK, list, err)
}

func (a *app) unreadNotifications(w http.ResponseWriter, r *http.Request) {
	n, err := a.notifications.UnreadCount(r.Context())
	respond(w, r, http.StatusOK, countResponse{Count: int64(n)}, err)
}

func (a *app) markNotificationRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	respond(w, r, 0, nil, a.notifications.MarkRead(r.Context(), id))
}

func (a *app) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := a.notifications.MarkAllRead(r.Context())
	respond(w, r, http.StatusOK, countResponse{Count: n}, err)
}
