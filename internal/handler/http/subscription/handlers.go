// Package subscription manages web push subscriptions over HTTP.
package subscription

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/a-vollm/spotifyFollowerUpdates/internal/domain/entity"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/auth"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/handler/http/respond"
	"github.com/a-vollm/spotifyFollowerUpdates/internal/repository"
)

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		Auth   string `json:"auth"`
		P256DH string `json:"p256dh"`
	} `json:"keys"`
}

// SubscribeHandler registers a push subscription for the caller. Posting an
// endpoint that is already registered re-binds it to the caller.
type SubscribeHandler struct {
	Subs repository.SubscriptionRepository
}

func (h SubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("request body is invalid"))
		return
	}
	if req.Endpoint == "" || req.Keys.Auth == "" || req.Keys.P256DH == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("endpoint and keys are required"))
		return
	}

	sub := &entity.Subscription{
		UID:      uid,
		Endpoint: req.Endpoint,
		Auth:     req.Keys.Auth,
		P256DH:   req.Keys.P256DH,
	}
	if err := h.Subs.Create(r.Context(), sub); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("store subscription: %w", err))
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]int64{"id": sub.ID})
}

// ListHandler returns the caller's registered subscriptions.
type ListHandler struct {
	Subs repository.SubscriptionRepository
}

type subscriptionDTO struct {
	ID       int64  `json:"id"`
	Endpoint string `json:"endpoint"`
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := auth.UIDFromContext(r.Context())

	subs, err := h.Subs.ListByUser(r.Context(), uid)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("list subscriptions: %w", err))
		return
	}

	out := make([]subscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, subscriptionDTO{ID: sub.ID, Endpoint: sub.Endpoint})
	}
	respond.JSON(w, http.StatusOK, out)
}

// Register registers the subscription routes with the given mux.
func Register(mux *http.ServeMux, subs repository.SubscriptionRepository, sessions *auth.Sessions) {
	mux.Handle("POST /subscriptions", sessions.Authz(SubscribeHandler{Subs: subs}))
	mux.Handle("GET /subscriptions", sessions.Authz(ListHandler{Subs: subs}))
}
