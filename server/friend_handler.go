package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"soundscore/logger"
)

// SendFriendRequestRequest is the friend request creation body.
type SendFriendRequestRequest struct {
	RecipientID int64 `json:"recipientId"`
}

// SendFriendRequestHandler creates a pending friend request from the caller.
func (h *APIHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.social.SendRequest(r.Context(), userID, req.RecipientID)
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Info("friend request sent",
		logger.Int64("senderId", userID),
		logger.Int64("recipientId", req.RecipientID),
	)
	respondJSON(w, http.StatusCreated, created)
}

// AcceptFriendRequestHandler accepts a pending request addressed to the
// caller.
func (h *APIHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	req, err := h.social.AcceptRequest(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Info("friend request accepted",
		logger.String("requestId", req.ID),
		logger.Int64("recipientId", userID),
	)
	respondJSON(w, http.StatusOK, req)
}

// DeclineFriendRequestHandler declines a pending request addressed to the
// caller.
func (h *APIHandler) DeclineFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	req, err := h.social.DeclineRequest(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// SearchUsersHandler finds users by username so the caller can discover who
// to send a friend request to. Each hit is annotated with the caller's
// relation to it.
func (h *APIHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matches, err := h.social.SearchUsers(r.Context(), userID, r.URL.Query().Get("username"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": matches})
}

// GetFriendsHandler returns the caller's friends and pending incoming
// requests.
func (h *APIHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	overview, err := h.social.OverviewFor(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}
