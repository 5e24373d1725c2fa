package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"soundscore/core/list"
	"soundscore/logger"
)

// CreateListHandler creates a new list owned by the caller.
func (h *APIHandler) CreateListHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var in list.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.lists.CreateList(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Info("list created",
		logger.String("listId", created.ID),
		logger.Int64("ownerId", userID),
	)
	respondJSON(w, http.StatusCreated, created)
}

// GetListHandler returns a single list with enriched items, subject to the
// visibility policy.
func (h *APIHandler) GetListHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, err := h.lists.GetList(r.Context(), userID, mux.Vars(r)["id"], catalogToken(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetListsHandler returns a user's lists. The owner parameter defaults to
// the caller; other owners only yield their public lists.
func (h *APIHandler) GetListsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ownerID := userID
	if owner := r.URL.Query().Get("owner"); owner != "" {
		ownerID, err = strconv.ParseInt(owner, 10, 64)
		if err != nil {
			http.Error(w, "Invalid owner ID", http.StatusBadRequest)
			return
		}
	}

	lists, err := h.lists.ListsByOwner(r.Context(), userID, ownerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"lists": lists})
}

// UpdateListHandler applies a partial update to a list the caller owns.
func (h *APIHandler) UpdateListHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var in list.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.lists.UpdateList(r.Context(), userID, mux.Vars(r)["id"], in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteListHandler deletes a list the caller owns.
func (h *APIHandler) DeleteListHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listID := mux.Vars(r)["id"]
	if err := h.lists.DeleteList(r.Context(), userID, listID); err != nil {
		respondError(w, err)
		return
	}

	logger.Info("list deleted",
		logger.String("listId", listID),
		logger.Int64("ownerId", userID),
	)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLikeHandler flips the caller's like on a list and returns the new
// count.
func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	liked, count, err := h.lists.ToggleLike(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"liked":     liked,
		"likeCount": count,
	})
}

// AddCommentRequest is the comment creation body.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// AddCommentHandler appends a comment to a list.
func (h *APIHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.lists.AddComment(r.Context(), userID, mux.Vars(r)["id"], req.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}
