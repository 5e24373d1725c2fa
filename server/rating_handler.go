package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"soundscore/logger"
)

// SubmitRatingRequest is the rating submission body.
type SubmitRatingRequest struct {
	AlbumID string `json:"albumId"`
	Score   int    `json:"score"`
	Review  string `json:"review"`
}

// SubmitRatingHandler creates or overwrites the caller's rating for an album
// and returns the fresh aggregate alongside it.
func (h *APIHandler) SubmitRatingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	username, err := GetUsernameFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.ledger.SubmitRating(r.Context(), req.AlbumID, userID, username, req.Score, req.Review)
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Info("rating submitted",
		logger.String("albumId", req.AlbumID),
		logger.Int64("userId", userID),
		logger.Int("score", req.Score),
	)
	respondJSON(w, http.StatusOK, result)
}

// GetAlbumRatingsHandler returns an album's ratings plus its aggregate.
func (h *APIHandler) GetAlbumRatingsHandler(w http.ResponseWriter, r *http.Request) {
	albumID := mux.Vars(r)["albumId"]

	result, err := h.ledger.RatingsForAlbum(r.Context(), albumID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetUserRatingsHandler returns a user's ratings enriched with album
// metadata.
func (h *APIHandler) GetUserRatingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ratings, err := h.ledger.RatingsForUser(r.Context(), userID, catalogToken(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"ratings": ratings})
}
