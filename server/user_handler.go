package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"soundscore/logger"
)

// GetUserHandler returns a user's public profile.
func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to read user", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
