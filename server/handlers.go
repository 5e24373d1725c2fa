package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"soundscore/apperr"
	"soundscore/core/auth"
	"soundscore/core/catalog"
	"soundscore/core/list"
	"soundscore/core/rating"
	"soundscore/core/social"
	"soundscore/logger"
	"soundscore/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo repository.UserRepository
	ledger   *rating.Ledger
	lists    *list.Store
	social   *social.Service
	catalog  *catalog.Client
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	ledger *rating.Ledger,
	lists *list.Store,
	socialSvc *social.Service,
	catalogClient *catalog.Client,
) *APIHandler {
	return &APIHandler{
		userRepo: userRepo,
		ledger:   ledger,
		lists:    lists,
		social:   socialSvc,
		catalog:  catalogClient,
	}
}

// AuthMiddleware is a middleware function that checks for a valid JWT token.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		ctx = context.WithValue(ctx, "username", claims.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value("userID").(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUsernameFromContext extracts the username from the request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value("username").(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}

// catalogToken returns the caller-supplied catalog bearer token, if any.
// Metadata enrichment degrades to placeholders without one.
func catalogToken(r *http.Request) string {
	return r.Header.Get("X-Catalog-Token")
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

// respondError maps application errors onto HTTP statuses. Unknown errors
// are logged and reported as a plain 500.
func respondError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logger.Error("unhandled error", logger.ErrorField(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.Validation, apperr.SelfReference:
		status = http.StatusBadRequest
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Authorization:
		status = http.StatusForbidden
	case apperr.Conflict, apperr.InvalidState:
		status = http.StatusConflict
	case apperr.Internal:
		logger.Error("internal error", logger.ErrorField(appErr))
	}

	body := map[string]interface{}{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	respondJSON(w, status, body)
}
