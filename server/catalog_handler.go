package server

import (
	"net/http"
	"strconv"

	"soundscore/core/catalog"
	"soundscore/logger"
)

const defaultSearchLimit = 20

// AlbumSearchResult is one search hit merged with its rating aggregate.
// Unrated albums carry a 0/0 aggregate.
type AlbumSearchResult struct {
	catalog.Album
	MeanScore   float64 `json:"meanScore"`
	RatingCount int     `json:"ratingCount"`
}

// SearchAlbumsHandler proxies an album search to the catalog and merges the
// hits with locally stored aggregates.
func (h *APIHandler) SearchAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	albums, err := h.catalog.SearchAlbums(r.Context(), catalogToken(r), query, limit)
	if err != nil {
		logger.Error("album search failed",
			logger.String("query", query),
			logger.ErrorField(err),
		)
		http.Error(w, "Album search failed", http.StatusBadGateway)
		return
	}

	ids := make([]string, len(albums))
	for i, a := range albums {
		ids[i] = a.ID
	}
	aggs, err := h.ledger.AggregatesFor(r.Context(), ids)
	if err != nil {
		respondError(w, err)
		return
	}

	results := make([]AlbumSearchResult, len(albums))
	for i, a := range albums {
		results[i] = AlbumSearchResult{Album: a}
		if agg, ok := aggs[a.ID]; ok {
			results[i].MeanScore = agg.MeanScore
			results[i].RatingCount = agg.RatingCount
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"albums": results})
}
