package model

import "time"

// AlbumAggregate is the derived per-album rating summary. It is recomputed
// from a full scan of the album's ratings on every rating write, never
// patched incrementally, so it cannot drift permanently. Clients never write
// it directly, and it is never deleted once created.
type AlbumAggregate struct {
	AlbumID     string    `json:"albumId"`
	MeanScore   float64   `json:"meanScore"`
	RatingCount int       `json:"ratingCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
