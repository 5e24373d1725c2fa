package model

import "time"

// Rating is one user's rating of one album. At most one Rating exists per
// (AlbumID, UserID) pair; a resubmission overwrites score, review, username
// and timestamp in place.
type Rating struct {
	ID      int64  `json:"id"`
	AlbumID string `json:"albumId"`
	UserID  int64  `json:"userId"`
	// Username is a display-name snapshot taken at write time. It is not
	// kept in sync with later profile renames.
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	Review    string    `json:"review"`
	WrittenAt time.Time `json:"writtenAt"`
}
