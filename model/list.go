package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility controls who may read a list.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityUnlisted:
		return true
	}
	return false
}

// List is an ordered, user-curated collection of album references.
type List struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	OwnerID     int64      `gorm:"index;not null" json:"ownerId"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Visibility  Visibility `gorm:"type:varchar(16);default:'public'" json:"visibility"`

	Items    []ListItem    `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Likes    []ListLike    `gorm:"constraint:OnDelete:CASCADE" json:"likes"`
	Comments []ListComment `gorm:"constraint:OnDelete:CASCADE" json:"comments"`
}

func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// CanView reports whether userID may read the list. Unlisted lists behave
// like public ones at access time; they are only filtered from listings.
func (l *List) CanView(userID int64) bool {
	switch l.Visibility {
	case VisibilityPrivate:
		return l.OwnerID == userID
	default:
		return true
	}
}

// CanEdit reports whether userID may mutate or delete the list.
func (l *List) CanEdit(userID int64) bool {
	return l.OwnerID == userID
}

// ListItem is one ranked entry in a list. Position carries the rank and is
// preserved on read and write.
type ListItem struct {
	ID      string `gorm:"type:char(36);primaryKey" json:"id"`
	ListID  string `gorm:"type:char(36);index;not null" json:"listId"`
	AlbumID string `gorm:"not null" json:"albumId"`
	Notes   string `json:"notes"`
	// Position is the zero-based rank within the list.
	Position int       `gorm:"not null;default:0" json:"position"`
	AddedAt  time.Time `json:"addedAt"`
}

func (i *ListItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.AddedAt.IsZero() {
		i.AddedAt = time.Now()
	}
	return nil
}

// ListLike records one user's like of one list. The (ListID, UserID) pair is
// unique; membership toggles.
type ListLike struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	ListID    string    `gorm:"type:char(36);uniqueIndex:uq_list_user;not null" json:"listId"`
	UserID    int64     `gorm:"uniqueIndex:uq_list_user;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (lk *ListLike) BeforeCreate(tx *gorm.DB) error {
	if lk.ID == "" {
		lk.ID = uuid.NewString()
	}
	return nil
}

// ListComment is an append-only comment on a list. The API surface offers no
// edit or delete.
type ListComment struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	ListID    string    `gorm:"type:char(36);index;not null" json:"listId"`
	AuthorID  int64     `gorm:"not null" json:"authorId"`
	Text      string    `gorm:"not null" json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *ListComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
