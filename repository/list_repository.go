package repository

import (
	"context"
	"errors"

	"soundscore/model"

	"gorm.io/gorm"
)

// ErrListNotFound is returned when a referenced list does not exist.
var ErrListNotFound = errors.New("list not found")

// ListRepository defines storage operations for lists and their embedded
// social state (items, likes, comments).
type ListRepository interface {
	// Create stores a new list together with its initial items.
	Create(ctx context.Context, list *model.List) error

	// GetByID returns a list with items (ordered by position), likes and
	// comments (ordered oldest first) loaded. Returns ErrListNotFound when
	// the list does not exist.
	GetByID(ctx context.Context, id string) (*model.List, error)

	// UpdateFields updates the given columns of a list.
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error

	// ReplaceItems swaps the list's items for the given ordered sequence.
	ReplaceItems(ctx context.Context, listID string, items []model.ListItem) error

	// Delete removes the list and its embedded state.
	Delete(ctx context.Context, id string) error

	// ListByOwner returns the owner's lists, newest first. When publicOnly
	// is set, private lists are filtered out (the listing-time filter; see
	// the visibility policy).
	ListByOwner(ctx context.Context, ownerID int64, publicOnly bool) ([]model.List, error)

	// HasLike reports whether userID currently likes the list.
	HasLike(ctx context.Context, listID string, userID int64) (bool, error)

	// AddLike and RemoveLike toggle membership in the like set.
	AddLike(ctx context.Context, listID string, userID int64) error
	RemoveLike(ctx context.Context, listID string, userID int64) error

	// CountLikes returns the current like count.
	CountLikes(ctx context.Context, listID string) (int64, error)

	// AddComment appends a comment.
	AddComment(ctx context.Context, comment *model.ListComment) error
}

// GormListRepository is the GORM-backed list repository.
type GormListRepository struct {
	db *gorm.DB
}

// NewGormListRepository creates a new GORM list repository.
func NewGormListRepository(db *gorm.DB) *GormListRepository {
	return &GormListRepository{db: db}
}

func (r *GormListRepository) Create(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *GormListRepository) GetByID(ctx context.Context, id string) (*model.List, error) {
	var list model.List
	err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Likes").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&list, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return &list, nil
}

func (r *GormListRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.List{}).Where("id = ?", id).Updates(fields).Error
}

func (r *GormListRepository) ReplaceItems(ctx context.Context, listID string, items []model.ListItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", listID).Delete(&model.ListItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = ""
			items[i].ListID = listID
			items[i].Position = i
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *GormListRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&model.ListItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&model.ListLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", id).Delete(&model.ListComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.List{}, "id = ?", id).Error
	})
}

func (r *GormListRepository) ListByOwner(ctx context.Context, ownerID int64, publicOnly bool) ([]model.List, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if publicOnly {
		q = q.Where("visibility <> ?", model.VisibilityPrivate)
	}

	var out []model.List
	if err := q.Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormListRepository) HasLike(ctx context.Context, listID string, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ListLike{}).
		Where("list_id = ? AND user_id = ?", listID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormListRepository) AddLike(ctx context.Context, listID string, userID int64) error {
	return r.db.WithContext(ctx).Create(&model.ListLike{ListID: listID, UserID: userID}).Error
}

func (r *GormListRepository) RemoveLike(ctx context.Context, listID string, userID int64) error {
	return r.db.WithContext(ctx).Where("list_id = ? AND user_id = ?", listID, userID).Delete(&model.ListLike{}).Error
}

func (r *GormListRepository) CountLikes(ctx context.Context, listID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ListLike{}).Where("list_id = ?", listID).Count(&count).Error
	return count, err
}

func (r *GormListRepository) AddComment(ctx context.Context, comment *model.ListComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}
