package list

import (
	"context"
	"errors"
	"strings"
	"sync"

	"soundscore/apperr"
	"soundscore/core/catalog"
	"soundscore/logger"
	"soundscore/model"
	"soundscore/repository"
)

// MetadataSource supplies album metadata for read-time enrichment of list
// items.
type MetadataSource interface {
	GetAlbum(ctx context.Context, token, albumID string) (*catalog.Album, error)
}

// Store owns lists and the social state embedded in them.
type Store struct {
	lists   repository.ListRepository
	catalog MetadataSource
}

// NewStore creates a list store. catalog may be nil; items then carry
// placeholder metadata.
func NewStore(lists repository.ListRepository, catalog MetadataSource) *Store {
	return &Store{lists: lists, catalog: catalog}
}

// ItemInput is one album entry in a create or update request.
type ItemInput struct {
	AlbumID string `json:"albumId"`
	Notes   string `json:"notes"`
}

// CreateInput carries the fields for a new list.
type CreateInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Visibility  string      `json:"visibility"`
	Items       []ItemInput `json:"items"`
}

// UpdateInput carries a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Visibility  *string      `json:"visibility"`
	Items       *[]ItemInput `json:"items"`
}

// ItemView is a list item enriched with catalog metadata.
type ItemView struct {
	model.ListItem
	Album *catalog.Album `json:"album"`
}

// View is a list as returned to callers: the list plus enriched items and
// the like count.
type View struct {
	*model.List
	Items     []ItemView `json:"items"`
	LikeCount int        `json:"likeCount"`
}

// CreateList stores a new list owned by ownerID. Visibility defaults to
// public when unset.
func (s *Store) CreateList(ctx context.Context, ownerID int64, in CreateInput) (*model.List, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "is required"
	}

	visibility := model.Visibility(in.Visibility)
	if in.Visibility == "" {
		visibility = model.VisibilityPublic
	} else if !visibility.Valid() {
		fields["visibility"] = "must be public, private or unlisted"
	}

	for _, item := range in.Items {
		if strings.TrimSpace(item.AlbumID) == "" {
			fields["items"] = "albumId is required on every item"
			break
		}
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	list := &model.List{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Visibility:  visibility,
		Items:       buildItems(in.Items),
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create list", err)
	}
	return list, nil
}

func buildItems(in []ItemInput) []model.ListItem {
	items := make([]model.ListItem, len(in))
	for i, item := range in {
		items[i] = model.ListItem{
			AlbumID:  item.AlbumID,
			Notes:    item.Notes,
			Position: i,
		}
	}
	return items
}

// GetList returns the list when requesterID may view it. Items are enriched
// with catalog metadata; a failed lookup degrades that item to placeholder
// metadata.
func (s *Store) GetList(ctx context.Context, requesterID int64, listID, catalogToken string) (*View, error) {
	list, err := s.loadVisible(ctx, requesterID, listID)
	if err != nil {
		return nil, err
	}

	count, err := s.lists.CountLikes(ctx, listID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to count likes", err)
	}

	return &View{
		List:      list,
		Items:     s.enrichItems(ctx, catalogToken, list.Items),
		LikeCount: int(count),
	}, nil
}

// enrichItems resolves metadata for each item concurrently, preserving item
// order. Failures degrade per item, never the whole read.
func (s *Store) enrichItems(ctx context.Context, token string, items []model.ListItem) []ItemView {
	out := make([]ItemView, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		out[i] = ItemView{ListItem: item, Album: catalog.Placeholder(item.AlbumID)}
		if s.catalog == nil {
			continue
		}

		wg.Add(1)
		go func(i int, albumID string) {
			defer wg.Done()
			album, err := s.catalog.GetAlbum(ctx, token, albumID)
			if err != nil {
				logger.Warn("album metadata lookup failed",
					logger.String("albumId", albumID),
					logger.ErrorField(err),
				)
				return
			}
			out[i].Album = album
		}(i, item.AlbumID)
	}
	wg.Wait()
	return out
}

// UpdateList applies a partial update. Only the owner may update a list.
func (s *Store) UpdateList(ctx context.Context, requesterID int64, listID string, in UpdateInput) (*model.List, error) {
	list, err := s.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !list.CanEdit(requesterID) {
		return nil, apperr.New(apperr.Authorization, "only the owner may update this list")
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apperr.ValidationFields(map[string]string{"title": "is required"})
		}
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Visibility != nil {
		v := model.Visibility(*in.Visibility)
		if !v.Valid() {
			return nil, apperr.ValidationFields(map[string]string{"visibility": "must be public, private or unlisted"})
		}
		fields["visibility"] = string(v)
	}

	if len(fields) > 0 {
		if err := s.lists.UpdateFields(ctx, listID, fields); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to update list", err)
		}
	}

	if in.Items != nil {
		for _, item := range *in.Items {
			if strings.TrimSpace(item.AlbumID) == "" {
				return nil, apperr.ValidationFields(map[string]string{"items": "albumId is required on every item"})
			}
		}
		items := buildItems(*in.Items)
		for i := range items {
			items[i].ListID = listID
		}
		if err := s.lists.ReplaceItems(ctx, listID, items); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to replace list items", err)
		}
	}

	return s.load(ctx, listID)
}

// DeleteList removes a list. Only the owner may delete it.
func (s *Store) DeleteList(ctx context.Context, requesterID int64, listID string) error {
	list, err := s.load(ctx, listID)
	if err != nil {
		return err
	}
	if !list.CanEdit(requesterID) {
		return apperr.New(apperr.Authorization, "only the owner may delete this list")
	}
	if err := s.lists.Delete(ctx, listID); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete list", err)
	}
	return nil
}

// ToggleLike flips userID's like on the list and returns the resulting like
// count. The list must be viewable by the user.
func (s *Store) ToggleLike(ctx context.Context, userID int64, listID string) (liked bool, likeCount int, err error) {
	if _, err := s.loadVisible(ctx, userID, listID); err != nil {
		return false, 0, err
	}

	has, err := s.lists.HasLike(ctx, listID, userID)
	if err != nil {
		return false, 0, apperr.Wrap(apperr.Internal, "failed to read like state", err)
	}

	if has {
		err = s.lists.RemoveLike(ctx, listID, userID)
	} else {
		err = s.lists.AddLike(ctx, listID, userID)
	}
	if err != nil {
		return false, 0, apperr.Wrap(apperr.Internal, "failed to toggle like", err)
	}

	count, err := s.lists.CountLikes(ctx, listID)
	if err != nil {
		return false, 0, apperr.Wrap(apperr.Internal, "failed to count likes", err)
	}
	return !has, int(count), nil
}

// AddComment appends a comment to the list. Comments are append only; there
// is no edit or delete. The list must be viewable by the author.
func (s *Store) AddComment(ctx context.Context, authorID int64, listID, text string) (*model.ListComment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.ValidationFields(map[string]string{"text": "is required"})
	}

	if _, err := s.loadVisible(ctx, authorID, listID); err != nil {
		return nil, err
	}

	comment := &model.ListComment{
		ListID:   listID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.lists.AddComment(ctx, comment); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to add comment", err)
	}
	return comment, nil
}

// ListsByOwner returns ownerID's lists. When the requester is not the owner,
// private lists are filtered out. Unlisted lists are likewise hidden from
// the listing but stay reachable by direct ID.
func (s *Store) ListsByOwner(ctx context.Context, requesterID, ownerID int64) ([]model.List, error) {
	publicOnly := requesterID != ownerID
	lists, err := s.lists.ListByOwner(ctx, ownerID, publicOnly)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list by owner", err)
	}

	if publicOnly {
		visible := lists[:0]
		for _, l := range lists {
			if l.Visibility != model.VisibilityUnlisted {
				visible = append(visible, l)
			}
		}
		lists = visible
	}
	if lists == nil {
		lists = []model.List{}
	}
	return lists, nil
}

func (s *Store) load(ctx context.Context, listID string) (*model.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, repository.ErrListNotFound) {
			return nil, apperr.New(apperr.NotFound, "list not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to read list", err)
	}
	return list, nil
}

func (s *Store) loadVisible(ctx context.Context, requesterID int64, listID string) (*model.List, error) {
	list, err := s.load(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !list.CanView(requesterID) {
		return nil, apperr.New(apperr.Authorization, "you may not view this list")
	}
	return list, nil
}
