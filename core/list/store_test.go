package list

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"soundscore/apperr"
	"soundscore/core/catalog"
	"soundscore/model"
	"soundscore/repository"
)

type fakeListRepo struct {
	nextID   int
	lists    map[string]*model.List
	likes    map[string]map[int64]bool
	comments map[string][]model.ListComment
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{
		nextID:   1,
		lists:    make(map[string]*model.List),
		likes:    make(map[string]map[int64]bool),
		comments: make(map[string][]model.ListComment),
	}
}

func (f *fakeListRepo) Create(_ context.Context, list *model.List) error {
	if list.ID == "" {
		list.ID = fmt.Sprintf("list-%d", f.nextID)
		f.nextID++
	}
	for i := range list.Items {
		list.Items[i].ListID = list.ID
	}
	cp := *list
	f.lists[list.ID] = &cp
	return nil
}

func (f *fakeListRepo) GetByID(_ context.Context, id string) (*model.List, error) {
	l, ok := f.lists[id]
	if !ok {
		return nil, repository.ErrListNotFound
	}
	cp := *l
	cp.Comments = append([]model.ListComment(nil), f.comments[id]...)
	return &cp, nil
}

func (f *fakeListRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	l, ok := f.lists[id]
	if !ok {
		return repository.ErrListNotFound
	}
	if v, ok := fields["title"]; ok {
		l.Title = v.(string)
	}
	if v, ok := fields["description"]; ok {
		l.Description = v.(string)
	}
	if v, ok := fields["visibility"]; ok {
		l.Visibility = model.Visibility(v.(string))
	}
	return nil
}

func (f *fakeListRepo) ReplaceItems(_ context.Context, listID string, items []model.ListItem) error {
	l, ok := f.lists[listID]
	if !ok {
		return repository.ErrListNotFound
	}
	l.Items = append([]model.ListItem(nil), items...)
	return nil
}

func (f *fakeListRepo) Delete(_ context.Context, id string) error {
	delete(f.lists, id)
	delete(f.likes, id)
	delete(f.comments, id)
	return nil
}

func (f *fakeListRepo) ListByOwner(_ context.Context, ownerID int64, publicOnly bool) ([]model.List, error) {
	var out []model.List
	for _, l := range f.lists {
		if l.OwnerID != ownerID {
			continue
		}
		if publicOnly && l.Visibility == model.VisibilityPrivate {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeListRepo) HasLike(_ context.Context, listID string, userID int64) (bool, error) {
	return f.likes[listID][userID], nil
}

func (f *fakeListRepo) AddLike(_ context.Context, listID string, userID int64) error {
	if f.likes[listID] == nil {
		f.likes[listID] = make(map[int64]bool)
	}
	f.likes[listID][userID] = true
	return nil
}

func (f *fakeListRepo) RemoveLike(_ context.Context, listID string, userID int64) error {
	delete(f.likes[listID], userID)
	return nil
}

func (f *fakeListRepo) CountLikes(_ context.Context, listID string) (int64, error) {
	return int64(len(f.likes[listID])), nil
}

func (f *fakeListRepo) AddComment(_ context.Context, comment *model.ListComment) error {
	comment.ID = fmt.Sprintf("comment-%d", f.nextID)
	f.nextID++
	f.comments[comment.ListID] = append(f.comments[comment.ListID], *comment)
	return nil
}

type fakeMetadata struct {
	albums map[string]*catalog.Album
}

func (f *fakeMetadata) GetAlbum(_ context.Context, _ string, albumID string) (*catalog.Album, error) {
	a, ok := f.albums[albumID]
	if !ok {
		return nil, errors.New("album not found")
	}
	return a, nil
}

func mustCreate(t *testing.T, s *Store, ownerID int64, visibility string) *model.List {
	t.Helper()
	l, err := s.CreateList(context.Background(), ownerID, CreateInput{
		Title:      "desert island",
		Visibility: visibility,
		Items:      []ItemInput{{AlbumID: "alb1", Notes: "keeper"}},
	})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	return l
}

func TestCreateListValidation(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)
	ctx := context.Background()

	if _, err := s.CreateList(ctx, 1, CreateInput{Title: ""}); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("expected validation error for missing title, got %v", err)
	}
	if _, err := s.CreateList(ctx, 1, CreateInput{Title: "x", Visibility: "friends"}); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("expected validation error for bad visibility, got %v", err)
	}
	if _, err := s.CreateList(ctx, 1, CreateInput{Title: "x", Items: []ItemInput{{AlbumID: ""}}}); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("expected validation error for empty item albumId, got %v", err)
	}
}

func TestCreateListDefaultsToPublic(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)

	l, err := s.CreateList(context.Background(), 1, CreateInput{Title: "faves"})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if l.Visibility != model.VisibilityPublic {
		t.Fatalf("expected public default, got %q", l.Visibility)
	}
}

func TestGetListVisibility(t *testing.T) {
	cases := []struct {
		visibility string
		requester  int64
		wantErr    bool
	}{
		{"public", 2, false},
		{"public", 1, false},
		{"unlisted", 2, false},
		{"private", 1, false},
		{"private", 2, true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/requester-%d", tc.visibility, tc.requester), func(t *testing.T) {
			s := NewStore(newFakeListRepo(), nil)
			l := mustCreate(t, s, 1, tc.visibility)

			_, err := s.GetList(context.Background(), tc.requester, l.ID, "")
			if tc.wantErr {
				if !apperr.Is(err, apperr.Authorization) {
					t.Fatalf("expected authorization error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetListEnrichesItems(t *testing.T) {
	meta := &fakeMetadata{albums: map[string]*catalog.Album{
		"alb1": {ID: "alb1", Name: "Blue", Artist: "Joni Mitchell"},
		"alb3": {ID: "alb3", Name: "Hejira", Artist: "Joni Mitchell"},
	}}
	s := NewStore(newFakeListRepo(), meta)
	ctx := context.Background()

	created, err := s.CreateList(ctx, 1, CreateInput{
		Title: "joni",
		Items: []ItemInput{
			{AlbumID: "alb1"},
			{AlbumID: "alb2"},
			{AlbumID: "alb3"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := s.GetList(ctx, 1, created.ID, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(view.Items))
	}

	// Item order follows position, and each item carries its own metadata.
	for i, want := range []string{"alb1", "alb2", "alb3"} {
		if view.Items[i].AlbumID != want {
			t.Fatalf("item %d out of order: got %q, want %q", i, view.Items[i].AlbumID, want)
		}
	}
	if view.Items[0].Album.Name != "Blue" || view.Items[2].Album.Name != "Hejira" {
		t.Fatalf("resolved metadata wrong: %+v, %+v", view.Items[0].Album, view.Items[2].Album)
	}

	// A failed lookup degrades that item only.
	if view.Items[1].Album == nil || view.Items[1].Album.Name != "Unknown Album" {
		t.Fatalf("expected placeholder for the failed item, got %+v", view.Items[1].Album)
	}
	if view.Items[1].Album.ID != "alb2" {
		t.Fatalf("placeholder should keep the album id, got %q", view.Items[1].Album.ID)
	}
}

func TestGetListNotFound(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)

	_, err := s.GetList(context.Background(), 1, "missing", "")
	if !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateListOwnerOnly(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)
	l := mustCreate(t, s, 1, "public")

	title := "renamed"
	if _, err := s.UpdateList(context.Background(), 2, l.ID, UpdateInput{Title: &title}); !apperr.Is(err, apperr.Authorization) {
		t.Fatalf("expected authorization error for non-owner, got %v", err)
	}

	updated, err := s.UpdateList(context.Background(), 1, l.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "renamed" {
		t.Fatalf("title not updated: %q", updated.Title)
	}
}

func TestUpdateListPartial(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)
	l := mustCreate(t, s, 1, "public")

	visibility := "private"
	updated, err := s.UpdateList(context.Background(), 1, l.ID, UpdateInput{Visibility: &visibility})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Visibility != model.VisibilityPrivate {
		t.Fatalf("visibility not updated: %q", updated.Visibility)
	}
	if updated.Title != "desert island" {
		t.Fatalf("untouched field changed: %q", updated.Title)
	}
}

func TestUpdateListReplacesItems(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)
	l := mustCreate(t, s, 1, "public")

	items := []ItemInput{{AlbumID: "alb9"}, {AlbumID: "alb3", Notes: "closer"}}
	updated, err := s.UpdateList(context.Background(), 1, l.ID, UpdateInput{Items: &items})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(updated.Items))
	}
	if updated.Items[0].AlbumID != "alb9" || updated.Items[0].Position != 0 {
		t.Fatalf("item order not preserved: %+v", updated.Items[0])
	}
	if updated.Items[1].Position != 1 {
		t.Fatalf("positions not reassigned: %+v", updated.Items[1])
	}
}

func TestDeleteListOwnerOnly(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)
	l := mustCreate(t, s, 1, "public")
	ctx := context.Background()

	if err := s.DeleteList(ctx, 2, l.ID); !apperr.Is(err, apperr.Authorization) {
		t.Fatalf("expected authorization error for non-owner, got %v", err)
	}
	if err := s.DeleteList(ctx, 1, l.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := s.GetList(ctx, 1, l.ID, ""); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestToggleLike(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)
	l := mustCreate(t, s, 1, "public")
	ctx := context.Background()

	liked, count, err := s.ToggleLike(ctx, 2, l.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked || count != 1 {
		t.Fatalf("expected liked with count 1, got %v/%d", liked, count)
	}

	liked, count, err = s.ToggleLike(ctx, 2, l.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked || count != 0 {
		t.Fatalf("expected unliked with count 0, got %v/%d", liked, count)
	}
}

func TestToggleLikeRespectsVisibility(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)
	l := mustCreate(t, s, 1, "private")

	if _, _, err := s.ToggleLike(context.Background(), 2, l.ID); !apperr.Is(err, apperr.Authorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestAddComment(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)
	l := mustCreate(t, s, 1, "public")
	ctx := context.Background()

	if _, err := s.AddComment(ctx, 2, l.ID, "  "); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("expected validation error for empty text, got %v", err)
	}

	c, err := s.AddComment(ctx, 2, l.ID, "great picks")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if c.AuthorID != 2 || c.Text != "great picks" {
		t.Fatalf("comment not stored as given: %+v", c)
	}

	view, err := s.GetList(ctx, 1, l.ID, "")
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(view.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(view.Comments))
	}
}

func TestListsByOwnerFiltering(t *testing.T) {
	s := NewStore(newFakeListRepo(), nil)
	ctx := context.Background()
	mustCreate(t, s, 1, "public")
	mustCreate(t, s, 1, "private")
	mustCreate(t, s, 1, "unlisted")

	own, err := s.ListsByOwner(ctx, 1, 1)
	if err != nil {
		t.Fatalf("own listing: %v", err)
	}
	if len(own) != 3 {
		t.Fatalf("owner should see all lists, got %d", len(own))
	}

	other, err := s.ListsByOwner(ctx, 2, 1)
	if err != nil {
		t.Fatalf("other listing: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("stranger should see only public lists, got %d", len(other))
	}
	if other[0].Visibility != model.VisibilityPublic {
		t.Fatalf("unexpected visibility in public listing: %q", other[0].Visibility)
	}
}
