package social

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"soundscore/apperr"
	"soundscore/model"
)

type fakeFriendRepo struct {
	requests    map[string]*model.FriendRequest
	friendships map[[2]int64]bool
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{
		requests:    make(map[string]*model.FriendRequest),
		friendships: make(map[[2]int64]bool),
	}
}

func (f *fakeFriendRepo) GetRequestByID(_ context.Context, id string) (*model.FriendRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeFriendRepo) InsertRequest(_ context.Context, req *model.FriendRequest) error {
	cp := *req
	cp.CreatedAt = time.Now()
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeFriendRepo) UpdateRequestStatus(_ context.Context, id string, status model.FriendRequestStatus) error {
	f.requests[id].Status = status
	return nil
}

func (f *fakeFriendRepo) PendingRequestExists(_ context.Context, userA, userB int64) (bool, error) {
	for _, r := range f.requests {
		if r.Status != model.FriendRequestPending {
			continue
		}
		if (r.SenderID == userA && r.RecipientID == userB) || (r.SenderID == userB && r.RecipientID == userA) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFriendRepo) AreFriends(_ context.Context, userA, userB int64) (bool, error) {
	return f.friendships[[2]int64{userA, userB}], nil
}

func (f *fakeFriendRepo) InsertFriendship(_ context.Context, userA, userB int64) error {
	f.friendships[[2]int64{userA, userB}] = true
	f.friendships[[2]int64{userB, userA}] = true
	return nil
}

func (f *fakeFriendRepo) FriendsOf(_ context.Context, userID int64) ([]*model.User, error) {
	var out []*model.User
	for pair := range f.friendships {
		if pair[0] == userID {
			out = append(out, &model.User{ID: pair[1]})
		}
	}
	return out, nil
}

func (f *fakeFriendRepo) PendingRequestsFor(_ context.Context, recipientID int64) ([]*model.FriendRequest, error) {
	var out []*model.FriendRequest
	for _, r := range f.requests {
		if r.RecipientID == recipientID && r.Status == model.FriendRequestPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[int64]*model.User
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) (int64, error) {
	id := int64(len(f.users) + 1)
	u.ID = id
	f.users[id] = u
	return id, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) SearchUsers(_ context.Context, query string, excludeID int64, limit int) ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.users {
		if u.ID == excludeID {
			continue
		}
		if !strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newService() (*Service, *fakeFriendRepo) {
	friends := newFakeFriendRepo()
	users := &fakeUserRepo{users: map[int64]*model.User{
		1: {ID: 1, Username: "ana"},
		2: {ID: 2, Username: "ben"},
		3: {ID: 3, Username: "cho"},
	}}
	return NewService(friends, users), friends
}

func TestSendRequest(t *testing.T) {
	s, _ := newService()

	req, err := s.SendRequest(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if req.Status != model.FriendRequestPending {
		t.Fatalf("expected pending, got %q", req.Status)
	}
	if req.SenderID != 1 || req.RecipientID != 2 {
		t.Fatalf("request misdirected: %+v", req)
	}
	if req.ID == "" {
		t.Fatal("request ID not assigned")
	}
}

func TestSendRequestToSelf(t *testing.T) {
	s, _ := newService()

	_, err := s.SendRequest(context.Background(), 1, 1)
	if !apperr.Is(err, apperr.SelfReference) {
		t.Fatalf("expected self reference error, got %v", err)
	}
}

func TestSendRequestUnknownRecipient(t *testing.T) {
	s, _ := newService()

	_, err := s.SendRequest(context.Background(), 1, 99)
	if !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSendRequestDuplicatePending(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	if _, err := s.SendRequest(ctx, 1, 2); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if _, err := s.SendRequest(ctx, 1, 2); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict for duplicate, got %v", err)
	}
	// Reverse direction counts as the same pending pair.
	if _, err := s.SendRequest(ctx, 2, 1); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict for reverse duplicate, got %v", err)
	}
}

func TestSendRequestAlreadyFriends(t *testing.T) {
	s, friends := newService()
	friends.InsertFriendship(context.Background(), 1, 2)

	if _, err := s.SendRequest(context.Background(), 1, 2); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := s.SendRequest(context.Background(), 2, 1); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict in reverse direction, got %v", err)
	}
}

func TestAcceptRequest(t *testing.T) {
	s, friends := newService()
	ctx := context.Background()

	req, _ := s.SendRequest(ctx, 1, 2)

	accepted, err := s.AcceptRequest(ctx, 2, req.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.FriendRequestAccepted {
		t.Fatalf("expected accepted, got %q", accepted.Status)
	}

	linked, _ := friends.AreFriends(ctx, 1, 2)
	if !linked {
		t.Fatal("accept did not link the users")
	}
	linked, _ = friends.AreFriends(ctx, 2, 1)
	if !linked {
		t.Fatal("friendship is not symmetric")
	}
}

func TestAcceptRequestOnlyRecipient(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	req, _ := s.SendRequest(ctx, 1, 2)

	if _, err := s.AcceptRequest(ctx, 1, req.ID); !apperr.Is(err, apperr.Authorization) {
		t.Fatalf("sender must not accept, got %v", err)
	}
	if _, err := s.AcceptRequest(ctx, 3, req.ID); !apperr.Is(err, apperr.Authorization) {
		t.Fatalf("third party must not accept, got %v", err)
	}
}

func TestAcceptRequestAlreadyResolved(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	req, _ := s.SendRequest(ctx, 1, 2)
	if _, err := s.AcceptRequest(ctx, 2, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := s.AcceptRequest(ctx, 2, req.ID); !apperr.Is(err, apperr.InvalidState) {
		t.Fatalf("expected invalid state on double accept, got %v", err)
	}
	if _, err := s.DeclineRequest(ctx, 2, req.ID); !apperr.Is(err, apperr.InvalidState) {
		t.Fatalf("expected invalid state on decline after accept, got %v", err)
	}
}

func TestDeclineRequest(t *testing.T) {
	s, friends := newService()
	ctx := context.Background()

	req, _ := s.SendRequest(ctx, 1, 2)

	declined, err := s.DeclineRequest(ctx, 2, req.ID)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != model.FriendRequestDeclined {
		t.Fatalf("expected declined, got %q", declined.Status)
	}

	linked, _ := friends.AreFriends(ctx, 1, 2)
	if linked {
		t.Fatal("decline must not link the users")
	}

	// A declined request does not block a fresh one.
	if _, err := s.SendRequest(ctx, 1, 2); err != nil {
		t.Fatalf("resend after decline: %v", err)
	}
}

func TestResolveUnknownRequest(t *testing.T) {
	s, _ := newService()

	if _, err := s.AcceptRequest(context.Background(), 2, "missing"); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchUsersAnnotations(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	// Requester 1 is friends with ben and has a request pending with cho.
	req, _ := s.SendRequest(ctx, 1, 2)
	s.AcceptRequest(ctx, 2, req.ID)
	s.SendRequest(ctx, 1, 3)

	matches, err := s.SearchUsers(ctx, 1, "")
	if err == nil {
		t.Fatal("empty query must be rejected")
	}

	matches, err = s.SearchUsers(ctx, 1, "n")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	byName := map[string]UserMatch{}
	for _, m := range matches {
		if m.ID == 1 {
			t.Fatal("requester must not appear in their own search results")
		}
		byName[m.Username] = m
	}

	ben, ok := byName["ben"]
	if !ok {
		t.Fatal("expected ben in results")
	}
	if !ben.IsFriend || ben.HasPendingRequest {
		t.Fatalf("ben should be a friend with no pending request: %+v", ben)
	}
}

func TestSearchUsersPendingStatus(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	s.SendRequest(ctx, 1, 3)

	matches, err := s.SearchUsers(ctx, 1, "cho")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].IsFriend || !matches[0].HasPendingRequest {
		t.Fatalf("cho should carry a pending request only: %+v", matches[0])
	}

	// The annotation is symmetric: cho searching for the sender sees the
	// same pending state.
	matches, err = s.SearchUsers(ctx, 3, "ana")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || !matches[0].HasPendingRequest {
		t.Fatalf("sender should carry the pending flag for the recipient: %+v", matches)
	}
}

func TestOverviewFor(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()

	req, _ := s.SendRequest(ctx, 1, 2)
	s.AcceptRequest(ctx, 2, req.ID)
	s.SendRequest(ctx, 3, 2)

	overview, err := s.OverviewFor(ctx, 2)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(overview.Friends) != 1 {
		t.Fatalf("expected 1 friend, got %d", len(overview.Friends))
	}
	if len(overview.Incoming) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(overview.Incoming))
	}
	if overview.Incoming[0].SenderID != 3 {
		t.Fatalf("wrong pending request: %+v", overview.Incoming[0])
	}
}
