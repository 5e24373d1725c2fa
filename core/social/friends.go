package social

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"soundscore/apperr"
	"soundscore/model"
	"soundscore/repository"
)

// Service owns the friend graph: requests, their state machine and the
// mutual links accepted requests produce.
type Service struct {
	friends repository.FriendRepository
	users   repository.UserRepository
}

// NewService creates a friend service.
func NewService(friends repository.FriendRepository, users repository.UserRepository) *Service {
	return &Service{friends: friends, users: users}
}

// Overview is a user's social state: current friends plus pending incoming
// requests.
type Overview struct {
	Friends  []*model.User          `json:"friends"`
	Incoming []*model.FriendRequest `json:"incoming"`
}

// SendRequest creates a pending request from senderID to recipientID.
// Requests to yourself, to existing friends and duplicates of a pending
// request in either direction are rejected.
func (s *Service) SendRequest(ctx context.Context, senderID, recipientID int64) (*model.FriendRequest, error) {
	if recipientID <= 0 {
		return nil, apperr.New(apperr.Validation, "recipientId is required")
	}
	if senderID == recipientID {
		return nil, apperr.New(apperr.SelfReference, "you cannot send a friend request to yourself")
	}

	recipient, err := s.users.GetUserByID(ctx, recipientID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to look up recipient", err)
	}
	if recipient == nil {
		return nil, apperr.New(apperr.NotFound, "recipient not found")
	}

	friends, err := s.friends.AreFriends(ctx, senderID, recipientID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to check friendship", err)
	}
	if friends {
		return nil, apperr.New(apperr.Conflict, "you are already friends")
	}

	pending, err := s.friends.PendingRequestExists(ctx, senderID, recipientID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to check pending requests", err)
	}
	if pending {
		return nil, apperr.New(apperr.Conflict, "a request between you is already pending")
	}

	req := &model.FriendRequest{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      model.FriendRequestPending,
	}
	if err := s.friends.InsertRequest(ctx, req); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create friend request", err)
	}
	return req, nil
}

// AcceptRequest moves a pending request to accepted and links both users.
// Only the recipient may accept, and only while the request is pending.
func (s *Service) AcceptRequest(ctx context.Context, requesterID int64, requestID string) (*model.FriendRequest, error) {
	req, err := s.pendingFor(ctx, requesterID, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.friends.UpdateRequestStatus(ctx, requestID, model.FriendRequestAccepted); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to accept request", err)
	}
	if err := s.friends.InsertFriendship(ctx, req.SenderID, req.RecipientID); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to link friends", err)
	}

	req.Status = model.FriendRequestAccepted
	return req, nil
}

// DeclineRequest moves a pending request to declined. Only the recipient may
// decline, and only while the request is pending. Declining does not block
// future requests between the pair.
func (s *Service) DeclineRequest(ctx context.Context, requesterID int64, requestID string) (*model.FriendRequest, error) {
	req, err := s.pendingFor(ctx, requesterID, requestID)
	if err != nil {
		return nil, err
	}

	if err := s.friends.UpdateRequestStatus(ctx, requestID, model.FriendRequestDeclined); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to decline request", err)
	}

	req.Status = model.FriendRequestDeclined
	return req, nil
}

// pendingFor loads the request and checks it is pending and addressed to
// requesterID.
func (s *Service) pendingFor(ctx context.Context, requesterID int64, requestID string) (*model.FriendRequest, error) {
	req, err := s.friends.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read friend request", err)
	}
	if req == nil {
		return nil, apperr.New(apperr.NotFound, "friend request not found")
	}
	if req.RecipientID != requesterID {
		return nil, apperr.New(apperr.Authorization, "only the recipient may resolve this request")
	}
	if req.Status != model.FriendRequestPending {
		return nil, apperr.New(apperr.InvalidState, "friend request is already resolved")
	}
	return req, nil
}

const searchLimit = 10

// UserMatch is a search hit annotated with the requester's relation to it.
type UserMatch struct {
	*model.User
	IsFriend          bool `json:"isFriend"`
	HasPendingRequest bool `json:"hasPendingRequest"`
}

// SearchUsers finds users by username substring so a requester can discover
// who to send a request to. The requester is excluded from the results; each
// hit carries whether the pair is already linked or has a pending request in
// either direction.
func (s *Service) SearchUsers(ctx context.Context, requesterID int64, username string) ([]UserMatch, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperr.New(apperr.Validation, "username is required")
	}

	users, err := s.users.SearchUsers(ctx, username, requesterID, searchLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to search users", err)
	}

	matches := make([]UserMatch, 0, len(users))
	for _, u := range users {
		linked, err := s.friends.AreFriends(ctx, requesterID, u.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to check friendship", err)
		}
		pending, err := s.friends.PendingRequestExists(ctx, requesterID, u.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to check pending requests", err)
		}
		matches = append(matches, UserMatch{
			User:              u,
			IsFriend:          linked,
			HasPendingRequest: pending,
		})
	}
	return matches, nil
}

// OverviewFor returns userID's friends and pending incoming requests.
func (s *Service) OverviewFor(ctx context.Context, userID int64) (*Overview, error) {
	friends, err := s.friends.FriendsOf(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read friends", err)
	}
	if friends == nil {
		friends = []*model.User{}
	}

	incoming, err := s.friends.PendingRequestsFor(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read pending requests", err)
	}
	if incoming == nil {
		incoming = []*model.FriendRequest{}
	}

	return &Overview{Friends: friends, Incoming: incoming}, nil
}
