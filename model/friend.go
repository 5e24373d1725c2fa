package model

import "time"

// FriendRequestStatus is the state of a friend request. The only transitions
// are pending -> accepted and pending -> declined; both are terminal.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

// FriendRequest is a directed request from SenderID to RecipientID.
type FriendRequest struct {
	ID          string              `json:"id"`
	SenderID    int64               `json:"senderId"`
	RecipientID int64               `json:"recipientId"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}
