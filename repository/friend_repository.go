package repository

import (
	"context"
	"database/sql"
	"time"

	"soundscore/model"
)

// FriendRepository defines storage operations for friend requests and the
// mutual friendship links that accepted requests produce.
type FriendRepository interface {
	// GetRequestByID returns the request with the given ID, or nil when absent.
	GetRequestByID(ctx context.Context, id string) (*model.FriendRequest, error)

	// InsertRequest stores a new friend request.
	InsertRequest(ctx context.Context, req *model.FriendRequest) error

	// UpdateRequestStatus moves a request to the given status.
	UpdateRequestStatus(ctx context.Context, id string, status model.FriendRequestStatus) error

	// PendingRequestExists reports whether a pending request exists between
	// the two users in either direction.
	PendingRequestExists(ctx context.Context, userA, userB int64) (bool, error)

	// AreFriends reports whether the two users are linked.
	AreFriends(ctx context.Context, userA, userB int64) (bool, error)

	// InsertFriendship links both users in a single transaction.
	InsertFriendship(ctx context.Context, userA, userB int64) error

	// FriendsOf returns the users in userID's friend set.
	FriendsOf(ctx context.Context, userID int64) ([]*model.User, error)

	// PendingRequestsFor returns pending requests addressed to recipientID,
	// oldest first.
	PendingRequestsFor(ctx context.Context, recipientID int64) ([]*model.FriendRequest, error)
}

// MySQLFriendRepository is the MySQL-backed friend repository.
type MySQLFriendRepository struct {
	db *sql.DB
}

// NewMySQLFriendRepository creates a new MySQL friend repository.
func NewMySQLFriendRepository(db *sql.DB) *MySQLFriendRepository {
	return &MySQLFriendRepository{db: db}
}

func (r *MySQLFriendRepository) GetRequestByID(ctx context.Context, id string) (*model.FriendRequest, error) {
	query := `
		SELECT id, sender_id, recipient_id, status, created_at, updated_at
		FROM friend_requests
		WHERE id = ?
	`

	req := &model.FriendRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.SenderID,
		&req.RecipientID,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return req, nil
}

func (r *MySQLFriendRepository) InsertRequest(ctx context.Context, req *model.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, sender_id, recipient_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.SenderID,
		req.RecipientID,
		req.Status,
		now,
		now,
	)
	return err
}

func (r *MySQLFriendRepository) UpdateRequestStatus(ctx context.Context, id string, status model.FriendRequestStatus) error {
	query := `
		UPDATE friend_requests
		SET status = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (r *MySQLFriendRepository) PendingRequestExists(ctx context.Context, userA, userB int64) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM friend_requests
		WHERE status = 'pending'
		  AND ((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?))
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userA, userB, userB, userA).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *MySQLFriendRepository) AreFriends(ctx context.Context, userA, userB int64) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM friendships
		WHERE user_id = ? AND friend_id = ?
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userA, userB).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *MySQLFriendRepository) InsertFriendship(ctx context.Context, userA, userB int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT IGNORE INTO friendships (user_id, friend_id, created_at) VALUES (?, ?, ?)`
	now := time.Now()
	if _, err := tx.ExecContext(ctx, query, userA, userB, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, userB, userA, now); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *MySQLFriendRepository) FriendsOf(ctx context.Context, userID int64) ([]*model.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, COALESCE(u.avatar_url, ''), u.created_at, u.updated_at
		FROM users u
		JOIN friendships f ON u.id = f.friend_id
		WHERE f.user_id = ?
		ORDER BY u.username
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []*model.User
	for rows.Next() {
		user := &model.User{}
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.AvatarURL,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		friends = append(friends, user)
	}

	return friends, rows.Err()
}

func (r *MySQLFriendRepository) PendingRequestsFor(ctx context.Context, recipientID int64) ([]*model.FriendRequest, error) {
	query := `
		SELECT id, sender_id, recipient_id, status, created_at, updated_at
		FROM friend_requests
		WHERE recipient_id = ? AND status = 'pending'
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*model.FriendRequest
	for rows.Next() {
		req := &model.FriendRequest{}
		err := rows.Scan(
			&req.ID,
			&req.SenderID,
			&req.RecipientID,
			&req.Status,
			&req.CreatedAt,
			&req.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}
