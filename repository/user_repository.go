package repository

import (
	"context"
	"database/sql"
	"time"

	"soundscore/model"
)

// UserRepository defines user account storage operations.
type UserRepository interface {
	// CreateUser stores a new user and returns its generated ID.
	CreateUser(ctx context.Context, user *model.User) (int64, error)

	// GetUserByID returns the user with the given ID, or nil when absent.
	GetUserByID(ctx context.Context, id int64) (*model.User, error)

	// GetUserByUsername returns the user with the given username, or nil when absent.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// GetUserByEmail returns the user with the given email, or nil when absent.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// SearchUsers returns users whose username contains the query, excluding
	// excludeID, ordered by username, at most limit rows.
	SearchUsers(ctx context.Context, query string, excludeID int64, limit int) ([]*model.User, error)
}

// MySQLUserRepository is the MySQL-backed user repository.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQL user repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	query := `
		INSERT INTO users (username, email, password_hash, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.AvatarURL,
		now,
		now,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

func (r *MySQLUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getUserWhere(ctx, "id = ?", id)
}

func (r *MySQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUserWhere(ctx, "username = ?", username)
}

func (r *MySQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUserWhere(ctx, "email = ?", email)
}

func (r *MySQLUserRepository) SearchUsers(ctx context.Context, query string, excludeID int64, limit int) ([]*model.User, error) {
	stmt := `
		SELECT id, username, email, COALESCE(avatar_url, ''), created_at, updated_at
		FROM users
		WHERE username LIKE CONCAT('%', ?, '%') AND id <> ?
		ORDER BY username
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, stmt, query, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.AvatarURL,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *MySQLUserRepository) getUserWhere(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, COALESCE(avatar_url, ''), created_at, updated_at
		FROM users
		WHERE ` + where

	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}
