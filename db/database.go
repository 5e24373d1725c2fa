package db

import (
	"database/sql"
	"fmt"
	"log"

	"soundscore/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	if err := createUsersTable(); err != nil {
		return err
	}
	if err := createRatingsTable(); err != nil {
		return err
	}
	if err := createAlbumAggregatesTable(); err != nil {
		return err
	}
	if err := createFriendRequestsTable(); err != nil {
		return err
	}
	if err := createFriendshipsTable(); err != nil {
		return err
	}

	log.Println("Database initialization completed.")
	return nil
}

func createUsersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(767),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	log.Println("Users table initialized successfully (or already exists).")
	return nil
}

func createRatingsTable() error {
	// One rating per (album_id, user_id); resubmission overwrites in place.
	query := `
	CREATE TABLE IF NOT EXISTS ratings (
		id INT AUTO_INCREMENT PRIMARY KEY,
		album_id VARCHAR(128) NOT NULL,
		user_id INT NOT NULL,
		username VARCHAR(100) NOT NULL,
		score INT NOT NULL,
		review TEXT NOT NULL,
		written_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT uq_album_user UNIQUE (album_id, user_id),
		CONSTRAINT fk_rating_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create ratings table: %w", err)
	}
	log.Println("Ratings table initialized successfully (or already exists).")
	return nil
}

func createAlbumAggregatesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS album_aggregates (
		album_id VARCHAR(128) PRIMARY KEY,
		mean_score DOUBLE NOT NULL DEFAULT 0,
		rating_count INT NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create album_aggregates table: %w", err)
	}
	log.Println("Album aggregates table initialized successfully (or already exists).")
	return nil
}

func createFriendRequestsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS friend_requests (
		id CHAR(36) PRIMARY KEY,
		sender_id INT NOT NULL,
		recipient_id INT NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_request_sender FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_request_recipient FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE,
		INDEX idx_recipient_status (recipient_id, status)
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create friend_requests table: %w", err)
	}
	log.Println("Friend requests table initialized successfully (or already exists).")
	return nil
}

func createFriendshipsTable() error {
	// An accepted request inserts both directions, so each user's friend set
	// is a simple equality lookup.
	query := `
	CREATE TABLE IF NOT EXISTS friendships (
		user_id INT NOT NULL,
		friend_id INT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, friend_id),
		CONSTRAINT fk_friendship_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_friendship_friend FOREIGN KEY (friend_id) REFERENCES users(id) ON DELETE CASCADE
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create friendships table: %w", err)
	}
	log.Println("Friendships table initialized successfully (or already exists).")
	return nil
}
