package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"soundscore/model"
)

// RatingRepository defines storage operations for ratings and their derived
// album aggregates. Upserts happen in the ledger: it reads the current
// record by key and then calls Insert or Update, so the store only exposes
// the two primitives.
type RatingRepository interface {
	// GetRating returns the rating for (albumID, userID), or nil when absent.
	GetRating(ctx context.Context, albumID string, userID int64) (*model.Rating, error)

	// InsertRating stores a new rating and returns its generated ID.
	InsertRating(ctx context.Context, rating *model.Rating) (int64, error)

	// UpdateRating overwrites score, review, username and timestamp of the
	// rating keyed by (albumID, userID).
	UpdateRating(ctx context.Context, rating *model.Rating) error

	// GetRatingsByAlbum returns an album's ratings ordered most recent first.
	GetRatingsByAlbum(ctx context.Context, albumID string) ([]*model.Rating, error)

	// GetRatingsByUser returns a user's ratings ordered most recent first.
	GetRatingsByUser(ctx context.Context, userID int64) ([]*model.Rating, error)

	// GetAggregate returns the album's aggregate, or nil when no rating has
	// ever been submitted for it.
	GetAggregate(ctx context.Context, albumID string) (*model.AlbumAggregate, error)

	// SaveAggregate persists the aggregate, creating it if absent.
	SaveAggregate(ctx context.Context, agg *model.AlbumAggregate) error

	// GetAggregates returns the aggregates for the given album IDs, keyed by
	// album ID. Albums without an aggregate are simply absent from the map.
	GetAggregates(ctx context.Context, albumIDs []string) (map[string]*model.AlbumAggregate, error)
}

// MySQLRatingRepository is the MySQL-backed rating repository.
type MySQLRatingRepository struct {
	db *sql.DB
}

// NewMySQLRatingRepository creates a new MySQL rating repository.
func NewMySQLRatingRepository(db *sql.DB) *MySQLRatingRepository {
	return &MySQLRatingRepository{db: db}
}

func (r *MySQLRatingRepository) GetRating(ctx context.Context, albumID string, userID int64) (*model.Rating, error) {
	query := `
		SELECT id, album_id, user_id, username, score, review, written_at
		FROM ratings
		WHERE album_id = ? AND user_id = ?
	`

	rating := &model.Rating{}
	err := r.db.QueryRowContext(ctx, query, albumID, userID).Scan(
		&rating.ID,
		&rating.AlbumID,
		&rating.UserID,
		&rating.Username,
		&rating.Score,
		&rating.Review,
		&rating.WrittenAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return rating, nil
}

func (r *MySQLRatingRepository) InsertRating(ctx context.Context, rating *model.Rating) (int64, error) {
	query := `
		INSERT INTO ratings (album_id, user_id, username, score, review, written_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		rating.AlbumID,
		rating.UserID,
		rating.Username,
		rating.Score,
		rating.Review,
		rating.WrittenAt,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

func (r *MySQLRatingRepository) UpdateRating(ctx context.Context, rating *model.Rating) error {
	query := `
		UPDATE ratings
		SET username = ?, score = ?, review = ?, written_at = ?
		WHERE album_id = ? AND user_id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		rating.Username,
		rating.Score,
		rating.Review,
		rating.WrittenAt,
		rating.AlbumID,
		rating.UserID,
	)
	return err
}

func (r *MySQLRatingRepository) GetRatingsByAlbum(ctx context.Context, albumID string) ([]*model.Rating, error) {
	query := `
		SELECT id, album_id, user_id, username, score, review, written_at
		FROM ratings
		WHERE album_id = ?
		ORDER BY written_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRatings(rows)
}

func (r *MySQLRatingRepository) GetRatingsByUser(ctx context.Context, userID int64) ([]*model.Rating, error) {
	query := `
		SELECT id, album_id, user_id, username, score, review, written_at
		FROM ratings
		WHERE user_id = ?
		ORDER BY written_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRatings(rows)
}

func scanRatings(rows *sql.Rows) ([]*model.Rating, error) {
	var ratings []*model.Rating
	for rows.Next() {
		rating := &model.Rating{}
		err := rows.Scan(
			&rating.ID,
			&rating.AlbumID,
			&rating.UserID,
			&rating.Username,
			&rating.Score,
			&rating.Review,
			&rating.WrittenAt,
		)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}

	return ratings, rows.Err()
}

func (r *MySQLRatingRepository) GetAggregate(ctx context.Context, albumID string) (*model.AlbumAggregate, error) {
	query := `
		SELECT album_id, mean_score, rating_count, updated_at
		FROM album_aggregates
		WHERE album_id = ?
	`

	agg := &model.AlbumAggregate{}
	err := r.db.QueryRowContext(ctx, query, albumID).Scan(
		&agg.AlbumID,
		&agg.MeanScore,
		&agg.RatingCount,
		&agg.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return agg, nil
}

func (r *MySQLRatingRepository) SaveAggregate(ctx context.Context, agg *model.AlbumAggregate) error {
	query := `
		INSERT INTO album_aggregates (album_id, mean_score, rating_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE mean_score = VALUES(mean_score), rating_count = VALUES(rating_count), updated_at = VALUES(updated_at)
	`

	_, err := r.db.ExecContext(ctx, query,
		agg.AlbumID,
		agg.MeanScore,
		agg.RatingCount,
		time.Now(),
	)
	return err
}

func (r *MySQLRatingRepository) GetAggregates(ctx context.Context, albumIDs []string) (map[string]*model.AlbumAggregate, error) {
	if len(albumIDs) == 0 {
		return map[string]*model.AlbumAggregate{}, nil
	}

	placeholders := strings.Repeat("?,", len(albumIDs))
	placeholders = placeholders[:len(placeholders)-1]
	query := `
		SELECT album_id, mean_score, rating_count, updated_at
		FROM album_aggregates
		WHERE album_id IN (` + placeholders + `)
	`

	args := make([]interface{}, len(albumIDs))
	for i, id := range albumIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]*model.AlbumAggregate, len(albumIDs))
	for rows.Next() {
		agg := &model.AlbumAggregate{}
		err := rows.Scan(&agg.AlbumID, &agg.MeanScore, &agg.RatingCount, &agg.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out[agg.AlbumID] = agg
	}

	return out, rows.Err()
}
