package rating

import (
	"context"
	"strings"
	"sync"
	"time"

	"soundscore/apperr"
	"soundscore/core/catalog"
	"soundscore/logger"
	"soundscore/model"
	"soundscore/repository"
)

// MetadataSource supplies album metadata for read-time enrichment.
type MetadataSource interface {
	GetAlbum(ctx context.Context, token, albumID string) (*catalog.Album, error)
}

// AggregateCache is a best-effort cache for album aggregates. A nil cache is
// valid; the ledger then always reads through to the store.
type AggregateCache interface {
	Get(ctx context.Context, albumID string) (*model.AlbumAggregate, bool, error)
	Set(ctx context.Context, agg *model.AlbumAggregate) error
	Invalidate(ctx context.Context, albumID string) error
}

// Ledger owns ratings and the derived per-album aggregates.
type Ledger struct {
	repo    repository.RatingRepository
	cache   AggregateCache
	catalog MetadataSource
}

// NewLedger creates a rating ledger. cache and catalog may be nil.
func NewLedger(repo repository.RatingRepository, cache AggregateCache, catalog MetadataSource) *Ledger {
	return &Ledger{repo: repo, cache: cache, catalog: catalog}
}

// SubmitResult is the outcome of a rating submission: the stored rating plus
// the freshly recomputed aggregate.
type SubmitResult struct {
	Rating      *model.Rating `json:"rating"`
	MeanScore   float64       `json:"meanScore"`
	RatingCount int           `json:"ratingCount"`
}

// AlbumRatings is an album's ratings plus its current aggregate.
type AlbumRatings struct {
	Ratings     []*model.Rating `json:"ratings"`
	MeanScore   float64         `json:"meanScore"`
	RatingCount int             `json:"ratingCount"`
}

// UserRating is a rating enriched with catalog metadata. Album falls back to
// placeholder metadata when the per-item lookup fails.
type UserRating struct {
	*model.Rating
	Album *catalog.Album `json:"album"`
}

// SubmitRating upserts the rating keyed by (albumID, userID) and recomputes
// the album aggregate from a full scan. The two writes are not transactional:
// a crash in between leaves a stale aggregate that the next write repairs.
func (l *Ledger) SubmitRating(ctx context.Context, albumID string, userID int64, username string, score int, review string) (*SubmitResult, error) {
	fields := map[string]string{}
	if strings.TrimSpace(albumID) == "" {
		fields["albumId"] = "is required"
	}
	if userID <= 0 {
		fields["userId"] = "is required"
	}
	if strings.TrimSpace(username) == "" {
		fields["username"] = "is required"
	}
	if score < 1 || score > 5 {
		fields["score"] = "must be an integer between 1 and 5"
	}
	if strings.TrimSpace(review) == "" {
		fields["review"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	// Read the current record by key, then insert or overwrite. Keeping the
	// two steps separate makes the upsert race window observable; concurrent
	// submissions for the same album race on the recompute and the last
	// writer's aggregate wins, which the next write self-heals.
	existing, err := l.repo.GetRating(ctx, albumID, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read rating", err)
	}

	rating := &model.Rating{
		AlbumID:   albumID,
		UserID:    userID,
		Username:  username,
		Score:     score,
		Review:    review,
		WrittenAt: time.Now(),
	}

	if existing == nil {
		id, err := l.repo.InsertRating(ctx, rating)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to insert rating", err)
		}
		rating.ID = id
	} else {
		rating.ID = existing.ID
		if err := l.repo.UpdateRating(ctx, rating); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to update rating", err)
		}
	}

	// Drop the cached aggregate before recomputing so readers racing the
	// recompute fall through to the store instead of serving the old value.
	if l.cache != nil {
		if err := l.cache.Invalidate(ctx, albumID); err != nil {
			logger.Warn("failed to invalidate aggregate cache",
				logger.String("albumId", albumID),
				logger.ErrorField(err),
			)
		}
	}

	agg, err := l.recomputeAggregate(ctx, albumID)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		Rating:      rating,
		MeanScore:   agg.MeanScore,
		RatingCount: agg.RatingCount,
	}, nil
}

// recomputeAggregate scans all ratings for the album and persists the fresh
// mean and count.
func (l *Ledger) recomputeAggregate(ctx context.Context, albumID string) (*model.AlbumAggregate, error) {
	ratings, err := l.repo.GetRatingsByAlbum(ctx, albumID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to scan ratings for aggregate", err)
	}

	agg := &model.AlbumAggregate{AlbumID: albumID}
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Score
		}
		agg.RatingCount = len(ratings)
		agg.MeanScore = float64(sum) / float64(len(ratings))
	}

	if err := l.repo.SaveAggregate(ctx, agg); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to save aggregate", err)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, agg); err != nil {
			logger.Warn("failed to cache album aggregate",
				logger.String("albumId", albumID),
				logger.ErrorField(err),
			)
		}
	}

	return agg, nil
}

// RatingsForAlbum returns all ratings for the album, most recent first, plus
// the current aggregate. An unrated album yields an empty slice and a 0/0
// aggregate, not an error.
func (l *Ledger) RatingsForAlbum(ctx context.Context, albumID string) (*AlbumRatings, error) {
	if strings.TrimSpace(albumID) == "" {
		return nil, apperr.New(apperr.Validation, "albumId is required")
	}

	ratings, err := l.repo.GetRatingsByAlbum(ctx, albumID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read album ratings", err)
	}
	if ratings == nil {
		ratings = []*model.Rating{}
	}

	agg, err := l.aggregateFor(ctx, albumID)
	if err != nil {
		return nil, err
	}

	return &AlbumRatings{
		Ratings:     ratings,
		MeanScore:   agg.MeanScore,
		RatingCount: agg.RatingCount,
	}, nil
}

// aggregateFor reads the aggregate cache-first, falling back to the store. A
// never-rated album yields a zero aggregate.
func (l *Ledger) aggregateFor(ctx context.Context, albumID string) (*model.AlbumAggregate, error) {
	if l.cache != nil {
		agg, ok, err := l.cache.Get(ctx, albumID)
		if err != nil {
			logger.Warn("aggregate cache read failed",
				logger.String("albumId", albumID),
				logger.ErrorField(err),
			)
		} else if ok {
			return agg, nil
		}
	}

	agg, err := l.repo.GetAggregate(ctx, albumID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read aggregate", err)
	}
	if agg == nil {
		return &model.AlbumAggregate{AlbumID: albumID}, nil
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, agg); err != nil {
			logger.Warn("failed to cache album aggregate",
				logger.String("albumId", albumID),
				logger.ErrorField(err),
			)
		}
	}

	return agg, nil
}

// AggregatesFor returns the stored aggregates for the given albums, keyed by
// album ID. Albums with no ratings are simply absent from the map.
func (l *Ledger) AggregatesFor(ctx context.Context, albumIDs []string) (map[string]*model.AlbumAggregate, error) {
	aggs, err := l.repo.GetAggregates(ctx, albumIDs)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read aggregates", err)
	}
	return aggs, nil
}

// RatingsForUser returns all of a user's ratings, most recent first, each
// enriched with catalog metadata. Lookups run concurrently, one per item;
// a failed lookup degrades that item to placeholder metadata rather than
// failing the call.
func (l *Ledger) RatingsForUser(ctx context.Context, userID int64, catalogToken string) ([]UserRating, error) {
	if userID <= 0 {
		return nil, apperr.New(apperr.Validation, "userId is required")
	}

	ratings, err := l.repo.GetRatingsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to read user ratings", err)
	}

	out := make([]UserRating, len(ratings))
	var wg sync.WaitGroup
	for i, r := range ratings {
		out[i] = UserRating{Rating: r, Album: catalog.Placeholder(r.AlbumID)}
		if l.catalog == nil {
			continue
		}

		wg.Add(1)
		go func(i int, albumID string) {
			defer wg.Done()
			album, err := l.catalog.GetAlbum(ctx, catalogToken, albumID)
			if err != nil {
				logger.Warn("album metadata lookup failed",
					logger.String("albumId", albumID),
					logger.ErrorField(err),
				)
				return
			}
			out[i].Album = album
		}(i, r.AlbumID)
	}
	wg.Wait()

	return out, nil
}
