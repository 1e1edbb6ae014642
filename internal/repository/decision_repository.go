package repository

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/unimatch/unimatch-backend/internal/config"
)

// DecisionRepository is the per-user record of institutions already swiped on.
// The feed treats it as an opaque membership set it must never feed back
// into the stack. Backed by Redis sets: one for every decision, one for likes.
type DecisionRepository interface {
	MarkDecided(ctx context.Context, userID, institutionID int64) error
	MarkLiked(ctx context.Context, userID, institutionID int64) error
	DecidedSet(ctx context.Context, userID int64) (map[int64]struct{}, error)
	LikedIDs(ctx context.Context, userID int64) ([]int64, error)
}

type decisionRepository struct {
	rdb *redis.Client
}

func NewDecisionRepository(rdb *redis.Client) DecisionRepository {
	return &decisionRepository{rdb: rdb}
}

func (r *decisionRepository) MarkDecided(ctx context.Context, userID, institutionID int64) error {
	return r.rdb.SAdd(ctx, config.CacheKey.UserDecisionsKey(userID), institutionID).Err()
}

// MarkLiked records the institution in both sets: liked implies decided.
func (r *decisionRepository) MarkLiked(ctx context.Context, userID, institutionID int64) error {
	pipe := r.rdb.TxPipeline()
	pipe.SAdd(ctx, config.CacheKey.UserDecisionsKey(userID), institutionID)
	pipe.SAdd(ctx, config.CacheKey.UserLikesKey(userID), institutionID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *decisionRepository) DecidedSet(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	members, err := r.rdb.SMembers(ctx, config.CacheKey.UserDecisionsKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue // Skip malformed members rather than failing the feed.
		}
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *decisionRepository) LikedIDs(ctx context.Context, userID int64) ([]int64, error) {
	members, err := r.rdb.SMembers(ctx, config.CacheKey.UserLikesKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
