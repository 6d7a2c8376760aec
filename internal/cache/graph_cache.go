package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// GraphCache serves the two id-sets the feed prefetch needs (who the
// requester follows, which posts they hid) from Redis lists, falling
// back to the primary store on miss. A nil redis client degrades to
// plain repository reads, which keeps tests and single-node setups
// free of a Redis dependency.
type GraphCache struct {
	follows repository.FollowRepository
	hidden  repository.HiddenPostRepository
	rdb     *redis.Client
	ttl     time.Duration
}

func NewGraphCache(follows repository.FollowRepository, hidden repository.HiddenPostRepository, rdb *redis.Client, ttl time.Duration) *GraphCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &GraphCache{follows: follows, hidden: hidden, rdb: rdb, ttl: ttl}
}

func followingKey(userID string) string { return fmt.Sprintf("graph:following:%s", userID) }
func hiddenKey(userID string) string    { return fmt.Sprintf("graph:hidden:%s", userID) }

// FollowingIDs returns every user id the given user follows.
func (c *GraphCache) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return c.cachedIDs(ctx, followingKey(userID), func() ([]string, error) {
		return c.follows.ListFollowingIDs(ctx, userID)
	})
}

// HiddenPostIDs returns every post id the given user has hidden.
func (c *GraphCache) HiddenPostIDs(ctx context.Context, userID string) ([]string, error) {
	return c.cachedIDs(ctx, hiddenKey(userID), func() ([]string, error) {
		return c.hidden.ListHiddenIDs(ctx, userID)
	})
}

func (c *GraphCache) cachedIDs(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	if c.rdb != nil {
		ids, err := c.rdb.LRange(ctx, key, 0, -1).Result()
		if err == nil && len(ids) > 0 {
			return ids, nil
		}
		// cache errors fall through to the DB; the feed must not fail on Redis
		if err != nil {
			logger.Warn("graph cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	ids, err := load()
	if err != nil {
		return nil, err
	}
	// empty sets are not cached; the DB read is cheap for them anyway
	if c.rdb != nil && len(ids) > 0 {
		members := make([]interface{}, len(ids))
		for i, id := range ids {
			members[i] = id
		}
		pipe := c.rdb.Pipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, members...)
		pipe.Expire(ctx, key, c.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("graph cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return ids, nil
}

// InvalidateFollowing drops the cached following set after a follow/unfollow.
func (c *GraphCache) InvalidateFollowing(ctx context.Context, userID string) {
	c.invalidate(ctx, followingKey(userID))
}

// InvalidateHidden drops the cached hidden set after a hide/unhide.
func (c *GraphCache) InvalidateHidden(ctx context.Context, userID string) {
	c.invalidate(ctx, hiddenKey(userID))
}

func (c *GraphCache) invalidate(ctx context.Context, key string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		logger.Warn("graph cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
