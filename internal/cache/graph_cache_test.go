package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

func setupCacheTest(t *testing.T) (*gorm.DB, *miniredis.Miniredis, *GraphCache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Follow{}, &model.HiddenPost{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	gc := NewGraphCache(
		repository.NewFollowRepository(db),
		repository.NewHiddenPostRepository(db),
		rdb,
		time.Minute,
	)
	return db, mr, gc
}

func TestFollowingIDsCachesOnMiss(t *testing.T) {
	db, _, gc := setupCacheTest(t)
	ctx := context.Background()

	followRepo := repository.NewFollowRepository(db)
	_, err := followRepo.Create(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = followRepo.Create(ctx, "alice", "carol")
	require.NoError(t, err)

	ids, err := gc.FollowingIDs(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, ids)

	// 删掉底层数据后仍命中缓存
	require.NoError(t, db.Where("follower_id = ?", "alice").Delete(&model.Follow{}).Error)
	ids, err = gc.FollowingIDs(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, ids)
}

func TestInvalidateFollowingDropsCachedSet(t *testing.T) {
	db, _, gc := setupCacheTest(t)
	ctx := context.Background()

	followRepo := repository.NewFollowRepository(db)
	_, err := followRepo.Create(ctx, "alice", "bob")
	require.NoError(t, err)

	ids, err := gc.FollowingIDs(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, ids)

	_, err = followRepo.Create(ctx, "alice", "carol")
	require.NoError(t, err)
	gc.InvalidateFollowing(ctx, "alice")

	ids, err = gc.FollowingIDs(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, ids)
}

func TestHiddenPostIDs(t *testing.T) {
	db, _, gc := setupCacheTest(t)
	ctx := context.Background()

	hiddenRepo := repository.NewHiddenPostRepository(db)
	require.NoError(t, hiddenRepo.Hide(ctx, "alice", "p1"))

	ids, err := gc.HiddenPostIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)

	require.NoError(t, hiddenRepo.Unhide(ctx, "alice", "p1"))
	gc.InvalidateHidden(ctx, "alice")

	ids, err = gc.HiddenPostIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEmptySetsAreNotCached(t *testing.T) {
	db, mr, gc := setupCacheTest(t)
	ctx := context.Background()

	ids, err := gc.FollowingIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.False(t, mr.Exists("graph:following:alice"))

	// 空集不缓存，第一条边写入后立即可见
	followRepo := repository.NewFollowRepository(db)
	_, err = followRepo.Create(ctx, "alice", "bob")
	require.NoError(t, err)
	ids, err = gc.FollowingIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, ids)
}

func TestNilRedisClientFallsBackToDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Follow{}, &model.HiddenPost{}))

	gc := NewGraphCache(
		repository.NewFollowRepository(db),
		repository.NewHiddenPostRepository(db),
		nil,
		0,
	)
	ctx := context.Background()
	followRepo := repository.NewFollowRepository(db)
	_, err = followRepo.Create(ctx, "alice", "bob")
	require.NoError(t, err)

	ids, err := gc.FollowingIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, ids)
	gc.InvalidateFollowing(ctx, "alice") // no-op，不 panic
}
