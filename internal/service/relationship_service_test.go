package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

func newTestRelationshipService(db *gorm.DB, replicator *FanReplicator, notifier NotificationService) RelationshipService {
	return NewRelationshipService(
		db,
		repository.NewUserRepository(db),
		repository.NewFollowRepository(db),
		repository.NewFanRepository(db),
		replicator,
		nil,
		notifier,
	)
}

func reloadUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	var u model.User
	require.NoError(t, db.First(&u, "id = ?", id).Error)
	return &u
}

func TestFollowUpdatesCounters(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	svc := newTestRelationshipService(db, nil, nil)
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))

	assert.Equal(t, int64(1), reloadUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(1), reloadUser(t, db, bob.ID).FollowerCount)

	var edges int64
	require.NoError(t, db.Model(&model.Follow{}).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)
}

func TestFollowDuplicateRejectedWithoutCounterDrift(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	svc := newTestRelationshipService(db, nil, nil)
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	err := svc.Follow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)

	// 拒绝的重复关注不能动计数
	assert.Equal(t, int64(1), reloadUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(1), reloadUser(t, db, bob.ID).FollowerCount)
}

func TestFollowValidation(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	svc := newTestRelationshipService(db, nil, nil)
	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, alice.ID), ErrFollowSelf)
	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, "ghost"), ErrUserNotFound)
}

func TestUnfollow(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	svc := newTestRelationshipService(db, nil, nil)
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))

	assert.Equal(t, int64(0), reloadUser(t, db, alice.ID).FollowingCount)
	assert.Equal(t, int64(0), reloadUser(t, db, bob.ID).FollowerCount)

	// 不存在的边
	assert.ErrorIs(t, svc.Unfollow(ctx, alice.ID, bob.ID), ErrNotFollowing)
	assert.Equal(t, int64(0), reloadUser(t, db, alice.ID).FollowingCount)
}

func TestFollowNotifiesTarget(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	notifier := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
	)
	svc := newTestRelationshipService(db, nil, notifier)
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))

	var n model.Notification
	require.NoError(t, db.First(&n, "user_id = ?", bob.ID).Error)
	assert.Equal(t, model.NotifyFollow, n.Kind)
	assert.Equal(t, alice.ID, n.ActorID)
}

func TestListFollowersPrivacyGate(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	replicator := NewFanReplicator(repository.NewFanRepository(db), 16)
	stop := replicator.Start(1)
	svc := newTestRelationshipService(db, replicator, nil)
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, carol.ID, bob.ID))
	// 排空冗余队列，粉丝页才读得到
	require.NoError(t, stop(context.Background()))

	// 默认公开
	list, err := svc.ListFollowers(ctx, alice.ID, bob.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// 关掉开关后非本人不可见，本人仍可见
	require.NoError(t, db.Model(&model.User{}).Where("id = ?", bob.ID).Update("show_followers", false).Error)
	_, err = svc.ListFollowers(ctx, alice.ID, bob.ID, 1, 10)
	assert.ErrorIs(t, err, ErrListPrivate)

	list, err = svc.ListFollowers(ctx, bob.ID, bob.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListFollowersServedFromFanRedundancy(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	// 没挂 replicator 时关注只写 follows，粉丝页读 fans，所以暂时为空
	svc := newTestRelationshipService(db, nil, nil)
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))

	list, err := svc.ListFollowers(ctx, bob.ID, bob.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, list)

	// reconciler 对账后补回丢失的边
	require.NoError(t, NewCounterReconciler(db, "").ReconcileOnce(ctx))
	list, err = svc.ListFollowers(ctx, bob.ID, bob.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, alice.ID, list[0].ID)
}

func TestListFollowingPrivacyGate(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	svc := newTestRelationshipService(db, nil, nil)
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))

	require.NoError(t, db.Model(&model.User{}).Where("id = ?", alice.ID).Update("show_following", false).Error)
	_, err := svc.ListFollowing(ctx, bob.ID, alice.ID, 1, 10)
	assert.ErrorIs(t, err, ErrListPrivate)

	list, err := svc.ListFollowing(ctx, alice.ID, alice.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bob.ID, list[0].ID)
}
