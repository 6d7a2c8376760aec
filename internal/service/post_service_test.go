package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

func newTestPostService(db *gorm.DB) PostService {
	return NewPostService(
		db,
		repository.NewPostRepository(db),
		repository.NewUserRepository(db),
		repository.NewFollowRepository(db),
		repository.NewHiddenPostRepository(db),
		nil,
	)
}

func TestCreatePost(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")

	svc := newTestPostService(db)
	p, err := svc.Create(ctx, author.ID, CreatePostInput{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, model.PostTypeOriginal, p.Type)
	assert.Equal(t, model.PrivacyPublic, p.Privacy, "privacy defaults to public")

	_, err = svc.Create(ctx, author.ID, CreatePostInput{Content: "  "})
	assert.ErrorIs(t, err, ErrEmptyPost)

	// 纯媒体帖合法
	p, err = svc.Create(ctx, author.ID, CreatePostInput{Images: []string{"https://cdn.example.com/a.jpg"}})
	require.NoError(t, err)
	assert.Len(t, p.Images, 1)

	_, err = svc.Create(ctx, author.ID, CreatePostInput{Content: "x", Privacy: "everyone"})
	assert.ErrorIs(t, err, ErrInvalidPrivacy)
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	other := seedUser(t, db, "other")

	svc := newTestPostService(db)
	p, err := svc.Create(ctx, author.ID, CreatePostInput{Content: "v1"})
	require.NoError(t, err)

	newContent := "v2"
	_, err = svc.Update(ctx, other.ID, p.ID, UpdatePostInput{Content: &newContent})
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	updated, err := svc.Update(ctx, author.ID, p.ID, UpdatePostInput{Content: &newContent})
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Content)

	_, err = svc.Update(ctx, author.ID, p.ID, UpdatePostInput{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	// 不允许同时清空内容和媒体
	empty := " "
	_, err = svc.Update(ctx, author.ID, p.ID, UpdatePostInput{Content: &empty})
	assert.ErrorIs(t, err, ErrEmptyPost)
}

func TestSharePostResolvesOneLevel(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	sharer := seedUser(t, db, "sharer")
	resharer := seedUser(t, db, "resharer")

	svc := newTestPostService(db)
	original, err := svc.Create(ctx, author.ID, CreatePostInput{Content: "original"})
	require.NoError(t, err)

	shared, err := svc.Share(ctx, sharer.ID, original.ID, CreatePostInput{Content: "look"})
	require.NoError(t, err)
	assert.Equal(t, model.PostTypeShared, shared.Type)
	require.NotNil(t, shared.SharedPostID)
	assert.Equal(t, original.ID, *shared.SharedPostID)

	// 转发一条转发：引用回最初的原帖，保持一层解析
	reshared, err := svc.Share(ctx, resharer.ID, shared.ID, CreatePostInput{})
	require.NoError(t, err)
	require.NotNil(t, reshared.SharedPostID)
	assert.Equal(t, original.ID, *reshared.SharedPostID)

	var p model.Post
	require.NoError(t, db.First(&p, "id = ?", original.ID).Error)
	assert.Equal(t, int64(2), p.ShareCount)
}

func TestHideUnhideAffectsFeedCandidates(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	viewer := seedUser(t, db, "viewer")
	author := seedUser(t, db, "author")

	svc := newTestPostService(db)
	p, err := svc.Create(ctx, author.ID, CreatePostInput{Content: "noise"})
	require.NoError(t, err)

	require.NoError(t, svc.Hide(ctx, viewer.ID, p.ID))
	// 重复隐藏幂等
	require.NoError(t, svc.Hide(ctx, viewer.ID, p.ID))

	hiddenRepo := repository.NewHiddenPostRepository(db)
	ids, err := hiddenRepo.ListHiddenIDs(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, ids)

	postRepo := repository.NewPostRepository(db)
	visible, err := postRepo.ListVisible(ctx, viewer.ID, ids)
	require.NoError(t, err)
	assert.Empty(t, visible)

	require.NoError(t, svc.Unhide(ctx, viewer.ID, p.ID))
	ids, err = hiddenRepo.ListHiddenIDs(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, svc.Hide(ctx, viewer.ID, "missing"), ErrPostNotFound)
}

func TestDeletePost(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	other := seedUser(t, db, "other")

	svc := newTestPostService(db)
	p, err := svc.Create(ctx, author.ID, CreatePostInput{Content: "bye"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, other.ID, p.ID), ErrNotPostAuthor)
	require.NoError(t, svc.Delete(ctx, author.ID, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, author.ID, p.ID), ErrPostNotFound)
}

func TestListFollowedPosts(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	viewer := seedUser(t, db, "viewer")
	friend := seedUser(t, db, "friend")
	stranger := seedUser(t, db, "stranger")

	followRepo := repository.NewFollowRepository(db)
	_, err := followRepo.Create(ctx, viewer.ID, friend.ID)
	require.NoError(t, err)

	now := time.Now()
	seedPost(t, db, "p-old", friend.ID, model.PrivacyPublic, now.Add(-2*time.Hour))
	seedPost(t, db, "p-new", friend.ID, model.PrivacyPublic, now.Add(-time.Hour))
	seedPost(t, db, "p-stranger", stranger.ID, model.PrivacyPublic, now)

	svc := newTestPostService(db)
	views, meta, err := svc.ListFollowed(ctx, viewer.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, views, 2)
	// 按时间倒序，只含关注对象
	assert.Equal(t, "p-new", views[0].ID)
	assert.Equal(t, "p-old", views[1].ID)
	assert.Equal(t, int64(2), meta.Total)
}
