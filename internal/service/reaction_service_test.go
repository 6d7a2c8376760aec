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

func newTestReactionService(db *gorm.DB, notifier NotificationService) ReactionService {
	return NewReactionService(
		db,
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		repository.NewUserRepository(db),
		notifier,
	)
}

func reloadPost(t *testing.T, db *gorm.DB, id string) *model.Post {
	t.Helper()
	var p model.Post
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return &p
}

func TestSetReactionCreate(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")
	post := seedPost(t, db, "p1", author.ID, model.PrivacyPublic, time.Now())

	svc := newTestReactionService(db, nil)
	re, err := svc.Set(ctx, reader.ID, model.TargetPost, post.ID, model.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionLike, re.Type)

	p := reloadPost(t, db, post.ID)
	assert.Equal(t, int64(1), p.LikeCount)
	assert.Equal(t, int64(1), p.TotalReactions)
}

func TestSetReactionIdempotentSameType(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")
	post := seedPost(t, db, "p1", author.ID, model.PrivacyPublic, time.Now())

	svc := newTestReactionService(db, nil)
	_, err := svc.Set(ctx, reader.ID, model.TargetPost, post.ID, model.ReactionLike)
	require.NoError(t, err)
	_, err = svc.Set(ctx, reader.ID, model.TargetPost, post.ID, model.ReactionLike)
	require.NoError(t, err)

	p := reloadPost(t, db, post.ID)
	assert.Equal(t, int64(1), p.LikeCount)
	assert.Equal(t, int64(1), p.TotalReactions)

	var rows int64
	require.NoError(t, db.Model(&model.Reaction{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestSetReactionTypeTransition(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")
	post := seedPost(t, db, "p1", author.ID, model.PrivacyPublic, time.Now())

	svc := newTestReactionService(db, nil)
	_, err := svc.Set(ctx, reader.ID, model.TargetPost, post.ID, model.ReactionLike)
	require.NoError(t, err)
	re, err := svc.Set(ctx, reader.ID, model.TargetPost, post.ID, model.ReactionLove)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionLove, re.Type)

	// 旧类型 -1、新类型 +1，总数不变，始终单行
	p := reloadPost(t, db, post.ID)
	assert.Equal(t, int64(0), p.LikeCount)
	assert.Equal(t, int64(1), p.LoveCount)
	assert.Equal(t, int64(1), p.TotalReactions)

	var rows int64
	require.NoError(t, db.Model(&model.Reaction{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestRemoveReaction(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")
	post := seedPost(t, db, "p1", author.ID, model.PrivacyPublic, time.Now())

	svc := newTestReactionService(db, nil)
	_, err := svc.Set(ctx, reader.ID, model.TargetPost, post.ID, model.ReactionWow)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, reader.ID, model.TargetPost, post.ID))

	p := reloadPost(t, db, post.ID)
	assert.Equal(t, int64(0), p.WowCount)
	assert.Equal(t, int64(0), p.TotalReactions)

	// 再删一次幂等成功
	assert.NoError(t, svc.Remove(ctx, reader.ID, model.TargetPost, post.ID))
}

func TestReactionOnComment(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")
	post := seedPost(t, db, "p1", author.ID, model.PrivacyPublic, time.Now())
	c := &model.Comment{ID: "c1", PostID: post.ID, AuthorID: author.ID, Content: "hi"}
	require.NoError(t, db.Create(c).Error)

	svc := newTestReactionService(db, nil)
	_, err := svc.Set(ctx, reader.ID, model.TargetComment, c.ID, model.ReactionHaha)
	require.NoError(t, err)

	var got model.Comment
	require.NoError(t, db.First(&got, "id = ?", c.ID).Error)
	assert.Equal(t, int64(1), got.HahaCount)
	assert.Equal(t, int64(1), got.TotalReactions)
	// 帖子计数不受评论反应影响
	assert.Equal(t, int64(0), reloadPost(t, db, post.ID).TotalReactions)
}

func TestSetReactionValidation(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	post := seedPost(t, db, "p1", author.ID, model.PrivacyPublic, time.Now())

	svc := newTestReactionService(db, nil)

	_, err := svc.Set(ctx, author.ID, model.TargetPost, post.ID, "dislike")
	assert.ErrorIs(t, err, ErrInvalidReactionType)

	_, err = svc.Set(ctx, author.ID, "story", post.ID, model.ReactionLike)
	assert.ErrorIs(t, err, ErrInvalidTargetKind)

	_, err = svc.Set(ctx, author.ID, model.TargetPost, "missing", model.ReactionLike)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	err = svc.Remove(ctx, author.ID, "story", post.ID)
	assert.ErrorIs(t, err, ErrInvalidTargetKind)
}

func TestSetReactionNotifiesOnlyOnCreate(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")
	post := seedPost(t, db, "p1", author.ID, model.PrivacyPublic, time.Now())

	notifier := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
	)
	svc := newTestReactionService(db, notifier)

	_, err := svc.Set(ctx, reader.ID, model.TargetPost, post.ID, model.ReactionLike)
	require.NoError(t, err)
	// 类型切换不再发通知
	_, err = svc.Set(ctx, reader.ID, model.TargetPost, post.ID, model.ReactionSad)
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&model.Notification{}).Where("user_id = ?", author.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestListReactionsByTarget(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author")
	a := seedUser(t, db, "a")
	b := seedUser(t, db, "b")
	post := seedPost(t, db, "p1", author.ID, model.PrivacyPublic, time.Now())

	svc := newTestReactionService(db, nil)
	_, err := svc.Set(ctx, a.ID, model.TargetPost, post.ID, model.ReactionLike)
	require.NoError(t, err)
	_, err = svc.Set(ctx, b.ID, model.TargetPost, post.ID, model.ReactionAngry)
	require.NoError(t, err)

	views, err := svc.ListByTarget(ctx, model.TargetPost, post.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.NotEmpty(t, v.User.ID)
		assert.NotEmpty(t, v.User.FullName)
	}
}
