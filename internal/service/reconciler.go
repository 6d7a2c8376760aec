package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// CounterReconciler 定期把冗余计数校准回真实记录数。冗余计数平时只走
// 事务内增减，但异步冗余（fans）丢任务或历史数据损坏时会漂移，这里兜底
type CounterReconciler struct {
	db   *gorm.DB
	cron *cron.Cron
	spec string
}

func NewCounterReconciler(db *gorm.DB, spec string) *CounterReconciler {
	if spec == "" {
		spec = "@hourly"
	}
	return &CounterReconciler{db: db, cron: cron.New(), spec: spec}
}

// Start 按 cron 表达式调度；返回停止函数
func (r *CounterReconciler) Start() (func(), error) {
	_, err := r.cron.AddFunc(r.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := r.ReconcileOnce(ctx); err != nil {
			logger.Error("counter reconcile failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	r.cron.Start()
	return func() { <-r.cron.Stop().Done() }, nil
}

// ReconcileOnce 全量重算一遍所有冗余计数，并修复 fans 冗余表
func (r *CounterReconciler) ReconcileOnce(ctx context.Context) error {
	start := time.Now()

	// 帖子/评论的分类型反应计数与总数
	for _, target := range []struct{ table, kind string }{
		{"posts", "post"},
		{"comments", "comment"},
	} {
		for rtype, col := range map[string]string{
			"like": "like_count", "love": "love_count", "haha": "haha_count",
			"wow": "wow_count", "sad": "sad_count", "angry": "angry_count",
		} {
			if err := r.db.WithContext(ctx).Exec(
				`UPDATE `+target.table+` SET `+col+` = (
					SELECT COUNT(*) FROM reactions
					WHERE reactions.target_kind = ? AND reactions.target_id = `+target.table+`.id AND reactions.type = ?
				)`, target.kind, rtype).Error; err != nil {
				return err
			}
		}
		if err := r.db.WithContext(ctx).Exec(
			`UPDATE ` + target.table + ` SET total_reactions = like_count + love_count + haha_count + wow_count + sad_count + angry_count`).Error; err != nil {
			return err
		}
	}

	// 帖子的评论数与转发数
	if err := r.db.WithContext(ctx).Exec(
		`UPDATE posts SET comment_count = (
			SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id
		)`).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Exec(
		`UPDATE posts SET share_count = (
			SELECT COUNT(*) FROM posts p2 WHERE p2.shared_post_id = posts.id
		)`).Error; err != nil {
		return err
	}

	// 评论的回复数
	if err := r.db.WithContext(ctx).Exec(
		`UPDATE comments SET reply_count = (
			SELECT COUNT(*) FROM comments c2 WHERE c2.parent_id = comments.id
		)`).Error; err != nil {
		return err
	}

	// 用户关注/粉丝计数
	if err := r.db.WithContext(ctx).Exec(
		`UPDATE users SET following_count = (
			SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id
		), follower_count = (
			SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id
		)`).Error; err != nil {
		return err
	}

	// fans 冗余与 follows 对账：补插丢失的边，清掉已取关的孤儿
	backfilled, err := r.resyncFans(ctx)
	if err != nil {
		return err
	}

	logger.Info("counter reconcile done",
		zap.Int("fans_backfilled", backfilled), zap.Duration("took", time.Since(start)))
	return nil
}

// resyncFans 以 follows 为准修复 fans 冗余表。replicator 队列满时会丢任务，
// 丢掉的边在这里补回；返回补插条数
func (r *CounterReconciler) resyncFans(ctx context.Context) (int, error) {
	var missing []struct {
		FolloweeID string
		FollowerID string
	}
	if err := r.db.WithContext(ctx).Raw(
		`SELECT followee_id, follower_id FROM follows
		 WHERE NOT EXISTS (
			SELECT 1 FROM fans
			WHERE fans.user_id = follows.followee_id AND fans.fan_id = follows.follower_id
		 )`).Scan(&missing).Error; err != nil {
		return 0, err
	}
	fans := repository.NewFanRepository(r.db)
	for _, m := range missing {
		if err := fans.Create(ctx, m.FolloweeID, m.FollowerID); err != nil {
			return 0, err
		}
	}

	if err := r.db.WithContext(ctx).Exec(
		`DELETE FROM fans WHERE NOT EXISTS (
			SELECT 1 FROM follows
			WHERE follows.followee_id = fans.user_id AND follows.follower_id = fans.fan_id
		)`).Error; err != nil {
		return 0, err
	}
	return len(missing), nil
}
