package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

var (
	ErrFollowSelf       = errors.New("cannot follow self")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrListPrivate      = errors.New("this list is private")
)

// RelationshipService 关系链服务。关注/取关在一个事务里写边与双方计数，
// 任何一步失败整体回滚；粉丝表冗余与通知异步
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID string) error
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	// ListFollowers 粉丝列表，读 fans 冗余表（与 follows 最终一致）；
	// 非本人访问受 show_followers 开关约束
	ListFollowers(ctx context.Context, requesterID, profileID string, page, pageSize int) ([]model.AuthorSummary, error)
	ListFollowing(ctx context.Context, requesterID, profileID string, page, pageSize int) ([]model.AuthorSummary, error)
}

// GraphInvalidator 关系变更后失效缓存的回调口
type GraphInvalidator interface {
	InvalidateFollowing(ctx context.Context, userID string)
	InvalidateHidden(ctx context.Context, userID string)
}

type relationshipService struct {
	db         *gorm.DB
	users      repository.UserRepository
	follows    repository.FollowRepository
	fans       repository.FanRepository
	replicator *FanReplicator
	cache      GraphInvalidator
	notifier   NotificationService
}

func NewRelationshipService(
	db *gorm.DB,
	users repository.UserRepository,
	follows repository.FollowRepository,
	fans repository.FanRepository,
	replicator *FanReplicator,
	cache GraphInvalidator,
	notifier NotificationService,
) RelationshipService {
	return &relationshipService{
		db:         db,
		users:      users,
		follows:    follows,
		fans:       fans,
		replicator: replicator,
		cache:      cache,
		notifier:   notifier,
	}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == toUserID {
		return ErrFollowSelf
	}
	target, err := s.users.GetByID(ctx, toUserID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := repository.NewFollowRepository(tx).Create(ctx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		// 重复关注：拒绝且不动计数
		if !inserted {
			return ErrAlreadyFollowing
		}
		return applyFollowCounters(tx, fromUserID, toUserID, +1)
	})
	if err != nil {
		return err
	}

	if s.replicator != nil {
		s.replicator.EnqueueAdd(toUserID, fromUserID)
	}
	if s.cache != nil {
		s.cache.InvalidateFollowing(ctx, fromUserID)
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, model.NotifyFollow, toUserID, fromUserID, nil, nil)
	}
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := repository.NewFollowRepository(tx).Delete(ctx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFollowing
		}
		return applyFollowCounters(tx, fromUserID, toUserID, -1)
	})
	if err != nil {
		return err
	}

	if s.replicator != nil {
		s.replicator.EnqueueRemove(toUserID, fromUserID)
	}
	if s.cache != nil {
		s.cache.InvalidateFollowing(ctx, fromUserID)
	}
	return nil
}

// applyFollowCounters 双方计数同增同减，跟边的写入在同一事务
func applyFollowCounters(tx *gorm.DB, followerID, followeeID string, delta int64) error {
	if err := tx.Model(&model.User{}).
		Where("id = ?", followerID).
		Update("following_count", gorm.Expr("following_count + ?", delta)).Error; err != nil {
		return err
	}
	return tx.Model(&model.User{}).
		Where("id = ?", followeeID).
		Update("follower_count", gorm.Expr("follower_count + ?", delta)).Error
}

func (s *relationshipService) ListFollowers(ctx context.Context, requesterID, profileID string, page, pageSize int) ([]model.AuthorSummary, error) {
	profile, err := s.users.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}
	if requesterID != profileID && !profile.ShowFollowers {
		return nil, ErrListPrivate
	}

	page = normalizePage(page)
	pageSize = normalizeLimit(pageSize, 10, 100)
	// 粉丝页走 fans 冗余表；丢失的边由 reconciler 对账补齐
	edges, err := s.fans.ListFans(ctx, profileID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.FanID
	}
	return s.summaries(ctx, ids)
}

func (s *relationshipService) ListFollowing(ctx context.Context, requesterID, profileID string, page, pageSize int) ([]model.AuthorSummary, error) {
	profile, err := s.users.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}
	if requesterID != profileID && !profile.ShowFollowing {
		return nil, ErrListPrivate
	}

	page = normalizePage(page)
	pageSize = normalizeLimit(pageSize, 10, 100)
	edges, err := s.follows.ListFollowings(ctx, profileID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.FolloweeID
	}
	return s.summaries(ctx, ids)
}

// summaries 按 ids 原有顺序取用户摘要
func (s *relationshipService) summaries(ctx context.Context, ids []string) ([]model.AuthorSummary, error) {
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.AuthorSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}
	res := make([]model.AuthorSummary, 0, len(ids))
	for _, id := range ids {
		if sum, ok := byID[id]; ok {
			res = append(res, sum)
		}
	}
	return res, nil
}
