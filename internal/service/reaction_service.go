package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

var (
	ErrInvalidReactionType = errors.New("invalid reaction type")
	ErrInvalidTargetKind   = errors.New("invalid reaction target kind")
	ErrTargetNotFound      = errors.New("reaction target not found")
)

// ReactionView 反应 + 用户摘要
type ReactionView struct {
	model.Reaction
	User model.AuthorSummary `json:"user"`
}

// ReactionService 反应读写。(user, target) 唯一：换类型是更新既有记录，
// 计数在同一事务内经 ApplyDelta 从旧类型移到新类型
type ReactionService interface {
	Set(ctx context.Context, userID, targetKind, targetID, reactionType string) (*model.Reaction, error)
	Remove(ctx context.Context, userID, targetKind, targetID string) error
	ListByTarget(ctx context.Context, targetKind, targetID string, page, limit int) ([]*ReactionView, error)
}

type reactionService struct {
	db       *gorm.DB
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	notifier NotificationService
}

func NewReactionService(
	db *gorm.DB,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	notifier NotificationService,
) ReactionService {
	return &reactionService{db: db, posts: posts, comments: comments, users: users, notifier: notifier}
}

// targetOwner 校验目标存在并返回其作者（通知用）
func (s *reactionService) targetOwner(ctx context.Context, targetKind, targetID string) (string, error) {
	switch targetKind {
	case model.TargetPost:
		p, err := s.posts.GetByID(ctx, targetID)
		if err != nil {
			return "", err
		}
		if p == nil {
			return "", ErrTargetNotFound
		}
		return p.AuthorID, nil
	case model.TargetComment:
		c, err := s.comments.GetByID(ctx, targetID)
		if err != nil {
			return "", err
		}
		if c == nil {
			return "", ErrTargetNotFound
		}
		return c.AuthorID, nil
	}
	return "", ErrInvalidTargetKind
}

func (s *reactionService) Set(ctx context.Context, userID, targetKind, targetID, reactionType string) (*model.Reaction, error) {
	if !model.IsValidReactionType(reactionType) {
		return nil, ErrInvalidReactionType
	}
	ownerID, err := s.targetOwner(ctx, targetKind, targetID)
	if err != nil {
		return nil, err
	}

	var (
		result  *model.Reaction
		created bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reactions := repository.NewReactionRepository(tx)
		existing, err := reactions.Find(ctx, userID, targetKind, targetID)
		if err != nil {
			return err
		}
		switch {
		case existing == nil:
			re := &model.Reaction{
				ID:         uuid.New().String(),
				UserID:     userID,
				TargetKind: targetKind,
				TargetID:   targetID,
				Type:       reactionType,
			}
			if err := reactions.Create(ctx, re); err != nil {
				return err
			}
			if err := reactions.ApplyDelta(ctx, targetKind, targetID, reactionType, +1); err != nil {
				return err
			}
			result = re
			created = true
		case existing.Type == reactionType:
			// 同类型重复提交：幂等
			result = existing
		default:
			// 类型迁移：旧类型 -1，新类型 +1，总数不变
			if err := reactions.UpdateType(ctx, existing.ID, reactionType); err != nil {
				return err
			}
			if err := reactions.ApplyDelta(ctx, targetKind, targetID, existing.Type, -1); err != nil {
				return err
			}
			if err := reactions.ApplyDelta(ctx, targetKind, targetID, reactionType, +1); err != nil {
				return err
			}
			existing.Type = reactionType
			result = existing
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created && s.notifier != nil {
		var postID, commentID *string
		if targetKind == model.TargetPost {
			postID = &targetID
		} else {
			commentID = &targetID
		}
		s.notifier.Notify(ctx, model.NotifyReaction, ownerID, userID, postID, commentID)
	}
	return result, nil
}

func (s *reactionService) Remove(ctx context.Context, userID, targetKind, targetID string) error {
	if !model.IsValidTargetKind(targetKind) {
		return ErrInvalidTargetKind
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reactions := repository.NewReactionRepository(tx)
		existing, err := reactions.Find(ctx, userID, targetKind, targetID)
		if err != nil {
			return err
		}
		// 没有反应可删：幂等返回
		if existing == nil {
			return nil
		}
		if err := reactions.Delete(ctx, existing.ID); err != nil {
			return err
		}
		return reactions.ApplyDelta(ctx, targetKind, targetID, existing.Type, -1)
	})
}

func (s *reactionService) ListByTarget(ctx context.Context, targetKind, targetID string, page, limit int) ([]*ReactionView, error) {
	if !model.IsValidTargetKind(targetKind) {
		return nil, ErrInvalidTargetKind
	}
	page = normalizePage(page)
	limit = normalizeLimit(limit, 10, 100)

	items, err := repository.NewReactionRepository(s.db).ListByTarget(ctx, targetKind, targetID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, re := range items {
		if _, ok := seen[re.UserID]; !ok {
			seen[re.UserID] = struct{}{}
			userIDs = append(userIDs, re.UserID)
		}
	}
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.AuthorSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}

	res := make([]*ReactionView, 0, len(items))
	for _, re := range items {
		res = append(res, &ReactionView{Reaction: *re, User: byID[re.UserID]})
	}
	return res, nil
}
