package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

type ReactionRepository interface {
	// Find 查询某用户对某目标的反应；不存在时返回 (nil, nil)
	Find(ctx context.Context, userID, targetKind, targetID string) (*model.Reaction, error)
	// ListForTargets 批量查询某用户对一组目标的反应（信息流/评论页富化）
	ListForTargets(ctx context.Context, userID, targetKind string, targetIDs []string) ([]*model.Reaction, error)
	ListByTarget(ctx context.Context, targetKind, targetID string, offset, limit int) ([]*model.Reaction, error)
	Create(ctx context.Context, reaction *model.Reaction) error
	UpdateType(ctx context.Context, id, newType string) error
	Delete(ctx context.Context, id string) error
	// ApplyDelta 唯一的计数变更入口：按反应类型对帖子或评论的
	// 对应列与 total_reactions 做条件自增/自减，必须在调用方事务内执行
	ApplyDelta(ctx context.Context, targetKind, targetID, reactionType string, delta int64) error
}

type reactionRepository struct{ db *gorm.DB }

func NewReactionRepository(db *gorm.DB) ReactionRepository { return &reactionRepository{db: db} }

func (r *reactionRepository) Find(ctx context.Context, userID, targetKind, targetID string) (*model.Reaction, error) {
	var re model.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, targetKind, targetID).
		First(&re).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &re, nil
}

func (r *reactionRepository) ListForTargets(ctx context.Context, userID, targetKind string, targetIDs []string) ([]*model.Reaction, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}
	var res []*model.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id IN ?", userID, targetKind, targetIDs).
		Find(&res).Error
	return res, err
}

func (r *reactionRepository) ListByTarget(ctx context.Context, targetKind, targetID string, offset, limit int) ([]*model.Reaction, error) {
	var res []*model.Reaction
	err := r.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", targetKind, targetID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *reactionRepository) Create(ctx context.Context, reaction *model.Reaction) error {
	if reaction.ID == "" {
		reaction.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *reactionRepository) UpdateType(ctx context.Context, id, newType string) error {
	return r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("id = ?", id).
		Update("type", newType).Error
}

func (r *reactionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Reaction{}).Error
}

// 反应类型 -> 计数列
func reactionColumn(reactionType string) (string, error) {
	switch reactionType {
	case model.ReactionLike:
		return "like_count", nil
	case model.ReactionLove:
		return "love_count", nil
	case model.ReactionHaha:
		return "haha_count", nil
	case model.ReactionWow:
		return "wow_count", nil
	case model.ReactionSad:
		return "sad_count", nil
	case model.ReactionAngry:
		return "angry_count", nil
	}
	return "", fmt.Errorf("unknown reaction type %q", reactionType)
}

func (r *reactionRepository) ApplyDelta(ctx context.Context, targetKind, targetID, reactionType string, delta int64) error {
	col, err := reactionColumn(reactionType)
	if err != nil {
		return err
	}
	var table string
	switch targetKind {
	case model.TargetPost:
		table = model.Post{}.TableName()
	case model.TargetComment:
		table = model.Comment{}.TableName()
	default:
		return fmt.Errorf("unknown target kind %q", targetKind)
	}
	return r.db.WithContext(ctx).
		Table(table).
		Where("id = ?", targetID).
		Updates(map[string]interface{}{
			col:               gorm.Expr(col+" + ?", delta),
			"total_reactions": gorm.Expr("total_reactions + ?", delta),
		}).Error
}
