package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-feed/internal/model"
)

type HiddenPostRepository interface {
	// Hide 幂等：重复隐藏不报错
	Hide(ctx context.Context, userID, postID string) error
	Unhide(ctx context.Context, userID, postID string) error
	// ListHiddenIDs 返回用户隐藏的全部帖子 id
	ListHiddenIDs(ctx context.Context, userID string) ([]string, error)
}

type hiddenPostRepository struct{ db *gorm.DB }

func NewHiddenPostRepository(db *gorm.DB) HiddenPostRepository {
	return &hiddenPostRepository{db: db}
}

func (r *hiddenPostRepository) Hide(ctx context.Context, userID, postID string) error {
	h := &model.HiddenPost{ID: uuid.New().String(), UserID: userID, PostID: postID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(h).Error
}

func (r *hiddenPostRepository) Unhide(ctx context.Context, userID, postID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.HiddenPost{}).Error
}

func (r *hiddenPostRepository) ListHiddenIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.HiddenPost{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	return ids, err
}
