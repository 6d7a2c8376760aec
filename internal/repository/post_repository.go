package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

// PostQuery 帖子列表查询条件
type PostQuery struct {
	AuthorID string
	Search   string
	SortBy   string // createdAt | updatedAt | totalReactions | commentCount
	Order    string // asc | desc
	Offset   int
	Limit    int
}

// 允许的排序字段 -> 列名
var postSortColumns = map[string]string{
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
	"totalReactions": "total_reactions",
	"commentCount":   "comment_count",
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	// List 带总数的通用列表（作者过滤 / 内容搜索 / 白名单排序）
	List(ctx context.Context, q PostQuery) ([]*model.Post, int64, error)
	// ListByAuthors 关注流：指定作者集合按时间倒序，带总数
	ListByAuthors(ctx context.Context, authorIDs []string, offset, limit int) ([]*model.Post, int64, error)
	// ListVisible 个性化信息流候选集：排除隐藏帖，公开帖或请求者自己的帖
	ListVisible(ctx context.Context, requesterID string, hiddenIDs []string) ([]*model.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Post, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{}).Error
}

func (r *postRepository) List(ctx context.Context, q PostQuery) ([]*model.Post, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Post{})
	if q.AuthorID != "" {
		tx = tx.Where("author_id = ?", q.AuthorID)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		tx = tx.Where("content LIKE ?", "%"+s+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := postSortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if q.Order == "asc" {
		dir = "ASC"
	}

	var posts []*model.Post
	err := tx.Order(col + " " + dir).Offset(q.Offset).Limit(q.Limit).Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []string, offset, limit int) ([]*model.Post, int64, error) {
	if len(authorIDs) == 0 {
		return nil, 0, nil
	}
	tx := r.db.WithContext(ctx).Model(&model.Post{}).Where("author_id IN ?", authorIDs)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*model.Post
	err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}

func (r *postRepository) ListVisible(ctx context.Context, requesterID string, hiddenIDs []string) ([]*model.Post, error) {
	tx := r.db.WithContext(ctx).
		Where("privacy = ? OR author_id = ?", model.PrivacyPublic, requesterID)
	// 空隐藏集直接省掉 NOT IN
	if len(hiddenIDs) > 0 {
		tx = tx.Where("id NOT IN ?", hiddenIDs)
	}
	var posts []*model.Post
	err := tx.Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []*model.Post
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}
