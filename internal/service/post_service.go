package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostAuthor   = errors.New("not the author of this post")
	ErrEmptyPost       = errors.New("post needs content or media")
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrInvalidPrivacy  = errors.New("invalid privacy value")
)

// CreatePostInput 发帖参数
type CreatePostInput struct {
	Content string
	Privacy string
	Images  []string
	Videos  []string
}

// UpdatePostInput 更新参数；nil 字段表示不更新
type UpdatePostInput struct {
	Content *string
	Privacy *string
	Images  []string
	Videos  []string
}

// PostView 帖子 + 作者摘要
type PostView struct {
	model.Post
	Author         model.AuthorSummary `json:"author"`
	ReactionCounts map[string]int64    `json:"reactionCounts"`
}

// PostService 帖子 CRUD、转发、隐藏与关注流
type PostService interface {
	Create(ctx context.Context, authorID string, in CreatePostInput) (*model.Post, error)
	Get(ctx context.Context, id string) (*PostView, error)
	List(ctx context.Context, q PostListQuery) ([]*PostView, *Pagination, error)
	Update(ctx context.Context, userID, id string, in UpdatePostInput) (*model.Post, error)
	Delete(ctx context.Context, userID, id string) error
	// Share 转发：事务内新建 shared 帖并为被转发帖 +1 转发计数；
	// 转发一条转发时引用其原帖，保持一层解析
	Share(ctx context.Context, userID, postID string, in CreatePostInput) (*model.Post, error)
	Hide(ctx context.Context, userID, postID string) error
	Unhide(ctx context.Context, userID, postID string) error
	// ListFollowed 关注流：关注对象的帖子按时间倒序，带分页元信息
	ListFollowed(ctx context.Context, userID string, page, limit int) ([]*PostView, *Pagination, error)
}

// PostListQuery 通用帖子列表查询
type PostListQuery struct {
	AuthorID string
	Search   string
	SortBy   string
	Order    string
	Page     int
	Limit    int
}

type postService struct {
	db      *gorm.DB
	posts   repository.PostRepository
	users   repository.UserRepository
	follows repository.FollowRepository
	hidden  repository.HiddenPostRepository
	cache   GraphInvalidator
}

func NewPostService(
	db *gorm.DB,
	posts repository.PostRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	hidden repository.HiddenPostRepository,
	cache GraphInvalidator,
) PostService {
	return &postService{db: db, posts: posts, users: users, follows: follows, hidden: hidden, cache: cache}
}

func (s *postService) Create(ctx context.Context, authorID string, in CreatePostInput) (*model.Post, error) {
	if strings.TrimSpace(in.Content) == "" && len(in.Images) == 0 && len(in.Videos) == 0 {
		return nil, ErrEmptyPost
	}
	if in.Privacy == "" {
		in.Privacy = model.PrivacyPublic
	}
	if !model.IsValidPrivacy(in.Privacy) {
		return nil, ErrInvalidPrivacy
	}
	p := &model.Post{
		ID:       uuid.New().String(),
		AuthorID: authorID,
		Type:     model.PostTypeOriginal,
		Privacy:  in.Privacy,
		Content:  in.Content,
		Images:   in.Images,
		Videos:   in.Videos,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) Get(ctx context.Context, id string) (*PostView, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	views, err := s.attachAuthors(ctx, []*model.Post{p})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *postService) List(ctx context.Context, q PostListQuery) ([]*PostView, *Pagination, error) {
	page := normalizePage(q.Page)
	limit := normalizeLimit(q.Limit, 10, 100)
	posts, total, err := s.posts.List(ctx, repository.PostQuery{
		AuthorID: q.AuthorID,
		Search:   q.Search,
		SortBy:   q.SortBy,
		Order:    q.Order,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, nil, err
	}
	views, err := s.attachAuthors(ctx, posts)
	if err != nil {
		return nil, nil, err
	}
	return views, newPagination(total, page, limit), nil
}

func (s *postService) Update(ctx context.Context, userID, id string, in UpdatePostInput) (*model.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	if p.AuthorID != userID {
		return nil, ErrNotPostAuthor
	}
	if in.Content == nil && in.Privacy == nil && in.Images == nil && in.Videos == nil {
		return nil, ErrNothingToUpdate
	}

	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Videos != nil {
		p.Videos = in.Videos
	}
	// 不允许把内容和媒体同时清空
	if strings.TrimSpace(p.Content) == "" && len(p.Images) == 0 && len(p.Videos) == 0 {
		return nil, ErrEmptyPost
	}
	if in.Privacy != nil {
		if !model.IsValidPrivacy(*in.Privacy) {
			return nil, ErrInvalidPrivacy
		}
		p.Privacy = *in.Privacy
	}

	if err := s.posts.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) Delete(ctx context.Context, userID, id string) error {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPostNotFound
	}
	if p.AuthorID != userID {
		return ErrNotPostAuthor
	}
	return s.posts.Delete(ctx, id)
}

func (s *postService) Share(ctx context.Context, userID, postID string, in CreatePostInput) (*model.Post, error) {
	original, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, ErrPostNotFound
	}
	// 转发的转发引用最初的原帖
	refID := original.ID
	if original.Type == model.PostTypeShared && original.SharedPostID != nil {
		refID = *original.SharedPostID
	}
	if in.Privacy == "" {
		in.Privacy = model.PrivacyPublic
	}
	if !model.IsValidPrivacy(in.Privacy) {
		return nil, ErrInvalidPrivacy
	}

	shared := &model.Post{
		ID:           uuid.New().String(),
		AuthorID:     userID,
		Type:         model.PostTypeShared,
		Privacy:      in.Privacy,
		Content:      in.Content,
		SharedPostID: &refID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewPostRepository(tx).Create(ctx, shared); err != nil {
			return err
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", refID).
			Update("share_count", gorm.Expr("share_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return shared, nil
}

func (s *postService) Hide(ctx context.Context, userID, postID string) error {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPostNotFound
	}
	if err := s.hidden.Hide(ctx, userID, postID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateHidden(ctx, userID)
	}
	return nil
}

func (s *postService) Unhide(ctx context.Context, userID, postID string) error {
	if err := s.hidden.Unhide(ctx, userID, postID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateHidden(ctx, userID)
	}
	return nil
}

func (s *postService) ListFollowed(ctx context.Context, userID string, page, limit int) ([]*PostView, *Pagination, error) {
	page = normalizePage(page)
	limit = normalizeLimit(limit, 10, 100)

	followingIDs, err := s.follows.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(followingIDs) == 0 {
		return []*PostView{}, newPagination(0, page, limit), nil
	}

	posts, total, err := s.posts.ListByAuthors(ctx, followingIDs, (page-1)*limit, limit)
	if err != nil {
		return nil, nil, err
	}
	views, err := s.attachAuthors(ctx, posts)
	if err != nil {
		return nil, nil, err
	}
	return views, newPagination(total, page, limit), nil
}

// attachAuthors 批量补作者摘要
func (s *postService) attachAuthors(ctx context.Context, posts []*model.Post) ([]*PostView, error) {
	ids := make([]string, 0, len(posts))
	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; !ok {
			seen[p.AuthorID] = struct{}{}
			ids = append(ids, p.AuthorID)
		}
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.AuthorSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}

	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, &PostView{
			Post:           *p,
			Author:         byID[p.AuthorID],
			ReactionCounts: p.ReactionCounts(),
		})
	}
	return views, nil
}
