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
	ErrCommentNotFound  = errors.New("comment not found")
	ErrEmptyComment     = errors.New("comment content is empty")
	ErrParentMismatch   = errors.New("parent comment does not belong to this post")
	ErrNotCommentAuthor = errors.New("not allowed to delete this comment")
)

// CommentView 评论 + 请求者相关的富化字段
type CommentView struct {
	model.Comment
	Author         model.AuthorSummary `json:"author"`
	ReactionCounts map[string]int64    `json:"reactionCounts"`
	IsOwner        bool                `json:"isOwner"`
	UserReaction   *string             `json:"userReaction"`
}

// CommentService 评论读写。创建/删除连同帖子与父评论的计数在一个事务里
type CommentService interface {
	Create(ctx context.Context, userID, postID, content string, parentID *string) (*CommentView, error)
	// ListByPost 顶层评论：请求者自己的在前，再按反应数与时间
	ListByPost(ctx context.Context, requesterID, postID string, page, limit int) ([]*CommentView, error)
	ListReplies(ctx context.Context, requesterID, parentID string, page, limit int) ([]*CommentView, error)
	// Delete 评论作者或帖子作者可删
	Delete(ctx context.Context, userID, commentID string) error
}

type commentService struct {
	db        *gorm.DB
	comments  repository.CommentRepository
	posts     repository.PostRepository
	users     repository.UserRepository
	reactions repository.ReactionRepository
	notifier  NotificationService
}

func NewCommentService(
	db *gorm.DB,
	comments repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	reactions repository.ReactionRepository,
	notifier NotificationService,
) CommentService {
	return &commentService{db: db, comments: comments, posts: posts, users: users, reactions: reactions, notifier: notifier}
}

func (s *commentService) Create(ctx context.Context, userID, postID, content string, parentID *string) (*CommentView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrCommentNotFound
		}
		if parent.PostID != postID {
			return nil, ErrParentMismatch
		}
	}

	c := &model.Comment{
		ID:       uuid.New().String(),
		PostID:   postID,
		AuthorID: userID,
		ParentID: parentID,
		Content:  content,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCommentRepository(tx).Create(ctx, c); err != nil {
			return err
		}
		if parentID != nil {
			if err := tx.Model(&model.Comment{}).
				Where("id = ?", *parentID).
				Update("reply_count", gorm.Expr("reply_count + ?", 1)).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", postID).
			Update("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, model.NotifyComment, post.AuthorID, userID, &postID, &c.ID)
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &CommentView{
		Comment:        *c,
		ReactionCounts: c.ReactionCounts(),
		IsOwner:        true,
	}
	if author != nil {
		view.Author = author.Summary()
	}
	return view, nil
}

func (s *commentService) ListByPost(ctx context.Context, requesterID, postID string, page, limit int) ([]*CommentView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	page = normalizePage(page)
	limit = normalizeLimit(limit, 10, 100)
	comments, err := s.comments.ListTopLevel(ctx, postID, requesterID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requesterID, comments)
}

func (s *commentService) ListReplies(ctx context.Context, requesterID, parentID string, page, limit int) ([]*CommentView, error) {
	parent, err := s.comments.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrCommentNotFound
	}

	page = normalizePage(page)
	limit = normalizeLimit(limit, 10, 100)
	replies, err := s.comments.ListReplies(ctx, parentID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requesterID, replies)
}

func (s *commentService) Delete(ctx context.Context, userID, commentID string) error {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCommentNotFound
	}
	post, err := s.posts.GetByID(ctx, c.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if c.AuthorID != userID && post.AuthorID != userID {
		return ErrNotCommentAuthor
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCommentRepository(tx).Delete(ctx, commentID); err != nil {
			return err
		}
		if c.ParentID != nil {
			if err := tx.Model(&model.Comment{}).
				Where("id = ?", *c.ParentID).
				Update("reply_count", gorm.Expr("reply_count - ?", 1)).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", c.PostID).
			Update("comment_count", gorm.Expr("comment_count - ?", 1)).Error
	})
}

// enrich 批量补作者摘要与请求者自己的反应
func (s *commentService) enrich(ctx context.Context, requesterID string, comments []*model.Comment) ([]*CommentView, error) {
	ids := make([]string, 0, len(comments))
	authorIDs := make([]string, 0, len(comments))
	seen := make(map[string]struct{}, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
		if _, ok := seen[c.AuthorID]; !ok {
			seen[c.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}

	ownReactions, err := s.reactions.ListForTargets(ctx, requesterID, model.TargetComment, ids)
	if err != nil {
		return nil, err
	}
	reactionByComment := make(map[string]string, len(ownReactions))
	for _, re := range ownReactions {
		reactionByComment[re.TargetID] = re.Type
	}

	authors, err := s.users.ListByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.AuthorSummary, len(authors))
	for _, u := range authors {
		byID[u.ID] = u.Summary()
	}

	views := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		view := &CommentView{
			Comment:        *c,
			Author:         byID[c.AuthorID],
			ReactionCounts: c.ReactionCounts(),
			IsOwner:        c.AuthorID == requesterID,
		}
		if t, ok := reactionByComment[c.ID]; ok {
			rt := t
			view.UserReaction = &rt
		}
		views = append(views, view)
	}
	return views, nil
}
