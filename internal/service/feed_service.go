package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

// GraphSource 信息流预取的社交图读取口（cache.GraphCache 实现；
// 测试可注入假实现）
type GraphSource interface {
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	HiddenPostIDs(ctx context.Context, userID string) ([]string, error)
}

// SharedPostSummary 被转发原帖的裁剪投影，只解析一层
type SharedPostSummary struct {
	ID        string              `json:"id"`
	Author    model.AuthorSummary `json:"author"`
	Content   string              `json:"content"`
	Images    []string            `json:"images"`
	Videos    []string            `json:"videos"`
	Privacy   string              `json:"privacy"`
	CreatedAt time.Time           `json:"createdAt"`
}

// FeedEntry 信息流条目：帖子 + 请求者相关的富化字段。
// 请求级临时视图，不落库。
type FeedEntry struct {
	ID             string              `json:"id"`
	Author         model.AuthorSummary `json:"author"`
	Type           string              `json:"type"`
	Privacy        string              `json:"privacy"`
	Content        string              `json:"content"`
	Images         []string            `json:"images"`
	Videos         []string            `json:"videos"`
	TotalReactions int64               `json:"totalReactions"`
	ReactionCounts map[string]int64    `json:"reactionCounts"`
	CommentCount   int64               `json:"commentCount"`
	ShareCount     int64               `json:"shareCount"`
	UserReaction   *string             `json:"userReaction"`
	SharedPost     *SharedPostSummary  `json:"sharedPost,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// FeedService 个性化信息流：过滤 -> 打分 -> 排序 -> 分页 -> 富化。
// 任一阶段出错整个请求失败，不返回半成品页。
type FeedService interface {
	GetFeed(ctx context.Context, userID string, page, limit int) ([]*FeedEntry, error)
}

type feedService struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	reactions repository.ReactionRepository
	graph     GraphSource
	scorer    *FeedScorer

	defaultPageSize int
	maxPageSize     int
}

func NewFeedService(
	posts repository.PostRepository,
	users repository.UserRepository,
	reactions repository.ReactionRepository,
	graph GraphSource,
	scorer *FeedScorer,
	defaultPageSize, maxPageSize int,
) FeedService {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &feedService{
		posts:     posts,
		users:     users,
		reactions: reactions,
		graph:     graph,
		scorer:    scorer,

		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

type scoredPost struct {
	post  *model.Post
	score float64
}

func (s *feedService) GetFeed(ctx context.Context, userID string, page, limit int) ([]*FeedEntry, error) {
	page = normalizePage(page)
	limit = normalizeLimit(limit, s.defaultPageSize, s.maxPageSize)

	// 关注集与隐藏集互不依赖，并发取；打分阶段等两者都就绪
	var (
		followingIDs []string
		hiddenIDs    []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.graph.FollowingIDs(gctx, userID)
		if err != nil {
			return fmt.Errorf("load following set: %w", err)
		}
		followingIDs = ids
		return nil
	})
	g.Go(func() error {
		ids, err := s.graph.HiddenPostIDs(gctx, userID)
		if err != nil {
			return fmt.Errorf("load hidden set: %w", err)
		}
		hiddenIDs = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 候选集：可见性过滤下推到存储层
	candidates, err := s.posts.ListVisible(ctx, userID, hiddenIDs)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []*FeedEntry{}, nil
	}

	following := make(map[string]struct{}, len(followingIDs))
	for _, id := range followingIDs {
		following[id] = struct{}{}
	}

	// 全量打分后整体排序，再切页
	scored := make([]scoredPost, len(candidates))
	for i, p := range candidates {
		scored[i] = scoredPost{post: p, score: s.scorer.Score(p, following)}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if !scored[i].post.CreatedAt.Equal(scored[j].post.CreatedAt) {
			return scored[i].post.CreatedAt.After(scored[j].post.CreatedAt)
		}
		return scored[i].post.ID > scored[j].post.ID
	})

	skip := (page - 1) * limit
	if skip >= len(scored) {
		return []*FeedEntry{}, nil
	}
	end := skip + limit
	if end > len(scored) {
		end = len(scored)
	}
	pagePosts := make([]*model.Post, 0, end-skip)
	for _, sp := range scored[skip:end] {
		pagePosts = append(pagePosts, sp.post)
	}

	return s.enrich(ctx, userID, pagePosts)
}

// enrich 只对当前页做富化：请求者自己的反应、被转发原帖、作者摘要，
// 全部批量查询
func (s *feedService) enrich(ctx context.Context, userID string, pagePosts []*model.Post) ([]*FeedEntry, error) {
	postIDs := make([]string, 0, len(pagePosts))
	sharedIDs := make([]string, 0)
	authorIDs := make(map[string]struct{})
	for _, p := range pagePosts {
		postIDs = append(postIDs, p.ID)
		authorIDs[p.AuthorID] = struct{}{}
		if p.SharedPostID != nil {
			sharedIDs = append(sharedIDs, *p.SharedPostID)
		}
	}

	ownReactions, err := s.reactions.ListForTargets(ctx, userID, model.TargetPost, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load own reactions: %w", err)
	}
	reactionByPost := make(map[string]string, len(ownReactions))
	for _, re := range ownReactions {
		reactionByPost[re.TargetID] = re.Type
	}

	sharedPosts, err := s.posts.ListByIDs(ctx, sharedIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve shared posts: %w", err)
	}
	sharedByID := make(map[string]*model.Post, len(sharedPosts))
	for _, sp := range sharedPosts {
		sharedByID[sp.ID] = sp
		authorIDs[sp.AuthorID] = struct{}{}
	}

	ids := make([]string, 0, len(authorIDs))
	for id := range authorIDs {
		ids = append(ids, id)
	}
	authors, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	authorByID := make(map[string]model.AuthorSummary, len(authors))
	for _, u := range authors {
		authorByID[u.ID] = u.Summary()
	}

	entries := make([]*FeedEntry, 0, len(pagePosts))
	for _, p := range pagePosts {
		author, ok := authorByID[p.AuthorID]
		if !ok {
			return nil, fmt.Errorf("author %s not found for post %s", p.AuthorID, p.ID)
		}
		entry := &FeedEntry{
			ID:             p.ID,
			Author:         author,
			Type:           p.Type,
			Privacy:        p.Privacy,
			Content:        p.Content,
			Images:         p.Images,
			Videos:         p.Videos,
			TotalReactions: p.TotalReactions,
			ReactionCounts: p.ReactionCounts(),
			CommentCount:   p.CommentCount,
			ShareCount:     p.ShareCount,
			CreatedAt:      p.CreatedAt,
		}
		if t, ok := reactionByPost[p.ID]; ok {
			rt := t
			entry.UserReaction = &rt
		}
		if p.SharedPostID != nil {
			sp, ok := sharedByID[*p.SharedPostID]
			if !ok {
				return nil, fmt.Errorf("shared post %s not found for post %s", *p.SharedPostID, p.ID)
			}
			spAuthor, ok := authorByID[sp.AuthorID]
			if !ok {
				return nil, fmt.Errorf("author %s not found for shared post %s", sp.AuthorID, sp.ID)
			}
			entry.SharedPost = &SharedPostSummary{
				ID:        sp.ID,
				Author:    spAuthor,
				Content:   sp.Content,
				Images:    sp.Images,
				Videos:    sp.Videos,
				Privacy:   sp.Privacy,
				CreatedAt: sp.CreatedAt,
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
