package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/model"
)

// Jitter 打分时附加的随机扰动，避免每次刷新看到完全相同的顺序。
// 可注入以便测试关闭随机性。
type Jitter func() float64

// ZeroJitter 关闭扰动，排序完全确定
func ZeroJitter() float64 { return 0 }

// NewCoinJitter 返回 {0,1} 均匀随机扰动，seed 固定时序列可复现
func NewCoinJitter(seed int64) Jitter {
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return float64(rng.Intn(2))
	}
}

// 衰减互动分的信号权重
const (
	engagementReactionWeight = 1
	engagementCommentWeight  = 3
	engagementShareWeight    = 5
)

// FeedScorer 信息流综合打分：关注加成 + 热度加成 + 新鲜度加成 + 扰动。
// 每次请求对全部候选帖全量重算，不落任何持久化的分值。
type FeedScorer struct {
	cfg    config.FeedConfig
	jitter Jitter
	now    func() time.Time
}

func NewFeedScorer(cfg config.FeedConfig, jitter Jitter) *FeedScorer {
	if jitter == nil {
		if cfg.JitterEnabled {
			jitter = NewCoinJitter(time.Now().UnixNano())
		} else {
			jitter = ZeroJitter
		}
	}
	return &FeedScorer{cfg: cfg, jitter: jitter, now: time.Now}
}

// Score 单帖综合分 = 确定性基础分 + 扰动
func (s *FeedScorer) Score(p *model.Post, following map[string]struct{}) float64 {
	return s.BaseScore(p, following, s.now()) + s.jitter()
}

// BaseScore 不含扰动的确定性部分；计数与时间固定时结果固定
func (s *FeedScorer) BaseScore(p *model.Post, following map[string]struct{}, now time.Time) float64 {
	var score float64

	if _, ok := following[p.AuthorID]; ok {
		score += s.cfg.AffinityBonus
	}

	if s.popular(p, now) {
		score += s.cfg.PopularityBonus
	}

	window := time.Duration(s.cfg.FreshnessWindowHours) * time.Hour
	if now.Sub(p.CreatedAt) <= window {
		score += s.cfg.FreshnessBonus
	}

	return score
}

func (s *FeedScorer) popular(p *model.Post, now time.Time) bool {
	if s.cfg.UseDecayedEngagement {
		return s.Engagement(p, now) >= s.cfg.EngagementThreshold
	}
	return float64(p.TotalReactions) >= s.cfg.PopularityThreshold
}

// Engagement 重力式衰减互动分：
//
//	(1*totalReactions + 3*commentCount + 5*shareCount) / (base + ageHours)^exp
//
// base=2、exp=1.5 时权重大约几小时减半，新帖的高互动远重于旧帖
func (s *FeedScorer) Engagement(p *model.Post, now time.Time) float64 {
	weighted := float64(engagementReactionWeight*p.TotalReactions +
		engagementCommentWeight*p.CommentCount +
		engagementShareWeight*p.ShareCount)
	ageHours := now.Sub(p.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return weighted / math.Pow(s.cfg.DecayBase+ageHours, s.cfg.DecayExponent)
}
