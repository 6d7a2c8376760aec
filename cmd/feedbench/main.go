package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/database"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	_ = logger.Init(cfg.Server.Mode)
	db := must(database.InitDB(cfg))

	// N 个用户、每人 POSTS 条帖子、观察者关注 FOLLOW 人
	N := envInt("N", 1000)
	POSTS := envInt("POSTS", 10)
	FOLLOW := envInt("FOLLOW", 50)
	REQS := envInt("REQS", 200)
	PAGE := envInt("PAGE", 20)
	if FOLLOW > N {
		FOLLOW = N
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	followRepo := repository.NewFollowRepository(db)
	hiddenRepo := repository.NewHiddenPostRepository(db)
	graph := cache.NewGraphCache(followRepo, hiddenRepo, nil, 0)
	scorer := service.NewFeedScorer(cfg.Feed, service.ZeroJitter)
	feedSvc := service.NewFeedService(postRepo, userRepo, reactionRepo, graph, scorer,
		cfg.Feed.DefaultPageSize, cfg.Feed.MaxPageSize)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))

	viewer := model.User{ID: "viewer", FullName: "viewer", Email: "viewer@example.com", Password: "p"}
	_ = db.Where("id = ?", viewer.ID).FirstOrCreate(&viewer).Error

	users := make([]model.User, N)
	batch := 1000
	for i := 0; i < N; i++ {
		id := uuid.New().String()
		users[i] = model.User{ID: id, FullName: "u" + id[:8], Email: id[:8] + "@example.com", Password: "p"}
		if (i+1)%batch == 0 {
			sub := users[i+1-batch : i+1]
			_ = db.Create(&sub).Error
		}
	}
	if N%batch != 0 {
		sub := users[N-N%batch:]
		_ = db.Create(&sub).Error
	}

	for i := 0; i < FOLLOW; i++ {
		_, _ = followRepo.Create(ctx, viewer.ID, users[i].ID)
	}

	posts := make([]model.Post, 0, N*POSTS)
	now := time.Now()
	for i := 0; i < N; i++ {
		for j := 0; j < POSTS; j++ {
			posts = append(posts, model.Post{
				ID:             uuid.New().String(),
				AuthorID:       users[i].ID,
				Type:           model.PostTypeOriginal,
				Privacy:        model.PrivacyPublic,
				Content:        "bench",
				TotalReactions: int64(rng.Intn(200)),
				CreatedAt:      now.Add(-time.Duration(rng.Intn(72)) * time.Hour),
			})
		}
	}
	for i := 0; i < len(posts); i += batch {
		end := i + batch
		if end > len(posts) {
			end = len(posts)
		}
		sub := posts[i:end]
		_ = db.Create(&sub).Error
	}

	recs := make([]time.Duration, 0, REQS)
	t0 := time.Now()
	for i := 0; i < REQS; i++ {
		st := time.Now()
		_, err := feedSvc.GetFeed(ctx, viewer.ID, 1, PAGE)
		if err != nil {
			panic(err)
		}
		recs = append(recs, time.Since(st))
	}
	total := time.Since(t0)

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 {
			k = 0
		}
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}

	fmt.Printf("N=%d, POSTS=%d, FOLLOW=%d, REQS=%d, PAGE=%d\n", N, POSTS, FOLLOW, REQS, PAGE)
	fmt.Printf("GetFeed total: %v, per req: %v, p50: %v, p95: %v, p99: %v\n",
		total, total/time.Duration(REQS), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99))
}
