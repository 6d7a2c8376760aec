package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/api"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/database"
	"github.com/d60-Lab/social-feed/pkg/logger"
	"github.com/d60-Lab/social-feed/pkg/tracing"
)

// @title Social Feed API
// @version 1.0
// @description 社交信息流服务：帖子、评论、反应、关系链与个性化排序。
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.L().Fatal("init database", zap.Error(err))
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.L().Fatal("init sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	if cfg.Trace.Enabled {
		shutdown, err := tracing.Init(ctx, cfg.Trace.Endpoint, cfg.Trace.Service)
		if err != nil {
			logger.L().Fatal("init tracing", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.L().Warn("redis unreachable, graph cache degrades to db reads", zap.Error(err))
		}
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	hiddenRepo := repository.NewHiddenPostRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	graphCache := cache.NewGraphCache(followRepo, hiddenRepo, rdb, cfg.Redis.TTL)

	replicator := service.NewFanReplicator(fanRepo, 100000)
	stopReplicator := replicator.Start(8)

	jitter := service.ZeroJitter
	if cfg.Feed.JitterEnabled {
		jitter = service.NewCoinJitter(time.Now().UnixNano())
	}
	scorer := service.NewFeedScorer(cfg.Feed, jitter)

	notifySvc := service.NewNotificationService(notificationRepo, userRepo)
	userSvc := service.NewUserService(userRepo, cfg.JWT)
	postSvc := service.NewPostService(db, postRepo, userRepo, followRepo, hiddenRepo, graphCache)
	commentSvc := service.NewCommentService(db, commentRepo, postRepo, userRepo, reactionRepo, notifySvc)
	reactionSvc := service.NewReactionService(db, postRepo, commentRepo, userRepo, notifySvc)
	relSvc := service.NewRelationshipService(db, userRepo, followRepo, fanRepo, replicator, graphCache, notifySvc)
	feedSvc := service.NewFeedService(postRepo, userRepo, reactionRepo, graphCache, scorer,
		cfg.Feed.DefaultPageSize, cfg.Feed.MaxPageSize)

	var stopReconciler func()
	if cfg.Reconcile.Enabled {
		reconciler := service.NewCounterReconciler(db, cfg.Reconcile.Cron)
		stop, err := reconciler.Start()
		if err != nil {
			logger.L().Fatal("start reconciler", zap.Error(err))
		}
		stopReconciler = stop
	}

	h := handler.New(userSvc, postSvc, commentSvc, reactionSvc, relSvc, feedSvc, notifySvc)
	router := api.NewRouter(cfg, h)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.L().Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("server shutdown", zap.Error(err))
	}
	if stopReconciler != nil {
		stopReconciler()
	}
	if err := stopReplicator(shutdownCtx); err != nil {
		logger.L().Error("replicator drain", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
