package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/social-feed/config"
	_ "github.com/d60-Lab/social-feed/docs"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/internal/model"
)

// registerValidators 注册自定义 binding 校验器
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("privacy", func(fl validator.FieldLevel) bool {
		return model.IsValidPrivacy(fl.Field().String())
	})
	_ = v.RegisterValidation("reactiontype", func(fl validator.FieldLevel) bool {
		return model.IsValidReactionType(fl.Field().String())
	})
}

// NewRouter 装配中间件与全部路由
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AccessLog())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Trace.Enabled {
		r.Use(otelgin.Middleware(cfg.Trace.Service))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// 无需登录的接口
	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/login", h.Login)
	v1.GET("/posts", h.ListPosts)
	v1.GET("/posts/:id", h.GetPost)

	authed := v1.Group("")
	authed.Use(middleware.Auth(cfg.JWT.Secret))
	{
		authed.GET("/feed", h.GetFeed)

		authed.GET("/users/:user_id", h.GetProfile)
		authed.PUT("/users/me", h.UpdateProfile)

		authed.POST("/posts", h.CreatePost)
		authed.GET("/posts/followed", h.ListFollowedPosts)
		authed.PUT("/posts/:id", h.UpdatePost)
		authed.DELETE("/posts/:id", h.DeletePost)
		authed.POST("/posts/:id/share", h.SharePost)
		authed.POST("/posts/:id/hide", h.HidePost)
		authed.DELETE("/posts/:id/hide", h.UnhidePost)

		authed.POST("/posts/:id/comments", h.CreateComment)
		authed.GET("/posts/:id/comments", h.ListComments)
		authed.GET("/comments/:id/replies", h.ListReplies)
		authed.DELETE("/comments/:id", h.DeleteComment)

		authed.POST("/reactions", h.SetReaction)
		authed.DELETE("/reactions", h.RemoveReaction)
		authed.GET("/reactions/:kind/:id", h.ListReactions)

		authed.POST("/relations/follow", h.Follow)
		authed.POST("/relations/unfollow", h.Unfollow)
		authed.GET("/relations/:user_id/following", h.ListFollowing)
		authed.GET("/relations/:user_id/followers", h.ListFollowers)

		authed.GET("/notifications", h.ListNotifications)
		authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		authed.POST("/notifications/:id/read", h.MarkNotificationRead)
	}

	return r
}
