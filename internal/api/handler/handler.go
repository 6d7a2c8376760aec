package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/response"
)

// Handler 聚合全部 service 的 HTTP 入口
type Handler struct {
	userSvc     service.UserService
	postSvc     service.PostService
	commentSvc  service.CommentService
	reactionSvc service.ReactionService
	relSvc      service.RelationshipService
	feedSvc     service.FeedService
	notifySvc   service.NotificationService
}

func New(
	userSvc service.UserService,
	postSvc service.PostService,
	commentSvc service.CommentService,
	reactionSvc service.ReactionService,
	relSvc service.RelationshipService,
	feedSvc service.FeedService,
	notifySvc service.NotificationService,
) *Handler {
	return &Handler{
		userSvc:     userSvc,
		postSvc:     postSvc,
		commentSvc:  commentSvc,
		reactionSvc: reactionSvc,
		relSvc:      relSvc,
		feedSvc:     feedSvc,
		notifySvc:   notifySvc,
	}
}

// writeServiceError 把 service 层的哨兵错误映射到统一响应
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrTargetNotFound),
		errors.Is(err, service.ErrNotFollowing):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotPostAuthor),
		errors.Is(err, service.ErrNotCommentAuthor),
		errors.Is(err, service.ErrListPrivate):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrFollowSelf),
		errors.Is(err, service.ErrAlreadyFollowing),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrEmptyPost),
		errors.Is(err, service.ErrNothingToUpdate),
		errors.Is(err, service.ErrInvalidPrivacy),
		errors.Is(err, service.ErrEmptyComment),
		errors.Is(err, service.ErrParentMismatch),
		errors.Is(err, service.ErrInvalidReactionType),
		errors.Is(err, service.ErrInvalidTargetKind):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
