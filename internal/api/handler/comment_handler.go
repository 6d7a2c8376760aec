package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type createCommentRequest struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parentId"`
}

// CreateComment 评论帖子（parentId 非空时为回复）
// @Summary 评论帖子
// @Tags 评论
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body createCommentRequest true "评论内容"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.commentSvc.Create(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Content, req.ParentID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, view)
}

// ListComments 帖子的顶层评论
// @Summary 帖子的评论列表
// @Tags 评论
// @Param id path string true "帖子ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	views, err := h.commentSvc.ListByPost(c.Request.Context(), middleware.UserID(c), c.Param("id"), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"comments": views})
}

// ListReplies 评论的回复
// @Summary 评论的回复列表
// @Tags 评论
// @Param id path string true "评论ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/comments/{id}/replies [get]
func (h *Handler) ListReplies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	views, err := h.commentSvc.ListReplies(c.Request.Context(), middleware.UserID(c), c.Param("id"), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"comments": views})
}

// DeleteComment 删除评论（评论作者或帖子作者）
// @Summary 删除评论
// @Tags 评论
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.commentSvc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
