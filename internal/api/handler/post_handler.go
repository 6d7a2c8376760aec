package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type createPostRequest struct {
	Content string   `json:"content"`
	Privacy string   `json:"privacy" binding:"omitempty,privacy"`
	Images  []string `json:"images" binding:"omitempty,max=10,dive,url"`
	Videos  []string `json:"videos" binding:"omitempty,max=4,dive,url"`
}

// CreatePost 发帖
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "帖子内容"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.postSvc.Create(c.Request.Context(), middleware.UserID(c), service.CreatePostInput{
		Content: req.Content,
		Privacy: req.Privacy,
		Images:  req.Images,
		Videos:  req.Videos,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, p)
}

// GetPost 查询单帖
// @Summary 查询单帖
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	p, err := h.postSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, p)
}

// ListPosts 帖子列表（作者过滤 / 搜索 / 排序）
// @Summary 帖子列表
// @Tags 帖子
// @Param author_id query string false "作者ID"
// @Param search query string false "内容搜索"
// @Param sort_by query string false "排序字段" Enums(createdAt, updatedAt, totalReactions, commentCount)
// @Param order query string false "排序方向" Enums(asc, desc)
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	views, meta, err := h.postSvc.List(c.Request.Context(), service.PostListQuery{
		AuthorID: c.Query("author_id"),
		Search:   c.Query("search"),
		SortBy:   c.DefaultQuery("sort_by", "createdAt"),
		Order:    c.DefaultQuery("order", "desc"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"data": views, "meta": meta})
}

type updatePostRequest struct {
	Content *string  `json:"content"`
	Privacy *string  `json:"privacy" binding:"omitempty,privacy"`
	Images  []string `json:"images" binding:"omitempty,max=10,dive,url"`
	Videos  []string `json:"videos" binding:"omitempty,max=4,dive,url"`
}

// UpdatePost 更新帖子（仅作者）
// @Summary 更新帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body updatePostRequest true "更新字段"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.postSvc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), service.UpdatePostInput{
		Content: req.Content,
		Privacy: req.Privacy,
		Images:  req.Images,
		Videos:  req.Videos,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, p)
}

// DeletePost 删帖（仅作者）
// @Summary 删帖
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postSvc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

type sharePostRequest struct {
	Content string `json:"content"`
	Privacy string `json:"privacy" binding:"omitempty,privacy"`
}

// SharePost 转发
// @Summary 转发帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path string true "被转发帖子ID"
// @Param request body sharePostRequest true "转发附言"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/share [post]
func (h *Handler) SharePost(c *gin.Context) {
	var req sharePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.postSvc.Share(c.Request.Context(), middleware.UserID(c), c.Param("id"), service.CreatePostInput{
		Content: req.Content,
		Privacy: req.Privacy,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, p)
}

// HidePost 从自己的信息流隐藏帖子
// @Summary 隐藏帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/hide [post]
func (h *Handler) HidePost(c *gin.Context) {
	if err := h.postSvc.Hide(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// UnhidePost 取消隐藏
// @Summary 取消隐藏
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/hide [delete]
func (h *Handler) UnhidePost(c *gin.Context) {
	if err := h.postSvc.Unhide(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFollowedPosts 关注流（按时间）
// @Summary 关注对象的帖子
// @Tags 帖子
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Security BearerAuth
// @Router /api/v1/posts/followed [get]
func (h *Handler) ListFollowedPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	views, meta, err := h.postSvc.ListFollowed(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"data": views, "meta": meta})
}
