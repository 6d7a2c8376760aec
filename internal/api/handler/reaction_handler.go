package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type setReactionRequest struct {
	TargetKind string `json:"targetKind" binding:"required,oneof=post comment"`
	TargetID   string `json:"targetId" binding:"required"`
	Type       string `json:"type" binding:"required,reactiontype"`
}

// SetReaction 添加或切换反应
// @Summary 添加/切换反应
// @Tags 反应
// @Accept json
// @Produce json
// @Param request body setReactionRequest true "反应"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/reactions [post]
func (h *Handler) SetReaction(c *gin.Context) {
	var req setReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	re, err := h.reactionSvc.Set(c.Request.Context(), middleware.UserID(c), req.TargetKind, req.TargetID, req.Type)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, re)
}

type removeReactionRequest struct {
	TargetKind string `json:"targetKind" binding:"required,oneof=post comment"`
	TargetID   string `json:"targetId" binding:"required"`
}

// RemoveReaction 移除反应（幂等）
// @Summary 移除反应
// @Tags 反应
// @Accept json
// @Produce json
// @Param request body removeReactionRequest true "反应目标"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/reactions [delete]
func (h *Handler) RemoveReaction(c *gin.Context) {
	var req removeReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.reactionSvc.Remove(c.Request.Context(), middleware.UserID(c), req.TargetKind, req.TargetID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListReactions 查询目标的反应列表
// @Summary 查询目标的反应
// @Tags 反应
// @Param kind path string true "目标类型" Enums(post, comment)
// @Param id path string true "目标ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/reactions/{kind}/{id} [get]
func (h *Handler) ListReactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	views, err := h.reactionSvc.ListByTarget(c.Request.Context(), c.Param("kind"), c.Param("id"), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"reactions": views})
}
