package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/pkg/response"
)

// ListNotifications 通知列表
// @Summary 通知列表
// @Tags 通知
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Security BearerAuth
// @Router /api/v1/notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	userID := middleware.UserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, err := h.notifySvc.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	unread, err := h.notifySvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"notifications": items, "unread": unread})
}

// MarkNotificationRead 标记单条已读
// @Summary 标记通知已读
// @Tags 通知
// @Param id path string true "通知ID"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/notifications/{id}/read [post]
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.notifySvc.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllNotificationsRead 全部标记已读
// @Summary 全部通知标记已读
// @Tags 通知
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/notifications/read-all [post]
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.notifySvc.MarkAllRead(c.Request.Context(), middleware.UserID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
