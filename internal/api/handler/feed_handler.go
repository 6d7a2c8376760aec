package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/pkg/response"
)

// GetFeed 个性化信息流
// @Summary 个性化信息流（打分排序）
// @Tags 信息流
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/feed [get]
func (h *Handler) GetFeed(c *gin.Context) {
	userID := middleware.UserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.feedSvc.GetFeed(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	// 信息流不回总数：省一次全量 count 扫描
	response.Success(c, gin.H{"posts": entries, "page": page, "limit": limit})
}
