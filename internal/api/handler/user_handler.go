package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/social-feed/internal/api/middleware"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/response"
)

type registerRequest struct {
	FullName string `json:"fullName" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register 注册
// @Summary 注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userSvc.Register(c.Request.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, u)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
// @Summary 登录并签发 token
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.userSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token, "user": u})
}

// GetProfile 查询用户资料；user_id 传 me 表示自己
// @Summary 查询用户资料
// @Tags 用户
// @Param user_id path string true "用户ID，me 表示自己"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/users/{user_id} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	id := c.Param("user_id")
	if id == "me" {
		id = middleware.UserID(c)
	}
	u, err := h.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, u)
}

type updateProfileRequest struct {
	FullName      *string `json:"fullName" binding:"omitempty,min=1,max=100"`
	Avatar        *string `json:"avatar"`
	Bio           *string `json:"bio"`
	ShowFollowers *bool   `json:"showFollowers"`
	ShowFollowing *bool   `json:"showFollowing"`
}

// UpdateProfile 更新自己的资料
// @Summary 更新自己的资料
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body updateProfileRequest true "更新字段"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/users/me [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userSvc.UpdateProfile(c.Request.Context(), middleware.UserID(c), service.UpdateProfileInput{
		FullName:      req.FullName,
		Avatar:        req.Avatar,
		Bio:           req.Bio,
		ShowFollowers: req.ShowFollowers,
		ShowFollowing: req.ShowFollowing,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, u)
}
