package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"aphs/backend/internal/dto"
	"aphs/backend/internal/service"
	"aphs/backend/pkg/response"
)

// ProfileHandler 用户档案模块 HTTP 处理器（管理端）
type ProfileHandler struct {
	profileSvc service.ProfileService
}

// NewProfileHandler 创建 ProfileHandler
func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// CreateUser 创建用户
// POST /api/v1/users
func (h *ProfileHandler) CreateUser(c *gin.Context) {
	var req dto.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.Created(c, profile)
}

// ListUsers 获取用户列表（可按角色过滤，用于指派/校验人选择）
// GET /api/v1/users
func (h *ProfileHandler) ListUsers(c *gin.Context) {
	var req dto.ProfileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.profileSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser 获取用户详情
// GET /api/v1/users/:id
func (h *ProfileHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	profile, err := h.profileSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, profile)
}

// UpdateUser 更新用户
// PUT /api/v1/users/:id
func (h *ProfileHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, profile)
}

// handleProfileError 统一处理用户档案模块业务错误
func (h *ProfileHandler) handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 16001, "用户不存在")
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(c, http.StatusConflict, 12001, "该邮箱已被注册")
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 12002, "角色无效")
	default:
		response.InternalError(c)
	}
}
