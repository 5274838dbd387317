package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"aphs/backend/internal/dto"
	"aphs/backend/internal/service"
	"aphs/backend/pkg/response"
)

// StructureHandler 项目结构定制模块 HTTP 处理器
type StructureHandler struct {
	structureSvc service.StructureService
}

// NewStructureHandler 创建 StructureHandler
func NewStructureHandler(structureSvc service.StructureService) *StructureHandler {
	return &StructureHandler{structureSvc: structureSvc}
}

// GetStructure 获取项目过滤后的结构视图
// GET /api/v1/projects/:id/structure?phase=conception&lang=fr
func (h *StructureHandler) GetStructure(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.StructureViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	view, err := h.structureSvc.View(c.Request.Context(), projectID, req.PhaseID, req.Language)
	if err != nil {
		h.handleStructureError(c, err)
		return
	}

	response.OK(c, view)
}

// DeleteStructure 删除分区或子分区（软删除，幂等）
// DELETE /api/v1/projects/:id/structure/:sectionId?phase=conception&subsection=A1
func (h *StructureHandler) DeleteStructure(c *gin.Context) {
	projectID := c.Param("id")
	sectionID := c.Param("sectionId")
	if projectID == "" || sectionID == "" {
		response.BadRequest(c, 10001, "项目ID与分区ID不能为空")
		return
	}

	var req dto.DeleteStructureRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var err error
	if req.SubsectionID == "" {
		err = h.structureSvc.DeleteSection(c.Request.Context(), projectID, req.PhaseID, sectionID, callerID)
	} else {
		err = h.structureSvc.DeleteSubsection(c.Request.Context(), projectID, req.PhaseID, sectionID, req.SubsectionID, callerID)
	}
	if err != nil {
		h.handleStructureError(c, err)
		return
	}

	response.OK(c, nil)
}

// RestoreStructure 恢复被删除的分区或子分区（精确键匹配）
// POST /api/v1/projects/:id/structure/:sectionId/restore?phase=conception&subsection=A1
func (h *StructureHandler) RestoreStructure(c *gin.Context) {
	projectID := c.Param("id")
	sectionID := c.Param("sectionId")
	if projectID == "" || sectionID == "" {
		response.BadRequest(c, 10001, "项目ID与分区ID不能为空")
		return
	}

	var req dto.DeleteStructureRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var subsectionID *string
	if req.SubsectionID != "" {
		subsectionID = &req.SubsectionID
	}

	if err := h.structureSvc.Restore(c.Request.Context(), projectID, req.PhaseID, sectionID, subsectionID); err != nil {
		h.handleStructureError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListOverrides 获取项目的结构定制记录
// GET /api/v1/projects/:id/structure/overrides?phase=conception
func (h *StructureHandler) ListOverrides(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	phaseID := c.Query("phase")
	if phaseID == "" {
		response.BadRequest(c, 10001, "phase 不能为空")
		return
	}

	overrides, err := h.structureSvc.ListOverrides(c.Request.Context(), projectID, phaseID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": overrides})
}

// handleStructureError 统一处理结构定制模块业务错误
func (h *StructureHandler) handleStructureError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 16005, "分区不存在")
	case errors.Is(err, service.ErrSubsectionNotFound):
		response.NotFound(c, 16006, "子分区不存在")
	default:
		response.InternalError(c)
	}
}
