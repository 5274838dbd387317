package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"aphs/backend/internal/service"
	"aphs/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTaskReport 导出项目任务报表（Excel，双阶段工作表）
// GET /api/v1/projects/:id/export/report?lang=fr
func (h *ExportHandler) ExportTaskReport(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	lang := c.DefaultQuery("lang", "fr")
	buf, filename, err := h.exportSvc.ExportTaskReport(c.Request.Context(), projectID, lang)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, contentTypeXLSX, filename, buf.Bytes())
}

// ExportDeadlineCalendar 导出未完成任务的截止日历（iCalendar）
// GET /api/v1/projects/:id/export/calendar
func (h *ExportHandler) ExportDeadlineCalendar(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportDeadlineCalendar(c.Request.Context(), projectID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, contentTypeICS, filename, buf.Bytes())
}

// writeDownload 设置下载响应头并写出文件体
func writeDownload(c *gin.Context, contentType, filename string, body []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, body)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportProjectNotFound):
		response.NotFound(c, 16002, "项目不存在")
	case errors.Is(err, service.ErrExportNoTasks):
		response.BadRequest(c, 15001, "该项目暂无可导出的任务")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
