package dto

import "aphs/backend/internal/catalog"

// ── 项目结构模块 DTO ──

// StructureViewRequest 过滤后结构视图查询参数
type StructureViewRequest struct {
	PhaseID  string `form:"phase"    binding:"required,oneof=conception realisation"`
	Language string `form:"lang"     binding:"omitempty,oneof=fr en"`
}

// DeleteStructureRequest 删除分区/子分区请求
// Subsection 为空时删除整个分区
type DeleteStructureRequest struct {
	PhaseID      string `form:"phase"      binding:"required,oneof=conception realisation"`
	SubsectionID string `form:"subsection" binding:"omitempty,max=10"`
}

// StructureViewResponse 过滤后结构视图响应
type StructureViewResponse struct {
	ProjectID string            `json:"project_id"`
	PhaseID   string            `json:"phase_id"`
	Language  string            `json:"language"`
	Sections  []catalog.Section `json:"sections"`
	// Fallback 为 true 表示定制查询失败，返回的是未过滤的默认目录
	Fallback bool `json:"fallback,omitempty"`
}

// OverrideResponse 结构定制记录响应
type OverrideResponse struct {
	ID           string  `json:"id"`
	ProjectID    string  `json:"project_id"`
	PhaseID      string  `json:"phase_id"`
	SectionID    string  `json:"section_id"`
	SubsectionID *string `json:"subsection_id,omitempty"`
	IsDeleted    bool    `json:"is_deleted"`
	DeletedBy    string  `json:"deleted_by"`
	DeletedAt    string  `json:"deleted_at"`
}
