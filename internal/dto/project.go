package dto

// ── 项目模块 DTO ──

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name        string  `json:"name"        binding:"required,min=2,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	StartDate   string  `json:"start_date"  binding:"required,datetime=2006-01-02"`
	EndDate     *string `json:"end_date"    binding:"omitempty,datetime=2006-01-02"`
}

// UpdateProjectRequest 更新项目请求（整记录更新 + 乐观锁版本）
type UpdateProjectRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	StartDate   *string `json:"start_date"  binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date"    binding:"omitempty,datetime=2006-01-02"`
	Status      *string `json:"status"      binding:"omitempty,oneof=active completed paused cancelled"`
	Version     int     `json:"version"     binding:"required,min=1"`
}

// ProjectListRequest 项目列表查询参数
type ProjectListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=active completed paused cancelled"`
	PaginationRequest
}

// ── 响应 ──

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
	Status      string  `json:"status"`
	CreatedBy   *string `json:"created_by,omitempty"`
	Version     int     `json:"version"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ProjectStatsResponse 项目统计响应
// ProgressPercent 分母为该项目过滤后（应用结构定制）的任务总数；
// TotalAvailableTasks 为不过滤的全量目录任务数，供对照
type ProjectStatsResponse struct {
	ProjectID           string         `json:"project_id"`
	TotalAvailableTasks int            `json:"total_available_tasks"`
	FilteredTotalTasks  int            `json:"filtered_total_tasks"`
	AssignedCount       int64          `json:"assigned_count"`
	CountsByStatus      map[string]int64 `json:"counts_by_status"`
	ValidatedCount      int64          `json:"validated_count"`
	ProgressPercent     int            `json:"progress_percent"`
}
