package dto

// ── 任务指派模块 DTO ──

// CreateTaskRequest 创建任务指派请求
type CreateTaskRequest struct {
	PhaseID            string   `json:"phase_id"            binding:"required,oneof=conception realisation"`
	SectionID          string   `json:"section_id"          binding:"required,max=10"`
	SubsectionID       string   `json:"subsection_id"       binding:"required,max=10"`
	TaskName           string   `json:"task_name"           binding:"required,max=200"`
	AssignedTo         string   `json:"assigned_to"         binding:"required,uuid"`
	Deadline           string   `json:"deadline"            binding:"required,datetime=2006-01-02"`
	ValidationDeadline string   `json:"validation_deadline" binding:"required,datetime=2006-01-02"`
	Validators         []string `json:"validators"          binding:"required,min=1,dive,uuid"`
	FileExtension      string   `json:"file_extension"      binding:"required,max=10"`
	Comment            string   `json:"comment"             binding:"max=2000"`
}

// SubmitTaskRequest 提交任务请求（multipart 表单，文件另取）
type SubmitTaskRequest struct {
	Comment string `form:"comment" binding:"max=2000"`
}

// ReviewTaskRequest 校验/驳回任务请求
type ReviewTaskRequest struct {
	Comment string `json:"comment" binding:"max=2000"`
}

// TaskListRequest 任务列表查询参数
type TaskListRequest struct {
	PhaseID    string `form:"phase_id"    binding:"omitempty,oneof=conception realisation"`
	Status     string `form:"status"      binding:"omitempty,oneof=assigned submitted validated rejected"`
	AssignedTo string `form:"assigned_to" binding:"omitempty,uuid"`
	PaginationRequest
}

// ── 响应 ──

// TaskResponse 任务指派响应
type TaskResponse struct {
	ID                 string   `json:"id"`
	ProjectID          string   `json:"project_id"`
	PhaseID            string   `json:"phase_id"`
	SectionID          string   `json:"section_id"`
	SubsectionID       string   `json:"subsection_id"`
	TaskName           string   `json:"task_name"`
	AssignedTo         string   `json:"assigned_to"`
	Assignee           *ProfileResponse `json:"assignee,omitempty"`
	Deadline           string   `json:"deadline"`
	ValidationDeadline string   `json:"validation_deadline"`
	Validators         []string `json:"validators"`
	FileExtension      string   `json:"file_extension"`
	Comment            string   `json:"comment,omitempty"`
	Status             string   `json:"status"`
	FileURL            *string  `json:"file_url,omitempty"`
	FileName           *string  `json:"file_name,omitempty"`
	FileSize           *int64   `json:"file_size,omitempty"`
	SubmittedAt        *string  `json:"submitted_at,omitempty"`
	ValidatedAt        *string  `json:"validated_at,omitempty"`
	ValidatedBy        *string  `json:"validated_by,omitempty"`
	ValidationComment  *string  `json:"validation_comment,omitempty"`
	CompletedAt        *string  `json:"completed_at,omitempty"`
	Version            int      `json:"version"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// TaskHistoryResponse 任务审计记录响应
type TaskHistoryResponse struct {
	ID             string  `json:"id"`
	TaskID         string  `json:"task_id"`
	ProjectID      string  `json:"project_id"`
	Action         string  `json:"action"`
	PreviousStatus *string `json:"previous_status,omitempty"`
	NewStatus      *string `json:"new_status,omitempty"`
	PerformedBy    string  `json:"performed_by"`
	PerformedAt    string  `json:"performed_at"`
	Comments       *string `json:"comments,omitempty"`
}

// ── 任务说明书 DTO ──

// InfoSheetQueryRequest 任务说明书查询参数
type InfoSheetQueryRequest struct {
	PhaseID      string `form:"phase_id"      binding:"required,oneof=conception realisation"`
	SectionID    string `form:"section_id"    binding:"required,max=10"`
	SubsectionID string `form:"subsection_id" binding:"required,max=10"`
	TaskName     string `form:"task_name"     binding:"required,max=200"`
	Language     string `form:"language"      binding:"omitempty,oneof=fr en"`
}

// UpsertInfoSheetRequest 写入任务说明书请求
type UpsertInfoSheetRequest struct {
	PhaseID      string `json:"phase_id"      binding:"required,oneof=conception realisation"`
	SectionID    string `json:"section_id"    binding:"required,max=10"`
	SubsectionID string `json:"subsection_id" binding:"required,max=10"`
	TaskName     string `json:"task_name"     binding:"required,max=200"`
	Language     string `json:"language"      binding:"required,oneof=fr en"`
	Content      string `json:"content"       binding:"required"`
}

// InfoSheetResponse 任务说明书响应
type InfoSheetResponse struct {
	PhaseID      string `json:"phase_id"`
	SectionID    string `json:"section_id"`
	SubsectionID string `json:"subsection_id"`
	TaskName     string `json:"task_name"`
	Language     string `json:"language"`
	Content      string `json:"content"`
	UpdatedAt    string `json:"updated_at"`
}

// ── 旧版数据导入 DTO ──

// LegacyTaskPayload 旧版任务形态（阶段三元组编码在描述文本中）
type LegacyTaskPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"       binding:"required,max=200"`
	TaskType    string `json:"task_type"   binding:"max=20"`
	Description string `json:"description" binding:"max=2000"`
	Priority    string `json:"priority"    binding:"max=20"`
	Status      string `json:"status"      binding:"omitempty,oneof=assigned submitted validated rejected"`
	AssignedTo  string `json:"assigned_to" binding:"required,uuid"`
	DueDate     string `json:"due_date"    binding:"required,datetime=2006-01-02"`
}

// LegacyImportRequest 批量导入旧版任务请求。
// 旧数据不含校验人与校验截止时间，由导入方统一补齐
type LegacyImportRequest struct {
	Validators         []string            `json:"validators"          binding:"required,min=1,dive,uuid"`
	ValidationDeadline string              `json:"validation_deadline" binding:"required,datetime=2006-01-02"`
	FileExtension      string              `json:"file_extension"      binding:"omitempty,max=10"`
	Tasks              []LegacyTaskPayload `json:"tasks"               binding:"required,min=1,dive"`
}

// LegacyImportResult 批量导入结果
type LegacyImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ── 通知 DTO ──

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	IsRead    bool    `json:"is_read"`
	TaskID    *string `json:"task_id,omitempty"`
	ProjectID *string `json:"project_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}
