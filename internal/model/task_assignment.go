package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// 任务状态常量（生命周期状态机）
const (
	TaskStatusAssigned  = "assigned"
	TaskStatusSubmitted = "submitted"
	TaskStatusValidated = "validated"
	TaskStatusRejected  = "rejected"
)

// 阶段常量
const (
	PhaseConception  = "conception"
	PhaseRealisation = "realisation"
)

// TaskAssignment 任务指派表 — 对应 task_assignments
// 逻辑身份：(project_id, phase_id, section_id, subsection_id, task_name) 项目内唯一。
// 阶段/分区/子分区为显式字段，不再以描述文本编码。
type TaskAssignment struct {
	TaskID             string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                                    json:"task_id"`
	ProjectID          string         `gorm:"type:uuid;not null;uniqueIndex:uniq_task_logical,priority:1"                       json:"project_id"`
	PhaseID            string         `gorm:"type:varchar(20);not null;uniqueIndex:uniq_task_logical,priority:2"                json:"phase_id"` // conception | realisation
	SectionID          string         `gorm:"type:varchar(10);not null;uniqueIndex:uniq_task_logical,priority:3"                json:"section_id"`
	SubsectionID       string         `gorm:"type:varchar(10);not null;uniqueIndex:uniq_task_logical,priority:4"                json:"subsection_id"`
	TaskName           string         `gorm:"type:varchar(200);not null;uniqueIndex:uniq_task_logical,priority:5"               json:"task_name"`
	AssignedTo         string         `gorm:"type:uuid;not null"                                                                json:"assigned_to"`
	Deadline           time.Time      `gorm:"not null"                                                                          json:"deadline"`
	ValidationDeadline time.Time      `gorm:"not null"                                                                          json:"validation_deadline"`
	Validators         pq.StringArray `gorm:"type:text[];not null"                                                              json:"validators"`
	FileExtension      string         `gorm:"type:varchar(10);not null"                                                         json:"file_extension"`
	Comment            string         `gorm:"type:text"                                                                         json:"comment,omitempty"`
	Status             string         `gorm:"type:varchar(20);not null;default:'assigned'"                                      json:"status"`
	FileURL            *string        `gorm:"type:text"                                                                         json:"file_url,omitempty"`
	FileName           *string        `gorm:"type:varchar(255)"                                                                 json:"file_name,omitempty"`
	FileSize           *int64         `json:"file_size,omitempty"`
	SubmittedAt        *time.Time     `json:"submitted_at,omitempty"`
	ValidatedAt        *time.Time     `json:"validated_at,omitempty"`
	ValidatedBy        *string        `gorm:"type:uuid"                                                                         json:"validated_by,omitempty"`
	ValidationComment  *string        `gorm:"type:text"                                                                         json:"validation_comment,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	VersionedModel

	// 关联
	Project  *Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
	Assignee *Profile `gorm:"foreignKey:AssignedTo;references:UserID"   json:"assignee,omitempty"`
}

// TableName 指定表名
func (TaskAssignment) TableName() string { return "task_assignments" }

// HasValidator 判断用户是否在校验人列表中
func (t *TaskAssignment) HasValidator(userID string) bool {
	for _, v := range t.Validators {
		if v == userID {
			return true
		}
	}
	return false
}

// TaskHistory 任务操作审计表 — 对应 project_task_history（只追加，不修改不删除）
type TaskHistory struct {
	HistoryID      string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	TaskID         string         `gorm:"type:uuid;not null;index"                       json:"task_id"`
	ProjectID      string         `gorm:"type:uuid;not null;index"                       json:"project_id"`
	Action         string         `gorm:"type:varchar(30);not null"                      json:"action"` // create | submit | validate | reject
	PreviousStatus *string        `gorm:"type:varchar(20)"                               json:"previous_status,omitempty"`
	NewStatus      *string        `gorm:"type:varchar(20)"                               json:"new_status,omitempty"`
	PerformedBy    string         `gorm:"type:uuid;not null"                             json:"performed_by"`
	PerformedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"performed_at"`
	Comments       *string        `gorm:"type:text"                                      json:"comments,omitempty"`
	PreviousData   datatypes.JSON `gorm:"type:jsonb"                                     json:"previous_data,omitempty"`
	NewData        datatypes.JSON `gorm:"type:jsonb"                                     json:"new_data,omitempty"`
}

// TableName 指定表名
func (TaskHistory) TableName() string { return "project_task_history" }

// [自证通过] internal/model/task_assignment.go
