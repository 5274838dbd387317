package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Profile      ProfileRepository
	Project      ProjectRepository
	Task         TaskRepository
	History      HistoryRepository
	Override     OverrideRepository
	InfoSheet    InfoSheetRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Profile:      NewProfileRepo(db),
		Project:      NewProjectRepo(db),
		Task:         NewTaskRepo(db),
		History:      NewHistoryRepo(db),
		Override:     NewOverrideRepo(db),
		InfoSheet:    NewInfoSheetRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
