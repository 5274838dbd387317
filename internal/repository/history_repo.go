package repository

import (
	"context"

	"gorm.io/gorm"

	"aphs/backend/internal/model"
)

// HistoryRepository 任务审计日志数据访问接口（只追加）
type HistoryRepository interface {
	Create(ctx context.Context, entry *model.TaskHistory) error
	ListByTask(ctx context.Context, taskID string, offset, limit int) ([]model.TaskHistory, int64, error)
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]model.TaskHistory, int64, error)
}

type historyRepo struct {
	db *gorm.DB
}

func NewHistoryRepo(db *gorm.DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Create(ctx context.Context, entry *model.TaskHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *historyRepo) ListByTask(ctx context.Context, taskID string, offset, limit int) ([]model.TaskHistory, int64, error) {
	return r.list(ctx, "task_id = ?", taskID, offset, limit)
}

func (r *historyRepo) ListByProject(ctx context.Context, projectID string, offset, limit int) ([]model.TaskHistory, int64, error) {
	return r.list(ctx, "project_id = ?", projectID, offset, limit)
}

func (r *historyRepo) list(ctx context.Context, cond, arg string, offset, limit int) ([]model.TaskHistory, int64, error) {
	var entries []model.TaskHistory
	var total int64

	db := r.db.WithContext(ctx).Model(&model.TaskHistory{}).Where(cond, arg)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("performed_at DESC").
		Find(&entries).Error
	return entries, total, err
}
