package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aphs/backend/internal/model"
)

// InfoSheetRepository 任务说明书数据访问接口
type InfoSheetRepository interface {
	Get(ctx context.Context, phaseID, sectionID, subsectionID, taskName, language string) (*model.TaskInfoSheet, error)
	Upsert(ctx context.Context, sheet *model.TaskInfoSheet) error
}

type infoSheetRepo struct {
	db *gorm.DB
}

func NewInfoSheetRepo(db *gorm.DB) InfoSheetRepository {
	return &infoSheetRepo{db: db}
}

func (r *infoSheetRepo) Get(ctx context.Context, phaseID, sectionID, subsectionID, taskName, language string) (*model.TaskInfoSheet, error) {
	var sheet model.TaskInfoSheet
	err := r.db.WithContext(ctx).
		Where("phase_id = ? AND section_id = ? AND subsection_id = ? AND task_name = ? AND language = ?",
			phaseID, sectionID, subsectionID, taskName, language).
		First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

// Upsert 按自然键冲突时更新内容
func (r *infoSheetRepo) Upsert(ctx context.Context, sheet *model.TaskInfoSheet) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "phase_id"}, {Name: "section_id"}, {Name: "subsection_id"},
				{Name: "task_name"}, {Name: "language"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at", "updated_by"}),
		}).
		Create(sheet).Error
}
