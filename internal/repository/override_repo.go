package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"aphs/backend/internal/model"
)

// OverrideRepository 项目结构定制数据访问接口
// subsectionID 为 nil 表示分区级记录（SQL 中以 IS NULL 判别）
type OverrideRepository interface {
	Upsert(ctx context.Context, override *model.StructureOverride) error
	Find(ctx context.Context, projectID, phaseID, sectionID string, subsectionID *string) (*model.StructureOverride, error)
	ListActive(ctx context.Context, projectID, phaseID string) ([]model.StructureOverride, error)
	Deactivate(ctx context.Context, projectID, phaseID, sectionID string, subsectionID *string) error
}

type overrideRepo struct {
	db *gorm.DB
}

func NewOverrideRepo(db *gorm.DB) OverrideRepository {
	return &overrideRepo{db: db}
}

// Upsert 按唯一键插入或激活定制记录
func (r *overrideRepo) Upsert(ctx context.Context, override *model.StructureOverride) error {
	existing, err := r.Find(ctx, override.ProjectID, override.PhaseID, override.SectionID, override.SubsectionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		existing.IsDeleted = override.IsDeleted
		existing.DeletedBy = override.DeletedBy
		existing.DeletedAt = override.DeletedAt
		return r.db.WithContext(ctx).Save(existing).Error
	}
	return r.db.WithContext(ctx).Create(override).Error
}

func (r *overrideRepo) Find(ctx context.Context, projectID, phaseID, sectionID string, subsectionID *string) (*model.StructureOverride, error) {
	var override model.StructureOverride
	db := r.db.WithContext(ctx).
		Where("project_id = ? AND phase_id = ? AND section_id = ?", projectID, phaseID, sectionID)
	if subsectionID == nil {
		db = db.Where("subsection_id IS NULL")
	} else {
		db = db.Where("subsection_id = ?", *subsectionID)
	}
	if err := db.First(&override).Error; err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *overrideRepo) ListActive(ctx context.Context, projectID, phaseID string) ([]model.StructureOverride, error) {
	var overrides []model.StructureOverride
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND phase_id = ? AND is_deleted = ?", projectID, phaseID, true).
		Order("section_id ASC").
		Find(&overrides).Error
	return overrides, err
}

// Deactivate 按精确键恢复（is_deleted=false），键不存在时为 no-op
func (r *overrideRepo) Deactivate(ctx context.Context, projectID, phaseID, sectionID string, subsectionID *string) error {
	db := r.db.WithContext(ctx).
		Model(&model.StructureOverride{}).
		Where("project_id = ? AND phase_id = ? AND section_id = ?", projectID, phaseID, sectionID)
	if subsectionID == nil {
		db = db.Where("subsection_id IS NULL")
	} else {
		db = db.Where("subsection_id = ?", *subsectionID)
	}
	return db.Update("is_deleted", false).Error
}
