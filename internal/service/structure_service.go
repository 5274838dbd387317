package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aphs/backend/internal/catalog"
	"aphs/backend/internal/dto"
	"aphs/backend/internal/model"
	"aphs/backend/internal/repository"
)

// ── 项目结构模块业务错误 ──

var (
	ErrSectionNotFound    = errors.New("分区不存在")
	ErrSubsectionNotFound = errors.New("子分区不存在")
)

// StructureService 项目结构定制业务接口
//
// 设计说明：
//   - 目录本身运行期只读，定制仅为软删除标记（分区级或子分区级）
//   - 删除已删除的分区为幂等成功；恢复按精确键（含 NULL 判别）匹配
//   - 写路径失败即报错（fail-closed）；读路径在定制查询失败时回退
//     未过滤默认目录并记 WARN，响应中以 fallback 标记
type StructureService interface {
	View(ctx context.Context, projectID, phaseID, lang string) (*dto.StructureViewResponse, error)
	DeleteSection(ctx context.Context, projectID, phaseID, sectionID, actorID string) error
	DeleteSubsection(ctx context.Context, projectID, phaseID, sectionID, subsectionID, actorID string) error
	Restore(ctx context.Context, projectID, phaseID, sectionID string, subsectionID *string) error
	ListOverrides(ctx context.Context, projectID, phaseID string) ([]dto.OverrideResponse, error)
	// FilteredTotalTasks 统计项目过滤后（两阶段）任务总数，供进度分母使用
	FilteredTotalTasks(ctx context.Context, projectID string) (int, error)
}

type structureService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStructureService 创建 StructureService 实例
func NewStructureService(repo *repository.Repository, logger *zap.Logger) StructureService {
	return &structureService{repo: repo, logger: logger}
}

// ── 纯函数：override 判定与两级过滤 ──

// IsDeleted 判断分区/子分区是否被生效的 override 标记删除。
// subsectionID 为 nil 时仅判分区级；非 nil 时分区级删除同样命中（级联）
func IsDeleted(overrides []model.StructureOverride, phaseID, sectionID string, subsectionID *string) bool {
	for i := range overrides {
		o := &overrides[i]
		if !o.IsDeleted {
			continue
		}
		// 分区级删除级联覆盖其下所有子分区
		if o.Matches(phaseID, sectionID, nil) {
			return true
		}
		if subsectionID != nil && o.Matches(phaseID, sectionID, subsectionID) {
			return true
		}
	}
	return false
}

// FilterSections 两级精确匹配过滤：分区级 override 丢弃整个分区，
// 否则逐个丢弃命中的子分区。维度均为几十量级，线性扫描足够
func FilterSections(sections []catalog.Section, overrides []model.StructureOverride, phaseID string) []catalog.Section {
	out := make([]catalog.Section, 0, len(sections))
	for _, sec := range sections {
		if IsDeleted(overrides, phaseID, sec.ID, nil) {
			continue
		}
		kept := make([]catalog.Subsection, 0, len(sec.Items))
		for _, sub := range sec.Items {
			subID := sub.ID
			if IsDeleted(overrides, phaseID, sec.ID, &subID) {
				continue
			}
			kept = append(kept, sub)
		}
		sec.Items = kept
		out = append(out, sec)
	}
	return out
}

// ────────────────────── View ──────────────────────

func (s *structureService) View(ctx context.Context, projectID, phaseID, lang string) (*dto.StructureViewResponse, error) {
	if lang == "" {
		lang = catalog.LangFR
	}
	sections := catalog.Localize(phaseID, lang)

	overrides, err := s.repo.Override.ListActive(ctx, projectID, phaseID)
	if err != nil {
		// 读路径回退：定制不可用时展示未过滤默认目录
		s.logger.Warn("查询结构定制失败，回退默认目录",
			zap.String("project_id", projectID),
			zap.String("phase_id", phaseID),
			zap.Error(err),
		)
		return &dto.StructureViewResponse{
			ProjectID: projectID,
			PhaseID:   phaseID,
			Language:  lang,
			Sections:  sections,
			Fallback:  true,
		}, nil
	}

	return &dto.StructureViewResponse{
		ProjectID: projectID,
		PhaseID:   phaseID,
		Language:  lang,
		Sections:  FilterSections(sections, overrides, phaseID),
	}, nil
}

// ────────────────────── DeleteSection ──────────────────────

func (s *structureService) DeleteSection(ctx context.Context, projectID, phaseID, sectionID, actorID string) error {
	if _, ok := catalog.FindSection(phaseID, sectionID); !ok {
		return ErrSectionNotFound
	}

	// 幂等：已删除时直接成功
	existing, err := s.repo.Override.Find(ctx, projectID, phaseID, sectionID, nil)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询结构定制失败", zap.Error(err))
		return err
	}
	if existing != nil && existing.IsDeleted {
		return nil
	}

	override := &model.StructureOverride{
		ProjectID: projectID,
		PhaseID:   phaseID,
		SectionID: sectionID,
		IsDeleted: true,
		DeletedBy: actorID,
		DeletedAt: time.Now(),
	}
	if err := s.repo.Override.Upsert(ctx, override); err != nil {
		s.logger.Error("删除分区失败",
			zap.String("project_id", projectID),
			zap.String("section_id", sectionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ────────────────────── DeleteSubsection ──────────────────────

func (s *structureService) DeleteSubsection(ctx context.Context, projectID, phaseID, sectionID, subsectionID, actorID string) error {
	if _, ok := catalog.FindSubsection(phaseID, sectionID, subsectionID); !ok {
		return ErrSubsectionNotFound
	}

	existing, err := s.repo.Override.Find(ctx, projectID, phaseID, sectionID, &subsectionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询结构定制失败", zap.Error(err))
		return err
	}
	if existing != nil && existing.IsDeleted {
		return nil
	}

	override := &model.StructureOverride{
		ProjectID:    projectID,
		PhaseID:      phaseID,
		SectionID:    sectionID,
		SubsectionID: &subsectionID,
		IsDeleted:    true,
		DeletedBy:    actorID,
		DeletedAt:    time.Now(),
	}
	if err := s.repo.Override.Upsert(ctx, override); err != nil {
		s.logger.Error("删除子分区失败",
			zap.String("project_id", projectID),
			zap.String("subsection_id", subsectionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ────────────────────── Restore ──────────────────────

func (s *structureService) Restore(ctx context.Context, projectID, phaseID, sectionID string, subsectionID *string) error {
	if subsectionID == nil {
		if _, ok := catalog.FindSection(phaseID, sectionID); !ok {
			return ErrSectionNotFound
		}
	} else {
		if _, ok := catalog.FindSubsection(phaseID, sectionID, *subsectionID); !ok {
			return ErrSubsectionNotFound
		}
	}

	if err := s.repo.Override.Deactivate(ctx, projectID, phaseID, sectionID, subsectionID); err != nil {
		s.logger.Error("恢复结构定制失败",
			zap.String("project_id", projectID),
			zap.String("section_id", sectionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// ────────────────────── ListOverrides ──────────────────────

func (s *structureService) ListOverrides(ctx context.Context, projectID, phaseID string) ([]dto.OverrideResponse, error) {
	overrides, err := s.repo.Override.ListActive(ctx, projectID, phaseID)
	if err != nil {
		s.logger.Error("查询结构定制失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.OverrideResponse, 0, len(overrides))
	for i := range overrides {
		o := &overrides[i]
		result = append(result, dto.OverrideResponse{
			ID:           o.OverrideID,
			ProjectID:    o.ProjectID,
			PhaseID:      o.PhaseID,
			SectionID:    o.SectionID,
			SubsectionID: o.SubsectionID,
			IsDeleted:    o.IsDeleted,
			DeletedBy:    o.DeletedBy,
			DeletedAt:    o.DeletedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

// ────────────────────── FilteredTotalTasks ──────────────────────

func (s *structureService) FilteredTotalTasks(ctx context.Context, projectID string) (int, error) {
	total := 0
	for _, phaseID := range []string{model.PhaseConception, model.PhaseRealisation} {
		overrides, err := s.repo.Override.ListActive(ctx, projectID, phaseID)
		if err != nil {
			return 0, err
		}
		for _, sec := range FilterSections(catalog.Sections(phaseID), overrides, phaseID) {
			for _, sub := range sec.Items {
				total += len(sub.Tasks)
			}
		}
	}
	return total, nil
}
