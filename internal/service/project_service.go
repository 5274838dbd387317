package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aphs/backend/internal/catalog"
	"aphs/backend/internal/dto"
	"aphs/backend/internal/model"
	"aphs/backend/internal/repository"
)

// ── 项目模块业务错误 ──

var (
	ErrProjectNotFound    = errors.New("项目不存在")
	ErrInvalidDateRange   = errors.New("结束日期不能早于开始日期")
	ErrInvalidProjectDate = errors.New("日期格式无效")
)

// ProjectService 项目业务接口
type ProjectService interface {
	Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error)
	List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, id string) error
	// Stats 聚合派生统计：按状态计数与完成进度。
	// 进度分母为过滤后（应用结构定制）的任务总数
	Stats(ctx context.Context, id string) (*dto.ProjectStatsResponse, error)
}

type projectService struct {
	repo      *repository.Repository
	structure StructureService
	logger    *zap.Logger
}

// NewProjectService 创建 ProjectService 实例
func NewProjectService(repo *repository.Repository, structure StructureService, logger *zap.Logger) ProjectService {
	return &projectService{repo: repo, structure: structure, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *projectService) Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrInvalidProjectDate
	}
	var endDate *time.Time
	if req.EndDate != nil {
		t, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrInvalidProjectDate
		}
		if t.Before(startDate) {
			return nil, ErrInvalidDateRange
		}
		endDate = &t
	}

	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      model.ProjectStatusActive,
	}
	project.CreatedBy = &callerID
	project.UpdatedBy = &callerID

	if err := s.repo.Project.Create(ctx, project); err != nil {
		s.logger.Error("创建项目失败", zap.Error(err))
		return nil, err
	}

	return toProjectResponse(project), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *projectService) GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// ────────────────────── List ──────────────────────

func (s *projectService) List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, int64, error) {
	projects, total, err := s.repo.Project.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询项目列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		result = append(result, *toProjectResponse(&projects[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *projectService) Update(ctx context.Context, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.StartDate != nil {
		t, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrInvalidProjectDate
		}
		project.StartDate = t
	}
	if req.EndDate != nil {
		t, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrInvalidProjectDate
		}
		project.EndDate = &t
	}
	if req.Status != nil {
		project.Status = *req.Status
	}

	if project.EndDate != nil && project.EndDate.Before(project.StartDate) {
		return nil, ErrInvalidDateRange
	}

	// 客户端提交其读到的版本号，CAS 检测并发修改
	project.Version = req.Version
	project.UpdatedBy = &callerID

	if err := s.repo.Project.Update(ctx, project); err != nil {
		s.logger.Error("更新项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toProjectResponse(project), nil
}

// ────────────────────── Delete ──────────────────────

func (s *projectService) Delete(ctx context.Context, id string) error {
	if _, err := s.getProject(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Project.Delete(ctx, id); err != nil {
		s.logger.Error("删除项目失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Stats ──────────────────────

func (s *projectService) Stats(ctx context.Context, id string) (*dto.ProjectStatsResponse, error) {
	if _, err := s.getProject(ctx, id); err != nil {
		return nil, err
	}

	counts, err := s.repo.Task.CountByStatus(ctx, id)
	if err != nil {
		s.logger.Error("统计任务状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	filteredTotal, err := s.structure.FilteredTotalTasks(ctx, id)
	if err != nil {
		s.logger.Error("统计过滤后任务总数失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	var assigned int64
	for _, c := range counts {
		assigned += c
	}
	validated := counts[model.TaskStatusValidated]

	return &dto.ProjectStatsResponse{
		ProjectID:           id,
		TotalAvailableTasks: catalog.TotalAvailableTasks(),
		FilteredTotalTasks:  filteredTotal,
		AssignedCount:       assigned,
		CountsByStatus:      counts,
		ValidatedCount:      validated,
		ProgressPercent:     ProgressPercent(validated, filteredTotal),
	}, nil
}

// ProgressPercent 完成进度 = round(validated / total * 100)；total 为 0 时为 0。
// 未指派的目录任务不计入分子，仅体现在固定分母中
func ProgressPercent(validated int64, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(validated) / float64(total) * 100))
}

// ── 内部辅助方法 ──

func (s *projectService) getProject(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return project, nil
}

func toProjectResponse(project *model.Project) *dto.ProjectResponse {
	resp := &dto.ProjectResponse{
		ID:          project.ProjectID,
		Name:        project.Name,
		Description: project.Description,
		StartDate:   project.StartDate.Format("2006-01-02"),
		Status:      project.Status,
		CreatedBy:   project.CreatedBy,
		Version:     project.Version,
		CreatedAt:   project.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   project.UpdatedAt.Format(time.RFC3339),
	}
	if project.EndDate != nil {
		v := project.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	return resp
}
