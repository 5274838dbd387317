package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aphs/backend/internal/catalog"
	"aphs/backend/internal/dto"
	"aphs/backend/internal/model"
)

// 旧版前端以 title/task_type + 描述文本表示任务，阶段/分区/子分区
// 编码在固定标签的描述串中。规范实体已改为显式字段，本文件仅保留
// 旧数据导入/导出的双向转换。
//
// 描述模式固定为 "Phase: X, Section: Y, Sous-section: Z"；
// 不匹配时静默回退 conception/A/A1（与历史数据保持一致的已知脆弱点）。

// LegacyProjectTask 旧版任务形态
type LegacyProjectTask struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	TaskType    string    `json:"task_type"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	AssignedTo  string    `json:"assigned_to"`
	DueDate     time.Time `json:"due_date"`
}

// 回退默认值
const (
	legacyDefaultPhase      = "conception"
	legacyDefaultSection    = "A"
	legacyDefaultSubsection = "A1"
)

var legacyDescPattern = regexp.MustCompile(`Phase:\s*(\S+),\s*Section:\s*(\S+),\s*Sous-section:\s*(\S+)`)

// FromLegacyTask 解析旧版任务为规范实体。
// id、status、assigned_to、due_date 无损保留；
// 阶段三元组取决于描述文本能否匹配固定标签模式
func FromLegacyTask(lt *LegacyProjectTask) *model.TaskAssignment {
	phaseID, sectionID, subsectionID := legacyDefaultPhase, legacyDefaultSection, legacyDefaultSubsection
	if m := legacyDescPattern.FindStringSubmatch(lt.Description); m != nil {
		phaseID, sectionID, subsectionID = m[1], m[2], m[3]
	}

	return &model.TaskAssignment{
		TaskID:       lt.ID,
		ProjectID:    lt.ProjectID,
		PhaseID:      phaseID,
		SectionID:    sectionID,
		SubsectionID: subsectionID,
		TaskName:     lt.Title,
		AssignedTo:   lt.AssignedTo,
		Deadline:     lt.DueDate,
		Status:       lt.Status,
	}
}

// ToLegacyTask 规范实体渲染为旧版形态，描述串按固定标签格式生成
func ToLegacyTask(task *model.TaskAssignment) *LegacyProjectTask {
	return &LegacyProjectTask{
		ID:         task.TaskID,
		ProjectID:  task.ProjectID,
		Title:      task.TaskName,
		TaskType:   task.PhaseID,
		Priority:   "medium",
		Status:     task.Status,
		AssignedTo: task.AssignedTo,
		DueDate:    task.Deadline,
		Description: fmt.Sprintf("Phase: %s, Section: %s, Sous-section: %s",
			task.PhaseID, task.SectionID, task.SubsectionID),
	}
}

// ────────────────────── ImportLegacy ──────────────────────
//
// 批量导入为尽力而为：单条失败不中断整批。目录外的任务与重复逻辑键
// 计入 Skipped，前者附带错误说明。旧 ID 不保留，主键由数据库生成

func (s *taskService) ImportLegacy(ctx context.Context, projectID string, req *dto.LegacyImportRequest, callerID string) (*dto.LegacyImportResult, error) {
	if _, err := s.repo.Project.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}

	validators, err := s.repo.Profile.ListByIDs(ctx, req.Validators)
	if err != nil {
		s.logger.Error("查询校验人失败", zap.Error(err))
		return nil, err
	}
	if len(validators) != len(uniqueStrings(req.Validators)) {
		return nil, ErrValidatorNotFound
	}

	validationDeadline, _ := time.Parse("2006-01-02", req.ValidationDeadline)
	fileExtension := req.FileExtension
	if fileExtension == "" {
		fileExtension = "pdf"
	}

	result := &dto.LegacyImportResult{}
	for i := range req.Tasks {
		p := &req.Tasks[i]
		dueDate, _ := time.Parse("2006-01-02", p.DueDate)

		task := FromLegacyTask(&LegacyProjectTask{
			ID:          p.ID,
			ProjectID:   projectID,
			Title:       p.Title,
			TaskType:    p.TaskType,
			Description: p.Description,
			Priority:    p.Priority,
			Status:      p.Status,
			AssignedTo:  p.AssignedTo,
			DueDate:     dueDate,
		})
		task.TaskID = ""
		if task.Status == "" {
			task.Status = model.TaskStatusAssigned
		}

		if !catalog.HasTask(task.PhaseID, task.SectionID, task.SubsectionID, task.TaskName) {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: 任务不在工程结构目录中", p.Title))
			continue
		}

		if _, err := s.repo.Task.GetByLogicalKey(ctx, projectID, task.PhaseID, task.SectionID, task.SubsectionID, task.TaskName); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询任务失败", zap.Error(err))
			return nil, err
		}

		task.ValidationDeadline = validationDeadline
		task.Validators = uniqueStrings(req.Validators)
		task.FileExtension = fileExtension
		task.CreatedBy = &callerID
		task.UpdatedBy = &callerID

		if err := s.repo.Task.Create(ctx, task); err != nil {
			s.logger.Error("导入旧版任务失败", zap.String("title", p.Title), zap.Error(err))
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: 写入失败", p.Title))
			continue
		}

		s.appendHistory(ctx, task, "create", nil, task.Status, callerID, nil, nil)
		result.Imported++
	}

	s.logger.Info("旧版任务导入完成",
		zap.String("project_id", projectID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
