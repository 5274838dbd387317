package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"aphs/backend/internal/dto"
	"aphs/backend/internal/model"
	"aphs/backend/internal/repository"
	"aphs/backend/pkg/redis"
)

// TaskEvent 状态迁移产生的领域事件，Dispatch 据此落出站表并广播
type TaskEvent struct {
	Type       string
	Task       *model.TaskAssignment
	ActorID    string
	Recipients []string
}

// NotificationService 通知业务接口
//
// 设计说明：
//   - Dispatch 为出站（outbox）模式：先落 notifications 表，再 best-effort
//     发布 Redis 事件；任何一步失败只记日志，绝不向调用方返回错误，
//     因此状态迁移主事务不受通知失败影响
//   - Redis 客户端可为 nil（降级运行），此时仅保留出站表
type NotificationService interface {
	Dispatch(ctx context.Context, event *TaskEvent)
	List(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── Dispatch ──────────────────────

func (s *notificationService) Dispatch(ctx context.Context, event *TaskEvent) {
	if event == nil || event.Task == nil {
		return
	}

	title, content := renderMessage(event)
	for _, userID := range event.Recipients {
		if userID == "" || userID == event.ActorID {
			continue
		}
		n := &model.Notification{
			UserID:    userID,
			Type:      event.Type,
			Title:     title,
			Content:   content,
			TaskID:    &event.Task.TaskID,
			ProjectID: &event.Task.ProjectID,
		}
		if err := s.repo.Notification.Create(ctx, n); err != nil {
			s.logger.Error("写入通知失败",
				zap.String("user_id", userID),
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
	}

	if s.rdb == nil {
		return
	}
	err := s.rdb.PublishTaskEvent(ctx, &redis.TaskEvent{
		Type:      event.Type,
		TaskID:    event.Task.TaskID,
		ProjectID: event.Task.ProjectID,
		Status:    event.Task.Status,
		ActorID:   event.ActorID,
	})
	if err != nil {
		s.logger.Warn("发布任务事件失败",
			zap.String("task_id", event.Task.TaskID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}

// ────────────────────── List / MarkRead ──────────────────────

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, offset, limit int) ([]dto.NotificationResponse, int64, error) {
	notifications, total, err := s.repo.Notification.ListByUser(ctx, userID, unreadOnly, offset, limit)
	if err != nil {
		s.logger.Error("查询通知失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		result = append(result, dto.NotificationResponse{
			ID:        n.NotificationID,
			Type:      n.Type,
			Title:     n.Title,
			Content:   n.Content,
			IsRead:    n.IsRead,
			TaskID:    n.TaskID,
			ProjectID: n.ProjectID,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.Notification.MarkRead(ctx, id, userID); err != nil {
		s.logger.Error("标记通知已读失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// renderMessage 生成通知标题与正文
func renderMessage(event *TaskEvent) (string, string) {
	t := event.Task
	label := fmt.Sprintf("%s / %s-%s / %s", t.PhaseID, t.SectionID, t.SubsectionID, t.TaskName)
	switch event.Type {
	case model.NotificationTaskAssigned:
		return "Nouvelle tâche assignée", fmt.Sprintf("La tâche « %s » vous a été assignée.", label)
	case model.NotificationFileUploaded:
		return "Fichier livré", fmt.Sprintf("Un fichier a été déposé pour la tâche « %s ».", label)
	case model.NotificationStatusChanged:
		return "Statut de tâche modifié", fmt.Sprintf("La tâche « %s » est passée au statut %s.", label, t.Status)
	default:
		return "Notification", label
	}
}
