package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aphs/backend/internal/dto"
	"aphs/backend/internal/model"
)

// ── 旧版任务转换测试 ──

func TestFromLegacyTask_ParsesDescription(t *testing.T) {
	lt := &LegacyProjectTask{
		ID:          "task-42",
		ProjectID:   "proj-1",
		Title:       "Plan d'exécution",
		Description: "Phase: realisation, Section: B, Sous-section: B2",
		Status:      "submitted",
		AssignedTo:  "user-1",
		DueDate:     time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC),
	}

	task := FromLegacyTask(lt)
	if task.PhaseID != "realisation" || task.SectionID != "B" || task.SubsectionID != "B2" {
		t.Errorf("期望 realisation/B/B2，实际=%s/%s/%s", task.PhaseID, task.SectionID, task.SubsectionID)
	}
	if task.TaskID != "task-42" || task.Status != "submitted" || task.AssignedTo != "user-1" {
		t.Error("id/status/assigned_to 应无损保留")
	}
	if !task.Deadline.Equal(lt.DueDate) {
		t.Errorf("期望截止日期无损保留，实际=%v", task.Deadline)
	}
}

func TestFromLegacyTask_FallbackOnMalformedDescription(t *testing.T) {
	cases := []struct {
		name string
		desc string
	}{
		{"空描述", ""},
		{"自由文本", "Vérifier les plans avant livraison"},
		{"标签不完整", "Phase: conception, Section: B"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			task := FromLegacyTask(&LegacyProjectTask{ID: "t", Description: c.desc})
			if task.PhaseID != "conception" || task.SectionID != "A" || task.SubsectionID != "A1" {
				t.Errorf("期望静默回退 conception/A/A1，实际=%s/%s/%s",
					task.PhaseID, task.SectionID, task.SubsectionID)
			}
		})
	}
}

func TestLegacyTask_RoundTrip(t *testing.T) {
	original := &model.TaskAssignment{
		TaskID:       "task-7",
		ProjectID:    "proj-1",
		PhaseID:      "conception",
		SectionID:    "D",
		SubsectionID: "D2",
		TaskName:     "Analyse des offres",
		AssignedTo:   "user-9",
		Status:       "assigned",
		Deadline:     time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
	}

	back := FromLegacyTask(ToLegacyTask(original))
	if back.TaskID != original.TaskID ||
		back.PhaseID != original.PhaseID ||
		back.SectionID != original.SectionID ||
		back.SubsectionID != original.SubsectionID ||
		back.TaskName != original.TaskName ||
		back.AssignedTo != original.AssignedTo ||
		back.Status != original.Status ||
		!back.Deadline.Equal(original.Deadline) {
		t.Errorf("往返转换应保留核心字段，实际=%+v", back)
	}
}

// ── ImportLegacy 测试 ──

func legacyImportRequest(tasks ...dto.LegacyTaskPayload) *dto.LegacyImportRequest {
	return &dto.LegacyImportRequest{
		Validators:         []string{testValidatorID},
		ValidationDeadline: "2026-11-15",
		Tasks:              tasks,
	}
}

func TestTaskService_ImportLegacy_Success(t *testing.T) {
	svc, mocks, _, _ := setupTestTaskService()

	result, err := svc.ImportLegacy(context.Background(), testProjectID, legacyImportRequest(
		dto.LegacyTaskPayload{
			Title:       "Étude de faisabilité",
			Description: "Phase: conception, Section: A, Sous-section: A1",
			AssignedTo:  testAssigneeID,
			DueDate:     "2026-10-15",
		},
		dto.LegacyTaskPayload{
			Title:       "Analyse du site",
			Description: "Phase: conception, Section: A, Sous-section: A1",
			AssignedTo:  testAssigneeID,
			DueDate:     "2026-10-20",
		},
	), testAdminID)
	if err != nil {
		t.Fatalf("ImportLegacy 应成功: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 0 {
		t.Errorf("期望导入 2 条跳过 0 条，实际=%+v", result)
	}
	if len(mocks.task.tasks) != 2 {
		t.Errorf("期望写入 2 条任务，实际=%d", len(mocks.task.tasks))
	}
	for _, task := range mocks.task.tasks {
		if task.Status != model.TaskStatusAssigned {
			t.Errorf("导入任务状态应为 assigned，实际=%s", task.Status)
		}
		if task.FileExtension != "pdf" {
			t.Errorf("未指定扩展名时应默认 pdf，实际=%s", task.FileExtension)
		}
	}
}

func TestTaskService_ImportLegacy_SkipsNotInCatalog(t *testing.T) {
	svc, _, _, _ := setupTestTaskService()

	result, err := svc.ImportLegacy(context.Background(), testProjectID, legacyImportRequest(
		dto.LegacyTaskPayload{
			Title:       "Tâche fantôme",
			Description: "Phase: conception, Section: A, Sous-section: A1",
			AssignedTo:  testAssigneeID,
			DueDate:     "2026-10-15",
		},
	), testAdminID)
	if err != nil {
		t.Fatalf("ImportLegacy 应成功: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 1 {
		t.Errorf("目录外任务应被跳过，实际=%+v", result)
	}
	if len(result.Errors) != 1 {
		t.Errorf("期望 1 条错误说明，实际=%d", len(result.Errors))
	}
}

func TestTaskService_ImportLegacy_SkipsDuplicate(t *testing.T) {
	svc, _, _, _ := setupTestTaskService()
	mustCreateTask(t, svc)

	result, err := svc.ImportLegacy(context.Background(), testProjectID, legacyImportRequest(
		dto.LegacyTaskPayload{
			Title:       "Étude de faisabilité",
			Description: "Phase: conception, Section: A, Sous-section: A1",
			AssignedTo:  testAssigneeID,
			DueDate:     "2026-10-15",
		},
	), testAdminID)
	if err != nil {
		t.Fatalf("ImportLegacy 应成功: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 1 {
		t.Errorf("重复逻辑键应被跳过，实际=%+v", result)
	}
}

func TestTaskService_ImportLegacy_MalformedDescriptionFallsBack(t *testing.T) {
	svc, mocks, _, _ := setupTestTaskService()

	// 描述无法解析时回退 conception/A/A1，标题仍需在该子分区目录内
	result, err := svc.ImportLegacy(context.Background(), testProjectID, legacyImportRequest(
		dto.LegacyTaskPayload{
			Title:       "Analyse du site",
			Description: "texte libre sans étiquettes",
			AssignedTo:  testAssigneeID,
			DueDate:     "2026-10-15",
		},
	), testAdminID)
	if err != nil {
		t.Fatalf("ImportLegacy 应成功: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("回退目录键后应导入成功，实际=%+v", result)
	}
	for _, task := range mocks.task.tasks {
		if task.PhaseID != "conception" || task.SectionID != "A" || task.SubsectionID != "A1" {
			t.Errorf("期望回退 conception/A/A1，实际=%s/%s/%s", task.PhaseID, task.SectionID, task.SubsectionID)
		}
	}
}

func TestTaskService_ImportLegacy_UnknownValidator(t *testing.T) {
	svc, _, _, _ := setupTestTaskService()

	req := legacyImportRequest(dto.LegacyTaskPayload{
		Title:       "Étude de faisabilité",
		Description: "Phase: conception, Section: A, Sous-section: A1",
		AssignedTo:  testAssigneeID,
		DueDate:     "2026-10-15",
	})
	req.Validators = []string{"ghost"}

	if _, err := svc.ImportLegacy(context.Background(), testProjectID, req, testAdminID); !errors.Is(err, ErrValidatorNotFound) {
		t.Fatalf("期望 ErrValidatorNotFound，实际=%v", err)
	}
}
