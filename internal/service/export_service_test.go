package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"aphs/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewExportService(repo, zap.NewNop())

	seedProject(mocks, "proj-1")
	mocks.project.projects["proj-1"].Name = "Résidence Les Chênes"

	deadline := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	mocks.task.tasks["t1"] = &model.TaskAssignment{
		TaskID: "t1", ProjectID: "proj-1",
		PhaseID: "conception", SectionID: "A", SubsectionID: "A1",
		TaskName: "Étude de faisabilité", AssignedTo: "user-1",
		Status: model.TaskStatusAssigned, Deadline: deadline,
	}
	mocks.task.tasks["t2"] = &model.TaskAssignment{
		TaskID: "t2", ProjectID: "proj-1",
		PhaseID: "realisation", SectionID: "B", SubsectionID: "B1",
		TaskName: "Contrôle du béton", AssignedTo: "user-2",
		Status: model.TaskStatusValidated, Deadline: deadline,
	}

	return svc, mocks
}

// ── ExportTaskReport 测试 ──

func TestExportService_TaskReport_Success(t *testing.T) {
	svc, _ := setupTestExportService()

	buf, filename, err := svc.ExportTaskReport(context.Background(), "proj-1", "fr")
	if err != nil {
		t.Fatalf("ExportTaskReport 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("期望 .xlsx 文件名，实际=%s", filename)
	}

	// 回读校验：两个阶段各一个 Sheet，任务落在对应 Sheet
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("期望2个 Sheet，实际=%v", sheets)
	}

	taskName, _ := f.GetCellValue("Conception", "C3")
	if taskName != "Étude de faisabilité" {
		t.Errorf("期望 conception 任务在 Conception Sheet，实际=%s", taskName)
	}
	status, _ := f.GetCellValue("Réalisation", "E3")
	if status != "Validée" {
		t.Errorf("期望法语状态文案 Validée，实际=%s", status)
	}
}

func TestExportService_TaskReport_ProjectNotFound(t *testing.T) {
	svc, _ := setupTestExportService()

	if _, _, err := svc.ExportTaskReport(context.Background(), "nonexistent", "fr"); !errors.Is(err, ErrExportProjectNotFound) {
		t.Errorf("期望 ErrExportProjectNotFound，实际: %v", err)
	}
}

func TestExportService_TaskReport_NoTasks(t *testing.T) {
	svc, mocks := setupTestExportService()
	seedProject(mocks, "proj-vide")

	if _, _, err := svc.ExportTaskReport(context.Background(), "proj-vide", "fr"); !errors.Is(err, ErrExportNoTasks) {
		t.Errorf("期望 ErrExportNoTasks，实际: %v", err)
	}
}

// ── ExportDeadlineCalendar 测试 ──

func TestExportService_DeadlineCalendar_Success(t *testing.T) {
	svc, _ := setupTestExportService()

	buf, filename, err := svc.ExportDeadlineCalendar(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("ExportDeadlineCalendar 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".ics") {
		t.Errorf("期望 .ics 文件名，实际=%s", filename)
	}

	content := buf.String()
	if !strings.Contains(content, "BEGIN:VCALENDAR") || !strings.Contains(content, "BEGIN:VEVENT") {
		t.Error("导出内容应为合法 iCalendar")
	}
	// 未完结任务入日历
	if !strings.Contains(content, "UID:t1") {
		t.Error("期望 assigned 任务生成 VEVENT")
	}
	// 已验收任务不占用日历
	if strings.Contains(content, "UID:t2") {
		t.Error("validated 任务不应生成 VEVENT")
	}
}

func TestExportService_DeadlineCalendar_AllValidated(t *testing.T) {
	svc, mocks := setupTestExportService()
	mocks.task.tasks["t1"].Status = model.TaskStatusValidated

	if _, _, err := svc.ExportDeadlineCalendar(context.Background(), "proj-1"); !errors.Is(err, ErrExportNoTasks) {
		t.Errorf("全部验收时期望 ErrExportNoTasks，实际: %v", err)
	}
}
