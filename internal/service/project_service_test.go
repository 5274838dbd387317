package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"aphs/backend/internal/catalog"
	"aphs/backend/internal/dto"
	"aphs/backend/internal/model"
	pkgerrors "aphs/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestProjectService() (ProjectService, *testRepos) {
	repo, mocks := newTestRepos()
	structure := NewStructureService(repo, zap.NewNop())
	svc := NewProjectService(repo, structure, zap.NewNop())
	return svc, mocks
}

func seedProject(mocks *testRepos, id string) {
	p := &model.Project{
		ProjectID: id,
		Name:      "Immeuble Haussmann",
		StartDate: time.Now(),
		Status:    model.ProjectStatusActive,
	}
	p.Version = 1
	mocks.project.projects[id] = p
}

func seedTask(mocks *testRepos, id, projectID, status string) {
	t := &model.TaskAssignment{
		TaskID:    id,
		ProjectID: projectID,
		PhaseID:   "conception",
		SectionID: "A",
		Status:    status,
	}
	t.Version = 1
	mocks.task.tasks[id] = t
}

// ── Create 测试 ──

func TestProjectService_Create_Success(t *testing.T) {
	svc, _ := setupTestProjectService()

	end := "2027-06-30"
	req := &dto.CreateProjectRequest{
		Name:      "Résidence Les Chênes",
		StartDate: "2026-09-01",
		EndDate:   &end,
	}
	result, err := svc.Create(context.Background(), req, testAdminID)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != model.ProjectStatusActive {
		t.Errorf("期望初始状态=active，实际=%s", result.Status)
	}
	if result.Version != 1 {
		t.Errorf("期望初始版本=1，实际=%d", result.Version)
	}
}

func TestProjectService_Create_InvalidDateRange(t *testing.T) {
	svc, _ := setupTestProjectService()

	end := "2026-01-01"
	req := &dto.CreateProjectRequest{
		Name:      "Projet incohérent",
		StartDate: "2026-09-01",
		EndDate:   &end,
	}
	if _, err := svc.Create(context.Background(), req, testAdminID); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
	}
}

// ── Update 测试（乐观锁）──

func TestProjectService_Update_Success(t *testing.T) {
	svc, mocks := setupTestProjectService()
	seedProject(mocks, "proj-1")

	newName := "Immeuble Haussmann — Tranche 2"
	req := &dto.UpdateProjectRequest{Name: &newName, Version: 1}
	result, err := svc.Update(context.Background(), "proj-1", req, testAdminID)
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Name != newName {
		t.Errorf("期望更新后名称，实际=%s", result.Name)
	}
	if result.Version != 2 {
		t.Errorf("期望版本递增到2，实际=%d", result.Version)
	}
}

func TestProjectService_Update_VersionConflict(t *testing.T) {
	svc, mocks := setupTestProjectService()
	seedProject(mocks, "proj-1")
	mocks.project.projects["proj-1"].Version = 3

	newName := "Nom périmé"
	req := &dto.UpdateProjectRequest{Name: &newName, Version: 1}
	if _, err := svc.Update(context.Background(), "proj-1", req, testAdminID); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

func TestProjectService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestProjectService()

	newName := "x"
	req := &dto.UpdateProjectRequest{Name: &newName, Version: 1}
	if _, err := svc.Update(context.Background(), "nonexistent", req, testAdminID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("期望 ErrProjectNotFound，实际: %v", err)
	}
}

// ── Stats / 进度测试 ──

func TestProjectService_Stats_Empty(t *testing.T) {
	svc, mocks := setupTestProjectService()
	seedProject(mocks, "proj-1")

	stats, err := svc.Stats(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.AssignedCount != 0 || stats.ValidatedCount != 0 {
		t.Error("空项目计数应为0")
	}
	if stats.ProgressPercent != 0 {
		t.Errorf("空项目进度应为0，实际=%d", stats.ProgressPercent)
	}
	if stats.TotalAvailableTasks != catalog.TotalAvailableTasks() {
		t.Errorf("全量任务数应为目录总数，实际=%d", stats.TotalAvailableTasks)
	}
	if stats.FilteredTotalTasks != stats.TotalAvailableTasks {
		t.Error("无定制时过滤后总数应等于全量")
	}
}

func TestProjectService_Stats_CountsAndProgress(t *testing.T) {
	svc, mocks := setupTestProjectService()
	seedProject(mocks, "proj-1")
	seedTask(mocks, "t1", "proj-1", model.TaskStatusValidated)
	seedTask(mocks, "t2", "proj-1", model.TaskStatusSubmitted)
	seedTask(mocks, "t3", "proj-1", model.TaskStatusAssigned)
	// 其他项目的任务不计入
	seedProject(mocks, "proj-2")
	seedTask(mocks, "t4", "proj-2", model.TaskStatusValidated)

	stats, err := svc.Stats(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.AssignedCount != 3 {
		t.Errorf("期望指派数=3，实际=%d", stats.AssignedCount)
	}
	if stats.ValidatedCount != 1 {
		t.Errorf("期望已验收数=1，实际=%d", stats.ValidatedCount)
	}
	if stats.CountsByStatus[model.TaskStatusSubmitted] != 1 {
		t.Errorf("期望submitted=1，实际=%d", stats.CountsByStatus[model.TaskStatusSubmitted])
	}
	want := ProgressPercent(1, stats.FilteredTotalTasks)
	if stats.ProgressPercent != want {
		t.Errorf("期望进度=%d，实际=%d", want, stats.ProgressPercent)
	}
}

// ── ProgressPercent 纯函数测试 ──

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		name      string
		validated int64
		total     int
		want      int
	}{
		{"零分母", 5, 0, 0},
		{"零分子", 0, 28, 0},
		{"全部完成", 28, 28, 100},
		{"四舍五入向上", 1, 3, 33},
		{"四舍五入计算", 2, 3, 67},
		{"一半", 14, 28, 50},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ProgressPercent(c.validated, c.total); got != c.want {
				t.Errorf("ProgressPercent(%d, %d) 期望=%d，实际=%d", c.validated, c.total, c.want, got)
			}
		})
	}
}

// 进度随验收数单调不减
func TestProgressPercent_Monotonic(t *testing.T) {
	total := catalog.TotalAvailableTasks()
	prev := 0
	for v := int64(0); v <= int64(total); v++ {
		got := ProgressPercent(v, total)
		if got < prev {
			t.Fatalf("进度在 validated=%d 处回退：%d < %d", v, got, prev)
		}
		prev = got
	}
	if prev != 100 {
		t.Errorf("全部验收时进度应为100，实际=%d", prev)
	}
}

// ── Delete 测试 ──

func TestProjectService_Delete_Success(t *testing.T) {
	svc, mocks := setupTestProjectService()
	seedProject(mocks, "proj-1")

	if err := svc.Delete(context.Background(), "proj-1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := mocks.project.projects["proj-1"]; ok {
		t.Error("删除后项目不应存在")
	}
}

func TestProjectService_Delete_NotFound(t *testing.T) {
	svc, _ := setupTestProjectService()

	if err := svc.Delete(context.Background(), "nonexistent"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("期望 ErrProjectNotFound，实际: %v", err)
	}
}
