package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"aphs/backend/internal/catalog"
)

// ── 测试辅助 ──

func setupTestStructureService() (StructureService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewStructureService(repo, zap.NewNop())
	return svc, mocks
}

func countTasks(sections []catalog.Section) int {
	total := 0
	for _, sec := range sections {
		for _, sub := range sec.Items {
			total += len(sub.Tasks)
		}
	}
	return total
}

func findSection(sections []catalog.Section, id string) *catalog.Section {
	for i := range sections {
		if sections[i].ID == id {
			return &sections[i]
		}
	}
	return nil
}

// ── View 测试 ──

func TestStructureService_View_NoOverrides(t *testing.T) {
	svc, _ := setupTestStructureService()

	view, err := svc.View(context.Background(), "proj-1", "conception", "fr")
	if err != nil {
		t.Fatalf("View 应成功: %v", err)
	}
	if view.Fallback {
		t.Error("无故障时不应标记 fallback")
	}
	if countTasks(view.Sections) != catalog.TotalTasks("conception") {
		t.Errorf("无定制时应返回全量目录，实际任务数=%d", countTasks(view.Sections))
	}
}

func TestStructureService_View_Localized(t *testing.T) {
	svc, _ := setupTestStructureService()

	fr, _ := svc.View(context.Background(), "proj-1", "conception", "fr")
	en, _ := svc.View(context.Background(), "proj-1", "conception", "en")

	frTitle := findSection(fr.Sections, "A").Title
	enTitle := findSection(en.Sections, "A").Title
	if frTitle == enTitle {
		t.Errorf("期望英文标题与法文不同，实际均为=%s", frTitle)
	}
}

func TestStructureService_View_FallbackOnOverrideFailure(t *testing.T) {
	svc, mocks := setupTestStructureService()
	ctx := context.Background()

	// 先删除一个分区，再使定制查询故障：读路径应回退全量目录
	if err := svc.DeleteSection(ctx, "proj-1", "conception", "A", testAdminID); err != nil {
		t.Fatalf("DeleteSection 应成功: %v", err)
	}
	mocks.override.failList = errors.New("连接中断")

	view, err := svc.View(ctx, "proj-1", "conception", "fr")
	if err != nil {
		t.Fatalf("读路径应回退而非报错: %v", err)
	}
	if !view.Fallback {
		t.Error("回退响应应标记 fallback")
	}
	if findSection(view.Sections, "A") == nil {
		t.Error("回退视图应包含未过滤的分区 A")
	}
}

// ── DeleteSection 测试 ──

func TestStructureService_DeleteSection_HidesCascade(t *testing.T) {
	svc, _ := setupTestStructureService()
	ctx := context.Background()

	if err := svc.DeleteSection(ctx, "proj-1", "conception", "A", testAdminID); err != nil {
		t.Fatalf("DeleteSection 应成功: %v", err)
	}

	view, _ := svc.View(ctx, "proj-1", "conception", "fr")
	if findSection(view.Sections, "A") != nil {
		t.Error("删除后视图不应包含分区 A")
	}
	// 级联：分区 A 下所有子分区任务也应消失
	want := catalog.TotalTasks("conception")
	secA, _ := catalog.FindSection("conception", "A")
	for _, sub := range secA.Items {
		want -= len(sub.Tasks)
	}
	if got := countTasks(view.Sections); got != want {
		t.Errorf("期望过滤后任务数=%d，实际=%d", want, got)
	}
}

func TestStructureService_DeleteSection_Idempotent(t *testing.T) {
	svc, mocks := setupTestStructureService()
	ctx := context.Background()

	if err := svc.DeleteSection(ctx, "proj-1", "conception", "A", testAdminID); err != nil {
		t.Fatalf("首次删除应成功: %v", err)
	}
	if err := svc.DeleteSection(ctx, "proj-1", "conception", "A", testAdminID); err != nil {
		t.Fatalf("重复删除应幂等成功: %v", err)
	}
	if len(mocks.override.overrides) != 1 {
		t.Errorf("重复删除不应新增记录，实际=%d", len(mocks.override.overrides))
	}
}

func TestStructureService_DeleteSection_NotFound(t *testing.T) {
	svc, _ := setupTestStructureService()

	if err := svc.DeleteSection(context.Background(), "proj-1", "conception", "Z", testAdminID); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("期望 ErrSectionNotFound，实际: %v", err)
	}
}

// ── DeleteSubsection 测试 ──

func TestStructureService_DeleteSubsection_KeepsSiblings(t *testing.T) {
	svc, _ := setupTestStructureService()
	ctx := context.Background()

	if err := svc.DeleteSubsection(ctx, "proj-1", "conception", "A", "A1", testAdminID); err != nil {
		t.Fatalf("DeleteSubsection 应成功: %v", err)
	}

	view, _ := svc.View(ctx, "proj-1", "conception", "fr")
	secA := findSection(view.Sections, "A")
	if secA == nil {
		t.Fatal("仅删子分区时分区本身应保留")
	}
	for _, sub := range secA.Items {
		if sub.ID == "A1" {
			t.Error("视图不应包含已删除的子分区 A1")
		}
	}
	if len(secA.Items) == 0 {
		t.Error("兄弟子分区应保留")
	}
}

func TestStructureService_DeleteSubsection_NotFound(t *testing.T) {
	svc, _ := setupTestStructureService()

	if err := svc.DeleteSubsection(context.Background(), "proj-1", "conception", "A", "A9", testAdminID); !errors.Is(err, ErrSubsectionNotFound) {
		t.Errorf("期望 ErrSubsectionNotFound，实际: %v", err)
	}
}

// ── Restore 测试 ──

func TestStructureService_Restore_SectionReappears(t *testing.T) {
	svc, _ := setupTestStructureService()
	ctx := context.Background()

	if err := svc.DeleteSection(ctx, "proj-1", "conception", "A", testAdminID); err != nil {
		t.Fatalf("DeleteSection 应成功: %v", err)
	}
	if err := svc.Restore(ctx, "proj-1", "conception", "A", nil); err != nil {
		t.Fatalf("Restore 应成功: %v", err)
	}

	view, _ := svc.View(ctx, "proj-1", "conception", "fr")
	if findSection(view.Sections, "A") == nil {
		t.Error("恢复后视图应重新包含分区 A")
	}
}

func TestStructureService_Restore_ExactKeyOnly(t *testing.T) {
	svc, _ := setupTestStructureService()
	ctx := context.Background()

	// 删除子分区 A1，再按分区级键恢复：NULL 判别不应命中子分区记录
	if err := svc.DeleteSubsection(ctx, "proj-1", "conception", "A", "A1", testAdminID); err != nil {
		t.Fatalf("DeleteSubsection 应成功: %v", err)
	}
	if err := svc.Restore(ctx, "proj-1", "conception", "A", nil); err != nil {
		t.Fatalf("Restore 应成功: %v", err)
	}

	view, _ := svc.View(ctx, "proj-1", "conception", "fr")
	secA := findSection(view.Sections, "A")
	for _, sub := range secA.Items {
		if sub.ID == "A1" {
			t.Error("分区级恢复不应命中子分区级删除记录")
		}
	}
}

// ── 定制的项目隔离 ──

func TestStructureService_Overrides_ProjectScoped(t *testing.T) {
	svc, _ := setupTestStructureService()
	ctx := context.Background()

	if err := svc.DeleteSection(ctx, "proj-1", "conception", "A", testAdminID); err != nil {
		t.Fatalf("DeleteSection 应成功: %v", err)
	}

	other, _ := svc.View(ctx, "proj-2", "conception", "fr")
	if findSection(other.Sections, "A") == nil {
		t.Error("定制应仅作用于所属项目")
	}
}

// ── FilteredTotalTasks 测试 ──

func TestStructureService_FilteredTotalTasks(t *testing.T) {
	svc, _ := setupTestStructureService()
	ctx := context.Background()

	total, err := svc.FilteredTotalTasks(ctx, "proj-1")
	if err != nil {
		t.Fatalf("FilteredTotalTasks 应成功: %v", err)
	}
	if total != catalog.TotalAvailableTasks() {
		t.Errorf("无定制时应等于全量任务数，实际=%d", total)
	}

	if err := svc.DeleteSubsection(ctx, "proj-1", "conception", "A", "A1", testAdminID); err != nil {
		t.Fatalf("DeleteSubsection 应成功: %v", err)
	}
	sub, _ := catalog.FindSubsection("conception", "A", "A1")
	filtered, _ := svc.FilteredTotalTasks(ctx, "proj-1")
	if filtered != total-len(sub.Tasks) {
		t.Errorf("期望过滤后=%d，实际=%d", total-len(sub.Tasks), filtered)
	}
}
