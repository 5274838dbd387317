package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aphs/backend/internal/catalog"
	"aphs/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportProjectNotFound = errors.New("项目不存在")
	ErrExportNoTasks         = errors.New("该项目暂无任务")
	ErrExportGenerateFail    = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 任务报表导出为 Excel (.xlsx)，按阶段/分区分组呈现
//   - 截止日期导出为 iCalendar (.ics)，每个未完结任务一个 VEVENT
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTaskReport 导出项目任务报表为 Excel
	ExportTaskReport(ctx context.Context, projectID, lang string) (*bytes.Buffer, string, error)
	// ExportDeadlineCalendar 导出项目任务截止日历为 ICS
	ExportDeadlineCalendar(ctx context.Context, projectID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// 状态的法语显示文案（报表面向客户，与前端一致使用法语）
var statusLabels = map[string]string{
	"assigned":  "Assignée",
	"submitted": "Soumise",
	"validated": "Validée",
	"rejected":  "Refusée",
}

// ═══════════════════════════════════════════════════════════
// ExportTaskReport — 导出项目任务报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Conception" / "Réalisation"（按阶段分）
//   - 行：任务（按 section/subsection/名称排序，复用列表查询的 deadline 排序）
//   - 列：Section | Sous-section | Tâche | Assignée à | Statut | Échéance | Validée le
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportTaskReport(ctx context.Context, projectID, lang string) (*bytes.Buffer, string, error) {
	// 1. 查询项目
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrExportProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 查询全部任务（limit -1 取消分页）
	tasks, _, err := s.repo.Task.ListByProject(ctx, projectID, repository.TaskFilter{}, 0, -1)
	if err != nil {
		s.logger.Error("查询任务列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(tasks) == 0 {
		return nil, "", ErrExportNoTasks
	}

	// 3. 生成 Excel：每个阶段一个 Sheet
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	sheetNames := map[string]string{
		"conception":  "Conception",
		"realisation": "Réalisation",
	}
	headers := []string{"Section", "Sous-section", "Tâche", "Assignée à", "Statut", "Échéance", "Validée le"}
	widths := []float64{28, 28, 32, 24, 12, 14, 14}

	for _, phaseID := range []string{"conception", "realisation"} {
		sheetName := sheetNames[phaseID]
		idx, _ := f.NewSheet(sheetName)
		if phaseID == "conception" {
			f.SetActiveSheet(idx)
		}

		for i, w := range widths {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetColWidth(sheetName, col, col, w)
		}

		// 标题行
		f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — Phase %s", project.Name, sheetName))
		f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
		f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

		// 表头
		for i, h := range headers {
			f.SetCellValue(sheetName, cell(colName(i), 2), h)
			f.SetCellStyle(sheetName, cell(colName(i), 2), cell(colName(i), 2), headerStyle)
		}

		// 数据行：分区/子分区标题按请求语言本地化
		row := 3
		for _, task := range tasks {
			if task.PhaseID != phaseID {
				continue
			}

			sectionTitle, subsectionTitle := task.SectionID, task.SubsectionID
			if title := catalog.SectionTitle(task.PhaseID, task.SectionID, lang); title != "" {
				sectionTitle = fmt.Sprintf("%s — %s", task.SectionID, title)
			}
			if title := catalog.SubsectionTitle(task.PhaseID, task.SectionID, task.SubsectionID, lang); title != "" {
				subsectionTitle = fmt.Sprintf("%s — %s", task.SubsectionID, title)
			}

			assigneeName := task.AssignedTo
			if task.Assignee != nil {
				assigneeName = task.Assignee.DisplayName()
			}

			f.SetCellValue(sheetName, cell("A", row), sectionTitle)
			f.SetCellValue(sheetName, cell("B", row), subsectionTitle)
			f.SetCellValue(sheetName, cell("C", row), task.TaskName)
			f.SetCellValue(sheetName, cell("D", row), assigneeName)
			f.SetCellValue(sheetName, cell("E", row), statusLabel(task.Status))
			f.SetCellValue(sheetName, cell("F", row), task.Deadline.Format("02/01/2006"))
			if task.ValidatedAt != nil {
				f.SetCellValue(sheetName, cell("G", row), task.ValidatedAt.Format("02/01/2006"))
			} else {
				f.SetCellValue(sheetName, cell("G", row), "-")
			}
			row++
		}
	}

	f.DeleteSheet("Sheet1")

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("taches_%s.xlsx", project.ProjectID)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportDeadlineCalendar — 导出任务截止日历为 ICS
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 每个未完结任务（assigned / submitted / rejected）一个全天 VEVENT
//   - UID 取 task_id，便于客户端重复导入时覆盖更新
//   - SUMMARY 为 "[项目名] 任务名"，DESCRIPTION 含阶段/分区/指派人

func (s *exportService) ExportDeadlineCalendar(ctx context.Context, projectID string) (*bytes.Buffer, string, error) {
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrExportProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, "", err
	}

	tasks, _, err := s.repo.Task.ListByProject(ctx, projectID, repository.TaskFilter{}, 0, -1)
	if err != nil {
		s.logger.Error("查询任务列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(tasks) == 0 {
		return nil, "", ErrExportNoTasks
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//APHS//Suivi de projet//FR")
	cal.SetName(fmt.Sprintf("Échéances — %s", project.Name))

	now := time.Now()
	count := 0
	for _, task := range tasks {
		// 已校验通过的任务不再占用日历
		if task.Status == "validated" {
			continue
		}

		assigneeName := task.AssignedTo
		if task.Assignee != nil {
			assigneeName = task.Assignee.DisplayName()
		}

		event := cal.AddEvent(task.TaskID)
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(task.Deadline)
		event.SetAllDayEndAt(task.Deadline.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("[%s] %s", project.Name, task.TaskName))
		event.SetDescription(fmt.Sprintf("Phase: %s, Section: %s, Sous-section: %s — Assignée à %s (%s)",
			task.PhaseID, task.SectionID, task.SubsectionID, assigneeName, statusLabel(task.Status)))
		count++
	}
	if count == 0 {
		return nil, "", ErrExportNoTasks
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("echeances_%s.ics", project.ProjectID)
	return buf, filename, nil
}

// ── 辅助函数 ──

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
