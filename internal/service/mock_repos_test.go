package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gorm.io/gorm"

	"aphs/backend/internal/dto"
	"aphs/backend/internal/model"
	"aphs/backend/internal/repository"
	pkgerrors "aphs/backend/pkg/errors"
)

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	profiles map[string]*model.Profile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	if profile.UserID == "" {
		profile.UserID = "user-" + profile.Email
	}
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) ListByIDs(_ context.Context, ids []string) ([]model.Profile, error) {
	var result []model.Profile
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProfileRepo) List(_ context.Context, role string, offset, limit int) ([]model.Profile, int64, error) {
	var result []model.Profile
	for _, p := range m.profiles {
		if role != "" && p.Role != role {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (m *mockProfileRepo) Update(_ context.Context, profile *model.Profile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	projects  map[string]*model.Project
	idCounter int
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*model.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.Project) error {
	if project.ProjectID == "" {
		m.idCounter++
		project.ProjectID = fmt.Sprintf("proj-%d", m.idCounter)
	}
	if project.Version == 0 {
		project.Version = 1
	}
	cp := *project
	m.projects[project.ProjectID] = &cp
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) List(_ context.Context, status string, offset, limit int) ([]model.Project, int64, error) {
	var result []model.Project
	for _, p := range m.projects {
		if status != "" && p.Status != status {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

// Update 模拟 CAS：版本不匹配返回 ErrOptimisticLock
func (m *mockProjectRepo) Update(_ context.Context, project *model.Project) error {
	stored, ok := m.projects[project.ProjectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != project.Version {
		return pkgerrors.ErrOptimisticLock
	}
	project.Version = stored.Version + 1
	cp := *project
	m.projects[project.ProjectID] = &cp
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id string) error {
	delete(m.projects, id)
	return nil
}

// ── Mock TaskRepository ──

type mockTaskRepo struct {
	tasks     map[string]*model.TaskAssignment
	idCounter int
	failNext  error // 下一次写操作返回该错误（模拟存储故障）
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]*model.TaskAssignment)}
}

func (m *mockTaskRepo) Create(_ context.Context, task *model.TaskAssignment) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	if task.TaskID == "" {
		m.idCounter++
		task.TaskID = fmt.Sprintf("task-%d", m.idCounter)
	}
	if task.Version == 0 {
		task.Version = 1
	}
	cp := *task
	m.tasks[task.TaskID] = &cp
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*model.TaskAssignment, error) {
	if t, ok := m.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTaskRepo) GetByLogicalKey(_ context.Context, projectID, phaseID, sectionID, subsectionID, taskName string) (*model.TaskAssignment, error) {
	for _, t := range m.tasks {
		if t.ProjectID == projectID && t.PhaseID == phaseID && t.SectionID == sectionID &&
			t.SubsectionID == subsectionID && t.TaskName == taskName {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTaskRepo) ListByProject(_ context.Context, projectID string, filter repository.TaskFilter, offset, limit int) ([]model.TaskAssignment, int64, error) {
	var result []model.TaskAssignment
	for _, t := range m.tasks {
		if t.ProjectID != projectID {
			continue
		}
		if filter.PhaseID != "" && t.PhaseID != filter.PhaseID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.AssignedTo != "" && t.AssignedTo != filter.AssignedTo {
			continue
		}
		result = append(result, *t)
	}
	return result, int64(len(result)), nil
}

func (m *mockTaskRepo) ListByAssignee(_ context.Context, userID string, status string) ([]model.TaskAssignment, error) {
	var result []model.TaskAssignment
	for _, t := range m.tasks {
		if t.AssignedTo != userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

// Update 模拟 CAS：版本不匹配返回 ErrOptimisticLock
func (m *mockTaskRepo) Update(_ context.Context, task *model.TaskAssignment) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	stored, ok := m.tasks[task.TaskID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != task.Version {
		return pkgerrors.ErrOptimisticLock
	}
	task.Version = stored.Version + 1
	cp := *task
	m.tasks[task.TaskID] = &cp
	return nil
}

func (m *mockTaskRepo) CountByStatus(_ context.Context, projectID string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (m *mockTaskRepo) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

// ── Mock HistoryRepository ──

type mockHistoryRepo struct {
	entries   []model.TaskHistory
	idCounter int
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{}
}

func (m *mockHistoryRepo) Create(_ context.Context, entry *model.TaskHistory) error {
	m.idCounter++
	if entry.HistoryID == "" {
		entry.HistoryID = fmt.Sprintf("hist-%d", m.idCounter)
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockHistoryRepo) ListByTask(_ context.Context, taskID string, offset, limit int) ([]model.TaskHistory, int64, error) {
	var result []model.TaskHistory
	for _, e := range m.entries {
		if e.TaskID == taskID {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockHistoryRepo) ListByProject(_ context.Context, projectID string, offset, limit int) ([]model.TaskHistory, int64, error) {
	var result []model.TaskHistory
	for _, e := range m.entries {
		if e.ProjectID == projectID {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}

// ── Mock OverrideRepository ──

type mockOverrideRepo struct {
	overrides []*model.StructureOverride
	idCounter int
	failList  error // ListActive 返回该错误（模拟读路径故障）
}

func newMockOverrideRepo() *mockOverrideRepo {
	return &mockOverrideRepo{}
}

func sameSubsection(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a != nil && b != nil {
		return *a == *b
	}
	return false
}

func (m *mockOverrideRepo) Upsert(_ context.Context, override *model.StructureOverride) error {
	for _, o := range m.overrides {
		if o.ProjectID == override.ProjectID && o.PhaseID == override.PhaseID &&
			o.SectionID == override.SectionID && sameSubsection(o.SubsectionID, override.SubsectionID) {
			o.IsDeleted = override.IsDeleted
			o.DeletedBy = override.DeletedBy
			o.DeletedAt = override.DeletedAt
			return nil
		}
	}
	m.idCounter++
	if override.OverrideID == "" {
		override.OverrideID = fmt.Sprintf("ovr-%d", m.idCounter)
	}
	cp := *override
	m.overrides = append(m.overrides, &cp)
	return nil
}

func (m *mockOverrideRepo) Find(_ context.Context, projectID, phaseID, sectionID string, subsectionID *string) (*model.StructureOverride, error) {
	for _, o := range m.overrides {
		if o.ProjectID == projectID && o.PhaseID == phaseID &&
			o.SectionID == sectionID && sameSubsection(o.SubsectionID, subsectionID) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOverrideRepo) ListActive(_ context.Context, projectID, phaseID string) ([]model.StructureOverride, error) {
	if m.failList != nil {
		return nil, m.failList
	}
	var result []model.StructureOverride
	for _, o := range m.overrides {
		if o.ProjectID == projectID && o.PhaseID == phaseID && o.IsDeleted {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (m *mockOverrideRepo) Deactivate(_ context.Context, projectID, phaseID, sectionID string, subsectionID *string) error {
	for _, o := range m.overrides {
		if o.ProjectID == projectID && o.PhaseID == phaseID &&
			o.SectionID == sectionID && sameSubsection(o.SubsectionID, subsectionID) {
			o.IsDeleted = false
		}
	}
	return nil
}

// ── Mock InfoSheetRepository ──

type mockInfoSheetRepo struct {
	sheets []*model.TaskInfoSheet
}

func newMockInfoSheetRepo() *mockInfoSheetRepo {
	return &mockInfoSheetRepo{}
}

func (m *mockInfoSheetRepo) Get(_ context.Context, phaseID, sectionID, subsectionID, taskName, language string) (*model.TaskInfoSheet, error) {
	for _, s := range m.sheets {
		if s.PhaseID == phaseID && s.SectionID == sectionID && s.SubsectionID == subsectionID &&
			s.TaskName == taskName && s.Language == language {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInfoSheetRepo) Upsert(_ context.Context, sheet *model.TaskInfoSheet) error {
	for _, s := range m.sheets {
		if s.PhaseID == sheet.PhaseID && s.SectionID == sheet.SectionID &&
			s.SubsectionID == sheet.SubsectionID && s.TaskName == sheet.TaskName &&
			s.Language == sheet.Language {
			s.Content = sheet.Content
			s.UpdatedBy = sheet.UpdatedBy
			return nil
		}
	}
	cp := *sheet
	m.sheets = append(m.sheets, &cp)
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications []*model.Notification
	idCounter     int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	m.idCounter++
	if notification.NotificationID == "" {
		notification.NotificationID = fmt.Sprintf("notif-%d", m.idCounter)
	}
	cp := *notification
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	return result, int64(len(result)), nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for _, n := range m.notifications {
		if n.NotificationID == id && n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// ── Mock Uploader ──

type mockUploader struct {
	uploads []string // 已上传的对象路径
	failErr error
}

func (m *mockUploader) Upload(_ context.Context, objectPath string, reader io.Reader, size int64, contentType string) (string, error) {
	if m.failErr != nil {
		return "", m.failErr
	}
	// 耗尽 reader，贴近真实上传行为
	if reader != nil {
		_, _ = io.Copy(io.Discard, reader)
	}
	m.uploads = append(m.uploads, objectPath)
	return "https://storage.local/task-files/" + objectPath, nil
}

// ── Mock Notifier（捕获派发事件）──

type mockNotifier struct {
	events []*TaskEvent
}

func (m *mockNotifier) Dispatch(_ context.Context, event *TaskEvent) {
	m.events = append(m.events, event)
}

func (m *mockNotifier) List(_ context.Context, _ string, _ bool, _, _ int) ([]dto.NotificationResponse, int64, error) {
	return nil, 0, nil
}

func (m *mockNotifier) MarkRead(_ context.Context, _, _ string) error { return nil }

// ── 测试装配 ──

type testRepos struct {
	profile      *mockProfileRepo
	project      *mockProjectRepo
	task         *mockTaskRepo
	history      *mockHistoryRepo
	override     *mockOverrideRepo
	infoSheet    *mockInfoSheetRepo
	notification *mockNotificationRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	mocks := &testRepos{
		profile:      newMockProfileRepo(),
		project:      newMockProjectRepo(),
		task:         newMockTaskRepo(),
		history:      newMockHistoryRepo(),
		override:     newMockOverrideRepo(),
		infoSheet:    newMockInfoSheetRepo(),
		notification: newMockNotificationRepo(),
	}
	repo := &repository.Repository{
		Profile:      mocks.profile,
		Project:      mocks.project,
		Task:         mocks.task,
		History:      mocks.history,
		Override:     mocks.override,
		InfoSheet:    mocks.infoSheet,
		Notification: mocks.notification,
	}
	return repo, mocks
}

func testFile(name string) *SubmittedFile {
	content := []byte("contenu du livrable")
	return &SubmittedFile{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "application/pdf",
		Reader:      bytes.NewReader(content),
	}
}
