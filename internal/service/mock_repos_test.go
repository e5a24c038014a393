package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-life/backend/internal/model"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
	pkgerrors "campus-life/backend/pkg/errors"
)

// ── 测试辅助 ──

type mockRepos struct {
	course     *mockCourseRepo
	assignment *mockAssignmentRepo
	exam       *mockExamRepo
	category   *mockCategoryRepo
	item       *mockCustomItemRepo
	pref       *mockPreferenceRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		course:     newMockCourseRepo(),
		assignment: newMockAssignmentRepo(),
		exam:       newMockExamRepo(),
		category:   newMockCategoryRepo(),
		item:       newMockCustomItemRepo(),
		pref:       newMockPreferenceRepo(),
	}
	m.category.items = m.item
	return m.repository(), m
}

// repository 基于同一组 mock 构造聚合，用于以不同时钟创建多个 Service
func (m *mockRepos) repository() *repository.Repository {
	return &repository.Repository{
		Course:         m.course,
		Assignment:     m.assignment,
		Exam:           m.exam,
		CustomCategory: m.category,
		CustomItem:     m.item,
		Preference:     m.pref,
	}
}

func nopLogger() *zap.Logger { return zap.NewNop() }

func strPtr(s string) *string { return &s }

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	seq     int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) add(c *model.Course) {
	if c.CourseID == "" {
		m.seq++
		c.CourseID = fmt.Sprintf("course-%03d", m.seq)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	for i := range c.Slots {
		c.Slots[i].CourseID = c.CourseID
	}
	cp := *c
	cp.Slots = append([]model.CourseSlot(nil), c.Slots...)
	m.courses[c.CourseID] = &cp
}

func (m *mockCourseRepo) check(userID string, check repository.CourseCheck) error {
	if check == nil {
		return nil
	}
	existing, _ := m.ListByUser(context.Background(), userID)
	return check(existing)
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course, check repository.CourseCheck) error {
	if err := m.check(course.UserID, check); err != nil {
		return err
	}
	m.add(course)
	return nil
}

func (m *mockCourseRepo) BatchCreate(_ context.Context, userID string, courses []model.Course, check repository.CourseCheck) error {
	if err := m.check(userID, check); err != nil {
		return err
	}
	for i := range courses {
		m.add(&courses[i])
	}
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, userID, id string) (*model.Course, error) {
	c, ok := m.courses[id]
	if !ok || c.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Slots = append([]model.CourseSlot(nil), c.Slots...)
	return &cp, nil
}

func (m *mockCourseRepo) ListByUser(_ context.Context, userID string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.UserID == userID {
			cp := *c
			cp.Slots = append([]model.CourseSlot(nil), c.Slots...)
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseID < result[j].CourseID })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course, check repository.CourseCheck) error {
	if err := m.check(course.UserID, check); err != nil {
		return err
	}
	stored, ok := m.courses[course.CourseID]
	if !ok || stored.Version != course.Version {
		return pkgerrors.ErrOptimisticLock
	}
	course.Version++
	m.add(course)
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, userID, id string) error {
	if c, ok := m.courses[id]; ok && c.UserID == userID {
		delete(m.courses, id)
	}
	return nil
}

// ── 事项状态写回记录 ──

type transition struct {
	id, from, to string
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	items         map[string]*model.Assignment
	transitions   []transition
	transitionErr error
	seq           int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{items: make(map[string]*model.Assignment)}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		m.seq++
		a.AssignmentID = fmt.Sprintf("assignment-%03d", m.seq)
	}
	if a.Version == 0 {
		a.Version = 1
	}
	cp := *a
	m.items[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, userID, id string) (*model.Assignment, error) {
	a, ok := m.items[id]
	if !ok || a.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignmentRepo) ListByUser(_ context.Context, userID string, filter repository.WorkItemFilter) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.items {
		if a.UserID != userID {
			continue
		}
		if filter.CourseID != "" && a.CourseID != filter.CourseID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result, nil
}

func (m *mockAssignmentRepo) ListOpen(_ context.Context) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.items {
		if a.Status != string(scheduling.StatusCompleted) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignmentID < result[j].AssignmentID })
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	stored, ok := m.items[a.AssignmentID]
	if !ok || stored.Version != a.Version {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version++
	cp := *a
	m.items[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) TransitionStatus(_ context.Context, id, from, to string) (bool, error) {
	if m.transitionErr != nil {
		return false, m.transitionErr
	}
	a, ok := m.items[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.Version++
	m.transitions = append(m.transitions, transition{id, from, to})
	return true, nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, userID, id string) error {
	if a, ok := m.items[id]; ok && a.UserID == userID {
		delete(m.items, id)
	}
	return nil
}

// ── Mock ExamRepository ──

type mockExamRepo struct {
	items       map[string]*model.Exam
	transitions []transition
	seq         int
}

func newMockExamRepo() *mockExamRepo {
	return &mockExamRepo{items: make(map[string]*model.Exam)}
}

func (m *mockExamRepo) Create(_ context.Context, e *model.Exam) error {
	if e.ExamID == "" {
		m.seq++
		e.ExamID = fmt.Sprintf("exam-%03d", m.seq)
	}
	if e.Version == 0 {
		e.Version = 1
	}
	cp := *e
	m.items[e.ExamID] = &cp
	return nil
}

func (m *mockExamRepo) GetByID(_ context.Context, userID, id string) (*model.Exam, error) {
	e, ok := m.items[id]
	if !ok || e.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockExamRepo) ListByUser(_ context.Context, userID string, filter repository.WorkItemFilter) ([]model.Exam, error) {
	var result []model.Exam
	for _, e := range m.items {
		if e.UserID != userID {
			continue
		}
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExamID < result[j].ExamID })
	return result, nil
}

func (m *mockExamRepo) ListOpen(_ context.Context) ([]model.Exam, error) {
	var result []model.Exam
	for _, e := range m.items {
		if e.Status != string(scheduling.StatusCompleted) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExamID < result[j].ExamID })
	return result, nil
}

func (m *mockExamRepo) Update(_ context.Context, e *model.Exam) error {
	stored, ok := m.items[e.ExamID]
	if !ok || stored.Version != e.Version {
		return pkgerrors.ErrOptimisticLock
	}
	e.Version++
	cp := *e
	m.items[e.ExamID] = &cp
	return nil
}

func (m *mockExamRepo) TransitionStatus(_ context.Context, id, from, to string) (bool, error) {
	e, ok := m.items[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status = to
	e.Version++
	m.transitions = append(m.transitions, transition{id, from, to})
	return true, nil
}

func (m *mockExamRepo) Delete(_ context.Context, userID, id string) error {
	if e, ok := m.items[id]; ok && e.UserID == userID {
		delete(m.items, id)
	}
	return nil
}

// ── Mock CustomCategoryRepository ──

type mockCategoryRepo struct {
	categories map[string]*model.CustomCategory
	items      *mockCustomItemRepo
	seq        int
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[string]*model.CustomCategory)}
}

func (m *mockCategoryRepo) Create(_ context.Context, c *model.CustomCategory) error {
	if c.CategoryID == "" {
		m.seq++
		c.CategoryID = fmt.Sprintf("category-%03d", m.seq)
	}
	cp := *c
	m.categories[c.CategoryID] = &cp
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, userID, id string) (*model.CustomCategory, error) {
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepo) GetByName(_ context.Context, userID, name string) (*model.CustomCategory, error) {
	for _, c := range m.categories {
		if c.UserID == userID && c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) ListByUser(_ context.Context, userID string) ([]model.CustomCategory, error) {
	var result []model.CustomCategory
	for _, c := range m.categories {
		if c.UserID == userID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CategoryID < result[j].CategoryID })
	return result, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, c *model.CustomCategory) error {
	cp := *c
	m.categories[c.CategoryID] = &cp
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, userID, id string) error {
	if c, ok := m.categories[id]; ok && c.UserID == userID {
		delete(m.categories, id)
	}
	return nil
}

func (m *mockCategoryRepo) CountItems(_ context.Context, categoryID string) (int64, error) {
	var n int64
	if m.items == nil {
		return 0, nil
	}
	for _, it := range m.items.items {
		if it.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// ── Mock CustomItemRepository ──

type mockCustomItemRepo struct {
	items       map[string]*model.CustomItem
	transitions []transition
	seq         int
}

func newMockCustomItemRepo() *mockCustomItemRepo {
	return &mockCustomItemRepo{items: make(map[string]*model.CustomItem)}
}

func (m *mockCustomItemRepo) Create(_ context.Context, item *model.CustomItem) error {
	if item.ItemID == "" {
		m.seq++
		item.ItemID = fmt.Sprintf("item-%03d", m.seq)
	}
	if item.Version == 0 {
		item.Version = 1
	}
	cp := *item
	m.items[item.ItemID] = &cp
	return nil
}

func (m *mockCustomItemRepo) GetByID(_ context.Context, userID, id string) (*model.CustomItem, error) {
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *mockCustomItemRepo) ListByUser(_ context.Context, userID string, filter repository.WorkItemFilter) ([]model.CustomItem, error) {
	var result []model.CustomItem
	for _, it := range m.items {
		if it.UserID != userID {
			continue
		}
		if filter.CourseID != "" && (it.CourseID == nil || *it.CourseID != filter.CourseID) {
			continue
		}
		result = append(result, *it)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ItemID < result[j].ItemID })
	return result, nil
}

func (m *mockCustomItemRepo) ListByCategory(ctx context.Context, userID, categoryID string) ([]model.CustomItem, error) {
	all, _ := m.ListByUser(ctx, userID, repository.WorkItemFilter{})
	var result []model.CustomItem
	for _, it := range all {
		if it.CategoryID == categoryID {
			result = append(result, it)
		}
	}
	return result, nil
}

func (m *mockCustomItemRepo) ListOpen(_ context.Context) ([]model.CustomItem, error) {
	var result []model.CustomItem
	for _, it := range m.items {
		if it.Status != string(scheduling.StatusCompleted) {
			result = append(result, *it)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ItemID < result[j].ItemID })
	return result, nil
}

func (m *mockCustomItemRepo) Update(_ context.Context, item *model.CustomItem) error {
	stored, ok := m.items[item.ItemID]
	if !ok || stored.Version != item.Version {
		return pkgerrors.ErrOptimisticLock
	}
	item.Version++
	cp := *item
	m.items[item.ItemID] = &cp
	return nil
}

func (m *mockCustomItemRepo) TransitionStatus(_ context.Context, id, from, to string) (bool, error) {
	it, ok := m.items[id]
	if !ok || it.Status != from {
		return false, nil
	}
	it.Status = to
	it.Version++
	m.transitions = append(m.transitions, transition{id, from, to})
	return true, nil
}

func (m *mockCustomItemRepo) Delete(_ context.Context, userID, id string) error {
	if it, ok := m.items[id]; ok && it.UserID == userID {
		delete(m.items, id)
	}
	return nil
}

// ── Mock UserPreferenceRepository ──

type mockPreferenceRepo struct {
	prefs map[string]*model.UserPreference
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{prefs: make(map[string]*model.UserPreference)}
}

func (m *mockPreferenceRepo) Get(_ context.Context, userID string) (*model.UserPreference, error) {
	if p, ok := m.prefs[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPreferenceRepo) Upsert(_ context.Context, pref *model.UserPreference) error {
	cp := *pref
	m.prefs[pref.UserID] = &cp
	return nil
}
