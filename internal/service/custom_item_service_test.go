package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/model"
	"campus-life/backend/internal/scheduling"
)

func setupTestCustomItemService() (CustomItemService, *mockRepos) {
	repo, mocks := newMockRepos()
	return NewCustomItemService(repo, scheduling.FixedClock(testNow), nil, nopLogger()), mocks
}

func createCategory(t *testing.T, svc CustomItemService, name string) *dto.CategoryResponse {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), &dto.CreateCategoryRequest{Name: name}, testUser)
	if err != nil {
		t.Fatalf("创建分类失败: %v", err)
	}
	return c
}

// ── 分类 ──

func TestCustomItemService_CategoryNameUnique(t *testing.T) {
	svc, _ := setupTestCustomItemService()
	createCategory(t, svc, "社团")
	other := createCategory(t, svc, "打工")

	if _, err := svc.CreateCategory(context.Background(), &dto.CreateCategoryRequest{Name: "社团"}, testUser); !errors.Is(err, ErrCategoryNameExists) {
		t.Errorf("期望 ErrCategoryNameExists，实际: %v", err)
	}

	// 其他用户可以同名
	if _, err := svc.CreateCategory(context.Background(), &dto.CreateCategoryRequest{Name: "社团"}, "user-2"); err != nil {
		t.Errorf("不同用户同名分类应允许: %v", err)
	}

	name := "社团"
	if _, err := svc.UpdateCategory(context.Background(), other.ID, &dto.UpdateCategoryRequest{Name: &name}, testUser); !errors.Is(err, ErrCategoryNameExists) {
		t.Errorf("改名冲突期望 ErrCategoryNameExists，实际: %v", err)
	}
}

func TestCustomItemService_DeleteCategoryWithItems(t *testing.T) {
	svc, _ := setupTestCustomItemService()
	cat := createCategory(t, svc, "社团")

	item, err := svc.CreateItem(context.Background(), cat.ID, &dto.CreateCustomItemRequest{
		Title: "社课", DueDate: testNow.Add(24 * time.Hour),
	}, testUser)
	if err != nil {
		t.Fatalf("创建事项失败: %v", err)
	}

	if err := svc.DeleteCategory(context.Background(), cat.ID, testUser); !errors.Is(err, ErrCategoryHasItems) {
		t.Errorf("期望 ErrCategoryHasItems，实际: %v", err)
	}

	if err := svc.DeleteItem(context.Background(), item.ID, testUser); err != nil {
		t.Fatalf("删除事项失败: %v", err)
	}
	if err := svc.DeleteCategory(context.Background(), cat.ID, testUser); err != nil {
		t.Errorf("清空后应可删除分类: %v", err)
	}
}

// ── 事项 ──

func TestCustomItemService_CreateItem_UnknownCategory(t *testing.T) {
	svc, _ := setupTestCustomItemService()

	_, err := svc.CreateItem(context.Background(), "missing", &dto.CreateCustomItemRequest{
		Title: "x", DueDate: testNow,
	}, testUser)
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("期望 ErrCategoryNotFound，实际: %v", err)
	}
}

func TestCustomItemService_OptionalCourse(t *testing.T) {
	svc, mocks := setupTestCustomItemService()
	cat := createCategory(t, svc, "读书会")
	course := &model.Course{UserID: testUser, Name: "文学概论"}
	_ = mocks.course.Create(context.Background(), course, nil)

	_, err := svc.CreateItem(context.Background(), cat.ID, &dto.CreateCustomItemRequest{
		Title: "x", DueDate: testNow.Add(time.Hour), CourseID: strPtr("missing"),
	}, testUser)
	if !errors.Is(err, ErrWorkItemCourseGone) {
		t.Errorf("期望 ErrWorkItemCourseGone，实际: %v", err)
	}

	item, err := svc.CreateItem(context.Background(), cat.ID, &dto.CreateCustomItemRequest{
		Title: "读书报告", DueDate: testNow.Add(time.Hour), CourseID: &course.CourseID,
	}, testUser)
	if err != nil {
		t.Fatalf("创建事项失败: %v", err)
	}
	if item.CourseID != course.CourseID {
		t.Errorf("期望关联课程 %s，实际 %s", course.CourseID, item.CourseID)
	}

	updated, err := svc.UpdateItem(context.Background(), item.ID, &dto.UpdateCustomItemRequest{ClearCourse: true}, testUser)
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.CourseID != "" {
		t.Error("课程关联应被清除")
	}
}

func TestCustomItemService_ListItems_ReconcilesStatus(t *testing.T) {
	svc, mocks := setupTestCustomItemService()
	cat := createCategory(t, svc, "社团")
	_, _ = svc.CreateItem(context.Background(), cat.ID, &dto.CreateCustomItemRequest{
		Title: "报名", DueDate: testNow.Add(time.Minute),
	}, testUser)

	// 时间推进到截止之后
	later := NewCustomItemService(mocks.repository(), scheduling.FixedClock(testNow.Add(time.Hour)), nil, nopLogger())
	list, err := later.ListItems(context.Background(), cat.ID, testUser)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 1 || list[0].Status != "overdue" {
		t.Errorf("期望 1 条 overdue，实际 %+v", list)
	}
	if len(mocks.item.transitions) != 1 {
		t.Errorf("期望写回 1 次，实际 %d", len(mocks.item.transitions))
	}
}

func TestCustomItemService_CompleteIsIdempotent(t *testing.T) {
	svc, _ := setupTestCustomItemService()
	cat := createCategory(t, svc, "社团")
	item, _ := svc.CreateItem(context.Background(), cat.ID, &dto.CreateCustomItemRequest{
		Title: "报名", DueDate: testNow.Add(time.Hour),
	}, testUser)

	first, err := svc.CompleteItem(context.Background(), item.ID, testUser)
	if err != nil {
		t.Fatalf("完成失败: %v", err)
	}
	second, err := svc.CompleteItem(context.Background(), item.ID, testUser)
	if err != nil {
		t.Fatalf("重复完成不应报错: %v", err)
	}
	if second.Version != first.Version || !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Error("重复完成不应再次写入")
	}

	reopened, err := svc.ReopenItem(context.Background(), item.ID, testUser)
	if err != nil {
		t.Fatalf("重新打开失败: %v", err)
	}
	if reopened.Status != "pending" {
		t.Errorf("截止未到，重新打开应为 pending，实际 %s", reopened.Status)
	}
}
