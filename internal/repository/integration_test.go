//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "campus-life/backend/pkg/errors"

	"campus-life/backend/internal/model"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=campus password=campus_password dbname=campus_life_test sslmode=disable TimeZone=Asia/Taipei"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.Course{},
		&model.CourseSlot{},
		&model.Assignment{},
		&model.Exam{},
		&model.CustomCategory{},
		&model.CustomItem{},
		&model.UserPreference{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func newUser(t *testing.T) string {
	t.Helper()
	userID := uuid.NewString()
	t.Cleanup(func() {
		testDB.Unscoped().Where("user_id = ?", userID).Delete(&model.Assignment{})
		testDB.Unscoped().Where("user_id = ?", userID).Delete(&model.Exam{})
		testDB.Unscoped().Where("user_id = ?", userID).Delete(&model.CustomItem{})
		testDB.Unscoped().Where("user_id = ?", userID).Delete(&model.CustomCategory{})
		testDB.Exec("DELETE FROM course_slots WHERE course_id IN (SELECT course_id FROM courses WHERE user_id = ?)", userID)
		testDB.Unscoped().Where("user_id = ?", userID).Delete(&model.Course{})
		testDB.Unscoped().Where("user_id = ?", userID).Delete(&model.UserPreference{})
	})
	return userID
}

// ═══════════════════════════════════════════════════════════
// Test: Course check-then-write
// ═══════════════════════════════════════════════════════════

func TestCourse_CreateRunsCheckInsideTransaction(t *testing.T) {
	userID := newUser(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first := &model.Course{
		UserID: userID,
		Name:   "微积分",
		Slots:  []model.CourseSlot{{DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"}},
	}
	if err := repo.Course.Create(ctx, first, nil); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	second := &model.Course{
		UserID: userID,
		Name:   "普通物理",
		Slots:  []model.CourseSlot{{DayOfWeek: 1, StartTime: "10:00", EndTime: "12:00"}},
	}
	check := func(existing []model.Course) error {
		return scheduling.CheckSchedule(second.ToScheduling().Schedule, "", model.CoursesToScheduling(existing))
	}
	err := repo.Course.Create(ctx, second, check)
	if !errors.Is(err, scheduling.ErrScheduleConflict) {
		t.Fatalf("期望 ErrScheduleConflict，得到: %v", err)
	}

	courses, err := repo.Course.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser 失败: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("冲突时不应写入，期望 1 门课，得到 %d", len(courses))
	}
	if len(courses[0].Slots) != 1 || courses[0].Slots[0].StartTime != "09:00" {
		t.Errorf("时段未正确预加载: %+v", courses[0].Slots)
	}
}

func TestCourse_UpdateReplacesSlotsAndBumpsVersion(t *testing.T) {
	userID := newUser(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	course := &model.Course{
		UserID: userID,
		Name:   "资料结构",
		Slots: []model.CourseSlot{
			{DayOfWeek: 2, StartTime: "13:00", EndTime: "15:00"},
			{DayOfWeek: 4, StartTime: "13:00", EndTime: "15:00"},
		},
	}
	if err := repo.Course.Create(ctx, course, nil); err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	stale, _ := repo.Course.GetByID(ctx, userID, course.CourseID)

	course.Slots = []model.CourseSlot{{DayOfWeek: 3, StartTime: "08:00", EndTime: "10:00"}}
	if err := repo.Course.Update(ctx, course, nil); err != nil {
		t.Fatalf("更新课程失败: %v", err)
	}

	got, err := repo.Course.GetByID(ctx, userID, course.CourseID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("期望 version=2，得到 %d", got.Version)
	}
	if len(got.Slots) != 1 || got.Slots[0].DayOfWeek != 3 {
		t.Errorf("时段应被整体替换: %+v", got.Slots)
	}

	if err := repo.Course.Update(ctx, stale, nil); !pkgerrors.IsOptimisticLock(err) {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Status transitions
// ═══════════════════════════════════════════════════════════

func TestAssignment_TransitionStatusIsConditional(t *testing.T) {
	userID := newUser(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	a := &model.Assignment{
		UserID:        userID,
		CourseID:      uuid.NewString(),
		DueDate:       time.Now().Add(-time.Hour),
		TrackedFields: model.TrackedFields{Title: "期中报告", Status: "pending"},
	}
	if err := repo.Assignment.Create(ctx, a); err != nil {
		t.Fatalf("创建作业失败: %v", err)
	}

	ok, err := repo.Assignment.TransitionStatus(ctx, a.AssignmentID, "pending", "overdue")
	if err != nil || !ok {
		t.Fatalf("首次流转应成功: ok=%v err=%v", ok, err)
	}

	// 状态已变，重复流转不应生效
	ok, err = repo.Assignment.TransitionStatus(ctx, a.AssignmentID, "pending", "overdue")
	if err != nil || ok {
		t.Fatalf("重复流转应被跳过: ok=%v err=%v", ok, err)
	}

	open, err := repo.Assignment.ListOpen(ctx)
	if err != nil {
		t.Fatalf("ListOpen 失败: %v", err)
	}
	found := false
	for _, o := range open {
		if o.AssignmentID == a.AssignmentID {
			found = true
			if o.Status != "overdue" || o.Version != 2 {
				t.Errorf("期望 overdue/version=2，得到 %s/%d", o.Status, o.Version)
			}
		}
	}
	if !found {
		t.Error("逾期作业应出现在未完成列表中")
	}
}

func TestPreference_Upsert(t *testing.T) {
	userID := newUser(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if _, err := repo.Preference.Get(ctx, userID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("未设置时期望 ErrRecordNotFound，得到: %v", err)
	}

	for _, v := range []string{"2days", "1week"} {
		if err := repo.Preference.Upsert(ctx, &model.UserPreference{UserID: userID, ReminderSetting: v}); err != nil {
			t.Fatalf("Upsert 失败: %v", err)
		}
	}

	pref, err := repo.Preference.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if pref.ReminderSetting != "1week" {
		t.Errorf("期望 1week，得到 %s", pref.ReminderSetting)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	userID := newUser(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	cat := &model.CustomCategory{UserID: userID, Name: "社团"}
	if err := txRepo.CustomCategory.Create(ctx, cat); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建分类失败: %v", err)
	}
	tx.Rollback()

	if _, err := repo.CustomCategory.GetByID(ctx, userID, cat.CategoryID); err == nil {
		t.Fatal("期望回滚后查不到分类，但实际查到了")
	}
}
