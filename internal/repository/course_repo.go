package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-life/backend/internal/model"
	pkgerrors "campus-life/backend/pkg/errors"
)

// CourseCheck 在写入前对用户现有课程执行的校验（如冲突检测）
type CourseCheck func(existing []model.Course) error

// CourseRepository 课程数据访问接口
// 带 check 的写操作在同一事务内完成"加锁 → 读取 → 校验 → 写入"
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course, check CourseCheck) error
	BatchCreate(ctx context.Context, userID string, courses []model.Course, check CourseCheck) error
	GetByID(ctx context.Context, userID, id string) (*model.Course, error)
	ListByUser(ctx context.Context, userID string) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course, check CourseCheck) error
	Delete(ctx context.Context, userID, id string) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func listCourses(tx *gorm.DB, userID string) ([]model.Course, error) {
	var courses []model.Course
	err := tx.
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC, start_time ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&courses).Error
	return courses, err
}

func runCheck(tx *gorm.DB, userID string, check CourseCheck) error {
	if check == nil {
		return nil
	}
	if err := lockUser(tx, userID); err != nil {
		return err
	}
	existing, err := listCourses(tx, userID)
	if err != nil {
		return err
	}
	return check(existing)
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course, check CourseCheck) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := runCheck(tx, course.UserID, check); err != nil {
			return err
		}
		// 关联的 Slots 随 Create 一并写入
		return tx.Create(course).Error
	})
}

func (r *courseRepo) BatchCreate(ctx context.Context, userID string, courses []model.Course, check CourseCheck) error {
	if len(courses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := runCheck(tx, userID, check); err != nil {
			return err
		}
		return tx.Create(&courses).Error
	})
}

func (r *courseRepo) GetByID(ctx context.Context, userID, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC, start_time ASC")
		}).
		Where("course_id = ? AND user_id = ?", id, userID).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) ListByUser(ctx context.Context, userID string) ([]model.Course, error) {
	return listCourses(r.db.WithContext(ctx), userID)
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course, check CourseCheck) error {
	oldVersion := course.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := runCheck(tx, course.UserID, check); err != nil {
			return err
		}

		result := tx.Model(&model.Course{}).
			Where("course_id = ? AND user_id = ? AND version = ?", course.CourseID, course.UserID, oldVersion).
			Updates(map[string]interface{}{
				"name":       course.Name,
				"instructor": course.Instructor,
				"classroom":  course.Classroom,
				"color":      course.Color,
				"updated_by": course.UpdatedBy,
				"version":    oldVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.Stale("course", course.CourseID, oldVersion)
		}

		// 时段整体替换
		if err := tx.Where("course_id = ?", course.CourseID).Delete(&model.CourseSlot{}).Error; err != nil {
			return err
		}
		for i := range course.Slots {
			course.Slots[i].CourseSlotID = ""
			course.Slots[i].CourseID = course.CourseID
		}
		if len(course.Slots) > 0 {
			if err := tx.Create(&course.Slots).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	course.Version = oldVersion + 1
	return nil
}

func (r *courseRepo) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"deleted_by": userID,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
