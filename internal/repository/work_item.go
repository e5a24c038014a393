package repository

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	pkgerrors "campus-life/backend/pkg/errors"
)

// WorkItemFilter 事项列表筛选条件，零值表示不过滤
type WorkItemFilter struct {
	CourseID string
	Status   string
}

func (f WorkItemFilter) apply(q *gorm.DB) *gorm.DB {
	if f.CourseID != "" {
		q = q.Where("course_id = ?", f.CourseID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

// transitionStatus 条件更新：仅当当前状态仍为 from 时写入 to
// 返回 false 表示记录已被其他操作修改（如用户刚标记完成），调用方应跳过
func transitionStatus(tx *gorm.DB, table interface{}, idColumn, id, from, to string) (bool, error) {
	result := tx.Model(table).
		Where(fmt.Sprintf("%s = ? AND status = ?", idColumn), id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// versionedUpdate 乐观锁更新，RowsAffected 为 0 时返回 *StaleVersionError
func versionedUpdate(tx *gorm.DB, table interface{}, idColumn, id, userID string, version int, fields map[string]interface{}) error {
	fields["version"] = version + 1
	result := tx.Model(table).
		Where(fmt.Sprintf("%s = ? AND user_id = ? AND version = ?", idColumn), id, userID, version).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.Stale(strings.TrimSuffix(idColumn, "_id"), id, version)
	}
	return nil
}

func softDelete(tx *gorm.DB, table interface{}, idColumn, id, userID string) error {
	return tx.Model(table).
		Where(fmt.Sprintf("%s = ? AND user_id = ?", idColumn), id, userID).
		Updates(map[string]interface{}{
			"deleted_by": userID,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
