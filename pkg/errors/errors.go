package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// StaleVersionError 条件更新未命中，记录不存在或版本已前进
type StaleVersionError struct {
	Entity  string // 如 course、assignment
	ID      string
	Version int // 写入时持有的版本号
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("%s %s 版本 %d 已过期", e.Entity, e.ID, e.Version)
}

func (e *StaleVersionError) Unwrap() error { return ErrOptimisticLock }

// Stale 构造版本冲突错误
func Stale(entity, id string, version int) error {
	return &StaleVersionError{Entity: entity, ID: id, Version: version}
}

// IsOptimisticLock 判断错误链中是否有乐观锁冲突
func IsOptimisticLock(err error) bool {
	return errors.Is(err, ErrOptimisticLock)
}
