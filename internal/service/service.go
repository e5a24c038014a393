package service

import (
	"go.uber.org/zap"

	"campus-life/backend/config"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
	"campus-life/backend/pkg/jwt"
	"campus-life/backend/pkg/metrics"
	"campus-life/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Course     CourseService
	Assignment AssignmentService
	Exam       ExamService
	CustomItem CustomItemService
	Preference PreferenceService
	Todo       TodoService
	Export     ExportService
	Refresher  *StatusRefresher
}

// NewService 创建 Service 聚合
// rdb 可为 nil：此时登出不可用，状态刷新不加分布式锁
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	clock *scheduling.CivilClock,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	var (
		revoker TokenRevoker
		locker  RefreshLocker
	)
	if rdb != nil {
		revoker = rdb
		locker = rdb
	}

	pref := NewPreferenceService(repo, scheduling.ReminderSetting(cfg.Scheduler.DefaultReminder), logger)

	return &Service{
		Auth:       NewAuthService(jwtMgr, revoker, logger),
		Course:     NewCourseService(repo, clock, m, logger),
		Assignment: NewAssignmentService(repo, clock, m, logger),
		Exam:       NewExamService(repo, clock, m, logger),
		CustomItem: NewCustomItemService(repo, clock, m, logger),
		Preference: pref,
		Todo:       NewTodoService(repo, pref, clock, m, cfg.Scheduler.FeedLimit, logger),
		Export:     NewExportService(repo, clock, logger),
		Refresher: NewStatusRefresher(repo, clock, locker,
			cfg.Scheduler.RefreshInterval, cfg.Scheduler.LockTTL, m, logger.Named("refresher")),
	}
}
