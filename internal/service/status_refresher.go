package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
	"campus-life/backend/pkg/metrics"
)

const refreshLockName = "status-refresher"

// RefreshLocker 多实例部署时保证同一时刻只有一个实例执行刷新
// *redis.Client 实现了该接口
type RefreshLocker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	Unlock(ctx context.Context, name, token string) error
}

// RefreshResult 单次刷新统计
type RefreshResult struct {
	Scanned     int
	Transitions int
	Skipped     bool
}

// StatusRefresher 定期把到期的 pending 事项标记为 overdue
type StatusRefresher struct {
	repo     *repository.Repository
	clock    *scheduling.CivilClock
	locker   RefreshLocker
	interval time.Duration
	lockTTL  time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewStatusRefresher 创建刷新器；locker 为 nil 时不加分布式锁
func NewStatusRefresher(
	repo *repository.Repository,
	clock *scheduling.CivilClock,
	locker RefreshLocker,
	interval, lockTTL time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *StatusRefresher {
	if lockTTL <= 0 {
		lockTTL = interval
	}
	return &StatusRefresher{
		repo:     repo,
		clock:    clock,
		locker:   locker,
		interval: interval,
		lockTTL:  lockTTL,
		metrics:  m,
		logger:   logger,
	}
}

// Run 阻塞运行，启动时立即执行一次，ctx 取消后返回
func (r *StatusRefresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("状态刷新任务已启动", zap.Duration("interval", r.interval))
	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("状态刷新任务已停止")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *StatusRefresher) tick(ctx context.Context) {
	res, err := r.RunOnce(ctx)
	if err != nil {
		r.logger.Error("状态刷新失败", zap.Error(err))
		return
	}
	if res.Transitions > 0 {
		r.logger.Info("状态刷新完成",
			zap.Int("scanned", res.Scanned),
			zap.Int("transitions", res.Transitions),
		)
	}
}

// RunOnce 执行一轮刷新
func (r *StatusRefresher) RunOnce(ctx context.Context) (res RefreshResult, err error) {
	start := time.Now()
	defer func() {
		switch {
		case err != nil:
			r.metrics.ObserveRefresh("error", time.Since(start))
		case res.Skipped:
			r.metrics.ObserveRefresh("skipped", time.Since(start))
		default:
			r.metrics.ObserveRefresh("ok", time.Since(start))
		}
	}()

	if r.locker != nil {
		token, ok, lockErr := r.locker.TryLock(ctx, refreshLockName, r.lockTTL)
		if lockErr != nil {
			return res, lockErr
		}
		if !ok {
			res.Skipped = true
			return res, nil
		}
		defer func() {
			if uerr := r.locker.Unlock(context.WithoutCancel(ctx), refreshLockName, token); uerr != nil {
				r.logger.Warn("释放刷新锁失败", zap.Error(uerr))
			}
		}()
	}

	now := r.clock.Now()

	assignments, err := r.repo.Assignment.ListOpen(ctx)
	if err != nil {
		return res, err
	}
	items := make([]scheduling.WorkItem, 0, len(assignments))
	for i := range assignments {
		items = append(items, assignments[i].WorkItem())
	}
	if err := r.apply(ctx, items, now, r.repo.Assignment.TransitionStatus, &res); err != nil {
		return res, err
	}

	exams, err := r.repo.Exam.ListOpen(ctx)
	if err != nil {
		return res, err
	}
	items = items[:0]
	for i := range exams {
		items = append(items, exams[i].WorkItem())
	}
	if err := r.apply(ctx, items, now, r.repo.Exam.TransitionStatus, &res); err != nil {
		return res, err
	}

	customs, err := r.repo.CustomItem.ListOpen(ctx)
	if err != nil {
		return res, err
	}
	items = items[:0]
	for i := range customs {
		items = append(items, customs[i].WorkItem())
	}
	if err := r.apply(ctx, items, now, r.repo.CustomItem.TransitionStatus, &res); err != nil {
		return res, err
	}

	return res, nil
}

func (r *StatusRefresher) apply(ctx context.Context, items []scheduling.WorkItem, now time.Time, sink statusSink, res *RefreshResult) error {
	res.Scanned += len(items)
	out, changed := scheduling.ReconcileAll(items, now)
	for _, i := range changed {
		ok, err := sink(ctx, items[i].ID, string(items[i].Status), string(out[i].Status))
		if err != nil {
			return err
		}
		// 条件更新未命中说明记录已被用户修改，留给下一轮
		if ok {
			res.Transitions++
			r.metrics.ObserveTransition(string(out[i].Kind), string(out[i].Status))
		}
	}
	return nil
}
