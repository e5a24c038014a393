package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campus-life/backend/internal/api/handler"
	"campus-life/backend/internal/api/router"
	"campus-life/backend/pkg/database"
)

func newServeCommand(configPath *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务与状态刷新任务",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(*configPath, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "启动前执行数据库迁移")
	return cmd
}

func runServe(configPath string, migrate bool) error {
	// 1. 初始化依赖
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	logger.Info("应用启动中...",
		zap.Int("port", a.cfg.Server.Port),
		zap.String("log_level", a.cfg.Log.Level),
	)

	// 2. 执行数据库迁移
	if migrate {
		sqlDB, err := a.db.DB()
		if err != nil {
			return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return err
		}
	}

	// 3. 初始化路由
	checks := map[string]handler.PingFunc{
		"db": func(ctx context.Context) error { return database.Ping(ctx, a.db) },
	}
	if a.rdb != nil {
		checks["redis"] = a.rdb.Ping
	}
	h := handler.NewHandler(a.svc, checks)
	engine := router.Setup(a.cfg, h, a.jwtMgr, a.rdb, a.metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. 启动状态刷新任务
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.svc.Refresher.Run(ctx)
	}()

	// 5. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 6. 等待信号或服务器异常
	select {
	case <-ctx.Done():
		logger.Info("收到关闭信号，开始优雅关闭...")
	case err := <-errCh:
		logger.Error("HTTP 服务器异常", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	wg.Wait()

	logger.Info("服务器已关闭")
	return nil
}
