package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-life/backend/config"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
	"campus-life/backend/internal/service"
	"campus-life/backend/pkg/database"
	"campus-life/backend/pkg/jwt"
	applogger "campus-life/backend/pkg/logger"
	"campus-life/backend/pkg/metrics"
	"campus-life/backend/pkg/redis"
)

// app 各子命令共享的依赖
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	rdb     *redis.Client
	jwtMgr  *jwt.Manager
	metrics *metrics.Metrics
	svc     *service.Service
}

// loadBase 加载配置并初始化日志
func loadBase(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, logger, nil
}

// newApp 连接数据库与 Redis（可选），完成依赖注入
func newApp(configPath string) (*app, error) {
	cfg, logger, err := loadBase(configPath)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	// Redis 连接失败时降级运行：登出不可用，刷新任务不加锁
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与分布式锁将不可用", zap.Error(err))
		rdb = nil
	}

	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.New()

	// Repository → Service
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, scheduling.TaiwanClock(), jwtMgr, rdb, m, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		rdb:     rdb,
		jwtMgr:  jwtMgr,
		metrics: m,
		svc:     svc,
	}, nil
}

// Close 释放数据库与 Redis 连接
func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	a.logger.Sync()
}
