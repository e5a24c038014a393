package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-life/backend/internal/dto"
	"campus-life/backend/internal/model"
	"campus-life/backend/internal/repository"
	"campus-life/backend/internal/scheduling"
)

// PreferenceService 用户偏好业务接口
type PreferenceService interface {
	Get(ctx context.Context, userID string) (*dto.PreferenceResponse, error)
	UpdateReminder(ctx context.Context, req *dto.UpdateReminderRequest, userID string) (*dto.PreferenceResponse, error)
	// ReminderSetting 返回用户当前提醒设置，未设置时使用默认值
	ReminderSetting(ctx context.Context, userID string) (scheduling.ReminderSetting, error)
}

type preferenceService struct {
	repo     *repository.Repository
	fallback scheduling.ReminderSetting
	logger   *zap.Logger
}

// NewPreferenceService 创建 PreferenceService 实例
// fallback 为用户未设置时的默认提醒，来自 scheduler.default_reminder
func NewPreferenceService(repo *repository.Repository, fallback scheduling.ReminderSetting, logger *zap.Logger) PreferenceService {
	if _, err := scheduling.ParseReminderSetting(string(fallback)); err != nil {
		fallback = scheduling.DefaultReminderSetting
	}
	return &preferenceService{repo: repo, fallback: fallback, logger: logger}
}

func (s *preferenceService) Get(ctx context.Context, userID string) (*dto.PreferenceResponse, error) {
	setting, err := s.ReminderSetting(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toPreferenceResponse(setting), nil
}

func (s *preferenceService) UpdateReminder(ctx context.Context, req *dto.UpdateReminderRequest, userID string) (*dto.PreferenceResponse, error) {
	setting, err := scheduling.ParseReminderSetting(req.ReminderSetting)
	if err != nil {
		return nil, err
	}

	pref := &model.UserPreference{UserID: userID, ReminderSetting: string(setting)}
	pref.CreatedBy = &userID
	pref.UpdatedBy = &userID
	if err := s.repo.Preference.Upsert(ctx, pref); err != nil {
		s.logger.Error("保存提醒设置失败", zap.Error(err))
		return nil, err
	}
	return toPreferenceResponse(setting), nil
}

func (s *preferenceService) ReminderSetting(ctx context.Context, userID string) (scheduling.ReminderSetting, error) {
	pref, err := s.repo.Preference.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.fallback, nil
		}
		s.logger.Error("查询用户偏好失败", zap.Error(err))
		return "", err
	}

	setting, err := scheduling.ParseReminderSetting(pref.ReminderSetting)
	if err != nil {
		// 存量脏数据按默认值处理
		s.logger.Warn("未知的提醒设置，使用默认值", zap.String("value", pref.ReminderSetting))
		return s.fallback, nil
	}
	return setting, nil
}

func toPreferenceResponse(setting scheduling.ReminderSetting) *dto.PreferenceResponse {
	options := make([]string, 0, len(scheduling.ReminderSettings()))
	for _, o := range scheduling.ReminderSettings() {
		options = append(options, string(o))
	}
	return &dto.PreferenceResponse{
		ReminderSetting: string(setting),
		LookaheadDays:   setting.LookaheadDays(),
		Options:         options,
	}
}
