package handler

import "campus-life/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Course     *CourseHandler
	Assignment *AssignmentHandler
	Exam       *ExamHandler
	CustomItem *CustomItemHandler
	Todo       *TodoHandler
	Preference *PreferenceHandler
	Export     *ExportHandler
	Health     *HealthHandler
}

// NewHandler 创建 Handler 聚合
// checks 为健康检查依赖（db、redis），按名称汇报
func NewHandler(svc *service.Service, checks map[string]PingFunc) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Course:     NewCourseHandler(svc.Course),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Exam:       NewExamHandler(svc.Exam),
		CustomItem: NewCustomItemHandler(svc.CustomItem),
		Todo:       NewTodoHandler(svc.Todo),
		Preference: NewPreferenceHandler(svc.Preference),
		Export:     NewExportHandler(svc.Export),
		Health:     NewHealthHandler(checks),
	}
}
