package usecase

import (
	"context"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

// Анализ workflow
type AnalysisUseCase interface {
	// Прогнать пайплайн; ошибка только при невалидном запросе
	AnalyzeWorkflow(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error)

	// Очистить кэш анализов
	ClearCache(ctx context.Context) (int, error)

	// Создать векторный индекс, если его ещё нет
	EnsureIndex(ctx context.Context) error
}

// Отчёты
type ReportUseCase interface {
	GetReport(ctx context.Context, id string) (entity.WorkflowReport, error)
	ListReports(ctx context.Context, filter entity.ReportFilter) ([]entity.WorkflowReport, error)
}

// Дашборд
type DashboardUseCase interface {
	DashboardSummary(ctx context.Context) (entity.DashboardSummary, error)
	DashboardTrends(ctx context.Context, days int) (entity.DashboardTrends, error)
}

// Фасад для агрегации интерфейсов сервиса
type Service interface {
	AnalysisUseCase
	ReportUseCase
	DashboardUseCase
}
