package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/domain/dashboard"
	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/repository"
	"github.com/mark47B/opspilot/internal/domain/usecase"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// compile-time proof
var _ usecase.Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	pipeline *Pipeline
	reports  repository.ReportRepository
	cache    repository.CacheGateway
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(
	pipeline *Pipeline,
	reports repository.ReportRepository,
	cache repository.CacheGateway,
	logger *zap.Logger,
) usecase.Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceImpl{
		pipeline: pipeline,
		reports:  reports,
		cache:    cache,
		logger:   logger,
		now:      pipeline.now,
	}
}

func (s *ServiceImpl) AnalyzeWorkflow(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error) {
	req, err := validateRequest(req)
	if err != nil {
		return entity.AnalysisResult{}, err
	}
	return s.pipeline.Run(ctx, req), nil
}

func validateRequest(req entity.AnalysisRequest) (entity.AnalysisRequest, error) {
	req.Repo = strings.TrimSpace(req.Repo)
	req.Team = strings.TrimSpace(req.Team)

	if req.Repo == "" {
		return req, &usecase.ValidationError{Field: "repo", Reason: "is required"}
	}
	if req.Team == "" {
		return req, &usecase.ValidationError{Field: "team", Reason: "is required"}
	}
	if req.WindowDays < entity.MinWindowDays || req.WindowDays > entity.MaxWindowDays {
		return req, &usecase.ValidationError{
			Field:  "window_days",
			Reason: fmt.Sprintf("must be between %d and %d", entity.MinWindowDays, entity.MaxWindowDays),
		}
	}
	return req, nil
}

func (s *ServiceImpl) ClearCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, usecase.ErrCacheDisabled
	}
	n, err := s.cache.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	s.logger.Info("cache cleared", zap.Int("deleted", n))
	return n, nil
}

func (s *ServiceImpl) EnsureIndex(ctx context.Context) error {
	idx, ok := s.cache.(repository.IndexManager)
	if !ok {
		return usecase.ErrCacheDisabled
	}
	return idx.EnsureIndex(ctx)
}

func (s *ServiceImpl) GetReport(ctx context.Context, id string) (entity.WorkflowReport, error) {
	report, err := s.reports.Get(ctx, id)
	if err != nil {
		if errors.Is(err, usecase.ErrReportNotFound) {
			return entity.WorkflowReport{}, err
		}
		return entity.WorkflowReport{}, fmt.Errorf("get report %s: %w", id, err)
	}
	return report, nil
}

func (s *ServiceImpl) ListReports(ctx context.Context, filter entity.ReportFilter) ([]entity.WorkflowReport, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	return s.reports.List(ctx, filter)
}

// DashboardSummary is computed on every call from the report store.
func (s *ServiceImpl) DashboardSummary(ctx context.Context) (entity.DashboardSummary, error) {
	rows, err := s.reports.ScoreRows(ctx, time.Time{})
	if err != nil {
		return entity.DashboardSummary{}, fmt.Errorf("load score rows: %w", err)
	}
	return dashboard.Summarize(rows), nil
}

func (s *ServiceImpl) DashboardTrends(ctx context.Context, days int) (entity.DashboardTrends, error) {
	if days == 0 {
		days = dashboard.DefaultTrendDays
	}
	if days < 1 || days > dashboard.MaxTrendDays {
		return entity.DashboardTrends{}, &usecase.ValidationError{
			Field:  "days",
			Reason: fmt.Sprintf("must be between 1 and %d", dashboard.MaxTrendDays),
		}
	}

	now := s.now()
	rows, err := s.reports.ScoreRows(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		return entity.DashboardTrends{}, fmt.Errorf("load score rows: %w", err)
	}
	return dashboard.Trends(rows, days, now), nil
}
