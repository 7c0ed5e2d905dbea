package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/usecase"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/handlers"
)

// AnalyzeTool handles the analyze_workflow tool.
type AnalyzeTool struct {
	svc usecase.AnalysisUseCase
}

func NewAnalyzeTool(svc usecase.AnalysisUseCase) *AnalyzeTool {
	return &AnalyzeTool{svc: svc}
}

func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_workflow",
		mcp.WithDescription("Analyze the delivery workflow of a repository and team: health score 0-100, bottlenecks and an SOP preview."),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Repository in owner/name form"),
		),
		mcp.WithString("team",
			mcp.Required(),
			mcp.Description("Team name"),
		),
		mcp.WithNumber("window_days",
			mcp.Description("Lookback window in days (1-90, default 14)"),
		),
	)
}

func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.svc.AnalyzeWorkflow(ctx, entity.AnalysisRequest{
		Repo:       req.GetString("repo", ""),
		Team:       req.GetString("team", ""),
		WindowDays: intArg(req, "window_days", entity.DefaultWindowDays),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(handlers.ToAnalyzeResponse(res))
}

// DashboardTool handles the dashboard_summary tool.
type DashboardTool struct {
	svc usecase.DashboardUseCase
}

func NewDashboardTool(svc usecase.DashboardUseCase) *DashboardTool {
	return &DashboardTool{svc: svc}
}

func (t *DashboardTool) Definition() mcp.Tool {
	return mcp.NewTool("dashboard_summary",
		mcp.WithDescription("Aggregate statistics over all persisted workflow reports."),
	)
}

func (t *DashboardTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := t.svc.DashboardSummary(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dashboard failed: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"total_analyses":     s.TotalAnalyses,
		"avg_score":          s.AvgScore,
		"score_distribution": s.ScoreDistribution,
		"top_teams":          s.TopTeams,
		"top_repos":          s.TopRepos,
	})
}

// ReportTool handles the get_report tool.
type ReportTool struct {
	svc usecase.ReportUseCase
}

func NewReportTool(svc usecase.ReportUseCase) *ReportTool {
	return &ReportTool{svc: svc}
}

func (t *ReportTool) Definition() mcp.Tool {
	return mcp.NewTool("get_report",
		mcp.WithDescription("Fetch a persisted workflow report with its full SOP."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Report id as returned by analyze_workflow"),
		),
	)
}

func (t *ReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	r, err := t.svc.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, usecase.ErrReportNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("report %s not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("get report failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("# %s / %s (v%d, score %d)\n\n%s", r.Repo, r.Team, r.Version, r.Score, r.SOP)), nil
}
