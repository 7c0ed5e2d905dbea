package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/domain/usecase"
)

type fakeService struct {
	got entity.AnalysisRequest
}

func (f *fakeService) AnalyzeWorkflow(_ context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error) {
	f.got = req
	if req.Repo == "" {
		return entity.AnalysisResult{}, &usecase.ValidationError{Field: "repo", Reason: "is required"}
	}
	return entity.AnalysisResult{Score: 71, Bottlenecks: []string{"b"}, CacheStatus: entity.CacheMiss, ReportURL: "#"}, nil
}

func (f *fakeService) ClearCache(context.Context) (int, error) { return 0, nil }

func (f *fakeService) EnsureIndex(context.Context) error { return nil }

func (f *fakeService) GetReport(_ context.Context, id string) (entity.WorkflowReport, error) {
	if id != "r1" {
		return entity.WorkflowReport{}, usecase.ErrReportNotFound
	}
	return entity.WorkflowReport{ID: "r1", Repo: "acme/api", Team: "core", Version: 2, Score: 71, SOP: "## Goals"}, nil
}

func (f *fakeService) ListReports(context.Context, entity.ReportFilter) ([]entity.WorkflowReport, error) {
	return nil, nil
}

func (f *fakeService) DashboardSummary(context.Context) (entity.DashboardSummary, error) {
	return entity.DashboardSummary{TotalAnalyses: 2, AvgScore: 75.5, TopTeams: []entity.NamedCount{}, TopRepos: []entity.NamedCount{}}, nil
}

func (f *fakeService) DashboardTrends(context.Context, int) (entity.DashboardTrends, error) {
	return entity.DashboardTrends{}, nil
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAnalyzeTool_Definition(t *testing.T) {
	def := NewAnalyzeTool(&fakeService{}).Definition()

	assert.Equal(t, "analyze_workflow", def.Name)
	assert.Contains(t, def.InputSchema.Properties, "window_days")
	assert.ElementsMatch(t, []string{"repo", "team"}, def.InputSchema.Required)
}

func TestAnalyzeTool_Handle(t *testing.T) {
	svc := &fakeService{}
	tool := NewAnalyzeTool(svc)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"repo": "acme/api", "team": "core", "window_days": float64(30),
	}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, entity.AnalysisRequest{Repo: "acme/api", Team: "core", WindowDays: 30}, svc.got)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &body))
	assert.Equal(t, float64(71), body["score"])
	assert.Equal(t, "MISS", body["cache_status"])
}

func TestAnalyzeTool_DefaultWindowAndValidation(t *testing.T) {
	svc := &fakeService{}
	tool := NewAnalyzeTool(svc)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"team": "core"}))

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "repo")
	assert.Equal(t, entity.DefaultWindowDays, svc.got.WindowDays)
}

func TestDashboardTool(t *testing.T) {
	res, err := NewDashboardTool(&fakeService{}).Handle(context.Background(), makeReq(nil))

	require.NoError(t, err)
	assert.Contains(t, resultText(res), `"total_analyses": 2`)
}

func TestReportTool(t *testing.T) {
	tool := NewReportTool(&fakeService{})

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"id": "r1"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "acme/api / core (v2, score 71)")

	res, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNewServer(t *testing.T) {
	s := NewServer(&fakeService{})
	require.NotNil(t, s)
}
