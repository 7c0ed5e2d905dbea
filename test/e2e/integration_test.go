//go:build e2e

package e2e

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/app"
	"github.com/mark47B/opspilot/internal/domain/repository"
	"github.com/mark47B/opspilot/internal/domain/scoring"
	"github.com/mark47B/opspilot/internal/infra/cache"
	"github.com/mark47B/opspilot/internal/infra/cache/memory"
	"github.com/mark47B/opspilot/internal/infra/storage/pg"
	"github.com/mark47B/opspilot/internal/infra/transport/rest"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
)

type testClient struct {
	server  *httptest.Server
	baseURL string
}

// newTestClient собирает сервис на реальном Postgres; коллекторы и LLM не настроены,
// поэтому пайплайн идёт по запасным веткам
func newTestClient(t *testing.T, db *sql.DB, gw repository.CacheGateway) *testClient {
	t.Helper()
	logger := zap.NewNop()
	reports := pg.NewReportStorage(db, pg.NewTxManager(db, logger), "", logger)

	pipeline := app.NewPipeline(app.Dependencies{
		Cache:      gw,
		Reports:    reports,
		Calculator: scoring.NewCalculator(scoring.DefaultWeights(), scoring.DefaultThresholds()),
		Logger:     logger,
	}, app.DefaultPipelineConfig())

	router, err := rest.NewRouter(rest.RouterConfig{
		Service: app.NewService(pipeline, reports, gw, logger),
		Logger:  logger,
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testClient{server: server, baseURL: server.URL}
}

func (c *testClient) post(t *testing.T, path string, body any, out any) int {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(c.baseURL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *testClient) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(c.baseURL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func analyzeBody(repo, team string, window int) map[string]any {
	return map[string]any{"repo": repo, "team": team, "window_days": window}
}

func TestAnalyze_DegradedRunPersistsReport(t *testing.T) {
	c := newTestClient(t, setupTestDB(t), cache.Disabled{})

	var resp gen.AnalyzeWorkflowResponse
	code := c.post(t, "/analyze-workflow", analyzeBody("acme/api", "core", 14), &resp)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 71, resp.Score)
	assert.Equal(t, gen.MISS, resp.CacheStatus)
	require.NotNil(t, resp.Partial)
	assert.True(t, *resp.Partial)
	assert.NotEmpty(t, resp.Bottlenecks)
	assert.NotEqual(t, "#", resp.ReportUrl)
	assert.False(t, resp.SemanticEnabled)

	var report gen.WorkflowReport
	require.Equal(t, http.StatusOK, c.get(t, resp.ReportUrl, &report))
	assert.Equal(t, "acme/api", report.Repo)
	assert.Equal(t, 1, report.Version)
	assert.Equal(t, 71, report.Score)
	assert.Contains(t, report.Sop, "core")
}

func TestAnalyze_VersionsIncrementPerRepoTeam(t *testing.T) {
	c := newTestClient(t, setupTestDB(t), cache.Disabled{})

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, c.post(t, "/analyze-workflow", analyzeBody("acme/api", "core", 14), nil))
	}
	require.Equal(t, http.StatusOK, c.post(t, "/analyze-workflow", analyzeBody("acme/web", "core", 14), nil))

	var list gen.ReportList
	require.Equal(t, http.StatusOK, c.get(t, "/api/reports?repo=acme/api", &list))
	require.Equal(t, 3, list.Count)
	assert.Equal(t, 3, list.Reports[0].Version)
	assert.Equal(t, 1, list.Reports[2].Version)
}

func TestAnalyze_SecondRunHitsCache(t *testing.T) {
	c := newTestClient(t, setupTestDB(t), memory.New(64, 0))

	var first, second gen.AnalyzeWorkflowResponse
	require.Equal(t, http.StatusOK, c.post(t, "/analyze-workflow", analyzeBody("acme/api", "core", 7), &first))
	require.Equal(t, http.StatusOK, c.post(t, "/analyze-workflow", analyzeBody("acme/api", "core", 7), &second))

	assert.Equal(t, gen.MISS, first.CacheStatus)
	assert.Equal(t, gen.HIT, second.CacheStatus)
	require.NotNil(t, second.Similarity)
	assert.InDelta(t, 1.0, *second.Similarity, 1e-6)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.ReportUrl, second.ReportUrl)

	// попадание в кэш не создаёт новую версию
	var list gen.ReportList
	require.Equal(t, http.StatusOK, c.get(t, "/api/reports", &list))
	assert.Equal(t, 1, list.Count)
}

func TestAnalyze_Validation(t *testing.T) {
	c := newTestClient(t, setupTestDB(t), cache.Disabled{})

	var errResp gen.ErrorResponse
	code := c.post(t, "/analyze-workflow", analyzeBody("acme/api", "core", 0), &errResp)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, gen.INVALIDREQUEST, errResp.Error.Code)
}

func TestDashboard_SummaryAndTrends(t *testing.T) {
	c := newTestClient(t, setupTestDB(t), cache.Disabled{})
	require.Equal(t, http.StatusOK, c.post(t, "/analyze-workflow", analyzeBody("acme/api", "core", 14), nil))
	require.Equal(t, http.StatusOK, c.post(t, "/analyze-workflow", analyzeBody("acme/api", "infra", 14), nil))

	var sum gen.DashboardSummary
	require.Equal(t, http.StatusOK, c.get(t, "/api/dashboard/summary", &sum))
	assert.Equal(t, 2, sum.TotalAnalyses)
	assert.Equal(t, 71.0, sum.AvgScore)
	assert.Equal(t, 2, sum.ScoreDistribution.Good)
	require.Len(t, sum.TopRepos, 1)
	assert.Equal(t, gen.NamedCount{Name: "acme/api", Count: 2}, sum.TopRepos[0])

	var trends gen.DashboardTrends
	require.Equal(t, http.StatusOK, c.get(t, "/api/dashboard/trends?days=7", &trends))
	assert.Equal(t, 7, trends.Days)
	assert.Equal(t, gen.Stable, trends.Trend)
}

func TestReports_NotFound(t *testing.T) {
	c := newTestClient(t, setupTestDB(t), cache.Disabled{})

	var errResp gen.ErrorResponse
	code := c.get(t, "/api/reports/00000000-0000-0000-0000-000000000000", &errResp)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, gen.NOTFOUND, errResp.Error.Code)
}
