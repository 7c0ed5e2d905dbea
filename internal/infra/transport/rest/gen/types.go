// Package gen holds the HTTP contract of the service: the OpenAPI document,
// its models and the chi server glue in the oapi-codegen layout.
package gen

import (
	"time"
)

// Defines values for AnalyzeWorkflowResponseCacheStatus.
const (
	HIT  AnalyzeWorkflowResponseCacheStatus = "HIT"
	MISS AnalyzeWorkflowResponseCacheStatus = "MISS"
)

// Defines values for DashboardTrendsTrend.
const (
	Declining DashboardTrendsTrend = "declining"
	Improving DashboardTrendsTrend = "improving"
	Stable    DashboardTrendsTrend = "stable"
)

// Defines values for ErrorResponseErrorCode.
const (
	CACHEDISABLED  ErrorResponseErrorCode = "CACHE_DISABLED"
	INTERNAL       ErrorResponseErrorCode = "INTERNAL"
	INVALIDREQUEST ErrorResponseErrorCode = "INVALID_REQUEST"
	NOTFOUND       ErrorResponseErrorCode = "NOT_FOUND"
)

// AnalyzeWorkflowRequest defines model for AnalyzeWorkflowRequest.
type AnalyzeWorkflowRequest struct {
	Repo       string `json:"repo"`
	Team       string `json:"team"`
	WindowDays *int   `json:"window_days,omitempty"`
}

// AnalyzeWorkflowResponse defines model for AnalyzeWorkflowResponse.
type AnalyzeWorkflowResponse struct {
	Bottlenecks     []string                           `json:"bottlenecks"`
	CacheStatus     AnalyzeWorkflowResponseCacheStatus `json:"cache_status"`
	Partial         *bool                              `json:"partial,omitempty"`
	PostmanMode     *string                            `json:"postman_mode,omitempty"`
	ReportId        *string                            `json:"report_id,omitempty"`
	ReportUrl       string                             `json:"report_url"`
	Score           int                                `json:"score"`
	SemanticEnabled bool                               `json:"semantic_enabled"`
	Similarity      *float64                           `json:"similarity,omitempty"`
	SopPreview      string                             `json:"sop_preview"`
}

// AnalyzeWorkflowResponseCacheStatus defines model for AnalyzeWorkflowResponse.CacheStatus.
type AnalyzeWorkflowResponseCacheStatus string

// ClearCacheResponse defines model for ClearCacheResponse.
type ClearCacheResponse struct {
	Cleared *int   `json:"cleared,omitempty"`
	Message string `json:"message"`
}

// DashboardSummary defines model for DashboardSummary.
type DashboardSummary struct {
	AvgScore          float64           `json:"avg_score"`
	ScoreDistribution ScoreDistribution `json:"score_distribution"`
	TopRepos          []NamedCount      `json:"top_repos"`
	TopTeams          []NamedCount      `json:"top_teams"`
	TotalAnalyses     int               `json:"total_analyses"`
}

// DashboardTrends defines model for DashboardTrends.
type DashboardTrends struct {
	Days        int                  `json:"days"`
	Points      []TrendPoint         `json:"points"`
	ScoreChange float64              `json:"score_change"`
	Trend       DashboardTrendsTrend `json:"trend"`
}

// DashboardTrendsTrend defines model for DashboardTrends.Trend.
type DashboardTrendsTrend string

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error struct {
		Code    ErrorResponseErrorCode `json:"code"`
		Message string                 `json:"message"`
	} `json:"error"`
}

// ErrorResponseErrorCode defines model for ErrorResponse.Error.Code.
type ErrorResponseErrorCode string

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status string `json:"status"`
}

// NamedCount defines model for NamedCount.
type NamedCount struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

// ReportList defines model for ReportList.
type ReportList struct {
	Count   int              `json:"count"`
	Reports []WorkflowReport `json:"reports"`
}

// ScoreDistribution defines model for ScoreDistribution.
type ScoreDistribution struct {
	Excellent        int `json:"excellent"`
	Good             int `json:"good"`
	NeedsImprovement int `json:"needs_improvement"`
}

// TrendPoint defines model for TrendPoint.
type TrendPoint struct {
	AvgScore float64 `json:"avg_score"`
	Count    int     `json:"count"`
	Date     string  `json:"date"`
}

// WorkflowMetrics defines model for WorkflowMetrics.
type WorkflowMetrics struct {
	AvgReviewsPerPr        float64 `json:"avg_reviews_per_pr"`
	AvgTimeToFirstReviewH  float64 `json:"avg_time_to_first_review_h"`
	AvgTimeToMergeH        float64 `json:"avg_time_to_merge_h"`
	BlockerMentions        int     `json:"blocker_mentions"`
	PctPrsNoFirstReview36h float64 `json:"pct_prs_no_first_review_36h"`
	ReopenRate             float64 `json:"reopen_rate"`
	Stale7dRatio           float64 `json:"stale_7d_ratio"`
	Unassigned24hRate      float64 `json:"unassigned_24h_rate"`
	WindowDays             int     `json:"window_days"`
}

// WorkflowReport defines model for WorkflowReport.
type WorkflowReport struct {
	Bottlenecks []string        `json:"bottlenecks"`
	CreatedAt   time.Time       `json:"created_at"`
	Id          string          `json:"id"`
	Metrics     WorkflowMetrics `json:"metrics"`
	Partial     bool            `json:"partial"`
	Repo        string          `json:"repo"`
	Score       int             `json:"score"`
	Sop         string          `json:"sop"`
	Summary     *string         `json:"summary,omitempty"`
	Team        string          `json:"team"`
	Url         string          `json:"url"`
	Version     int             `json:"version"`
	WindowDays  int             `json:"window_days"`
}

// GetApiDashboardTrendsParams defines parameters for GetApiDashboardTrends.
type GetApiDashboardTrendsParams struct {
	Days *int `form:"days,omitempty" json:"days,omitempty"`
}

// GetApiReportsParams defines parameters for GetApiReports.
type GetApiReportsParams struct {
	Repo  *string `form:"repo,omitempty" json:"repo,omitempty"`
	Team  *string `form:"team,omitempty" json:"team,omitempty"`
	Limit *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

// PostAnalyzeWorkflowJSONRequestBody defines body for PostAnalyzeWorkflow for application/json ContentType.
type PostAnalyzeWorkflowJSONRequestBody = AnalyzeWorkflowRequest
