package handlers

import (
	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
)

// ToAnalyzeResponse renders an analysis result in the wire format shared by HTTP, websocket and MCP.
func ToAnalyzeResponse(res entity.AnalysisResult) gen.AnalyzeWorkflowResponse {
	resp := gen.AnalyzeWorkflowResponse{
		Score:           res.Score,
		Bottlenecks:     res.Bottlenecks,
		SopPreview:      res.SOPPreview,
		ReportUrl:       res.ReportURL,
		CacheStatus:     gen.AnalyzeWorkflowResponseCacheStatus(res.CacheStatus),
		Similarity:      res.Similarity,
		SemanticEnabled: res.SemanticEnabled,
	}
	if resp.Bottlenecks == nil {
		resp.Bottlenecks = []string{}
	}
	partial := res.Partial
	resp.Partial = &partial
	if res.PostmanMode != "" {
		mode := res.PostmanMode
		resp.PostmanMode = &mode
	}
	if res.ReportID != "" {
		id := res.ReportID
		resp.ReportId = &id
	}
	return resp
}

func toReport(r entity.WorkflowReport) gen.WorkflowReport {
	out := gen.WorkflowReport{
		Id:          r.ID,
		Repo:        r.Repo,
		Team:        r.Team,
		WindowDays:  r.WindowDays,
		Score:       r.Score,
		Bottlenecks: r.Bottlenecks,
		Sop:         r.SOP,
		Metrics:     toMetrics(r.Metrics),
		Partial:     r.Partial,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		Url:         r.URL,
	}
	if out.Bottlenecks == nil {
		out.Bottlenecks = []string{}
	}
	if r.Summary != "" {
		summary := r.Summary
		out.Summary = &summary
	}
	return out
}

func toMetrics(m entity.WorkflowMetrics) gen.WorkflowMetrics {
	return gen.WorkflowMetrics{
		AvgTimeToFirstReviewH:  m.AvgTimeToFirstReviewHours,
		AvgTimeToMergeH:        m.AvgTimeToMergeHours,
		PctPrsNoFirstReview36h: m.PctPRsOver36hNoReview,
		AvgReviewsPerPr:        m.AvgReviewsPerPR,
		Unassigned24hRate:      m.Unassigned24hRate,
		ReopenRate:             m.ReopenRate,
		Stale7dRatio:           m.Stale7dRatio,
		BlockerMentions:        m.BlockerMentions,
		WindowDays:             m.WindowDays,
	}
}

func toNamedCounts(in []entity.NamedCount) []gen.NamedCount {
	out := make([]gen.NamedCount, len(in))
	for i, c := range in {
		out[i] = gen.NamedCount{Name: c.Name, Count: c.Count}
	}
	return out
}
