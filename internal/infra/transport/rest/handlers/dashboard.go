package handlers

import (
	"net/http"

	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
)

// GET /api/dashboard/summary
func (h *Handlers) GetApiDashboardSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.DashboardSummary(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, gen.DashboardSummary{
		TotalAnalyses: s.TotalAnalyses,
		AvgScore:      s.AvgScore,
		ScoreDistribution: gen.ScoreDistribution{
			Excellent:        s.ScoreDistribution.Excellent,
			Good:             s.ScoreDistribution.Good,
			NeedsImprovement: s.ScoreDistribution.NeedsImprovement,
		},
		TopTeams: toNamedCounts(s.TopTeams),
		TopRepos: toNamedCounts(s.TopRepos),
	})
}

// GET /api/dashboard/trends
func (h *Handlers) GetApiDashboardTrends(w http.ResponseWriter, r *http.Request, params gen.GetApiDashboardTrendsParams) {
	days := 0
	if params.Days != nil {
		days = *params.Days
	}

	t, err := h.service.DashboardTrends(r.Context(), days)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := gen.DashboardTrends{
		Days:        t.Days,
		Points:      make([]gen.TrendPoint, len(t.Points)),
		Trend:       gen.DashboardTrendsTrend(t.Trend),
		ScoreChange: t.ScoreChange,
	}
	for i, p := range t.Points {
		resp.Points[i] = gen.TrendPoint{Date: p.Date, AvgScore: p.AvgScore, Count: p.Count}
	}
	WriteJSON(w, http.StatusOK, resp)
}
