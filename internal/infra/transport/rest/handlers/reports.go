package handlers

import (
	"net/http"

	"github.com/mark47B/opspilot/internal/domain/entity"
	"github.com/mark47B/opspilot/internal/infra/transport/rest/gen"
)

// GET /api/reports
func (h *Handlers) GetApiReports(w http.ResponseWriter, r *http.Request, params gen.GetApiReportsParams) {
	var filter entity.ReportFilter
	if params.Repo != nil {
		filter.Repo = *params.Repo
	}
	if params.Team != nil {
		filter.Team = *params.Team
	}
	if params.Limit != nil {
		filter.Limit = *params.Limit
	}

	reports, err := h.service.ListReports(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := gen.ReportList{
		Reports: make([]gen.WorkflowReport, len(reports)),
		Count:   len(reports),
	}
	for i, rep := range reports {
		resp.Reports[i] = toReport(rep)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GET /api/reports/{id}
func (h *Handlers) GetApiReportsId(w http.ResponseWriter, r *http.Request, id string) {
	report, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toReport(report))
}
